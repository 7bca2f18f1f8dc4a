package releasescmd

import (
	"io"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	checkActionsMessageType     = "styleguide.releases.check_actions"
	validateVersionsMessageType = "styleguide.releases.validate_versions"
	checkLanguagesMessageType   = "styleguide.releases.check_languages"
)

func notBlank(code, message string) validation.Rule {
	return validation.By(func(value any) error {
		if s, _ := value.(string); strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	})
}

// CheckActionsCommand compares workflow action pins with their latest
// releases.
type CheckActionsCommand struct {
	WorkflowsDir string    `json:"workflows_dir"`
	Output       io.Writer `json:"-"`
}

// Type implements command.Message.
func (CheckActionsCommand) Type() string { return checkActionsMessageType }

// Validate ensures the workflows directory is set.
func (cmd CheckActionsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.WorkflowsDir, notBlank("styleguide.releases.workflows_dir_required", "workflows directory is required")),
	)
}

// ValidateVersionsCommand checks the versions catalogue.
type ValidateVersionsCommand struct {
	File   string    `json:"file"`
	Output io.Writer `json:"-"`
}

// Type implements command.Message.
func (ValidateVersionsCommand) Type() string { return validateVersionsMessageType }

// Validate ensures the versions file is set.
func (cmd ValidateVersionsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.File, notBlank("styleguide.releases.versions_file_required", "versions file is required")),
	)
}

// CheckLanguagesCommand looks for language releases newer than the guides
// document.
type CheckLanguagesCommand struct {
	// Languages restricts the check to the named entries; empty checks all.
	Languages []string `json:"languages,omitempty"`
	// GitHubOutput receives new_releases=<json> when set.
	GitHubOutput string    `json:"github_output,omitempty"`
	Output       io.Writer `json:"-"`
}

// Type implements command.Message.
func (CheckLanguagesCommand) Type() string { return checkLanguagesMessageType }

// Validate rejects blank language names.
func (cmd CheckLanguagesCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Languages, validation.Each(notBlank("styleguide.releases.language_blank", "language name must not be blank"))),
	)
}
