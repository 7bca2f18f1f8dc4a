package docscmd

import (
	"io"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-styleguide/internal/glossary"
)

const (
	lintMessageType      = "styleguide.docs.lint"
	ratioMessageType     = "styleguide.docs.ratio"
	glossaryMessageType  = "styleguide.docs.glossary"
	pageIndexMessageType = "styleguide.docs.page_index"
	cleanupMessageType   = "styleguide.docs.cleanup"
)

func notBlank(code, message string) validation.Rule {
	return validation.By(func(value any) error {
		if s, _ := value.(string); strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	})
}

// LintCommand lints every document under Dir, relative to the docs root.
type LintCommand struct {
	Dir string `json:"dir"`
	// Strict fails the run on warnings as well as errors.
	Strict bool      `json:"strict,omitempty"`
	Output io.Writer `json:"-"`
}

// Type implements command.Message.
func (LintCommand) Type() string { return lintMessageType }

// Validate ensures a directory is present.
func (cmd LintCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Dir, notBlank("styleguide.docs.lint.dir_required", "directory is required")),
	)
}

// RatioCommand analyses the code-to-text ratio of the guides in GuidesDir.
type RatioCommand struct {
	GuidesDir string    `json:"guides_dir"`
	Output    io.Writer `json:"-"`
}

// Type implements command.Message.
func (RatioCommand) Type() string { return ratioMessageType }

// Validate ensures the guides directory is present.
func (cmd RatioCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.GuidesDir, notBlank("styleguide.docs.ratio.guides_dir_required", "guides directory is required")),
	)
}

// GlossaryCommand regenerates, previews or scans the glossary.
type GlossaryCommand struct {
	Mode     glossary.Mode `json:"mode"`
	CrossRef bool          `json:"cross_ref,omitempty"`
	// File is the on-disk glossary written in write mode.
	File   string    `json:"file"`
	Output io.Writer `json:"-"`
}

// Type implements command.Message.
func (GlossaryCommand) Type() string { return glossaryMessageType }

// Validate checks the mode and, for writes, the destination.
func (cmd GlossaryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Mode, validation.Required, validation.In(glossary.ModeWrite, glossary.ModeDryRun, glossary.ModeScanNew)),
		validation.Field(&cmd.File, validation.When(cmd.Mode == glossary.ModeWrite,
			notBlank("styleguide.docs.glossary.file_required", "glossary file is required"))),
	)
}

// PageIndexCommand writes the related-pages index to File.
type PageIndexCommand struct {
	File   string    `json:"file"`
	Output io.Writer `json:"-"`
}

// Type implements command.Message.
func (PageIndexCommand) Type() string { return pageIndexMessageType }

// Validate ensures the destination is present.
func (cmd PageIndexCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.File, notBlank("styleguide.docs.page_index.file_required", "output file is required")),
	)
}

// CleanupCommand strips static metadata from the documents under Dir.
type CleanupCommand struct {
	Dir         string    `json:"dir"`
	StripKeys   []string  `json:"strip_keys,omitempty"`
	KeepFooters bool      `json:"keep_footers,omitempty"`
	DryRun      bool      `json:"dry_run,omitempty"`
	Output      io.Writer `json:"-"`
}

// Type implements command.Message.
func (CleanupCommand) Type() string { return cleanupMessageType }

// Validate ensures a directory is present.
func (cmd CleanupCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Dir, notBlank("styleguide.docs.cleanup.dir_required", "directory is required")),
	)
}
