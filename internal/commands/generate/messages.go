package generatecmd

import (
	"io"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	changelogMessageType = "styleguide.generate.changelog"
	dashboardMessageType = "styleguide.generate.dashboard"
)

func requiredPath(code string) validation.Rule {
	return validation.By(func(value any) error {
		if s, _ := value.(string); strings.TrimSpace(s) == "" {
			return validation.NewError(code, "output file is required")
		}
		return nil
	})
}

// ChangelogCommand regenerates the changelog from GitHub releases.
type ChangelogCommand struct {
	File   string    `json:"file"`
	Output io.Writer `json:"-"`
}

// Type implements command.Message.
func (ChangelogCommand) Type() string { return changelogMessageType }

// Validate ensures the destination is present.
func (cmd ChangelogCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.File, requiredPath("styleguide.generate.changelog.file_required")),
	)
}

// DashboardCommand regenerates the project status page.
type DashboardCommand struct {
	File string `json:"file"`
	// MetricsFile, when set, receives the gauges in Prometheus text format.
	MetricsFile string `json:"metrics_file,omitempty"`
	// IncludeLint runs the linter and adds its summary to the page.
	IncludeLint bool      `json:"include_lint,omitempty"`
	Output      io.Writer `json:"-"`
}

// Type implements command.Message.
func (DashboardCommand) Type() string { return dashboardMessageType }

// Validate ensures the destination is present.
func (cmd DashboardCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.File, requiredPath("styleguide.generate.dashboard.file_required")),
	)
}
