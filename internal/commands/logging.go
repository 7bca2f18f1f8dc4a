package commands

import (
	"strings"

	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

const (
	commandLoggerRoot   = "styleguide.commands"
	defaultCommandGroup = "docs"
)

// CommandLogger returns the logger for one command group of the styleguide
// CLI (docs, catalog, releases, generate). Entries are named
// styleguide.commands.<group> so the logging.focus setting can isolate one
// group, such as catalog sync output. Every entry carries the group as a field.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	name := strings.ToLower(strings.TrimSpace(group))
	if name == "" {
		name = defaultCommandGroup
	}
	logger := logging.ModuleLogger(provider, commandLoggerRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":     "command",
		"command_group": name,
	})
}
