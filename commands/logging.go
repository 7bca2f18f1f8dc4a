package commands

import (
	internalcommands "github.com/goliatone/go-styleguide/internal/commands"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

// CommandLogger returns the logger used by command handlers of module.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	return internalcommands.CommandLogger(provider, module)
}
