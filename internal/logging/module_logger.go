package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

const (
	rootModule      = "styleguide"
	markdownModule  = "styleguide.markdown"
	lintModule      = "styleguide.lint"
	ratioModule     = "styleguide.ratio"
	glossaryModule  = "styleguide.glossary"
	releasesModule  = "styleguide.releases"
	catalogModule   = "styleguide.catalog"
	generatorModule = "styleguide.generator"
)

const (
	fieldDocumentPath = "doc_path"
	fieldSection      = "section"
	fieldRule         = "rule"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// MarkdownLogger returns the logger namespace reserved for document loading.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// LintLogger returns the logger namespace reserved for the linter.
func LintLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, lintModule)
}

// RatioLogger returns the logger namespace reserved for ratio analysis.
func RatioLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ratioModule)
}

// GlossaryLogger returns the logger namespace reserved for glossary generation.
func GlossaryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, glossaryModule)
}

// ReleasesLogger returns the logger namespace reserved for version checks.
func ReleasesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, releasesModule)
}

// CatalogLogger returns the logger namespace reserved for the catalog store.
func CatalogLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, catalogModule)
}

// GeneratorLogger returns the logger namespace shared by the page generators
// (changelog, dashboard, page index).
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// WithDocumentContext enriches the logger with document path, section and
// rule fields. Empty values are ignored.
func WithDocumentContext(logger interfaces.Logger, path, section, rule string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldDocumentPath] = trimmed
	}
	if trimmed := strings.TrimSpace(section); trimmed != "" {
		fields[fieldSection] = trimmed
	}
	if trimmed := strings.TrimSpace(rule); trimmed != "" {
		fields[fieldRule] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
