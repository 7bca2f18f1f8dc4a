package runtimeconfig

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrRepoRootRequired       = errors.New("styleguide config: repository root is required")
	ErrDocsDirRequired        = errors.New("styleguide config: docs directory is required")
	ErrRatioTargetInvalid     = errors.New("styleguide config: ratio target must be positive")
	ErrRequiredKeysEmpty      = errors.New("styleguide config: at least one required front-matter key is needed")
	ErrAllowedStatusesEmpty   = errors.New("styleguide config: allowed statuses cannot be empty")
	ErrLintRuleUnknown        = errors.New("styleguide config: unknown lint rule")
	ErrWorkersInvalid         = errors.New("styleguide config: worker count must be zero or positive")
	ErrGitHubRepositoryFormat = errors.New("styleguide config: github repository must be owner/name")
	ErrRateLimitInvalid       = errors.New("styleguide config: github rate limit must be positive")
	ErrCatalogDriverUnknown   = errors.New("styleguide config: catalog driver is invalid")
	ErrCatalogDSNRequired     = errors.New("styleguide config: catalog dsn is required")
	ErrLoggingProviderUnknown = errors.New("styleguide config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("styleguide config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("styleguide config: logging format is invalid")
)

// LintRules lists every rule name the linter knows about.
var LintRules = []string{
	"frontmatter-present",
	"frontmatter-required",
	"frontmatter-status",
	"frontmatter-tags",
	"frontmatter-version",
	"frontmatter-schema",
	"code-fence-closed",
	"heading-single-h1",
	"links-internal",
	"static-footer",
	"module-tag",
}

// Config aggregates every tool setting. Paths are relative to RepoRoot
// unless absolute.
type Config struct {
	RepoRoot  string          `yaml:"repo_root"`
	Docs      DocsConfig      `yaml:"docs"`
	Lint      LintConfig      `yaml:"lint"`
	Ratio     RatioConfig     `yaml:"ratio"`
	Glossary  GlossaryConfig  `yaml:"glossary"`
	PageIndex PageIndexConfig `yaml:"page_index"`
	GitHub    GitHubConfig    `yaml:"github"`
	Releases  ReleasesConfig  `yaml:"releases"`
	Changelog ChangelogConfig `yaml:"changelog"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DocsConfig describes the documentation tree.
type DocsConfig struct {
	Dir     string               `yaml:"dir"`
	Pattern string               `yaml:"pattern"`
	Exclude []string             `yaml:"exclude"`
	Parser  MarkdownParserConfig `yaml:"parser"`
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string `yaml:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode"`
}

// LintConfig captures rule selection and rule parameters.
type LintConfig struct {
	RequiredKeys        []string      `yaml:"required_keys"`
	AllowedStatuses     []string      `yaml:"allowed_statuses"`
	Disabled            []string      `yaml:"disabled"`
	Strict              bool          `yaml:"strict"`
	SchemaFile          string        `yaml:"schema_file"`
	ModuleTagExtensions []string      `yaml:"module_tag_extensions"`
	Workers             int           `yaml:"workers"`
	WatchDebounce       time.Duration `yaml:"watch_debounce"`
}

// RatioConfig configures the code-to-text analysis.
type RatioConfig struct {
	GuidesDir string   `yaml:"guides_dir"`
	Target    float64  `yaml:"target"`
	Exempt    []string `yaml:"exempt"`
}

// GlossaryConfig configures glossary maintenance.
type GlossaryConfig struct {
	File           string `yaml:"file"`
	MaxReferences  int    `yaml:"max_references"`
	MinOccurrences int    `yaml:"min_occurrences"`
}

// PageIndexConfig configures the related-page index output.
type PageIndexConfig struct {
	Output string `yaml:"output"`
}

// GitHubConfig configures the GitHub REST client.
type GitHubConfig struct {
	Token             string        `yaml:"-"`
	Repository        string        `yaml:"repository"`
	APIURL            string        `yaml:"api_url"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
	Retries           uint          `yaml:"retries"`
}

// ReleasesConfig configures action and language version checks.
type ReleasesConfig struct {
	WorkflowsDir string `yaml:"workflows_dir"`
	VersionsFile string `yaml:"versions_file"`
	// OutputFile receives the new_releases line, usually $GITHUB_OUTPUT.
	OutputFile string `yaml:"-"`
}

// ChangelogConfig configures changelog generation.
type ChangelogConfig struct {
	Output string `yaml:"output"`
}

// DashboardConfig configures the project status page.
type DashboardConfig struct {
	Output       string `yaml:"output"`
	PyProject    string `yaml:"pyproject"`
	TemplatesDir string `yaml:"templates_dir"`
	MetricsFile  string `yaml:"metrics_file"`
}

// CleanupConfig configures static metadata removal.
type CleanupConfig struct {
	StripKeys []string `yaml:"strip_keys"`
}

// CatalogConfig configures the persistent document catalog.
type CatalogConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Cache  bool   `yaml:"cache"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns the defaults for a style-guide repository laid out
// with docs/, .github/ and pyproject.toml at the root.
func DefaultConfig() Config {
	return Config{
		RepoRoot: ".",
		Docs: DocsConfig{
			Dir:     "docs",
			Pattern: "*.md",
		},
		Lint: LintConfig{
			RequiredKeys:        []string{"title", "description", "author", "tags", "category", "status"},
			AllowedStatuses:     []string{"active", "draft", "review", "deprecated", "archived"},
			ModuleTagExtensions: []string{".tf", ".yml", ".yaml", ".sh", ".py", ".ps1", ".groovy", ".json"},
			WatchDebounce:       300 * time.Millisecond,
		},
		Ratio: RatioConfig{
			GuidesDir: "docs/02_language_guides",
			Target:    3.0,
			Exempt:    []string{"comparison_matrix"},
		},
		Glossary: GlossaryConfig{
			File:           "docs/glossary.md",
			MaxReferences:  5,
			MinOccurrences: 3,
		},
		PageIndex: PageIndexConfig{
			Output: "site/page-index.json",
		},
		GitHub: GitHubConfig{
			Repository:        "tydukes/coding-style-guide",
			APIURL:            "https://api.github.com",
			RequestsPerSecond: 5,
			Timeout:           30 * time.Second,
			Retries:           3,
		},
		Releases: ReleasesConfig{
			WorkflowsDir: ".github/workflows",
			VersionsFile: ".github/versions.yml",
		},
		Changelog: ChangelogConfig{
			Output: "docs/changelog.md",
		},
		Dashboard: DashboardConfig{
			Output:       "docs/project_status.md",
			PyProject:    "pyproject.toml",
			TemplatesDir: "docs/04_templates",
		},
		Cleanup: CleanupConfig{
			StripKeys: []string{"date"},
		},
		Catalog: CatalogConfig{
			Driver: "sqlite",
			DSN:    "file:styleguide.db?cache=shared",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.RepoRoot) == "" {
		return ErrRepoRootRequired
	}
	if strings.TrimSpace(cfg.Docs.Dir) == "" {
		return ErrDocsDirRequired
	}
	if cfg.Ratio.Target <= 0 {
		return ErrRatioTargetInvalid
	}
	if len(compact(cfg.Lint.RequiredKeys)) == 0 {
		return ErrRequiredKeysEmpty
	}
	if len(compact(cfg.Lint.AllowedStatuses)) == 0 {
		return ErrAllowedStatusesEmpty
	}
	for _, rule := range cfg.Lint.Disabled {
		if !slices.Contains(LintRules, strings.TrimSpace(rule)) {
			return fmt.Errorf("%w: %s", ErrLintRuleUnknown, rule)
		}
	}
	if cfg.Lint.Workers < 0 {
		return ErrWorkersInvalid
	}
	if repo := strings.TrimSpace(cfg.GitHub.Repository); repo != "" {
		owner, name, ok := strings.Cut(repo, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			return fmt.Errorf("%w: %s", ErrGitHubRepositoryFormat, repo)
		}
	}
	if cfg.GitHub.RequestsPerSecond <= 0 {
		return ErrRateLimitInvalid
	}
	switch normalize(cfg.Catalog.Driver) {
	case "sqlite", "sqlite3", "postgres", "pgx":
	default:
		return fmt.Errorf("%w: %s", ErrCatalogDriverUnknown, cfg.Catalog.Driver)
	}
	if strings.TrimSpace(cfg.Catalog.DSN) == "" {
		return ErrCatalogDSNRequired
	}

	provider := normalize(cfg.Logging.Provider)
	if provider != "" && provider != "console" && provider != "gologger" {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// RuleEnabled reports whether the named lint rule is active.
func (cfg LintConfig) RuleEnabled(rule string) bool {
	for _, disabled := range cfg.Disabled {
		if strings.TrimSpace(disabled) == rule {
			return false
		}
	}
	return true
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
