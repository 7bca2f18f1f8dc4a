package styleguide

import "github.com/goliatone/go-styleguide/internal/runtimeconfig"

var (
	ErrRepoRootRequired       = runtimeconfig.ErrRepoRootRequired
	ErrDocsDirRequired        = runtimeconfig.ErrDocsDirRequired
	ErrRatioTargetInvalid     = runtimeconfig.ErrRatioTargetInvalid
	ErrRequiredKeysEmpty      = runtimeconfig.ErrRequiredKeysEmpty
	ErrAllowedStatusesEmpty   = runtimeconfig.ErrAllowedStatusesEmpty
	ErrLintRuleUnknown        = runtimeconfig.ErrLintRuleUnknown
	ErrWorkersInvalid         = runtimeconfig.ErrWorkersInvalid
	ErrGitHubRepositoryFormat = runtimeconfig.ErrGitHubRepositoryFormat
	ErrRateLimitInvalid       = runtimeconfig.ErrRateLimitInvalid
	ErrCatalogDriverUnknown   = runtimeconfig.ErrCatalogDriverUnknown
	ErrCatalogDSNRequired     = runtimeconfig.ErrCatalogDSNRequired
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	LoadOptions          = runtimeconfig.LoadOptions
	DocsConfig           = runtimeconfig.DocsConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	LintConfig           = runtimeconfig.LintConfig
	RatioConfig          = runtimeconfig.RatioConfig
	GlossaryConfig       = runtimeconfig.GlossaryConfig
	PageIndexConfig      = runtimeconfig.PageIndexConfig
	GitHubConfig         = runtimeconfig.GitHubConfig
	ReleasesConfig       = runtimeconfig.ReleasesConfig
	ChangelogConfig      = runtimeconfig.ChangelogConfig
	DashboardConfig      = runtimeconfig.DashboardConfig
	CleanupConfig        = runtimeconfig.CleanupConfig
	CatalogConfig        = runtimeconfig.CatalogConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads .styleguide.yml, .env and the environment over the defaults.
func LoadConfig(opts LoadOptions) (Config, error) {
	return runtimeconfig.Load(opts)
}
