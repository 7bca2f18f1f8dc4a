package runtimeconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up in the repository root.
const DefaultFile = ".styleguide.yml"

const (
	EnvGitHubToken  = "GITHUB_TOKEN"
	EnvGitHubOutput = "GITHUB_OUTPUT"
	EnvLogLevel     = "STYLEGUIDE_LOG_LEVEL"
	EnvRepoRoot     = "STYLEGUIDE_ROOT"
)

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	// File is an explicit config path. When empty, DefaultFile inside the
	// repository root is used if it exists.
	File string
	// RepoRoot overrides the repository root before the file is resolved.
	RepoRoot string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// SkipDotEnv disables loading .env from the repository root.
	SkipDotEnv bool
}

// Load builds a Config from defaults, the optional YAML file, an optional
// .env file and the process environment, in that order of precedence.
func Load(opts LoadOptions) (Config, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := DefaultConfig()
	if root := firstNonEmpty(opts.RepoRoot, getenv(EnvRepoRoot)); root != "" {
		cfg.RepoRoot = root
	}

	file := opts.File
	explicit := strings.TrimSpace(file) != ""
	if !explicit {
		file = filepath.Join(cfg.RepoRoot, DefaultFile)
	}
	if err := decodeFile(file, &cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	if opts.RepoRoot != "" {
		cfg.RepoRoot = opts.RepoRoot
	}

	if !opts.SkipDotEnv {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(filepath.Join(cfg.RepoRoot, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("styleguide config: load .env: %w", err)
		}
	}

	applyEnv(&cfg, getenv)
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("styleguide config: read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("styleguide config: decode %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if token := strings.TrimSpace(getenv(EnvGitHubToken)); token != "" {
		cfg.GitHub.Token = token
	}
	if output := strings.TrimSpace(getenv(EnvGitHubOutput)); output != "" {
		cfg.Releases.OutputFile = output
	}
	if level := strings.TrimSpace(getenv(EnvLogLevel)); level != "" {
		cfg.Logging.Level = level
	}
}

// Path resolves a configured path against the repository root.
func (cfg Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.RepoRoot, p)
}

// DocsPath returns the absolute or root-relative docs directory.
func (cfg Config) DocsPath() string {
	return cfg.Path(cfg.Docs.Dir)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
