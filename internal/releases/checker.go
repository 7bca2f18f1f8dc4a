package releases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

const languageWorkers = 4

// Checker compares pinned and documented versions against upstream.
type Checker struct {
	github     *GitHubClient
	registries *RegistryClient
	logger     interfaces.Logger
}

// NewChecker constructs a Checker.
func NewChecker(github *GitHubClient, registries *RegistryClient, logger interfaces.Logger) *Checker {
	return &Checker{github: github, registries: registries, logger: logging.Ensure(logger)}
}

// ActionResult is the outcome for one action usage.
type ActionResult struct {
	ActionUsage
	Latest   string `json:"latest,omitempty"`
	Outdated bool   `json:"outdated"`
	// Unknown is set when the latest version could not be determined.
	Unknown bool `json:"unknown"`
}

// ActionsReport collects action results ordered by action and usage.
type ActionsReport struct {
	Results []ActionResult `json:"results"`
}

// Outdated returns the results that lag their latest release.
func (r *ActionsReport) Outdated() []ActionResult {
	var out []ActionResult
	for _, res := range r.Results {
		if res.Outdated {
			out = append(out, res)
		}
	}
	return out
}

// Failed reports whether any action is outdated.
func (r *ActionsReport) Failed() bool { return len(r.Outdated()) > 0 }

// CheckActions resolves the latest release of every used action.
func (c *Checker) CheckActions(ctx context.Context, usages map[string][]ActionUsage) (*ActionsReport, error) {
	if err := c.github.RequireToken(); err != nil {
		return nil, err
	}
	actions := make([]string, 0, len(usages))
	for action := range usages {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	report := &ActionsReport{}
	for _, action := range actions {
		latest, err := c.github.LatestTag(ctx, action)
		if err != nil {
			return nil, err
		}
		if latest == "" {
			report.Results = append(report.Results, ActionResult{ActionUsage: ActionUsage{Action: action}, Unknown: true})
			continue
		}
		for _, u := range usages[action] {
			res := ActionResult{ActionUsage: u, Latest: latest, Outdated: IsOutdated(u.Version, latest)}
			report.Results = append(report.Results, res)
		}
	}
	c.logger.Info("releases.actions_checked", "actions", len(actions), "outdated", len(report.Outdated()))
	return report, nil
}

// Write renders the per-usage status lines and the summary.
func (r *ActionsReport) Write(w io.Writer) error {
	var b strings.Builder
	b.WriteString("Checking GitHub Actions versions...\n\n")
	for _, res := range r.Results {
		switch {
		case res.Unknown:
			fmt.Fprintf(&b, "⚠️  Could not determine latest version for %s\n", res.Action)
		case res.Outdated:
			fmt.Fprintf(&b, "❌ %s@%s -> %s (%s:%d)\n", res.Action, res.Version, res.Latest, res.File, res.Line)
		default:
			fmt.Fprintf(&b, "✅ %s@%s is up to date (%s:%d)\n", res.Action, res.Version, res.File, res.Line)
		}
	}
	b.WriteString("\n")
	if outdated := r.Outdated(); len(outdated) > 0 {
		b.WriteString("::error::Outdated GitHub Actions detected!\n\nThe following actions are outdated:\n\n")
		for _, res := range outdated {
			fmt.Fprintf(&b, "  - %s: %s -> %s (%s:%d)\n", res.Action, res.Version, res.Latest, res.File, res.Line)
		}
	} else {
		b.WriteString("✅ All GitHub Actions are up to date!\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// VersionResult is the outcome for one versions.yml entry.
type VersionResult struct {
	Name     string `json:"name"`
	Repo     string `json:"repo"`
	Current  string `json:"current,omitempty"`
	Latest   string `json:"latest,omitempty"`
	Outdated bool   `json:"outdated"`
	Missing  bool   `json:"missing"`
	Unknown  bool   `json:"unknown"`
}

// VersionsReport collects versions.yml results in KnownActions order.
type VersionsReport struct {
	Results []VersionResult `json:"results"`
}

// Outdated returns the entries behind their latest release.
func (r *VersionsReport) Outdated() []VersionResult {
	var out []VersionResult
	for _, res := range r.Results {
		if res.Outdated {
			out = append(out, res)
		}
	}
	return out
}

// Failed reports whether any entry is outdated.
func (r *VersionsReport) Failed() bool { return len(r.Outdated()) > 0 }

// ValidateVersions checks each known action of the versions catalogue.
func (c *Checker) ValidateVersions(ctx context.Context, vf *VersionsFile) (*VersionsReport, error) {
	if err := c.github.RequireToken(); err != nil {
		return nil, err
	}
	report := &VersionsReport{}
	for _, known := range KnownActions {
		res := VersionResult{Name: known.Name, Repo: known.Repo, Current: vf.Actions[known.Name]}
		if res.Current == "" {
			res.Missing = true
			report.Results = append(report.Results, res)
			continue
		}
		latest, err := c.github.LatestTag(ctx, known.Repo)
		if err != nil {
			return nil, err
		}
		if latest == "" {
			res.Unknown = true
		} else {
			res.Latest = latest
			res.Outdated = IsOutdated(res.Current, latest)
		}
		report.Results = append(report.Results, res)
	}
	c.logger.Info("releases.versions_validated", "entries", len(report.Results), "outdated", len(report.Outdated()))
	return report, nil
}

// Write renders the per-entry status lines and the summary.
func (r *VersionsReport) Write(w io.Writer) error {
	var b strings.Builder
	b.WriteString("Validating versions.yml against latest releases...\n\n")
	for _, res := range r.Results {
		switch {
		case res.Missing:
			fmt.Fprintf(&b, "⚠️  %s not found in versions.yml\n", res.Name)
		case res.Unknown:
			fmt.Fprintf(&b, "⚠️  Could not determine latest version for %s\n", res.Name)
		case res.Outdated:
			fmt.Fprintf(&b, "❌ %s: %s -> %s is outdated\n", res.Name, res.Current, res.Latest)
		default:
			fmt.Fprintf(&b, "✅ %s: %s is up to date\n", res.Name, res.Current)
		}
	}
	b.WriteString("\n")
	if outdated := r.Outdated(); len(outdated) > 0 {
		b.WriteString("::error::Outdated versions detected in versions.yml!\n\nThe following versions are outdated:\n\n")
		for _, res := range outdated {
			fmt.Fprintf(&b, "  - %s: %s -> %s\n", res.Name, res.Current, res.Latest)
		}
	} else {
		b.WriteString("✅ All versions in versions.yml are up to date!\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// LanguageStatus classifies a language check.
type LanguageStatus string

const (
	LanguageNewRelease   LanguageStatus = "new"
	LanguageUpToDate     LanguageStatus = "current"
	LanguageUnavailable  LanguageStatus = "unavailable"
	LanguageIncomparable LanguageStatus = "incomparable"
)

// NewRelease is the payload published to $GITHUB_OUTPUT.
type NewRelease struct {
	Language       string `json:"language"`
	CurrentVersion string `json:"current_version"`
	LatestVersion  string `json:"latest_version"`
	EOLDate        any    `json:"eol_date"`
	ReleaseDate    any    `json:"release_date"`
	GuidePath      string `json:"guide_path"`
	URL            string `json:"url"`
}

// LanguageResult is the outcome for one language.
type LanguageResult struct {
	Language string         `json:"language"`
	Status   LanguageStatus `json:"status"`
	Current  string         `json:"current,omitempty"`
	Latest   string         `json:"latest,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// LanguageReport collects language results in table order.
type LanguageReport struct {
	Results     []LanguageResult `json:"results"`
	NewReleases []NewRelease     `json:"new_releases"`
}

// Failed reports whether any language has a new release.
func (r *LanguageReport) Failed() bool { return len(r.NewReleases) > 0 }

// CheckLanguages looks up the newest release of each language and compares
// it with the highest version documented in its guide. Guides are read
// from fsys, rooted at the repository.
func (c *Checker) CheckLanguages(ctx context.Context, fsys fs.FS, languages []Language) (*LanguageReport, error) {
	results := make([]LanguageResult, len(languages))
	releases := make([]*NewRelease, len(languages))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(languageWorkers)
	for i, lang := range languages {
		group.Go(func() error {
			res, rel, err := c.checkLanguage(gctx, fsys, lang)
			if err != nil {
				return err
			}
			results[i], releases[i] = res, rel
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	report := &LanguageReport{Results: results, NewReleases: []NewRelease{}}
	for _, rel := range releases {
		if rel != nil {
			report.NewReleases = append(report.NewReleases, *rel)
		}
	}
	c.logger.Info("releases.languages_checked", "languages", len(languages), "new_releases", len(report.NewReleases))
	return report, nil
}

func (c *Checker) latest(ctx context.Context, lang Language) (*Latest, error) {
	switch lang.Source {
	case SourceEndOfLife:
		return c.registries.EndOfLife(ctx, lang.Product)
	case SourceNPM:
		return c.registries.NPM(ctx, lang.Package)
	case SourcePyPI:
		return c.registries.PyPI(ctx, lang.Package)
	case SourceGitHub:
		rel, err := c.github.LatestRelease(ctx, lang.Repo)
		if err != nil {
			return nil, err
		}
		return &Latest{
			Version:     strings.TrimLeft(rel.TagName, "v"),
			ReleaseDate: emptyToNil(rel.PublishedAt),
			URL:         rel.HTMLURL,
		}, nil
	case SourceStatic:
		current := lang.Current
		if current == "" {
			current = "latest"
		}
		return &Latest{Version: current}, nil
	}
	return nil, fmt.Errorf("releases: unknown source %q for %s", lang.Source, lang.Name)
}

func (c *Checker) checkLanguage(ctx context.Context, fsys fs.FS, lang Language) (LanguageResult, *NewRelease, error) {
	res := LanguageResult{Language: lang.Name}
	logger := logging.WithFields(c.logger, map[string]any{"language": lang.Name})

	latest, err := c.latest(ctx, lang)
	if err != nil && ctx.Err() != nil {
		return res, nil, ctx.Err()
	}
	if err != nil || latest == nil {
		res.Status = LanguageUnavailable
		if err != nil {
			res.Error = err.Error()
		}
		logger.Warn("releases.language_unavailable", "error", err)
		return res, nil, nil
	}
	res.Latest = latest.Version

	res.Current = "0.0.0"
	source, err := fs.ReadFile(fsys, lang.GuidePath)
	switch {
	case err == nil:
		pattern := lang.VersionPattern
		if pattern == "" {
			pattern = `(\d+\.\d+)`
		}
		if res.Current, err = DocumentedVersion(source, pattern); err != nil {
			return res, nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("releases.guide_missing", "path", lang.GuidePath)
	default:
		return res, nil, fmt.Errorf("releases: read %s: %w", lang.GuidePath, err)
	}

	cmp, err := CompareReleases(latest.Version, res.Current)
	if err != nil {
		res.Status = LanguageIncomparable
		res.Error = err.Error()
		logger.Debug("releases.language_incomparable", "latest", latest.Version, "current", res.Current)
		return res, nil, nil
	}
	if cmp <= 0 {
		res.Status = LanguageUpToDate
		return res, nil, nil
	}

	res.Status = LanguageNewRelease
	return res, &NewRelease{
		Language:       lang.Name,
		CurrentVersion: res.Current,
		LatestVersion:  latest.Version,
		EOLDate:        latest.EOLDate,
		ReleaseDate:    latest.ReleaseDate,
		GuidePath:      lang.GuidePath,
		URL:            latest.URL,
	}, nil
}

// Write renders the per-language progress and summary.
func (r *LanguageReport) Write(w io.Writer) error {
	var b strings.Builder
	for _, res := range r.Results {
		fmt.Fprintf(&b, "Checking %s...\n", res.Language)
		switch res.Status {
		case LanguageUnavailable:
			fmt.Fprintf(&b, "Could not fetch info for %s\n", res.Language)
		case LanguageIncomparable:
			fmt.Fprintf(&b, "Error comparing versions for %s: %s\n", res.Language, res.Error)
		case LanguageNewRelease:
			fmt.Fprintf(&b, "  → New version available: %s → %s\n", res.Current, res.Latest)
		default:
			fmt.Fprintf(&b, "  ✓ Up to date: %s\n", res.Current)
		}
	}
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "\n%s\nFound %d language(s) with new releases\n%s\n", rule, len(r.NewReleases), rule)
	_, err := io.WriteString(w, b.String())
	return err
}

// AppendGitHubOutput appends new_releases=<json> to the GitHub Actions
// output file. An empty path is a no-op.
func (r *LanguageReport) AppendGitHubOutput(path string) error {
	if path == "" {
		return nil
	}
	payload, err := json.Marshal(r.NewReleases)
	if err != nil {
		return fmt.Errorf("releases: encode new releases: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("releases: open %s: %w", path, err)
	}
	if _, err := fmt.Fprintf(f, "new_releases=%s\n", payload); err != nil {
		_ = f.Close()
		return fmt.Errorf("releases: append %s: %w", path, err)
	}
	return f.Close()
}
