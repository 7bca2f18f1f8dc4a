package releases

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrWorkflowsMissing    = errors.New("releases: no .github/workflows directory found")
	ErrVersionsFileMissing = errors.New("releases: versions.yml not found")
)

var usesPattern = regexp.MustCompile(`uses:\s+([^@\s]+)@([^\s]+)`)

// ActionUsage is one `uses: owner/repo@version` reference in a workflow.
type ActionUsage struct {
	Action  string `json:"action"`
	Version string `json:"version"`
	File    string `json:"file"`
	Line    int    `json:"line"`
}

// ScanWorkflow extracts remote action references from a workflow file.
// Local (./path) and docker:// actions are skipped.
func ScanWorkflow(file string, source []byte) []ActionUsage {
	var usages []ActionUsage
	for i, line := range bytes.Split(source, []byte("\n")) {
		m := usesPattern.FindSubmatch(line)
		if m == nil {
			continue
		}
		action := string(m[1])
		if !strings.Contains(action, "/") || strings.HasPrefix(action, "docker://") || strings.HasPrefix(action, "./") {
			continue
		}
		usages = append(usages, ActionUsage{Action: action, Version: string(m[2]), File: file, Line: i + 1})
	}
	return usages
}

// ScanWorkflows collects action usages from every *.yml and *.yaml file in
// dir, grouped by action repository.
func ScanWorkflows(fsys fs.FS, dir string) (map[string][]ActionUsage, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowsMissing, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("releases: read %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if ext := path.Ext(e.Name()); !e.IsDir() && (ext == ".yml" || ext == ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	grouped := make(map[string][]ActionUsage)
	for _, name := range names {
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("releases: read %s: %w", name, err)
		}
		for _, u := range ScanWorkflow(name, data) {
			grouped[u.Action] = append(grouped[u.Action], u)
		}
	}
	return grouped, nil
}

// ActionRepo maps a versions.yml key to its GitHub repository.
type ActionRepo struct {
	Name string
	Repo string
}

// KnownActions lists the versions.yml entries that are validated, in order.
var KnownActions = []ActionRepo{
	{Name: "checkout", Repo: "actions/checkout"},
	{Name: "setup-python", Repo: "actions/setup-python"},
	{Name: "setup-node", Repo: "actions/setup-node"},
	{Name: "cache", Repo: "actions/cache"},
	{Name: "upload-artifact", Repo: "actions/upload-artifact"},
	{Name: "github-script", Repo: "actions/github-script"},
	{Name: "astral-sh-setup-uv", Repo: "astral-sh/setup-uv"},
	{Name: "docker-setup-buildx", Repo: "docker/setup-buildx-action"},
	{Name: "docker-login", Repo: "docker/login-action"},
	{Name: "docker-metadata", Repo: "docker/metadata-action"},
	{Name: "docker-build-push", Repo: "docker/build-push-action"},
	{Name: "anchore-sbom", Repo: "anchore/sbom-action"},
	{Name: "markdown-link-check", Repo: "gaurav-nelson/github-action-markdown-link-check"},
}

// VersionsFile is the centralised .github/versions.yml catalogue.
type VersionsFile struct {
	Actions map[string]string `yaml:"actions"`
	Other   map[string]any    `yaml:",inline"`
}

// LoadVersionsFile reads and decodes the versions catalogue.
func LoadVersionsFile(fsys fs.FS, name string) (*VersionsFile, error) {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s", ErrVersionsFileMissing, name)
	}
	if err != nil {
		return nil, fmt.Errorf("releases: read %s: %w", name, err)
	}
	var vf VersionsFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("releases: parse %s: %w", name, err)
	}
	if vf.Actions == nil {
		vf.Actions = map[string]string{}
	}
	return &vf, nil
}
