package releases

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type upstream struct {
	server   *httptest.Server
	failures atomic.Int32
	authSeen atomic.Value
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/actions/checkout/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		u.authSeen.Store(r.Header.Get("Authorization"))
		writeJSON(w, map[string]any{"tag_name": "v4.2.0"})
	})
	mux.HandleFunc("/repos/actions/cache/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"tag_name": "v3.0.0"})
	})
	mux.HandleFunc("/repos/owner/tagged/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/repos/owner/tagged/tags", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]string{{"name": "v2"}, {"name": "v1"}})
	})
	mux.HandleFunc("/repos/owner/broken/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		u.failures.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/repos/bminor/bash/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"tag_name": "v5.3", "published_at": "2025-07-01T00:00:00Z", "html_url": "https://example.test/bash"})
	})
	mux.HandleFunc("/api/python.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{"cycle": "3.13", "latest": "3.13.1", "eol": "2029-10-31", "support": "2026-10-01", "releaseDate": "2024-10-07"}})
	})
	mux.HandleFunc("/typescript/latest", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"version": "5.7.2", "time": map[string]string{}})
	})
	mux.HandleFunc("/pypi/ansible/json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"info": map[string]any{"version": "11.1.0"}})
	})
	u.server = httptest.NewServer(mux)
	t.Cleanup(u.server.Close)
	return u
}

func testOptions() ClientOptions {
	return ClientOptions{RequestsPerSecond: 1000, Retries: 2, RetryDelay: time.Millisecond}
}

func TestLatestTag(t *testing.T) {
	up := newUpstream(t)
	client := NewGitHubClient("secret", up.server.URL, testOptions(), nil)
	ctx := context.Background()

	tag, err := client.LatestTag(ctx, "actions/checkout")
	if err != nil || tag != "v4.2.0" {
		t.Fatalf("LatestTag = %q, %v", tag, err)
	}
	if got := up.authSeen.Load(); got != "token secret" {
		t.Fatalf("expected token auth header, got %v", got)
	}

	tag, err = client.LatestTag(ctx, "owner/tagged")
	if err != nil || tag != "v2" {
		t.Fatalf("expected tag fallback v2, got %q, %v", tag, err)
	}

	tag, err = client.LatestTag(ctx, "owner/broken")
	if err != nil || tag != "" {
		t.Fatalf("expected empty tag for server errors, got %q, %v", tag, err)
	}
	if n := up.failures.Load(); n != 2 {
		t.Fatalf("expected 2 attempts against failing upstream, got %d", n)
	}

	if _, err := client.LatestRelease(ctx, "owner/tagged"); err == nil {
		t.Fatal("expected LatestRelease to fail on 404")
	}
}

func TestVersionHelpers(t *testing.T) {
	outdated := []struct {
		current, latest string
		want            bool
	}{
		{"v3", "v4.1.0", true},
		{"v4", "v4.1.0", false},
		{"v5", "v4", false},
		{"main", "v4", true},
		{"v4", "", false},
		{"release/v1", "release/v1", false},
	}
	for _, tc := range outdated {
		if got := IsOutdated(tc.current, tc.latest); got != tc.want {
			t.Errorf("IsOutdated(%q, %q) = %v, want %v", tc.current, tc.latest, got, tc.want)
		}
	}

	for in, want := range map[string]string{"v1.2.3-rc1": "1.2.3", "5": "5.0", "3.13.1.4": "3.13.1", "2.0+build": "2.0"} {
		if got := NormalizeRelease(in); got != want {
			t.Errorf("NormalizeRelease(%q) = %q, want %q", in, got, want)
		}
	}

	if c, err := CompareReleases("3.13", "3.9"); err != nil || c != 1 {
		t.Fatalf("CompareReleases(3.13, 3.9) = %d, %v", c, err)
	}
	if _, err := CompareReleases("RFC 8259", "1.0"); !errors.Is(err, ErrInvalidVersion) {
		t.Fatalf("expected ErrInvalidVersion, got %v", err)
	}

	source := []byte("Supports python 3.9 and Python 3.12.1, tested on PYTHON 3.11+.")
	got, err := DocumentedVersion(source, `Python\s+(\d+\.\d+)(?:\.\d+)?(?:\+)?`)
	if err != nil || got != "3.12" {
		t.Fatalf("DocumentedVersion = %q, %v", got, err)
	}
	if got, _ := DocumentedVersion([]byte("JSON is great"), `JSON\s+`); got != "0.0.0" {
		t.Fatalf("expected 0.0.0 without a version, got %q", got)
	}
}

func TestScanWorkflows(t *testing.T) {
	fsys := fstest.MapFS{
		".github/workflows/ci.yml": {Data: []byte(strings.Join([]string{
			"jobs:",
			"  build:",
			"    steps:",
			"      - uses: actions/checkout@v3",
			"      - uses: ./local-action@v1",
			"      - uses: docker://alpine@3",
			"      - uses: actions/cache@v3 # pinned",
		}, "\n"))},
		".github/workflows/deploy.yaml": {Data: []byte("steps:\n  - uses: actions/checkout@v4\n")},
		".github/workflows/notes.md":    {Data: []byte("uses: actions/checkout@v1")},
	}

	got, err := ScanWorkflows(fsys, ".github/workflows")
	if err != nil {
		t.Fatalf("ScanWorkflows: %v", err)
	}
	want := map[string][]ActionUsage{
		"actions/checkout": {
			{Action: "actions/checkout", Version: "v3", File: "ci.yml", Line: 4},
			{Action: "actions/checkout", Version: "v4", File: "deploy.yaml", Line: 2},
		},
		"actions/cache": {{Action: "actions/cache", Version: "v3", File: "ci.yml", Line: 7}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("usages mismatch (-want +got):\n%s", diff)
	}

	if _, err := ScanWorkflows(fsys, "missing"); !errors.Is(err, ErrWorkflowsMissing) {
		t.Fatalf("expected ErrWorkflowsMissing, got %v", err)
	}
}

func TestCheckActions(t *testing.T) {
	up := newUpstream(t)
	checker := NewChecker(NewGitHubClient("secret", up.server.URL, testOptions(), nil), nil, nil)

	report, err := checker.CheckActions(context.Background(), map[string][]ActionUsage{
		"actions/checkout": {
			{Action: "actions/checkout", Version: "v3", File: "ci.yml", Line: 4},
			{Action: "actions/checkout", Version: "v4", File: "deploy.yml", Line: 2},
		},
		"owner/broken": {{Action: "owner/broken", Version: "v1", File: "ci.yml", Line: 9}},
	})
	if err != nil {
		t.Fatalf("CheckActions: %v", err)
	}
	if !report.Failed() || len(report.Outdated()) != 1 {
		t.Fatalf("expected one outdated usage, got %+v", report.Results)
	}

	var buf bytes.Buffer
	if err := report.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "Checking GitHub Actions versions...\n\n" +
		"❌ actions/checkout@v3 -> v4.2.0 (ci.yml:4)\n" +
		"✅ actions/checkout@v4 is up to date (deploy.yml:2)\n" +
		"⚠️  Could not determine latest version for owner/broken\n" +
		"\n::error::Outdated GitHub Actions detected!\n\nThe following actions are outdated:\n\n" +
		"  - actions/checkout: v3 -> v4.2.0 (ci.yml:4)\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	anonymous := NewChecker(NewGitHubClient("", up.server.URL, testOptions(), nil), nil, nil)
	if _, err := anonymous.CheckActions(context.Background(), nil); !errors.Is(err, ErrTokenRequired) {
		t.Fatalf("expected ErrTokenRequired, got %v", err)
	}
}

func TestValidateVersions(t *testing.T) {
	up := newUpstream(t)
	fsys := fstest.MapFS{".github/versions.yml": {Data: []byte("actions:\n  checkout: v4\n  cache: v2\npython: \"3.12\"\n")}}

	vf, err := LoadVersionsFile(fsys, ".github/versions.yml")
	if err != nil {
		t.Fatalf("LoadVersionsFile: %v", err)
	}
	if vf.Other["python"] != "3.12" {
		t.Fatalf("expected extra keys to be preserved, got %+v", vf.Other)
	}

	checker := NewChecker(NewGitHubClient("secret", up.server.URL, testOptions(), nil), nil, nil)
	report, err := checker.ValidateVersions(context.Background(), vf)
	if err != nil {
		t.Fatalf("ValidateVersions: %v", err)
	}
	if len(report.Results) != len(KnownActions) {
		t.Fatalf("expected a result per known action, got %d", len(report.Results))
	}
	outdated := report.Outdated()
	if len(outdated) != 1 || outdated[0].Name != "cache" || outdated[0].Latest != "v3.0.0" {
		t.Fatalf("unexpected outdated entries %+v", outdated)
	}

	var buf bytes.Buffer
	_ = report.Write(&buf)
	for _, want := range []string{
		"✅ checkout: v4 is up to date\n",
		"❌ cache: v2 -> v3.0.0 is outdated\n",
		"⚠️  setup-node not found in versions.yml\n",
		"  - cache: v2 -> v3.0.0\n",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, buf.String())
		}
	}

	if _, err := LoadVersionsFile(fsys, "missing.yml"); !errors.Is(err, ErrVersionsFileMissing) {
		t.Fatalf("expected ErrVersionsFileMissing, got %v", err)
	}
}

func TestCheckLanguages(t *testing.T) {
	up := newUpstream(t)
	opts := testOptions()
	checker := NewChecker(
		NewGitHubClient("", up.server.URL, opts, nil),
		NewRegistryClient(Registries{EndOfLife: up.server.URL, NPM: up.server.URL, PyPI: up.server.URL}, opts, nil),
		nil,
	)

	languages := []Language{
		{Name: "python", Source: SourceEndOfLife, Product: "python", GuidePath: "guides/python.md", VersionPattern: `Python\s+(\d+\.\d+)`},
		{Name: "typescript", Source: SourceNPM, Package: "typescript", GuidePath: "guides/typescript.md", VersionPattern: `TypeScript\s+(\d+\.\d+)`},
		{Name: "ansible", Source: SourcePyPI, Package: "ansible", GuidePath: "guides/ansible.md", VersionPattern: `Ansible\s+(\d+\.\d+)`},
		{Name: "bash", Source: SourceGitHub, Repo: "bminor/bash", GuidePath: "guides/bash.md", VersionPattern: `Bash\s+(\d+\.\d+)`},
		{Name: "json", Source: SourceStatic, Current: "RFC 8259", GuidePath: "guides/json.md", VersionPattern: `JSON\s+`},
		{Name: "groovy", Source: SourceGitHub, Repo: "apache/groovy", GuidePath: "guides/groovy.md", VersionPattern: `Groovy\s+(\d+\.\d+)`},
	}
	fsys := fstest.MapFS{
		"guides/python.md":     {Data: []byte("Targets Python 3.12 and Python 3.11.")},
		"guides/typescript.md": {Data: []byte("TypeScript 5.8 features.")},
		"guides/ansible.md":    {Data: []byte("Ansible 10.0 collections.")},
		"guides/bash.md":       {Data: []byte("Bash 5.2 features.")},
		"guides/json.md":       {Data: []byte("JSON documents.")},
	}

	report, err := checker.CheckLanguages(context.Background(), fsys, languages)
	if err != nil {
		t.Fatalf("CheckLanguages: %v", err)
	}

	statuses := map[string]LanguageStatus{}
	for _, res := range report.Results {
		statuses[res.Language] = res.Status
	}
	wantStatuses := map[string]LanguageStatus{
		"python":     LanguageNewRelease,
		"typescript": LanguageUpToDate,
		"ansible":    LanguageNewRelease,
		"bash":       LanguageNewRelease,
		"json":       LanguageIncomparable,
		"groovy":     LanguageUnavailable,
	}
	if diff := cmp.Diff(wantStatuses, statuses); diff != "" {
		t.Fatalf("status mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, rel := range report.NewReleases {
		names = append(names, rel.Language)
	}
	if diff := cmp.Diff([]string{"python", "ansible", "bash"}, names); diff != "" {
		t.Fatalf("new release order mismatch (-want +got):\n%s", diff)
	}
	if report.NewReleases[0].EOLDate != "2029-10-31" || report.NewReleases[2].URL != "https://example.test/bash" {
		t.Fatalf("unexpected release details %+v", report.NewReleases)
	}

	output := filepath.Join(t.TempDir(), "github_output")
	if err := os.WriteFile(output, []byte("existing=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := report.AppendGitHubOutput(output); err != nil {
		t.Fatalf("AppendGitHubOutput: %v", err)
	}
	data, _ := os.ReadFile(output)
	if !strings.HasPrefix(string(data), "existing=1\nnew_releases=[{\"language\":\"python\"") {
		t.Fatalf("unexpected GITHUB_OUTPUT content:\n%s", data)
	}

	var buf bytes.Buffer
	_ = report.Write(&buf)
	if !strings.Contains(buf.String(), "  → New version available: 3.12 → 3.13\n") ||
		!strings.Contains(buf.String(), "Found 3 language(s) with new releases\n") {
		t.Fatalf("unexpected language output:\n%s", buf.String())
	}
}

func TestListReleasesAndRepository(t *testing.T) {
	var (
		mu    sync.Mutex
		pages []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/o/r/releases", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		pages = append(pages, r.URL.Query().Get("page"))
		mu.Unlock()
		if r.URL.Query().Get("per_page") != "100" {
			t.Errorf("unexpected per_page %q", r.URL.Query().Get("per_page"))
		}
		if r.URL.Query().Get("page") == "1" {
			batch := make([]Release, releasesPerPage)
			for i := range batch {
				batch[i] = Release{TagName: "v0.0." + strconv.Itoa(i)}
			}
			writeJSON(w, batch)
			return
		}
		writeJSON(w, []Release{{TagName: "v0.0.0-alpha", Draft: true}})
	})
	mux.HandleFunc("/repos/o/r", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"full_name": "o/r", "open_issues_count": 7})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewGitHubClient("secret", server.URL, testOptions(), nil)
	list, err := client.ListReleases(context.Background(), "o/r")
	if err != nil {
		t.Fatalf("ListReleases: %v", err)
	}
	if len(list) != releasesPerPage+1 || !list[releasesPerPage].Draft {
		t.Fatalf("expected %d releases across pages, got %d", releasesPerPage+1, len(list))
	}
	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]string{"1", "2"}, pages); diff != "" {
		t.Fatalf("pages mismatch (-want +got):\n%s", diff)
	}

	info, err := client.Repository(context.Background(), "o/r")
	if err != nil || info.OpenIssues != 7 {
		t.Fatalf("Repository = %+v, %v", info, err)
	}
}
