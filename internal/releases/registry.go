package releases

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

// Registries holds the base URLs of the package and lifecycle registries.
type Registries struct {
	EndOfLife string
	NPM       string
	PyPI      string
}

// DefaultRegistries are the public registry endpoints.
var DefaultRegistries = Registries{
	EndOfLife: "https://endoflife.date",
	NPM:       "https://registry.npmjs.org",
	PyPI:      "https://pypi.org",
}

// Latest describes the newest upstream version of a language or tool.
type Latest struct {
	Version       string `json:"version"`
	EOLDate       any    `json:"eol_date,omitempty"`
	SupportStatus any    `json:"support_status,omitempty"`
	LatestRelease string `json:"latest_release,omitempty"`
	ReleaseDate   any    `json:"release_date,omitempty"`
	URL           string `json:"url,omitempty"`
}

// RegistryClient queries endoflife.date, npm and PyPI.
type RegistryClient struct {
	fetch *fetcher
	urls  Registries
}

// NewRegistryClient constructs a client. Empty URLs fall back to
// DefaultRegistries.
func NewRegistryClient(urls Registries, opts ClientOptions, logger interfaces.Logger) *RegistryClient {
	if urls.EndOfLife == "" {
		urls.EndOfLife = DefaultRegistries.EndOfLife
	}
	if urls.NPM == "" {
		urls.NPM = DefaultRegistries.NPM
	}
	if urls.PyPI == "" {
		urls.PyPI = DefaultRegistries.PyPI
	}
	return &RegistryClient{fetch: newFetcher(opts, logger), urls: urls}
}

func (r *RegistryClient) getJSON(ctx context.Context, u string, out any) error {
	status, err := r.fetch.getJSON(ctx, u, nil, out)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &StatusError{URL: u, Status: status}
	}
	return nil
}

type eolCycle struct {
	Cycle       any    `json:"cycle"`
	Latest      string `json:"latest"`
	EOL         any    `json:"eol"`
	Support     any    `json:"support"`
	ReleaseDate string `json:"releaseDate"`
}

// EndOfLife returns the newest release cycle of product. It returns nil when
// the product lists no cycles.
func (r *RegistryClient) EndOfLife(ctx context.Context, product string) (*Latest, error) {
	var cycles []eolCycle
	u := strings.TrimRight(r.urls.EndOfLife, "/") + "/api/" + url.PathEscape(product) + ".json"
	if err := r.getJSON(ctx, u, &cycles); err != nil {
		return nil, err
	}
	if len(cycles) == 0 {
		return nil, nil
	}
	newest := cycles[0]
	version := newest.Latest
	if newest.Cycle != nil {
		version = fmt.Sprint(newest.Cycle)
	}
	if version == "" {
		version = "unknown"
	}
	support := newest.Support
	if support == nil {
		support = "unknown"
	}
	return &Latest{
		Version:       version,
		EOLDate:       newest.EOL,
		SupportStatus: support,
		LatestRelease: newest.Latest,
		ReleaseDate:   emptyToNil(newest.ReleaseDate),
	}, nil
}

// NPM returns the latest published version of an npm package.
func (r *RegistryClient) NPM(ctx context.Context, pkg string) (*Latest, error) {
	var body struct {
		Version string            `json:"version"`
		Time    map[string]string `json:"time"`
	}
	u := strings.TrimRight(r.urls.NPM, "/") + "/" + pkg + "/latest"
	if err := r.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	return &Latest{Version: body.Version, ReleaseDate: emptyToNil(body.Time[body.Version])}, nil
}

// PyPI returns the latest version of a Python package.
func (r *RegistryClient) PyPI(ctx context.Context, pkg string) (*Latest, error) {
	var body struct {
		Info struct {
			Version string `json:"version"`
		} `json:"info"`
	}
	u := strings.TrimRight(r.urls.PyPI, "/") + "/pypi/" + url.PathEscape(pkg) + "/json"
	if err := r.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	return &Latest{Version: body.Info.Version}, nil
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
