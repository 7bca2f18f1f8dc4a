package releases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

const releasesPerPage = 100

var ErrTokenRequired = errors.New("releases: GITHUB_TOKEN environment variable not set")

// Release is the subset of a GitHub release used by the tooling.
type Release struct {
	TagName     string `json:"tag_name"`
	Name        string `json:"name"`
	Body        string `json:"body"`
	HTMLURL     string `json:"html_url"`
	PublishedAt string `json:"published_at"`
	Draft       bool   `json:"draft"`
	Prerelease  bool   `json:"prerelease"`
}

// Repository is the subset of repository metadata used by the dashboard.
type Repository struct {
	FullName   string `json:"full_name"`
	OpenIssues int    `json:"open_issues_count"`
	Stars      int    `json:"stargazers_count"`
}

type tag struct {
	Name string `json:"name"`
}

// GitHubClient reads releases and tags from the GitHub REST API.
type GitHubClient struct {
	fetch  *fetcher
	base   string
	token  string
	logger interfaces.Logger
}

// NewGitHubClient constructs a client. An empty apiURL uses DefaultAPIURL.
func NewGitHubClient(token, apiURL string, opts ClientOptions, logger interfaces.Logger) *GitHubClient {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = DefaultAPIURL
	}
	logger = logging.Ensure(logger)
	return &GitHubClient{
		fetch:  newFetcher(opts, logger),
		base:   strings.TrimRight(apiURL, "/"),
		token:  strings.TrimSpace(token),
		logger: logger,
	}
}

// HasToken reports whether requests are authenticated.
func (c *GitHubClient) HasToken() bool {
	return c.token != ""
}

// RequireToken returns ErrTokenRequired for unauthenticated clients.
func (c *GitHubClient) RequireToken() error {
	if !c.HasToken() {
		return ErrTokenRequired
	}
	return nil
}

func (c *GitHubClient) headers() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		h.Set("Authorization", "token "+c.token)
	}
	return h
}

func (c *GitHubClient) repoURL(repo, suffix string) string {
	return c.base + "/repos/" + strings.Trim(repo, "/") + suffix
}

// LatestTag returns the tag of the latest release of repo. Repositories
// without releases fall back to their most recent tag. Other failures are
// logged and yield "".
func (c *GitHubClient) LatestTag(ctx context.Context, repo string) (string, error) {
	var release Release
	status, err := c.fetch.getJSON(ctx, c.repoURL(repo, "/releases/latest"), c.headers(), &release)
	if err != nil && !isStatusError(err) {
		return "", err
	}

	switch status {
	case http.StatusOK:
		return release.TagName, nil
	case http.StatusNotFound:
		var tags []tag
		status, err := c.fetch.getJSON(ctx, c.repoURL(repo, "/tags"), c.headers(), &tags)
		if err != nil && !isStatusError(err) {
			return "", err
		}
		if status == http.StatusOK && len(tags) > 0 {
			return tags[0].Name, nil
		}
		return "", nil
	default:
		if err != nil {
			status = statusOf(err)
		}
		c.logger.Warn("releases.latest_unavailable", "repo", repo, "status", status)
		return "", nil
	}
}

// LatestRelease returns the latest published release of repo.
func (c *GitHubClient) LatestRelease(ctx context.Context, repo string) (*Release, error) {
	var release Release
	u := c.repoURL(repo, "/releases/latest")
	status, err := c.fetch.getJSON(ctx, u, c.headers(), &release)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &StatusError{URL: u, Status: status}
	}
	return &release, nil
}

// Repository returns metadata for repo.
func (c *GitHubClient) Repository(ctx context.Context, repo string) (*Repository, error) {
	var info Repository
	u := c.repoURL(repo, "")
	status, err := c.fetch.getJSON(ctx, u, c.headers(), &info)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &StatusError{URL: u, Status: status}
	}
	return &info, nil
}

// ListReleases returns every release of repo, newest first.
func (c *GitHubClient) ListReleases(ctx context.Context, repo string) ([]Release, error) {
	var all []Release
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("per_page", fmt.Sprint(releasesPerPage))
		q.Set("page", fmt.Sprint(page))
		u := c.repoURL(repo, "/releases") + "?" + q.Encode()

		var batch []Release
		status, err := c.fetch.getJSON(ctx, u, c.headers(), &batch)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, &StatusError{URL: u, Status: status}
		}
		all = append(all, batch...)
		if len(batch) < releasesPerPage {
			return all, nil
		}
	}
}

func isStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

func statusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
