// Package releases checks documented tool versions against upstream
// releases: GitHub Actions pins, the versions.yml catalogue and the
// language versions referenced by each guide.
package releases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	retry "github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetries    = 3
	defaultRetryDelay = 500 * time.Millisecond
	defaultRPS        = 5
	userAgent         = "go-styleguide"
)

// StatusError reports a response status the caller did not expect.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("releases: %s returned status %d", e.URL, e.Status)
}

// ClientOptions tune the HTTP plumbing shared by every upstream client.
type ClientOptions struct {
	HTTPClient        *http.Client
	Timeout           time.Duration
	RequestsPerSecond float64
	// Retries is the number of attempts for transport errors, 429 and 5xx.
	Retries    uint
	RetryDelay time.Duration
}

type fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	attempts uint
	delay    time.Duration
	logger   interfaces.Logger
}

func newFetcher(opts ClientOptions, logger interfaces.Logger) *fetcher {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}
	attempts := opts.Retries
	if attempts == 0 {
		attempts = defaultRetries
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	return &fetcher{
		client:   client,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		attempts: attempts,
		delay:    delay,
		logger:   logging.Ensure(logger),
	}
}

type response struct {
	status int
	body   []byte
}

var errRetryable = errors.New("retryable response")

// get performs a rate limited GET, retrying transport failures, 429 and 5xx
// responses. Other statuses are returned to the caller untouched.
func (f *fetcher) get(ctx context.Context, url string, header http.Header) (*response, error) {
	var last *response
	resp, err := retry.DoWithData(
		func() (*response, error) {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, retry.Unrecoverable(err)
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return nil, retry.Unrecoverable(err)
			}
			req.Header.Set("User-Agent", userAgent)
			for k, values := range header {
				for _, v := range values {
					req.Header.Add(k, v)
				}
			}

			res, err := f.client.Do(req)
			if err != nil {
				return nil, err
			}
			defer res.Body.Close()
			body, err := io.ReadAll(res.Body)
			if err != nil {
				return nil, err
			}
			last = &response{status: res.StatusCode, body: body}
			if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= http.StatusInternalServerError {
				return nil, fmt.Errorf("%w: status %d", errRetryable, res.StatusCode)
			}
			return last, nil
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			f.logger.Debug("releases.retry", "url", url, "attempt", attempt+1, "error", err)
		}),
	)
	if err != nil {
		if errors.Is(err, errRetryable) && last != nil {
			return last, &StatusError{URL: url, Status: last.status}
		}
		return nil, fmt.Errorf("releases: get %s: %w", url, err)
	}
	return resp, nil
}

// getJSON decodes a 200 response into out and returns the status. A non-200
// status is returned without error so callers can branch on it.
func (f *fetcher) getJSON(ctx context.Context, url string, header http.Header, out any) (int, error) {
	resp, err := f.get(ctx, url, header)
	if err != nil {
		return 0, err
	}
	if resp.status != http.StatusOK {
		return resp.status, nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return resp.status, fmt.Errorf("releases: decode %s: %w", url, err)
	}
	return resp.status, nil
}
