package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"localch-scraper/internal/metrics"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options configures a Fetcher.
type Options struct {
	Headers  map[string]string
	Attempts int
	Backoff  Backoff
	Sleep    SleepFunc

	// Retryable decides whether a failed attempt is worth repeating. Nil
	// retries every failure.
	Retryable func(error) bool
}

// Fetcher issues GET requests with a fixed header set and retries failed
// attempts with exponential backoff. It is safe for concurrent use.
type Fetcher struct {
	client   *http.Client
	headers  map[string]string
	attempts int
	backoff  Backoff
	sleep    SleepFunc
	retry    func(error) bool
	log      zerolog.Logger
}

// New builds a Fetcher around a shared client.
func New(client *http.Client, opts Options, log zerolog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	if opts.Retryable == nil {
		opts.Retryable = func(error) bool { return true }
	}
	headers := make(map[string]string, len(opts.Headers))
	for k, v := range opts.Headers {
		headers[k] = v
	}
	return &Fetcher{
		client:   client,
		headers:  headers,
		attempts: opts.Attempts,
		backoff:  opts.Backoff,
		sleep:    opts.Sleep,
		retry:    opts.Retryable,
		log:      log,
	}
}

// Fetch returns the body of url. After the last failed attempt it returns a
// *FetchError; the caller decides whether that is fatal.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	state := RequestState{Phase: Pending}
	var lastErr error
	for {
		if state.Phase == Retrying {
			if err := f.sleep(ctx, state.Delay); err != nil {
				return nil, &FetchError{URL: url, Attempts: state.Attempt, Err: err}
			}
		}

		body, err := f.attempt(ctx, url, state.Attempt > 0)
		if err != nil && !f.retry(err) {
			f.log.Debug().Err(err).Str("url", url).Msg("fetch failed, not retrying")
			return nil, &FetchError{URL: url, Attempts: state.Attempt + 1, Err: err}
		}
		state = state.Next(err == nil, f.attempts, f.backoff)
		switch state.Phase {
		case Succeeded:
			return body, nil
		case Retrying:
			lastErr = err
			f.log.Warn().Err(err).Str("url", url).
				Int("attempt", state.Attempt).Dur("backoff", state.Delay).
				Msg("fetch attempt failed")
		case Failed:
			lastErr = err
			f.log.Warn().Err(err).Str("url", url).Int("attempt", state.Attempt).Msg("fetch attempt failed")
			f.log.Error().Str("url", url).Int("attempts", state.Attempt).Msg("giving up on URL")
			metrics.FetchExhausted()
			return nil, &FetchError{URL: url, Attempts: state.Attempt, Err: lastErr}
		}
		if ctx.Err() != nil {
			return nil, &FetchError{URL: url, Attempts: state.Attempt, Err: ctx.Err()}
		}
	}
}

func (f *Fetcher) attempt(ctx context.Context, url string, retry bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		metrics.FetchAttempt(time.Since(start), 0, retry)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.FetchAttempt(time.Since(start), resp.StatusCode, retry)
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &StatusError{Code: resp.StatusCode, URL: url}
	}
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsStatus reports whether err carries an HTTP status of code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// IsClientError reports whether err carries a 4xx HTTP status.
func IsClientError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 400 && se.Code < 500
}

// RetryServerErrors is a Retryable policy that gives up at once on 4xx answers.
func RetryServerErrors(err error) bool {
	return !IsClientError(err)
}
