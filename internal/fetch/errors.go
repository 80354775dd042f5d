package fetch

import (
	"errors"
	"fmt"
)

// ErrFetchFailed matches every *FetchError via errors.Is.
var ErrFetchFailed = errors.New("fetch failed")

// FetchError is returned once a URL has used up its attempts.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// StatusError reports an HTTP response outside the accepted range.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Code, e.URL)
}
