package coingecko

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned by every fetch made before InitializeSession
	// or after CloseSession. The session is never created lazily.
	ErrNotInitialized = errors.New("coingecko session not initialized")

	// ErrUpstreamFetch matches every *FetchError via errors.Is
	ErrUpstreamFetch = errors.New("coingecko upstream fetch failed")
)

// FetchError describes a failed upstream call. StatusCode is 0 for transport failures.
type FetchError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("coingecko %s: HTTP %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("coingecko %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrUpstreamFetch
}
