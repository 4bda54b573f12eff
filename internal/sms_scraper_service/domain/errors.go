package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPhone indicates a phone/id argument that is not 7-15 digits.
	ErrInvalidPhone = errors.New("invalid phone number id")
	// ErrBrowserUnavailable indicates the browsing session could not be created at all.
	ErrBrowserUnavailable = errors.New("browser unavailable")
)

// NavigationError reports that every attempt to load URL failed.
// It is scoped to one page load, never to the process.
type NavigationError struct {
	URL      string
	Attempts int
	Cause    error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("failed to load %s after %d attempts: %v", e.URL, e.Attempts, e.Cause)
}

func (e *NavigationError) Unwrap() error {
	return e.Cause
}

// IsUpstreamUnavailable reports whether err means the upstream site could not
// be reached, as opposed to a caller error.
func IsUpstreamUnavailable(err error) bool {
	var navErr *NavigationError
	return errors.As(err, &navErr) || errors.Is(err, ErrBrowserUnavailable)
}
