// Package navigator loads upstream pages through a browser with bounded
// retries. The browser itself sits behind the Browser/Session/Page
// interfaces so everything downstream can run against static fixtures.
package navigator

import (
	"context"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

// Browser creates isolated browsing sessions. Sessions are never shared
// between extraction calls.
type Browser interface {
	NewSession(ctx context.Context) (Session, error)
}

// Session is one isolated browser context (cookie jar, cache).
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single tab.
type Page interface {
	SetCookies(cookies []domain.Cookie) error
	// Navigate returns once the DOM has been parsed, or when ctx ends.
	Navigate(ctx context.Context, url string) error
	// HTML returns the current document, or fails when ctx ends first.
	HTML(ctx context.Context) (string, error)
	Close() error
}

// CookieSource supplies the persisted session cookies. A nil slice and nil
// error mean "no cookies", which is not a failure.
type CookieSource interface {
	Cookies(ctx context.Context) ([]domain.Cookie, error)
}

// NoCookies is a CookieSource that never has any.
type NoCookies struct{}

func (NoCookies) Cookies(context.Context) ([]domain.Cookie, error) { return nil, nil }
