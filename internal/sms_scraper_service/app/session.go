package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/navigator"
)

// openSession starts a browsing session, normalizing failures to
// domain.ErrBrowserUnavailable.
func openSession(ctx context.Context, b navigator.Browser) (navigator.Session, error) {
	s, err := b.NewSession(ctx)
	if err == nil {
		return s, nil
	}
	if errors.Is(err, domain.ErrBrowserUnavailable) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrBrowserUnavailable, err)
}

// loadCookies never fails; an unreadable cookie store means navigating
// without cookies.
func loadCookies(ctx context.Context, src navigator.CookieSource, logger *slog.Logger) []domain.Cookie {
	if src == nil {
		return nil
	}
	cookies, err := src.Cookies(ctx)
	if err != nil {
		logger.WarnContext(ctx, "Failed to load session cookies, continuing without them", "error", err)
		return nil
	}
	return cookies
}

func closeQuietly(ctx context.Context, logger *slog.Logger, what string, c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		logger.WarnContext(ctx, "Failed to close browser resource", "resource", what, "error", err)
	}
}
