package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/dedup"
)

// Options describe the upstream site and extraction limits.
type Options struct {
	Provider    string
	BaseURL     *url.URL
	ListPath    string // e.g. "/en/numbers"
	Pages       int
	PageDelay   time.Duration
	MaxNumbers  int
	MaxMessages int
}

// DefaultOptions targets sms24.me.
func DefaultOptions() Options {
	base, _ := url.Parse("https://sms24.me")
	return Options{
		Provider:    "sms24",
		BaseURL:     base,
		ListPath:    "/en/numbers",
		Pages:       5,
		PageDelay:   2 * time.Second,
		MaxNumbers:  dedup.MaxNumbers,
		MaxMessages: dedup.MaxMessages,
	}
}

// ParseBaseURL validates an absolute http(s) URL.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(raw), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse upstream base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("upstream base url %q must be absolute http(s)", raw)
	}
	return u, nil
}

// RootURL is visited before an inbox to establish session state.
func (o Options) RootURL() string {
	return o.BaseURL.String() + "/"
}

// ListingURL returns the listing page with 1-based index page.
func (o Options) ListingURL(page int) string {
	return fmt.Sprintf("%s%s/page/%d", o.BaseURL.String(), o.listPath(), page)
}

// InboxURL returns the inbox page for a digit id.
func (o Options) InboxURL(id string) string {
	return fmt.Sprintf("%s%s/%s", o.BaseURL.String(), o.listPath(), id)
}

func (o Options) listPath() string {
	p := strings.TrimRight(o.ListPath, "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// sleepContext pauses for d or until ctx ends.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
