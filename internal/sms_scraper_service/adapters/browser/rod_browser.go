// Package browser adapts a Chrome instance driven by go-rod to the
// navigator interfaces.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/navigator"
)

// Config selects how Chrome is reached. With ControlURL set an already
// running browser is used; otherwise one is launched from Bin (or the
// browser rod downloads when Bin is empty).
type Config struct {
	Bin        string
	ControlURL string
	Headless   bool
	// CookieURL scopes cookies that carry no domain of their own.
	CookieURL string
}

// RodBrowser connects lazily on the first session so the service can start
// while Chrome is still unavailable.
type RodBrowser struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launched *launcher.Launcher
}

var _ navigator.Browser = (*RodBrowser)(nil)

func NewRodBrowser(cfg Config, logger *slog.Logger) *RodBrowser {
	return &RodBrowser{cfg: cfg, logger: logger}
}

// NewSession opens an incognito context. Failures wrap
// domain.ErrBrowserUnavailable.
func (b *RodBrowser) NewSession(ctx context.Context) (navigator.Session, error) {
	browser, err := b.ensureStarted(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBrowserUnavailable, err)
	}
	incognito, err := browser.Incognito()
	if err != nil {
		b.reset()
		return nil, fmt.Errorf("%w: open incognito context: %v", domain.ErrBrowserUnavailable, err)
	}
	return &rodSession{browser: incognito, cookieURL: b.cfg.CookieURL}, nil
}

func (b *RodBrowser) ensureStarted(ctx context.Context) (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		if _, err := b.browser.Version(); err == nil {
			return b.browser, nil
		}
		b.logger.WarnContext(ctx, "Stale browser connection detected, reconnecting")
		b.closeLocked()
	}

	controlURL := b.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().
			Headless(b.cfg.Headless).
			NoSandbox(true).
			Set(flags.Flag("disable-setuid-sandbox")).
			Set(flags.Flag("disable-dev-shm-usage"))
		if b.cfg.Bin != "" {
			l = l.Bin(b.cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		b.launched = l
		controlURL = u
		b.logger.InfoContext(ctx, "Launched headless browser", "control_url", controlURL)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		b.closeLocked()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	b.browser = browser
	return browser, nil
}

func (b *RodBrowser) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeLocked()
}

func (b *RodBrowser) closeLocked() {
	if b.browser != nil {
		_ = b.browser.Close()
		b.browser = nil
	}
	if b.launched != nil {
		b.launched.Cleanup()
		b.launched = nil
	}
}

// Close shuts the browser down. Sessions still open become unusable.
func (b *RodBrowser) Close() error {
	b.reset()
	return nil
}

type rodSession struct {
	browser   *rod.Browser
	cookieURL string
}

func (s *rodSession) NewPage(ctx context.Context) (navigator.Page, error) {
	page, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	// Only creation is bound to ctx; Close has to work after ctx ends.
	return &rodPage{page: page.Context(s.browser.GetContext()), cookieURL: s.cookieURL}, nil
}

func (s *rodSession) Close() error {
	return s.browser.Close()
}

type rodPage struct {
	page      *rod.Page
	cookieURL string
}

func (p *rodPage) SetCookies(cookies []domain.Cookie) error {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, CookieParam(c, p.cookieURL))
	}
	return p.page.SetCookies(params)
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(url); err != nil {
		return err
	}
	wait()
	return ctx.Err()
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

// CookieParam converts an exported cookie to the DevTools shape. Cookies
// without a domain are bound to fallbackURL.
func CookieParam(c domain.Cookie, fallbackURL string) *proto.NetworkCookieParam {
	param := &proto.NetworkCookieParam{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		SameSite: sameSite(c.SameSite),
	}
	if param.Path == "" {
		param.Path = "/"
	}
	if param.Domain == "" {
		param.URL = fallbackURL
	}
	if c.ExpirationDate != nil && *c.ExpirationDate > 0 {
		param.Expires = proto.TimeSinceEpoch(math.Floor(*c.ExpirationDate))
	}
	return param
}

func sameSite(v string) proto.NetworkCookieSameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return proto.NetworkCookieSameSiteStrict
	case "lax":
		return proto.NetworkCookieSameSiteLax
	case "none", "no_restriction":
		return proto.NetworkCookieSameSiteNone
	default:
		return ""
	}
}
