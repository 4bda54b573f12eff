package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Chapstick53/phone-sms-api/internal/platform/config"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/adapters/browser"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/adapters/cookies"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/adapters/diagnostics"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/classifier"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/navigator"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/parser"
)

// Pipeline is the fully wired scraper used by the public API and the CLI.
type Pipeline struct {
	Options  Options
	Service  *Service
	Listing  *ListingExtractor
	Messages *MessageExtractor

	browser *browser.RodBrowser
}

// OptionsFromConfig maps the upstream and extraction keys of cfg.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	opts := DefaultOptions()
	base, err := ParseBaseURL(cfg.UpstreamBaseURL)
	if err != nil {
		return Options{}, err
	}
	opts.BaseURL = base
	if cfg.UpstreamProvider != "" {
		opts.Provider = cfg.UpstreamProvider
	}
	if cfg.UpstreamListPath != "" {
		opts.ListPath = cfg.UpstreamListPath
	}
	if cfg.ListingPages > 0 {
		opts.Pages = cfg.ListingPages
	}
	if cfg.ListingPageDelay >= 0 {
		opts.PageDelay = cfg.ListingPageDelay
	}
	if cfg.ListingMaxResults > 0 {
		opts.MaxNumbers = cfg.ListingMaxResults
	}
	if cfg.MessagesMaxResults > 0 {
		opts.MaxMessages = cfg.MessagesMaxResults
	}
	return opts, nil
}

// NewPipeline wires browser, navigator, parser and extractors from cfg.
// publisher may be nil. The browser is launched on first use.
func NewPipeline(cfg *config.Config, publisher EventPublisher, logger *slog.Logger) (*Pipeline, error) {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("upstream options: %w", err)
	}

	rodBrowser := browser.NewRodBrowser(browser.Config{
		Bin:        cfg.BrowserBin,
		ControlURL: cfg.BrowserControlURL,
		Headless:   cfg.BrowserHeadless,
		CookieURL:  opts.RootURL(),
	}, logger)

	var sink parser.DiagnosticSink = diagnostics.NopSink{}
	if cfg.DiagnosticsDir != "" {
		sink = diagnostics.NewFileSink(cfg.DiagnosticsDir, logger)
	}

	cookieSource := cookies.NewFileSource(cfg.CookieFile, logger)
	nav := navigator.New(cfg.NavigationAttempts, cfg.NavigationTimeout, logger)
	inbox := parser.NewInboxParser(classifier.NewNoiseFilter(cfg.UpstreamBrandName), sink, logger)

	listing := NewListingExtractor(rodBrowser, nav, cookieSource, opts, logger)
	messages := NewMessageExtractor(rodBrowser, nav, cookieSource, inbox, opts, time.Now, logger)

	return &Pipeline{
		Options:  opts,
		Service:  NewService(opts.Provider, listing, messages, cfg.NumbersCacheTTL, publisher, time.Now, logger),
		Listing:  listing,
		Messages: messages,
		browser:  rodBrowser,
	}, nil
}

// Close shuts the browser down.
func (p *Pipeline) Close() error {
	return p.browser.Close()
}
