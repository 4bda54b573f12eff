package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/dedup"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/navigator"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/parser"
)

// ListingExtractor scrapes the paginated number listing.
type ListingExtractor struct {
	browser navigator.Browser
	nav     *navigator.Navigator
	cookies navigator.CookieSource
	parser  parser.ListingParser
	opts    Options
	logger  *slog.Logger

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewListingExtractor(browser navigator.Browser, nav *navigator.Navigator, cookies navigator.CookieSource, opts Options, logger *slog.Logger) *ListingExtractor {
	return &ListingExtractor{
		browser: browser,
		nav:     nav,
		cookies: cookies,
		parser:  parser.ListingParser{Provider: opts.Provider, BaseURL: opts.BaseURL},
		opts:    opts,
		logger:  logger.With("component", "listing_extractor"),
		sleep:   sleepContext,
	}
}

// ListNumbers walks listing pages 1..Pages in order, one browser session for
// the whole walk and a fresh tab per page. A page that fails is logged and
// skipped. Pages are separated by PageDelay. The result holds each phone
// once, first occurrence first, capped at MaxNumbers.
//
// The only error is domain.ErrBrowserUnavailable; upstream failures degrade
// to fewer (possibly zero) numbers. Cancelling ctx stops the walk and
// returns what was collected so far.
func (e *ListingExtractor) ListNumbers(ctx context.Context) ([]domain.PhoneNumber, error) {
	started := time.Now()
	defer func() {
		scrapeDurationHist.WithLabelValues(e.opts.Provider, "listing").Observe(time.Since(started).Seconds())
	}()

	cookies := loadCookies(ctx, e.cookies, e.logger)

	session, err := openSession(ctx, e.browser)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(ctx, e.logger, "session", session)

	var collected []domain.PhoneNumber
	for page := 1; page <= e.opts.Pages; page++ {
		if page > 1 {
			if err := e.sleep(ctx, e.opts.PageDelay); err != nil {
				e.logger.WarnContext(ctx, "Listing scrape interrupted", "next_page", page, "error", err)
				break
			}
		}

		numbers, err := e.scrapePage(ctx, session, page, cookies)
		if err != nil {
			e.logger.WarnContext(ctx, "Skipping listing page", "page", page, "error", err)
			continue
		}
		e.logger.DebugContext(ctx, "Listing page scraped", "page", page, "anchors", len(numbers))
		collected = append(collected, numbers...)
	}

	out := dedup.Numbers(collected, e.opts.MaxNumbers)
	numbersScrapedGauge.WithLabelValues(e.opts.Provider).Set(float64(len(out)))
	e.logger.InfoContext(ctx, "Scraped numbers", "count", len(out), "pages", e.opts.Pages)
	return out, nil
}

func (e *ListingExtractor) scrapePage(ctx context.Context, session navigator.Session, page int, cookies []domain.Cookie) ([]domain.PhoneNumber, error) {
	tab, err := session.NewPage(ctx)
	if err != nil {
		listingPagesCounter.WithLabelValues(e.opts.Provider, "error_navigation").Inc()
		return nil, err
	}
	defer closeQuietly(ctx, e.logger, "page", tab)

	document, err := e.nav.Load(ctx, tab, e.opts.ListingURL(page), cookies)
	if err != nil {
		listingPagesCounter.WithLabelValues(e.opts.Provider, "error_navigation").Inc()
		return nil, err
	}

	numbers, err := e.parser.Parse(document)
	if err != nil {
		listingPagesCounter.WithLabelValues(e.opts.Provider, "error_parse").Inc()
		return nil, err
	}
	listingPagesCounter.WithLabelValues(e.opts.Provider, "success").Inc()
	return numbers, nil
}
