package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/classifier"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/dedup"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/navigator"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/parser"
)

// MessageExtractor scrapes one number's inbox.
type MessageExtractor struct {
	browser navigator.Browser
	nav     *navigator.Navigator
	cookies navigator.CookieSource
	parser  *parser.Parser
	opts    Options
	clock   func() time.Time
	logger  *slog.Logger
}

func NewMessageExtractor(browser navigator.Browser, nav *navigator.Navigator, cookies navigator.CookieSource, inbox *parser.Parser, opts Options, clock func() time.Time, logger *slog.Logger) *MessageExtractor {
	if clock == nil {
		clock = time.Now
	}
	return &MessageExtractor{
		browser: browser,
		nav:     nav,
		cookies: cookies,
		parser:  inbox,
		opts:    opts,
		clock:   clock,
		logger:  logger.With("component", "message_extractor"),
	}
}

// ListMessages loads the site root, then the inbox of phone ("+digits" or
// "digits"), and returns its messages deduplicated by text and time and
// capped at MaxMessages.
//
// Errors: domain.ErrInvalidPhone, domain.ErrBrowserUnavailable, or a
// *domain.NavigationError for either page. A document with no recognizable
// messages is not an error; it yields an empty slice.
func (e *MessageExtractor) ListMessages(ctx context.Context, phone string) ([]domain.Message, error) {
	id, err := domain.NormalizePhoneID(phone)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	defer func() {
		scrapeDurationHist.WithLabelValues(e.opts.Provider, "inbox").Observe(time.Since(started).Seconds())
	}()

	cookies := loadCookies(ctx, e.cookies, e.logger)

	session, err := openSession(ctx, e.browser)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(ctx, e.logger, "session", session)

	tab, err := session.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(ctx, e.logger, "page", tab)

	if _, err := e.nav.Load(ctx, tab, e.opts.RootURL(), cookies); err != nil {
		return nil, err
	}
	document, err := e.nav.Load(ctx, tab, e.opts.InboxURL(id), cookies)
	if err != nil {
		return nil, err
	}

	messages := e.Extract(ctx, "inbox-"+id, document)
	e.logger.InfoContext(ctx, "Scraped messages", "phone", "+"+id, "count", len(messages))
	return messages, nil
}

// Extract parses and classifies an already loaded inbox document. All
// messages without a parseable timestamp share one extraction instant.
func (e *MessageExtractor) Extract(ctx context.Context, name, document string) []domain.Message {
	raw, layout := e.parser.Parse(ctx, name, document)
	if layout == "" {
		inboxParsedCounter.WithLabelValues(e.opts.Provider, "none").Inc()
	} else {
		inboxParsedCounter.WithLabelValues(e.opts.Provider, string(layout)).Inc()
	}

	now := e.clock()
	at := func() time.Time { return now }
	messages := make([]domain.Message, 0, len(raw))
	for _, r := range raw {
		messages = append(messages, classifier.Classify(r, at))
	}
	return dedup.Messages(messages, e.opts.MaxMessages)
}
