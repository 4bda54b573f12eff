package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

// NumberLister is satisfied by *ListingExtractor.
type NumberLister interface {
	ListNumbers(ctx context.Context) ([]domain.PhoneNumber, error)
}

// MessageLister is satisfied by *MessageExtractor.
type MessageLister interface {
	ListMessages(ctx context.Context, phone string) ([]domain.Message, error)
}

// EventPublisher announces extraction results to other services.
type EventPublisher interface {
	PublishScraped(ctx context.Context, event domain.ScrapedMessagesEvent) error
}

// Status summarizes the service for GET /status.
type Status struct {
	Provider         string
	AvailableNumbers int
	CachedAt         *time.Time
	CacheTTL         time.Duration
	Timestamp        time.Time
}

// Service is what the HTTP layer and the CLI talk to. It adds the listing
// cache and result shaping on top of the extractors.
type Service struct {
	provider  string
	numbers   *ListingCache
	messages  MessageLister
	publisher EventPublisher
	clock     func() time.Time
	logger    *slog.Logger
}

// NewService wires a Service. publisher may be nil.
func NewService(provider string, lister NumberLister, messages MessageLister, cacheTTL time.Duration, publisher EventPublisher, clock func() time.Time, logger *slog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		provider:  provider,
		numbers:   NewListingCache(cacheTTL, clock, lister.ListNumbers),
		messages:  messages,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With("component", "sms_scraper_service"),
	}
}

func (s *Service) Provider() string { return s.provider }

// Numbers returns the cached listing, optionally filtered by country code or
// name.
func (s *Service) Numbers(ctx context.Context, country string) (domain.NumbersResult, error) {
	numbers, err := s.numbers.Get(ctx)
	if err != nil {
		return domain.NumbersResult{}, err
	}
	return domain.NewNumbersResult(s.provider, domain.FilterByCountry(numbers, country)), nil
}

// Countries groups the cached listing by country.
func (s *Service) Countries(ctx context.Context) (domain.CountriesResult, error) {
	numbers, err := s.numbers.Get(ctx)
	if err != nil {
		return domain.CountriesResult{}, err
	}
	return domain.GroupCountries(s.provider, numbers), nil
}

// Messages scrapes the inbox of phone. Non-empty results are published
// when a publisher is configured; publish failures are only logged.
func (s *Service) Messages(ctx context.Context, phone string) (domain.MessagesResult, error) {
	id, err := domain.NormalizePhoneID(phone)
	if err != nil {
		return domain.MessagesResult{}, err
	}
	messages, err := s.messages.ListMessages(ctx, id)
	if err != nil {
		return domain.MessagesResult{}, err
	}
	res := domain.NewMessagesResult("+"+id, messages)
	s.publish(ctx, res)
	return res, nil
}

// OTP returns the first message carrying an OTP.
func (s *Service) OTP(ctx context.Context, phone string) (domain.OTPResult, error) {
	res, err := s.Messages(ctx, phone)
	if err != nil {
		return domain.OTPResult{}, err
	}
	return domain.LatestOTP(res), nil
}

// Status reports the listing size, scraping if the cache is cold.
func (s *Service) Status(ctx context.Context) (Status, error) {
	numbers, err := s.numbers.Get(ctx)
	if err != nil {
		return Status{}, err
	}
	st := Status{
		Provider:         s.provider,
		AvailableNumbers: len(numbers),
		CacheTTL:         s.numbers.TTL(),
		Timestamp:        s.clock(),
	}
	if snap := s.numbers.Snapshot(); snap != nil {
		at := snap.CapturedAt
		st.CachedAt = &at
	}
	return st, nil
}

// InvalidateNumbers forces the next listing request to scrape.
func (s *Service) InvalidateNumbers(ctx context.Context) {
	s.numbers.Invalidate()
	s.logger.InfoContext(ctx, "Listing cache invalidated")
}

func (s *Service) publish(ctx context.Context, res domain.MessagesResult) {
	if s.publisher == nil || res.Count == 0 {
		return
	}
	event := domain.ScrapedMessagesEvent{
		RunID:     uuid.NewString(),
		Provider:  s.provider,
		Phone:     res.Phone,
		ScrapedAt: s.clock().UTC(),
		Messages:  res.Messages,
	}
	if err := s.publisher.PublishScraped(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish scraped messages", "phone", res.Phone, "run_id", event.RunID, "error", err)
	}
}
