package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Chapstick53/phone-sms-api/internal/inbound_processor_service/domain"
)

// ArchiveStats counts the outcome of one event.
type ArchiveStats struct {
	Inserted   int
	Duplicates int
	Invalid    int
}

// ArchiveProcessor stores the messages of scraped inbox events.
type ArchiveProcessor struct {
	repo   domain.ArchiveRepository
	clock  func() time.Time
	logger *slog.Logger
}

// NewArchiveProcessor creates a processor. A nil clock means time.Now.
func NewArchiveProcessor(repo domain.ArchiveRepository, clock func() time.Time, logger *slog.Logger) *ArchiveProcessor {
	if clock == nil {
		clock = time.Now
	}
	return &ArchiveProcessor{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

// ProcessEvent archives every message of event. Invalid messages are skipped;
// the first storage error aborts the event.
func (p *ArchiveProcessor) ProcessEvent(ctx context.Context, event ScrapedEvent) (ArchiveStats, error) {
	start := time.Now()
	defer func() {
		eventProcessingDurationHist.WithLabelValues(event.ProviderName).Observe(time.Since(start).Seconds())
	}()

	logger := p.logger.With("provider_name", event.ProviderName, "run_id", event.Data.RunID, "phone", event.Data.Phone)
	logger.InfoContext(ctx, "Processing scraped event", "count", len(event.Data.Messages))

	var stats ArchiveStats
	now := p.clock()
	for _, m := range event.Data.Messages {
		row, err := domain.NewArchivedMessage(event.Data, m, now)
		if err != nil {
			stats.Invalid++
			archivedMessagesCounter.WithLabelValues(event.ProviderName, "invalid").Inc()
			logger.WarnContext(ctx, "Skipping invalid scraped message", "error", err, "message_id", m.ID)
			continue
		}

		inserted, err := p.repo.Save(ctx, row)
		if err != nil {
			archivedMessagesCounter.WithLabelValues(event.ProviderName, "error_db_save").Inc()
			return stats, fmt.Errorf("archive message %s: %w", m.ID, err)
		}
		if inserted {
			stats.Inserted++
			archivedMessagesCounter.WithLabelValues(event.ProviderName, "inserted").Inc()
		} else {
			stats.Duplicates++
			archivedMessagesCounter.WithLabelValues(event.ProviderName, "duplicate").Inc()
		}
	}

	logger.InfoContext(ctx, "Scraped event archived",
		"inserted", stats.Inserted,
		"duplicates", stats.Duplicates,
		"invalid", stats.Invalid,
	)
	return stats, nil
}

// Run processes events until ctx is cancelled. Failed events are logged and
// the loop continues.
func (p *ArchiveProcessor) Run(ctx context.Context, events <-chan ScrapedEvent) error {
	for {
		select {
		case event := <-events:
			if _, err := p.ProcessEvent(ctx, event); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.logger.ErrorContext(ctx, "Failed to process scraped event",
					slog.Any("error", err),
					slog.String("provider", event.ProviderName),
					slog.String("run_id", event.Data.RunID),
				)
			}
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "Scraped event processor worker shutting down", "error", ctx.Err())
			return ctx.Err()
		}
	}
}
