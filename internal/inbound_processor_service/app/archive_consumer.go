package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Chapstick53/phone-sms-api/internal/platform/messagebroker"
	scraper "github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

const defaultSendTimeout = 5 * time.Second

// Subscriber is the part of messagebroker.NATSClient the consumer needs.
type Subscriber interface {
	Subscribe(ctx context.Context, subject string, queueGroup string, handler func(msg messagebroker.Message)) (messagebroker.Subscription, error)
}

// ScrapedEvent pairs a decoded event with the provider named by its subject.
type ScrapedEvent struct {
	ProviderName string
	Data         scraper.ScrapedMessagesEvent
}

// ArchiveConsumer decodes scraped inbox events from NATS and forwards them to
// the processing stage.
type ArchiveConsumer struct {
	subscriber  Subscriber
	logger      *slog.Logger
	outputChan  chan<- ScrapedEvent
	sendTimeout time.Duration
}

// NewArchiveConsumer creates a consumer writing decoded events to outputChan.
func NewArchiveConsumer(subscriber Subscriber, logger *slog.Logger, outputChan chan<- ScrapedEvent) *ArchiveConsumer {
	return &ArchiveConsumer{
		subscriber:  subscriber,
		logger:      logger,
		outputChan:  outputChan,
		sendTimeout: defaultSendTimeout,
	}
}

// StartConsuming subscribes to subject (e.g. "sms.scraped.*") with queueGroup
// and blocks until ctx is cancelled.
func (c *ArchiveConsumer) StartConsuming(ctx context.Context, subject string, queueGroup string) error {
	sub, err := c.subscriber.Subscribe(ctx, subject, queueGroup, func(msg messagebroker.Message) {
		c.handle(ctx, subject, msg)
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "NATS subscription failed", "error", err, "subject", subject)
		return err
	}

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		c.logger.WarnContext(ctx, "NATS unsubscribe failed", "error", err, "subject", subject)
	}
	c.logger.InfoContext(ctx, "NATS subscription ended", "subject", subject)
	return nil
}

func (c *ArchiveConsumer) handle(ctx context.Context, subjectPattern string, msg messagebroker.Message) {
	natsScrapedEventsReceivedCounter.WithLabelValues(subjectPattern).Inc()
	msgLogger := c.logger.With("nats_subject", msg.Subject)

	providerName, ok := scraper.ProviderFromSubject(msg.Subject)
	if !ok {
		msgLogger.ErrorContext(ctx, "Invalid NATS subject format for scraped messages")
		return
	}

	var event scraper.ScrapedMessagesEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		msgLogger.ErrorContext(ctx, "Failed to deserialize scraped messages event", "error", err, "data_len", len(msg.Data))
		return
	}
	if event.Provider != "" && event.Provider != providerName {
		msgLogger.WarnContext(ctx, "Event provider differs from subject, using subject", "event_provider", event.Provider)
	}
	event.Provider = providerName

	sendCtx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	select {
	case c.outputChan <- ScrapedEvent{ProviderName: providerName, Data: event}:
		msgLogger.DebugContext(ctx, "Sent scraped event to processing channel", "run_id", event.RunID, "count", len(event.Messages))
	case <-sendCtx.Done():
		msgLogger.ErrorContext(ctx, "Dropped scraped event, processing channel busy", "error", sendCtx.Err(), "run_id", event.RunID)
	}
}
