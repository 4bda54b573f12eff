// Package events publishes scraper results on the message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Chapstick53/phone-sms-api/internal/platform/messagebroker"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

// Publisher is the subset of messagebroker.NATSClient used here.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

var _ Publisher = (messagebroker.NATSClient)(nil)

// ScrapedPublisher sends ScrapedMessagesEvent as JSON on
// sms.scraped.<provider>.
type ScrapedPublisher struct {
	client Publisher
	logger *slog.Logger
}

func NewScrapedPublisher(client Publisher, logger *slog.Logger) *ScrapedPublisher {
	return &ScrapedPublisher{client: client, logger: logger.With("component", "scraped_publisher")}
}

func (p *ScrapedPublisher) PublishScraped(ctx context.Context, event domain.ScrapedMessagesEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal scraped messages event: %w", err)
	}
	subject := domain.ScrapedSubject(event.Provider)
	if err := p.client.Publish(ctx, subject, payload); err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "Scraped messages published", "subject", subject, "run_id", event.RunID, "phone", event.Phone, "count", len(event.Messages))
	return nil
}
