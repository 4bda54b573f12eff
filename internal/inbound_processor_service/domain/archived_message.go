// Package domain holds the archive's view of scraped messages.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/classifier"
	scraper "github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

// ErrInvalidArchivedMessage is returned when an event carries a message that
// cannot be stored.
var ErrInvalidArchivedMessage = errors.New("invalid archived message")

// ArchivedMessage is one row of the scraped_messages table.
type ArchivedMessage struct {
	ID          uuid.UUID
	MessageID   string
	Provider    string
	Phone       string
	Sender      string
	Text        string
	OTP         *string
	MessageTime time.Time
	RunID       uuid.UUID
	ArchivedAt  time.Time
}

// NewArchivedMessage builds the row for msg published in event. The message
// time must be the ISO form produced by the classifier.
func NewArchivedMessage(event scraper.ScrapedMessagesEvent, msg scraper.Message, now time.Time) (*ArchivedMessage, error) {
	if strings.TrimSpace(event.Provider) == "" || strings.TrimSpace(event.Phone) == "" {
		return nil, fmt.Errorf("%w: missing provider or phone", ErrInvalidArchivedMessage)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("%w: missing message id", ErrInvalidArchivedMessage)
	}
	runID, err := uuid.Parse(event.RunID)
	if err != nil {
		return nil, fmt.Errorf("%w: run id %q: %v", ErrInvalidArchivedMessage, event.RunID, err)
	}
	messageTime, err := time.Parse(classifier.ISOLayout, msg.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: message time %q: %v", ErrInvalidArchivedMessage, msg.Time, err)
	}

	return &ArchivedMessage{
		ID:          uuid.New(),
		MessageID:   msg.ID,
		Provider:    event.Provider,
		Phone:       event.Phone,
		Sender:      msg.From,
		Text:        msg.Text,
		OTP:         msg.OTP,
		MessageTime: messageTime,
		RunID:       runID,
		ArchivedAt:  now.UTC(),
	}, nil
}

// ArchiveRepository stores scraped messages. Save reports false when the
// message was already archived for the same provider and phone.
type ArchiveRepository interface {
	Save(ctx context.Context, msg *ArchivedMessage) (inserted bool, err error)
	RecentByPhone(ctx context.Context, phone string, limit int) ([]ArchivedMessage, error)
}
