package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Chapstick53/phone-sms-api/internal/inbound_processor_service/domain"
	"github.com/Chapstick53/phone-sms-api/internal/platform/database"
)

const defaultRecentLimit = 50

type PgArchiveRepository struct {
	db     database.PgxPoolIface
	logger *slog.Logger
}

// NewPgArchiveRepository creates a PostgreSQL implementation of ArchiveRepository.
func NewPgArchiveRepository(db database.PgxPoolIface, logger *slog.Logger) *PgArchiveRepository {
	return &PgArchiveRepository{
		db:     db,
		logger: logger,
	}
}

// Save inserts msg into scraped_messages. A message already stored for the
// same provider and phone is left untouched and reported as not inserted.
func (r *PgArchiveRepository) Save(ctx context.Context, msg *domain.ArchivedMessage) (bool, error) {
	query := `
		INSERT INTO scraped_messages (
			id, message_id, provider, phone, sender, text_content, otp,
			message_time, scrape_run_id, archived_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		ON CONFLICT (provider, phone, message_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		msg.ID,
		msg.MessageID,
		msg.Provider,
		msg.Phone,
		msg.Sender,
		msg.Text,
		msg.OTP,
		msg.MessageTime,
		msg.RunID,
		msg.ArchivedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error inserting scraped message",
			"error", err,
			"message_id", msg.MessageID,
			"phone", msg.Phone,
		)
		return false, fmt.Errorf("insert scraped message %s: %w", msg.MessageID, err)
	}

	inserted := tag.RowsAffected() == 1
	r.logger.DebugContext(ctx, "Scraped message archived", "message_id", msg.MessageID, "phone", msg.Phone, "inserted", inserted)
	return inserted, nil
}

// RecentByPhone returns the newest archived messages for phone, newest first.
func (r *PgArchiveRepository) RecentByPhone(ctx context.Context, phone string, limit int) ([]domain.ArchivedMessage, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	query := `
		SELECT id, message_id, provider, phone, sender, text_content, otp,
		       message_time, scrape_run_id, archived_at
		FROM scraped_messages
		WHERE phone = $1
		ORDER BY message_time DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, phone, limit)
	if err != nil {
		return nil, fmt.Errorf("query scraped messages for %s: %w", phone, err)
	}
	defer rows.Close()

	messages := []domain.ArchivedMessage{}
	for rows.Next() {
		var m domain.ArchivedMessage
		if err := rows.Scan(
			&m.ID,
			&m.MessageID,
			&m.Provider,
			&m.Phone,
			&m.Sender,
			&m.Text,
			&m.OTP,
			&m.MessageTime,
			&m.RunID,
			&m.ArchivedAt,
		); err != nil {
			return nil, fmt.Errorf("scan scraped message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scraped messages: %w", err)
	}
	return messages, nil
}
