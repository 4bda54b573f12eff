package main

import (
	"github.com/spf13/cobra"

	"github.com/Chapstick53/phone-sms-api/internal/inbound_processor_service/repository/postgres"
	"github.com/Chapstick53/phone-sms-api/internal/platform/config"
	"github.com/Chapstick53/phone-sms-api/internal/platform/database"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/classifier"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

type archivedRow struct {
	MessageID  string  `json:"message_id"`
	Provider   string  `json:"provider"`
	From       string  `json:"from"`
	Text       string  `json:"text"`
	OTP        *string `json:"otp"`
	Time       string  `json:"time"`
	RunID      string  `json:"run_id"`
	ArchivedAt string  `json:"archived_at"`
}

func (c *cli) archiveCmd() *cobra.Command {
	var (
		phone string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Show messages archived by the inbound processor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := domain.NormalizePhoneID(phone)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := database.NewDBPool(ctx, c.cfg.PostgresDSN, poolConfig(c.cfg), c.logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			rows, err := postgres.NewPgArchiveRepository(pool, c.logger).RecentByPhone(ctx, "+"+id, limit)
			if err != nil {
				return err
			}
			out := make([]archivedRow, 0, len(rows))
			for _, r := range rows {
				out = append(out, archivedRow{
					MessageID:  r.MessageID,
					Provider:   r.Provider,
					From:       r.Sender,
					Text:       r.Text,
					OTP:        r.OTP,
					Time:       classifier.FormatISO(r.MessageTime),
					RunID:      r.RunID.String(),
					ArchivedAt: classifier.FormatISO(r.ArchivedAt),
				})
			}
			return c.print(out)
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number, digits with optional leading +")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum messages to show")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

// poolConfig sizes the pool for one short query: no idle connections are
// kept warm.
func poolConfig(cfg *config.Config) database.PoolConfig {
	return database.PoolConfig{
		MaxConns:        cfg.PostgresMaxConns,
		MaxConnLifetime: cfg.PostgresMaxConnLifetime,
		MaxConnIdleTime: cfg.PostgresMaxConnIdleTime,
	}
}
