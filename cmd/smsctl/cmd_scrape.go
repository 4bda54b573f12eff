package main

import (
	"github.com/spf13/cobra"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/app"
)

func (c *cli) scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run the scraper locally, without the API",
	}

	var country string
	numbers := &cobra.Command{
		Use:   "numbers",
		Short: "Walk the listing pages and print the numbers found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withPipeline(func(p *app.Pipeline) error {
				res, err := p.Service.Numbers(cmd.Context(), country)
				if err != nil {
					return err
				}
				return c.print(res)
			})
		},
	}
	numbers.Flags().StringVar(&country, "country", "", "Filter by country code or name")

	var phone string
	messages := &cobra.Command{
		Use:   "messages",
		Short: "Load one inbox and print its messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withPipeline(func(p *app.Pipeline) error {
				res, err := p.Service.Messages(cmd.Context(), phone)
				if err != nil {
					return err
				}
				return c.print(res)
			})
		},
	}
	messages.Flags().StringVar(&phone, "phone", "", "Phone number, digits with optional leading +")
	_ = messages.MarkFlagRequired("phone")

	cmd.AddCommand(numbers, messages)
	return cmd
}

func (c *cli) withPipeline(fn func(p *app.Pipeline) error) error {
	p, err := app.NewPipeline(c.cfg, nil, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			c.logger.Warn("Browser shutdown failed", "error", err)
		}
	}()
	return fn(p)
}
