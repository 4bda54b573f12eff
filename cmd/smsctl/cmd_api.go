package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(res)
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show provider status and cached listing size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.client().Status(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(res)
		},
	}
}

func (c *cli) countriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List countries with available numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.client().Countries(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(res.Countries)
		},
	}
}

func (c *cli) numbersCmd() *cobra.Command {
	var country string
	cmd := &cobra.Command{
		Use:   "numbers",
		Short: "List available phone numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.client().Numbers(cmd.Context(), country)
			if err != nil {
				return err
			}
			return c.print(res.Numbers)
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "Filter by country code or name")
	return cmd
}

func (c *cli) messagesCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Show the inbox of a phone number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.client().Messages(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.print(res.Messages)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Phone number id, digits with optional leading +")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (c *cli) otpCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "otp",
		Short: "Show the latest OTP received by a phone number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.client().OTP(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.print(res)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Phone number id, digits with optional leading +")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
