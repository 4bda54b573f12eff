// Command smsctl queries the phone SMS API or runs the scraper directly.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Chapstick53/phone-sms-api/internal/platform/config"
	"github.com/Chapstick53/phone-sms-api/internal/platform/logger"
	"github.com/Chapstick53/phone-sms-api/internal/smsctl"
)

const serviceName = "smsctl"

// cli holds what every subcommand shares.
type cli struct {
	out io.Writer

	apiURL  string
	timeout time.Duration
	retries int
	quiet   bool
	verbose bool

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, nil).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. cfg is loaded from the environment when
// nil.
func newRootCmd(out io.Writer, cfg *config.Config) *cobra.Command {
	c := &cli{out: out, cfg: cfg}

	root := &cobra.Command{
		Use:   "smsctl",
		Short: "Query temporary phone numbers and their SMS inboxes",
		Long: `smsctl talks to the phone SMS API (SMS_API, default http://localhost:4000/api).

The scrape subcommands skip the API and drive the headless browser directly,
and archive reads messages stored by the inbound processor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init()
		},
	}

	root.PersistentFlags().StringVar(&c.apiURL, "api", "", "API base URL (default: $APP_SMS_API)")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", smsctl.DefaultTimeout, "Per-request timeout")
	root.PersistentFlags().IntVar(&c.retries, "retries", smsctl.DefaultRetries, "Retries for failed requests")
	root.PersistentFlags().BoolVarP(&c.quiet, "quiet", "q", false, "Suppress logs")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		c.healthCmd(),
		c.statusCmd(),
		c.countriesCmd(),
		c.numbersCmd(),
		c.messagesCmd(),
		c.otpCmd(),
		c.scrapeCmd(),
		c.archiveCmd(),
	)
	return root
}

func (c *cli) init() error {
	if c.cfg == nil {
		cfg, err := config.Load(serviceName)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		c.cfg = cfg
	}
	if c.apiURL == "" {
		c.apiURL = c.cfg.SMSAPIBaseURL
	}

	switch {
	case c.quiet:
		c.logger = logger.Discard()
	case c.verbose:
		c.logger = logger.NewWithWriter(os.Stderr, "debug")
	default:
		c.logger = logger.NewWithWriter(os.Stderr, c.cfg.LogLevel)
	}
	return nil
}

func (c *cli) client() *smsctl.Client {
	return smsctl.NewClient(c.apiURL,
		smsctl.WithTimeout(c.timeout),
		smsctl.WithRetries(c.retries, smsctl.DefaultBackoff),
	)
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
