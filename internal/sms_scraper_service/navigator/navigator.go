package navigator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

const (
	DefaultAttempts = 3
	DefaultTimeout  = 30 * time.Second
)

// Navigator performs single page loads with a fixed number of attempts.
// There is no delay between attempts.
type Navigator struct {
	attempts int
	timeout  time.Duration
	logger   *slog.Logger

	// OnState, when set, observes every state transition.
	OnState func(url string, s State)
}

// New returns a Navigator. Non-positive attempts or timeout fall back to the
// defaults.
func New(attempts int, timeout time.Duration, logger *slog.Logger) *Navigator {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Navigator{attempts: attempts, timeout: timeout, logger: logger}
}

// Load applies cookies to page, navigates to url and returns the document.
// Each attempt gets its own timeout. When all attempts fail, or ctx ends
// first, Load returns a *domain.NavigationError.
func (n *Navigator) Load(ctx context.Context, page Page, url string, cookies []domain.Cookie) (string, error) {
	started := time.Now()
	n.transition(url, StateIdle)

	if len(cookies) > 0 {
		if err := page.SetCookies(cookies); err != nil {
			n.logger.WarnContext(ctx, "Failed to apply session cookies, continuing without them", "url", url, "error", err)
		}
	}

	var lastErr error
	attempt := 0
	for attempt < n.attempts {
		attempt++
		n.transition(url, StateLoading)

		document, err := n.attempt(ctx, page, url)
		if err == nil {
			navigationAttemptsCounter.WithLabelValues("success").Inc()
			n.transition(url, StateLoaded)
			navigationDurationHist.WithLabelValues(StateLoaded.String()).Observe(time.Since(started).Seconds())
			return document, nil
		}

		navigationAttemptsCounter.WithLabelValues("error").Inc()
		lastErr = err
		n.logger.WarnContext(ctx, "Navigation attempt failed", "url", url, "attempt", attempt, "max_attempts", n.attempts, "error", err)

		if ctx.Err() != nil {
			break
		}
		if attempt < n.attempts {
			n.transition(url, StateRetrying)
		}
	}

	n.transition(url, StateFailed)
	navigationDurationHist.WithLabelValues(StateFailed.String()).Observe(time.Since(started).Seconds())
	return "", &domain.NavigationError{URL: url, Attempts: attempt, Cause: lastErr}
}

func (n *Navigator) attempt(ctx context.Context, page Page, url string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := page.Navigate(attemptCtx, url); err != nil {
		return "", err
	}
	document, err := page.HTML(attemptCtx)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return document, nil
}

func (n *Navigator) transition(url string, s State) {
	if n.OnState != nil {
		n.OnState(url, s)
	}
}
