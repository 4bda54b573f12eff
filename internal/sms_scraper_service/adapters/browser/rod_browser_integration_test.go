//go:build integration

package browser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/navigator"
)

func TestRodBrowser_LoadsPageWithCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("cf_clearance")
		value := "none"
		if err == nil {
			value = c.Value
		}
		fmt.Fprintf(w, "<html><body><dl><dd><p>cookie=%s</p></dd></dl></body></html>", value)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := NewRodBrowser(Config{Headless: true, CookieURL: srv.URL}, logger)
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	session, err := b.NewSession(ctx)
	require.NoError(t, err)
	defer session.Close()

	page, err := session.NewPage(ctx)
	require.NoError(t, err)
	defer page.Close()

	nav := navigator.New(3, 30*time.Second, logger)
	doc, err := nav.Load(ctx, page, srv.URL, []domain.Cookie{{Name: "cf_clearance", Value: "abc"}})
	require.NoError(t, err)
	assert.Contains(t, doc, "cookie=abc")
}
