package app

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/classifier"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/navigator"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/parser"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func testOptions(pages int) Options {
	opts := DefaultOptions()
	opts.Pages = pages
	return opts
}

func testNavigator() *navigator.Navigator {
	return navigator.New(3, time.Second, discardLogger())
}

func testInboxParser(sink parser.DiagnosticSink) *parser.Parser {
	return parser.NewInboxParser(classifier.NewNoiseFilter("sms24"), sink, discardLogger())
}

func numberID(i int) string {
	return fmt.Sprintf("1202555%04d", i)
}

func listingHTML(ids ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, id := range ids {
		fmt.Fprintf(&b, `<a class="callout" href="/en/numbers/%s"><span class="fi" data-flag="us"></span><h5 class="text-secondary">United States</h5></a>`, id)
	}
	b.WriteString("</body></html>")
	return b.String()
}

type dl struct{ from, text, time string }

func inboxHTML(entries ...dl) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, e := range entries {
		b.WriteString("<dl><dt>")
		if e.time != "" {
			fmt.Fprintf(&b, `<time datetime="%s">t</time>`, e.time)
		}
		fmt.Fprintf(&b, `</dt><dd><label><a href="#">%s</a></label><span class="text-break">%s</span></dd></dl>`, e.from, e.text)
	}
	b.WriteString("</body></html>")
	return b.String()
}
