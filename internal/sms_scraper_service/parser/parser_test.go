package parser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/classifier"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

type recordingSink struct {
	names     []string
	documents []string
	err       error
}

func (r *recordingSink) Capture(_ context.Context, name, document string) error {
	r.names = append(r.names, name)
	r.documents = append(r.documents, document)
	return r.err
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

func newTestParser(sink DiagnosticSink) *Parser {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewInboxParser(classifier.NewNoiseFilter("sms24"), sink, logger)
}

func TestParse_DefinitionListWins(t *testing.T) {
	sink := &recordingSink{}
	raw, layout := newTestParser(sink).Parse(context.Background(), "inbox-12025550123", fixture(t, "inbox_definition_list.html"))

	want := []domain.RawMessage{
		{From: "Google", Text: "G-482113 is your Google verification code.", Time: "1710062100", Layout: domain.LayoutDefinitionList},
		// Brand text is only filtered on the legacy path.
		{From: "SMS24", Text: "Thanks for using sms24.me, code 5521", Time: "2024-03-10T09:00:00Z", Layout: domain.LayoutDefinitionList},
		{From: "", Text: "Plain dd text 9911", Time: "", Layout: domain.LayoutDefinitionList},
	}
	assert.Equal(t, domain.LayoutDefinitionList, layout)
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("unexpected candidates (-want +got):\n%s", diff)
	}
	assert.Empty(t, sink.names)
}

func TestParse_FallsBackToLegacyAndDropsNoise(t *testing.T) {
	sink := &recordingSink{}
	raw, layout := newTestParser(sink).Parse(context.Background(), "inbox-1", fixture(t, "inbox_legacy.html"))

	want := []domain.RawMessage{
		{From: "Google", Text: "Your code is 4821", Time: "2024-03-10 09:15:00", Layout: domain.LayoutLegacy},
		{From: "", Text: "Login code 55123", Time: "", Layout: domain.LayoutLegacy},
		{From: "Bank", Text: "Transfer approved", Time: "2024-03-10T08:00:00Z", Layout: domain.LayoutLegacy},
	}
	assert.Equal(t, domain.LayoutLegacy, layout)
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("unexpected candidates (-want +got):\n%s", diff)
	}
	assert.Empty(t, sink.names)
}

func TestParse_EmptyDocumentGoesToSink(t *testing.T) {
	sink := &recordingSink{}
	doc := "<html><body><p>Nothing to see</p></body></html>"

	raw, layout := newTestParser(sink).Parse(context.Background(), "inbox-42", doc)

	assert.Nil(t, raw)
	assert.Equal(t, domain.Layout(""), layout)
	assert.Equal(t, []string{"inbox-42"}, sink.names)
	assert.Equal(t, []string{doc}, sink.documents)
}

func TestParse_SinkFailureIsSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	raw, _ := newTestParser(sink).Parse(context.Background(), "inbox-42", "<html></html>")
	assert.Nil(t, raw)
	assert.Len(t, sink.names, 1)
}

func TestParse_NilSink(t *testing.T) {
	raw, layout := newTestParser(nil).Parse(context.Background(), "inbox-42", "")
	assert.Nil(t, raw)
	assert.Empty(t, layout)
}

type stubStrategy struct {
	layout domain.Layout
	out    []domain.RawMessage
	calls  *int
}

func (s stubStrategy) Layout() domain.Layout { return s.layout }

func (s stubStrategy) Extract(*goquery.Document) []domain.RawMessage {
	*s.calls++
	return s.out
}

func TestParse_LaterStrategiesNotTriedAfterHit(t *testing.T) {
	var first, second int
	p := New([]Strategy{
		stubStrategy{layout: "a", out: []domain.RawMessage{{Text: "x"}}, calls: &first},
		stubStrategy{layout: "b", out: []domain.RawMessage{{Text: "y"}}, calls: &second},
	}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	raw, layout := p.Parse(context.Background(), "n", "<html></html>")
	assert.Equal(t, domain.Layout("a"), layout)
	assert.Len(t, raw, 1)
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
}
