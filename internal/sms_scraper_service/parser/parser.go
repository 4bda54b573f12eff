package parser

import (
	"context"
	"log/slog"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/classifier"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

// DiagnosticSink stores documents nothing could be extracted from.
type DiagnosticSink interface {
	Capture(ctx context.Context, name, document string) error
}

// Parser runs its strategies in order and keeps the first non-empty result.
type Parser struct {
	strategies []Strategy
	sink       DiagnosticSink
	logger     *slog.Logger
}

// NewInboxParser returns the standard chain: definition lists first, then
// legacy containers filtered with noise. sink may be nil.
func NewInboxParser(noise *classifier.NoiseFilter, sink DiagnosticSink, logger *slog.Logger) *Parser {
	return New([]Strategy{DefinitionListStrategy{}, LegacyStrategy{Noise: noise}}, sink, logger)
}

func New(strategies []Strategy, sink DiagnosticSink, logger *slog.Logger) *Parser {
	return &Parser{strategies: strategies, sink: sink, logger: logger}
}

// Parse returns the candidates of the first strategy that yields any, and
// that strategy's layout. When every strategy comes back empty the document
// is handed to the diagnostic sink under name and Parse returns nil, "".
// A failed capture is logged, never returned.
func (p *Parser) Parse(ctx context.Context, name, document string) ([]domain.RawMessage, domain.Layout) {
	doc, err := LoadDocument(document)
	if err == nil {
		for _, s := range p.strategies {
			if raw := s.Extract(doc); len(raw) > 0 {
				p.logger.DebugContext(ctx, "Inbox parsed", "layout", s.Layout(), "candidates", len(raw))
				return raw, s.Layout()
			}
		}
	} else {
		p.logger.WarnContext(ctx, "Inbox document unreadable", "error", err)
	}

	p.logger.WarnContext(ctx, "No messages parsed from inbox document", "name", name, "bytes", len(document))
	if p.sink != nil {
		if err := p.sink.Capture(ctx, name, document); err != nil {
			p.logger.WarnContext(ctx, "Failed to capture diagnostic document", "name", name, "error", err)
		}
	}
	return nil, ""
}
