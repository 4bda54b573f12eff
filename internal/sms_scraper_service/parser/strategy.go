package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/classifier"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

// Strategy extracts raw message candidates from one inbox layout family.
// Implementations must not mutate doc.
type Strategy interface {
	Layout() domain.Layout
	Extract(doc *goquery.Document) []domain.RawMessage
}

// DefinitionListStrategy reads the current inbox layout, where every message
// is a <dl> holding the timestamp in <dt> and sender plus body in <dd>.
type DefinitionListStrategy struct{}

func (DefinitionListStrategy) Layout() domain.Layout { return domain.LayoutDefinitionList }

func (DefinitionListStrategy) Extract(doc *goquery.Document) []domain.RawMessage {
	var out []domain.RawMessage
	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		text := firstNonEmpty(
			firstText(dl, "dd span.text-break", "dd p"),
			strings.TrimSpace(dl.Find("dd").Text()),
		)
		if text == "" {
			return
		}
		out = append(out, domain.RawMessage{
			From: firstText(dl, "dd label a", "dd label", "dd strong"),
			Text: text,
			Time: firstNonEmpty(
				firstAttr(dl, "dt div[data-created]", "data-created"),
				firstAttr(dl, "dt time[datetime]", "datetime"),
				firstText(dl, "dt div"),
			),
			Layout: domain.LayoutDefinitionList,
		})
	})
	return out
}

// legacyContainers are the generic blocks older inbox layouts used for one message.
const legacyContainers = ".list-group-item, .sms-item, .inbox-item, .media, .panel-body, .card-body"

// LegacyStrategy scans generic container elements. Its matches are loose, so
// candidates that look like site boilerplate are dropped here.
type LegacyStrategy struct {
	Noise *classifier.NoiseFilter
}

func (LegacyStrategy) Layout() domain.Layout { return domain.LayoutLegacy }

func (s LegacyStrategy) Extract(doc *goquery.Document) []domain.RawMessage {
	var out []domain.RawMessage
	doc.Find(legacyContainers).Each(func(_ int, el *goquery.Selection) {
		text := firstNonEmpty(
			firstText(el, ".body, .text, .message-text, p"),
			strings.TrimSpace(el.Text()),
		)
		text = classifier.StripEmbeddedFrom(text)
		if text == "" {
			return
		}
		if s.Noise != nil && s.Noise.IsNoise(text) {
			return
		}
		out = append(out, domain.RawMessage{
			From: firstText(el, ".from, .sender, .name", "strong, b"),
			Text: text,
			Time: firstNonEmpty(
				firstAttr(el, "[data-created]", "data-created"),
				firstAttr(el, "time[datetime]", "datetime"),
				firstText(el, ".time, .date, .created"),
			),
			Layout: domain.LayoutLegacy,
		})
	})
	return out
}
