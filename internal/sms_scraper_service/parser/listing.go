package parser

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

const (
	listingAnchorSelector = `a.callout[href*="/numbers/"]`
	genericAnchorSelector = `a[href*="/numbers/"]`
	countryFlagSelector   = "span.fi"
	countryNameSelector   = "h5.text-secondary"
	countryFlagAttr       = "data-flag"
)

var numberHrefRe = regexp.MustCompile(`/numbers/(\d{7,15})(?:\D|$)`)

// ListingParser reads number anchors off a listing page.
type ListingParser struct {
	Provider string
	BaseURL  *url.URL
}

// Parse returns one PhoneNumber per well-formed anchor, in document order.
// Duplicates within the page are kept; callers dedup across pages.
func (lp ListingParser) Parse(document string) ([]domain.PhoneNumber, error) {
	doc, err := LoadDocument(document)
	if err != nil {
		return nil, err
	}

	anchors := doc.Find(listingAnchorSelector)
	if anchors.Length() == 0 {
		anchors = doc.Find(genericAnchorSelector)
	}

	var out []domain.PhoneNumber
	anchors.Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := numberHrefRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		n, err := domain.NewPhoneNumber(m[1], lp.Provider, lp.resolve(href),
			optional(strings.ToLower(firstAttr(a, countryFlagSelector, countryFlagAttr))),
			optional(firstText(a, countryNameSelector)),
		)
		if err != nil {
			return
		}
		out = append(out, n)
	})
	return out, nil
}

func (lp ListingParser) resolve(href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil || lp.BaseURL == nil {
		return href
	}
	return lp.BaseURL.ResolveReference(ref).String()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
