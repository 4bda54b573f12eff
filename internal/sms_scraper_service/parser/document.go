// Package parser turns upstream HTML documents into raw listing and inbox
// records. It performs no I/O other than the optional diagnostic capture.
package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// LoadDocument parses an HTML string into a queryable document.
func LoadDocument(document string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// firstText returns the trimmed text of the first element matching each
// selector in turn, stopping at the first non-empty one.
func firstText(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if t := strings.TrimSpace(s.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// firstAttr returns the trimmed attribute of the first element matching sel.
func firstAttr(s *goquery.Selection, sel, attr string) string {
	v, _ := s.Find(sel).First().Attr(attr)
	return strings.TrimSpace(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
