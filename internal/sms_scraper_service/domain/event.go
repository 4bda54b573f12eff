package domain

import (
	"strings"
	"time"
)

// ScrapedSubjectPrefix prefixes the NATS subject of ScrapedMessagesEvent;
// the provider name completes it ("sms.scraped.sms24").
const ScrapedSubjectPrefix = "sms.scraped."

// ScrapedSubject returns the subject events for provider are published on.
func ScrapedSubject(provider string) string {
	return ScrapedSubjectPrefix + provider
}

// ProviderFromSubject extracts the provider segment of a scraped-messages
// subject. ok is false for foreign subjects and wildcards.
func ProviderFromSubject(subject string) (provider string, ok bool) {
	p, found := strings.CutPrefix(subject, ScrapedSubjectPrefix)
	if !found || p == "" || p == "*" || p == ">" || strings.Contains(p, ".") {
		return "", false
	}
	return p, true
}

// ScrapedMessagesEvent announces one successful inbox extraction.
type ScrapedMessagesEvent struct {
	RunID     string    `json:"run_id"`
	Provider  string    `json:"provider"`
	Phone     string    `json:"phone"`
	ScrapedAt time.Time `json:"scraped_at"`
	Messages  []Message `json:"messages"`
}
