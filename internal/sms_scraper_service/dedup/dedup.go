// Package dedup canonicalizes scraped result lists.
package dedup

import "github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"

const (
	// MaxNumbers caps a listing result.
	MaxNumbers = 300
	// MaxMessages caps an inbox result.
	MaxMessages = 50
)

// Window keeps the first occurrence of every key, preserves source order and
// stops once limit items are kept. A limit <= 0 means no cap.
func Window[T any](items []T, key func(T) string, limit int) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, capHint(limit, len(items)))
	for _, it := range items {
		if limit > 0 && len(out) >= limit {
			break
		}
		k := key(it)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Numbers dedups by phone and caps at limit.
func Numbers(numbers []domain.PhoneNumber, limit int) []domain.PhoneNumber {
	return Window(numbers, func(n domain.PhoneNumber) string { return n.Phone }, limit)
}

// Messages dedups by text|time and caps at limit.
func Messages(messages []domain.Message, limit int) []domain.Message {
	return Window(messages, domain.Message.DedupKey, limit)
}

func capHint(limit, n int) int {
	if limit > 0 && limit < n {
		return limit
	}
	return n
}
