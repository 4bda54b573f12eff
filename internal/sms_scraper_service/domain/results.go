package domain

import (
	"sort"
	"strings"
)

// NumbersResult is returned to collaborators listing numbers.
type NumbersResult struct {
	Provider string        `json:"provider"`
	Count    int           `json:"count"`
	Numbers  []PhoneNumber `json:"numbers"`
}

// MessagesResult is returned to collaborators listing one number's inbox.
type MessagesResult struct {
	Phone    string    `json:"phone"`
	Count    int       `json:"count"`
	Messages []Message `json:"messages"`
}

// OTPResult carries the first OTP found in a MessagesResult.
type OTPResult struct {
	Phone   string  `json:"phone"`
	OTP     *string `json:"otp"`
	From    string  `json:"from,omitempty"`
	Time    string  `json:"time,omitempty"`
	Message string  `json:"message,omitempty"`
}

// CountryCount is one row of CountriesResult.
type CountryCount struct {
	Country string `json:"country"`
	Code    string `json:"code"`
	Count   int    `json:"count"`
}

// CountriesResult groups listed numbers by country.
type CountriesResult struct {
	Provider  string         `json:"provider"`
	Count     int            `json:"count"`
	Countries []CountryCount `json:"countries"`
}

// NewNumbersResult wraps numbers, never returning a nil slice.
func NewNumbersResult(provider string, numbers []PhoneNumber) NumbersResult {
	if numbers == nil {
		numbers = []PhoneNumber{}
	}
	return NumbersResult{Provider: provider, Count: len(numbers), Numbers: numbers}
}

// NewMessagesResult wraps messages, never returning a nil slice.
func NewMessagesResult(phone string, messages []Message) MessagesResult {
	if messages == nil {
		messages = []Message{}
	}
	return MessagesResult{Phone: phone, Count: len(messages), Messages: messages}
}

// LatestOTP picks the first message, in result order, that carries an OTP.
func LatestOTP(res MessagesResult) OTPResult {
	for _, m := range res.Messages {
		if m.OTP != nil {
			return OTPResult{Phone: res.Phone, OTP: m.OTP, From: m.From, Time: m.Time}
		}
	}
	return OTPResult{Phone: res.Phone, Message: "No OTP found"}
}

// FilterByCountry keeps numbers whose country code or name contains query,
// case-insensitively. An empty query returns numbers unchanged.
func FilterByCountry(numbers []PhoneNumber, query string) []PhoneNumber {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return numbers
	}
	out := make([]PhoneNumber, 0, len(numbers))
	for _, n := range numbers {
		if strings.Contains(strings.ToLower(deref(n.CountryCode)), q) ||
			strings.Contains(strings.ToLower(deref(n.Country)), q) {
			out = append(out, n)
		}
	}
	return out
}

// GroupCountries counts numbers per country. Numbers missing either the
// country name or code are skipped. Grouping is by lower-cased name; the first
// seen spelling and code win. Rows are sorted by country name.
func GroupCountries(provider string, numbers []PhoneNumber) CountriesResult {
	index := make(map[string]int)
	rows := []CountryCount{}
	for _, n := range numbers {
		if n.Country == nil || n.CountryCode == nil || *n.Country == "" || *n.CountryCode == "" {
			continue
		}
		key := strings.ToLower(*n.Country)
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, CountryCount{Country: *n.Country, Code: *n.CountryCode})
		}
		rows[i].Count++
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return strings.ToLower(rows[a].Country) < strings.ToLower(rows[b].Country)
	})
	return CountriesResult{Provider: provider, Count: len(rows), Countries: rows}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
