package domain

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var digitsIDRe = regexp.MustCompile(`^\d{7,15}$`)

// PhoneNumber is one publicly listed number scraped from a listing page.
// Identity is Phone. Values are never persisted outside process memory.
type PhoneNumber struct {
	ID          string  `json:"id"`    // 7-15 digits
	Phone       string  `json:"phone"` // "+" + ID
	Display     string  `json:"display"`
	Provider    string  `json:"provider"`
	CountryCode *string `json:"countryCode"`
	Country     *string `json:"country"`
	SourceURL   string  `json:"sourceUrl"`
}

// NewPhoneNumber builds a PhoneNumber from a digit id. It returns
// ErrInvalidPhone unless id is 7-15 ASCII digits.
func NewPhoneNumber(id, provider, sourceURL string, countryCode, country *string) (PhoneNumber, error) {
	if !IsValidID(id) {
		return PhoneNumber{}, ErrInvalidPhone
	}
	phone := "+" + id
	return PhoneNumber{
		ID:          id,
		Phone:       phone,
		Display:     FormatDisplay(phone),
		Provider:    provider,
		CountryCode: countryCode,
		Country:     country,
		SourceURL:   sourceURL,
	}, nil
}

// IsValidID reports whether id is a bare 7-15 digit number id.
func IsValidID(id string) bool {
	return digitsIDRe.MatchString(id)
}

// NormalizePhoneID accepts "12025550123" or "+12025550123" and returns the
// digit id, or ErrInvalidPhone.
func NormalizePhoneID(raw string) (string, error) {
	id := strings.TrimPrefix(strings.TrimSpace(raw), "+")
	if !IsValidID(id) {
		return "", ErrInvalidPhone
	}
	return id, nil
}

// FormatDisplay renders an E.164 string in international format
// ("+1 202-555-0123"). Numbers libphonenumber cannot place are returned as is.
func FormatDisplay(phone string) string {
	parsed, err := phonenumbers.Parse(phone, "")
	if err != nil || !phonenumbers.IsPossibleNumber(parsed) {
		return phone
	}
	return phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL)
}
