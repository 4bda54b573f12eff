// Package classifier derives typed message fields from raw inbox candidates.
// Every function here is pure: no I/O, no state, never an error.
package classifier

import (
	"encoding/hex"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/sha3"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

const (
	otpMinDigits = 4
	otpMaxDigits = 8

	// UnknownSender replaces senders that are empty or are themselves numbers.
	UnknownSender = "unknown"

	noiseMaxLength = 200
)

var (
	digitRunRe     = regexp.MustCompile(`\d+`)
	fromLabelRe    = regexp.MustCompile(`(?i)^From:\s*`)
	barePhoneRe    = regexp.MustCompile(`^\+\d+$`)
	embeddedFromRe = regexp.MustCompile(`(?i)From:\s*([^\n]+)\s*(.*)$`)
	phoneShapedRe  = regexp.MustCompile(`\+\d{7,}`)

	refreshRe   = regexp.MustCompile(`(?i)refresh this page`)
	newNumberRe = regexp.MustCompile(`(?i)new number from`)
	marketingRe = regexp.MustCompile(`(?i)short-?term|rental|aggregator|our platform|pricing model`)
)

// ExtractOTP returns the first run of 4-8 digits that is not part of a longer
// digit run, or nil.
func ExtractOTP(text string) *string {
	for _, run := range digitRunRe.FindAllString(text, -1) {
		if len(run) >= otpMinDigits && len(run) <= otpMaxDigits {
			otp := run
			return &otp
		}
	}
	return nil
}

// CleanFrom normalizes a raw sender label.
func CleanFrom(raw string) string {
	f := strings.TrimSpace(raw)
	if f == "" {
		return UnknownSender
	}
	f = strings.TrimSpace(fromLabelRe.ReplaceAllString(f, ""))
	if f == "" || barePhoneRe.MatchString(f) {
		return UnknownSender
	}
	return f
}

// StripEmbeddedFrom drops a leading "From: <sender>" line from a legacy
// container's text and keeps what follows. Text without such a prefix, or
// with nothing after it, is returned unchanged.
func StripEmbeddedFrom(text string) string {
	m := embeddedFromRe.FindStringSubmatch(text)
	if m == nil || m[2] == "" {
		return text
	}
	return strings.TrimSpace(m[2])
}

// NoiseFilter recognises upstream boilerplate picked up by the generic
// layout scan. Brand is the upstream site's own name.
type NoiseFilter struct {
	brand *regexp.Regexp
}

// NewNoiseFilter builds a filter for the given brand name. An empty brand
// disables the brand check.
func NewNoiseFilter(brand string) *NoiseFilter {
	nf := &NoiseFilter{}
	if b := strings.TrimSpace(brand); b != "" {
		nf.brand = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(b))
	}
	return nf
}

// IsNoise reports whether text should be discarded.
func (nf *NoiseFilter) IsNoise(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return true
	}
	if nf.brand != nil && nf.brand.MatchString(t) {
		return true
	}
	if newNumberRe.MatchString(t) || refreshRe.MatchString(t) || marketingRe.MatchString(t) {
		return true
	}
	if utf8.RuneCountInString(t) > noiseMaxLength && ExtractOTP(t) == nil {
		return true
	}
	return len(phoneShapedRe.FindAllString(t, 2)) >= 2
}

// MessageID derives a stable id from the message identity key, so the same
// message scraped twice gets the same id.
func MessageID(text, isoTime string) string {
	sum := sha3.Sum256([]byte(text + "|" + isoTime))
	return "msg-" + hex.EncodeToString(sum[:8])
}

// Classify turns a raw candidate into a Message. clock supplies the instant
// used when the raw timestamp is missing or unparseable.
func Classify(raw domain.RawMessage, clock func() time.Time) domain.Message {
	iso := NormalizeTimestamp(raw.Time, clock)
	text := strings.TrimSpace(raw.Text)
	return domain.Message{
		ID:   MessageID(text, iso),
		From: CleanFrom(raw.From),
		Text: text,
		OTP:  ExtractOTP(text),
		Time: iso,
	}
}
