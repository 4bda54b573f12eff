package classifier

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISOLayout is the output form of every Message.Time.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	time.UnixDate,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
}

var relativeRe = regexp.MustCompile(`(?i)^(\d+|an?)\s+(second|sec|minute|min|hour|day|week)s?\s+ago$`)

var relativeUnits = map[string]time.Duration{
	"second": time.Second,
	"sec":    time.Second,
	"minute": time.Minute,
	"min":    time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
}

// NormalizeTimestamp parses raw as a point in time and formats it as
// ISOLayout in UTC. Empty or unparseable input yields clock().
func NormalizeTimestamp(raw string, clock func() time.Time) string {
	if t, ok := ParseTimestamp(raw, clock); ok {
		return FormatISO(t)
	}
	return FormatISO(clock())
}

// FormatISO renders t in the canonical message time format.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseTimestamp accepts Unix epochs (seconds or milliseconds), the layouts
// above, and "N units ago" phrases relative to clock(). Results outside
// years 1..9999 are rejected since ISOLayout cannot represent them.
func ParseTimestamp(raw string, clock func() time.Time) (time.Time, bool) {
	t, ok := parseTimestamp(raw, clock)
	if !ok || !inISORange(t) {
		return time.Time{}, false
	}
	return t, true
}

func inISORange(t time.Time) bool {
	y := t.UTC().Year()
	return y >= 1 && y <= 9999
}

func parseTimestamp(raw string, clock func() time.Time) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if t, ok := parseEpoch(s); ok {
		return t, true
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}

	if strings.EqualFold(s, "just now") || strings.EqualFold(s, "now") {
		return clock(), true
	}
	if m := relativeRe.FindStringSubmatch(s); m != nil {
		n := 1
		if q := strings.ToLower(m[1]); q != "a" && q != "an" {
			v, err := strconv.Atoi(m[1])
			if err != nil {
				return time.Time{}, false
			}
			n = v
		}
		unit := relativeUnits[strings.ToLower(m[2])]
		if int64(n) > math.MaxInt64/int64(unit) {
			return time.Time{}, false
		}
		return clock().Add(-time.Duration(n) * unit), true
	}
	return time.Time{}, false
}

const maxEpochMillis = 253402300800000

func parseEpoch(s string) (time.Time, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return time.Time{}, false
	}
	// Plain years ("2024") parse as floats too; treat anything below 1e9
	// (2001-09-09) as not an epoch.
	if v < 1e9 {
		return time.Time{}, false
	}
	// Beyond 9999-12-31 in milliseconds; also keeps int64 conversion exact.
	if v >= maxEpochMillis {
		return time.Time{}, false
	}
	if v >= 1e12 {
		return time.UnixMilli(int64(v)).UTC(), true
	}
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}
