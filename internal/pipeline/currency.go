package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SanitizeCurrencyValue parses a currency string such as "Rp 1.000.000" or
// "Rp0" into its unsigned integer magnitude. Every non-digit character is
// stripped; empty or unparseable input yields 0. Signs are not handled,
// notification amounts are magnitudes only.
func SanitizeCurrencyValue(raw string) int64 {
	if raw == "" {
		return 0
	}
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// indonesianMonths maps Indonesian month names and accepted abbreviations
// (plus the English spellings banks mix in) to time.Month.
var indonesianMonths = map[string]time.Month{
	"januari": time.January, "jan": time.January,
	"februari": time.February, "feb": time.February,
	"maret": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"mei": time.May, "may": time.May,
	"juni": time.June, "jun": time.June,
	"juli": time.July, "jul": time.July,
	"agustus": time.August, "ags": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"oktober": time.October, "okt": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"desember": time.December, "des": time.December, "dec": time.December,
}

var indonesianDateRe = regexp.MustCompile(`(\d{1,2})\s+([a-zA-Z]+)\s+(\d{4})(?:\s+(\d{1,2}):(\d{1,2}))?`)

// fallbackLayouts are tried in order when the Indonesian pattern does not match.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// ParseIndonesianDate parses dates like "05 Mei 2025 12:48" (time part
// optional, month name case-insensitive) into a local time. Generic layouts
// are attempted as a fallback. The second return value is false when nothing
// matched; callers substitute the current time.
func ParseIndonesianDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if m := indonesianDateRe.FindStringSubmatch(raw); m != nil {
		month, ok := indonesianMonths[strings.ToLower(m[2])]
		if ok {
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			hour, minute := 0, 0
			if m[4] != "" {
				hour, _ = strconv.Atoi(m[4])
				minute, _ = strconv.Atoi(m[5])
			}
			if day >= 1 && day <= 31 {
				return time.Date(year, month, day, hour, minute, 0, 0, time.Local), true
			}
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
