package newsletter

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseEuroFloat parses a number written in the Spanish convention
// ("1.234,56"): dots are thousand separators and the comma is the decimal
// mark. Returns ok=false for empty or unparseable input.
func ParseEuroFloat(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, ".", "")
	raw = strings.ReplaceAll(raw, ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatPrice renders a price for display: whole numbers lose their
// decimals, everything else gets exactly two with a comma separator.
func FormatPrice(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strings.Replace(fmt.Sprintf("%.2f", v), ".", ",", 1)
}

// FormatRating renders a rating: 10.0 → "10", 9.5 → "9.5", 8.25 → "8.3".
func FormatRating(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return fmt.Sprintf("%.1f", v)
}

// Shorten trims text to max characters, backing off to the last space so
// words are never split unless the text has no space before the cutoff,
// and appends an ellipsis. Rune-aware: the budget counts characters, not
// bytes.
func Shorten(text string, max int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	truncated := string(runes[:max-1])
	if i := strings.LastIndex(truncated, " "); i >= 0 {
		truncated = truncated[:i]
	}
	return truncated + "…"
}

// FormatSpanishNumber formats a scraped or user-entered amount with the
// Spanish thousands/decimal convention for the legacy CSV import. Values
// already comma-formatted and non-numeric values pass through unchanged.
func FormatSpanishNumber(raw string) string {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "€", ""))
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, ",") && !strings.Contains(raw, ".") {
		return raw
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	s := fmt.Sprintf("%.2f", f)
	if strings.HasSuffix(s, ".00") {
		s = s[:len(s)-3]
	}
	intPart, decPart, hasDec := strings.Cut(s, ".")
	intPart = groupThousands(intPart)
	if hasDec {
		return intPart + "," + decPart
	}
	return intPart
}

func groupThousands(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune('.')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
