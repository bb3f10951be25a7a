// Package fields parses the loosely formatted date and amount cells found in
// bank statements and notification emails.
//
// Parsing is lenient: the Parse* helpers never fail and substitute a safe
// default instead, so one bad cell cannot abort a whole import. The Date and
// Amount variants also report whether the input was actually understood.
package fields

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// StatementLayouts are tried in order when parsing statement dates.
// Day-first layouts precede month-first ones, so "01/02/2024" is 1 Feb 2024.
var StatementLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2006-1-2",
	"2 Jan 2006",
	"2-Jan-2006",
	"1/2/2006",
	"2006/1/2",
}

// EmailLayouts are tried in order on the date found in an email body.
var EmailLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2/1/06",
	"2-1-06",
}

// now is swapped in tests.
var now = time.Now

// Today returns the current calendar date at midnight UTC.
func Today() time.Time {
	y, m, d := now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date parses text with the first layout that accepts it.
// The result has no time component.
func Date(text string, layouts []string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate parses a statement date, falling back to today.
func ParseDate(text string) time.Time {
	return ParseDateWith(text, StatementLayouts)
}

// ParseDateWith parses text with layouts, falling back to today.
func ParseDateWith(text string, layouts []string) time.Time {
	if t, ok := Date(text, layouts); ok {
		return t
	}
	return Today()
}

var currencyPrefix = regexp.MustCompile(`(?i)^(?:rs\.?|inr)`)

const currencySymbols = "₹$€£"

// Normalize strips currency markers, thousands separators and whitespace
// from a money string: "₹ 1,234.50" -> "1234.50".
func Normalize(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ',' || strings.ContainsRune(currencySymbols, r) {
			return -1
		}
		return r
	}, text)
	return currencyPrefix.ReplaceAllString(cleaned, "")
}

// IsPlaceholder reports whether text carries no amount at all ("", "-").
func IsPlaceholder(text string) bool {
	n := Normalize(text)
	return n == "" || n == "-"
}

// Amount parses a money string. ok is false for placeholders and for
// anything that is not a number after normalization.
func Amount(text string) (decimal.Decimal, bool) {
	if IsPlaceholder(text) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(Normalize(text))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseAmount parses a money string, returning zero when there is no usable number.
func ParseAmount(text string) decimal.Decimal {
	d, _ := Amount(text)
	return d
}
