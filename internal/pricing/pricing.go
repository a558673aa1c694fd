// Package pricing extracts a numeric unit price and currency tag from the
// free-text price strings carried by the experience catalog.
package pricing

import (
	"errors"
	"strconv"
	"strings"
)

// DefaultCurrency is used when no symbol or ISO token matches.
const DefaultCurrency = "USD"

var ErrNoPrice = errors.New("price string contains no digits")

var symbolCurrencies = map[rune]string{
	'$': "USD",
	'€': "EUR",
	'£': "GBP",
	'¥': "JPY",
}

// isoTokens covers leading ISO-4217 tokens seen in catalog data, e.g.
// "JPY 8,000".
var isoTokens = map[string]string{
	"USD": "USD",
	"EUR": "EUR",
	"GBP": "GBP",
	"JPY": "JPY",
	"THB": "THB",
	"CRC": "CRC",
	"NPR": "NPR",
}

// Parse strips everything that is not a digit from s and interprets the
// remainder as an integer unit price. The currency is detected from a
// leading symbol or ISO token and defaults to DefaultCurrency.
func Parse(s string) (int, string, error) {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, "", ErrNoPrice
	}

	unit, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, "", err
	}

	return unit, detectCurrency(s), nil
}

func detectCurrency(s string) string {
	for _, r := range s {
		if cur, ok := symbolCurrencies[r]; ok {
			return cur
		}
	}

	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) > 0 {
		if cur, ok := isoTokens[strings.ToUpper(fields[0])]; ok {
			return cur
		}
	}

	return DefaultCurrency
}

// Total is the booking total for a guest count. Plain integer multiply;
// the caller owns any guest-range validation.
func Total(unit, guests int) int {
	return unit * guests
}
