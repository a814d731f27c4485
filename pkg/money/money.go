// Package money parses and formats fixed-point currency amounts.
//
// Amounts are kept as decimal values with an explicit ISO-4217 code. Parse
// also accepts the free-text forms older clients send, such as "£100.00",
// "$1,250.50" or "EUR 12".
package money

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmpty           = errors.New("amount is empty")
	ErrInvalidAmount   = errors.New("amount is not a valid number")
	ErrTooManyDecimals = errors.New("amount must have at most 2 decimal places")
	ErrNotPositive     = errors.New("amount must be greater than zero")
	ErrTooLarge        = errors.New("amount must have at most 16 integer digits")
	ErrCurrency        = errors.New("currency must be a 3-letter ISO code")
	ErrCurrencyClash   = errors.New("amount currency does not match currency field")
)

const (
	Scale = 2
	// MaxIntDigits fits a decimal(18,2) column.
	MaxIntDigits = 16
)

var upperBound = decimal.New(1, MaxIntDigits)

var symbols = map[string]string{
	"£":  "GBP",
	"€":  "EUR",
	"$":  "USD",
	"¥":  "JPY",
	"₹":  "INR",
	"₦":  "NGN",
	"Rp": "IDR",
}

var reCode = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidCurrency reports whether c looks like an ISO-4217 code.
func ValidCurrency(c string) bool { return reCode.MatchString(c) }

// Parse converts raw into a decimal and a currency code.
//
// currency, when non-empty, is the explicit code sent alongside the amount;
// a symbol or code embedded in raw must agree with it. When neither is given,
// fallback is used.
func Parse(raw, currency, fallback string) (decimal.Decimal, string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, "", ErrEmpty
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))

	embedded := ""
	for sym, code := range symbols {
		if strings.HasPrefix(s, sym) {
			embedded = code
			s = strings.TrimSpace(strings.TrimPrefix(s, sym))
			break
		}
	}
	if embedded == "" {
		if fields := strings.Fields(s); len(fields) == 2 {
			switch {
			case ValidCurrency(strings.ToUpper(fields[0])):
				embedded, s = strings.ToUpper(fields[0]), fields[1]
			case ValidCurrency(strings.ToUpper(fields[1])):
				embedded, s = strings.ToUpper(fields[1]), fields[0]
			}
		}
	}

	code := currency
	switch {
	case embedded != "" && currency != "" && embedded != currency:
		return decimal.Zero, "", ErrCurrencyClash
	case code == "" && embedded != "":
		code = embedded
	case code == "":
		code = strings.ToUpper(fallback)
	}
	if !ValidCurrency(code) {
		return decimal.Zero, "", ErrCurrency
	}

	s = strings.ReplaceAll(s, ",", "")
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, "", ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, "", ErrInvalidAmount
	}
	if d.Exponent() < -Scale && !d.Equal(d.Round(Scale)) {
		return decimal.Zero, "", ErrTooManyDecimals
	}
	if !d.IsPositive() {
		return decimal.Zero, "", ErrNotPositive
	}
	if d.Round(Scale).Cmp(upperBound) >= 0 {
		return decimal.Zero, "", ErrTooLarge
	}
	return d.Round(Scale), code, nil
}

// Format renders an amount the way exports show it: "GBP 100.00".
func Format(d decimal.Decimal, currency string) string {
	return currency + " " + d.StringFixed(Scale)
}
