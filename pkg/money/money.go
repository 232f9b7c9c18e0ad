package money

import (
	"fmt"
	"regexp"
)

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency is an ISO 4217 currency code. Amounts themselves travel as
// decimal.Decimal throughout the ledger; the code is carried once per loan.
type Currency struct {
	code string
}

// NewCurrency creates a Currency after validating the code is exactly 3 uppercase letters.
func NewCurrency(code string) (Currency, error) {
	if !currencyCodeRe.MatchString(code) {
		return Currency{}, fmt.Errorf("invalid currency code %q: must be exactly 3 uppercase letters", code)
	}
	return Currency{code: code}, nil
}

// MustCurrency creates a Currency and panics on error. Intended for package-level variable
// initialization only.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the ISO 4217 currency code.
func (c Currency) Code() string {
	return c.code
}

// String returns the currency code.
func (c Currency) String() string {
	return c.code
}
