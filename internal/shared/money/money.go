// Package money formats prices stored in minor currency units.
package money

import (
	"fmt"
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format renders an amount in minor units using the currency's standard
// scale, e.g. 1999 USD becomes "USD 19.99" and 500 JPY stays "JPY 500".
func Format(minor uint64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%d %s", minor, code)
	}
	return printer.Sprint(currency.ISO(unit.Amount(ToMajor(minor, unit))))
}

// ToMajor converts minor units to the currency's major unit.
func ToMajor(minor uint64, unit currency.Unit) float64 {
	scale, _ := currency.Standard.Rounding(unit)
	return float64(minor) / math.Pow10(scale)
}
