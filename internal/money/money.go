// Package money renders Colombian peso amounts for narrative output.
package money

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("es-CO"))

// Format renders a COP amount with locale grouping and no minor units,
// e.g. 1125000 -> "$ 1.125.000".
func Format(value float64) string {
	return printer.Sprintf("$ %v", number.Decimal(math.Round(value), number.MaxFractionDigits(0)))
}
