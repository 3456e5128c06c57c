package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale is the storefront display locale (Chilean peso, no minor units).
var DefaultLocale = language.MustParse("es-CL")

// Formatter renders decimal amounts for display. Rounding happens here and
// nowhere earlier: engines keep full precision.
type Formatter struct {
	printer *message.Printer
	symbol  string
	places  int32
}

// NewFormatter builds a formatter for the given locale, currency symbol and
// number of displayed decimal places.
func NewFormatter(tag language.Tag, symbol string, places int32) *Formatter {
	return &Formatter{
		printer: message.NewPrinter(tag),
		symbol:  symbol,
		places:  places,
	}
}

var defaultFormatter = NewFormatter(DefaultLocale, "$", 0)

// Format renders amount with the default es-CL formatter, e.g. "$12.990".
func Format(amount decimal.Decimal) string {
	return defaultFormatter.Format(amount)
}

// Format rounds half away from zero to the configured places and groups digits
// per locale.
func (f *Formatter) Format(amount decimal.Decimal) string {
	rounded := amount.Round(f.places)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	if f.places <= 0 {
		return sign + f.symbol + f.printer.Sprintf("%d", rounded.IntPart())
	}
	value, _ := rounded.Float64()
	return sign + f.symbol + f.printer.Sprintf(fmt.Sprintf("%%.%df", f.places), value)
}

// Percent renders a discount percentage such as "10%".
func Percent(p decimal.Decimal) string {
	return p.Round(2).String() + "%"
}
