package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts for display using locale grouping and
// decimal separators.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter returns a formatter for the given BCP 47 locale tag and
// currency symbol. An unknown tag falls back to English.
func NewFormatter(locale, symbol string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{
		printer: message.NewPrinter(tag),
		symbol:  symbol,
	}
}

// Number formats the amount without a currency symbol.
func (f *Formatter) Number(a Amount) string {
	return f.printer.Sprintf("%.2f", a.Float())
}

// Format formats the amount with the currency symbol, e.g. "€ 1,30".
func (f *Formatter) Format(a Amount) string {
	if f.symbol == "" {
		return f.Number(a)
	}
	if a < 0 {
		return "-" + f.symbol + " " + f.Number(-a)
	}
	return f.symbol + " " + f.Number(a)
}

// Signed formats the amount with an explicit '+' for positive values.
func (f *Formatter) Signed(a Amount) string {
	if a > 0 {
		return "+" + f.Format(a)
	}
	return f.Format(a)
}
