// currency.go - GBP display formatting.
//
// Amounts are computed and stored as decimals; this is the single place
// they become user-facing strings. Formatting goes through the en-GB
// message printer so thousands grouping follows the locale rather than
// hand-rolled string slicing.
package engine

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var gbPrinter = message.NewPrinter(language.BritishEnglish)

// FormatGBP renders a monetary amount in pounds sterling, e.g. "£1,234.50".
func FormatGBP(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return gbPrinter.Sprintf("£%.2f", f)
}
