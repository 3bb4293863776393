package core

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var groupPrinter = message.NewPrinter(language.English)

// AmountInWords renders a payable total for printing, e.g.
// "1,121 Rupees and 50 Paisa Only". A zero amount renders "Zero Rupees Only".
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Round(2)
	if amount.IsZero() {
		return "Zero Rupees Only"
	}

	var b strings.Builder
	if amount.IsNegative() {
		b.WriteString("Minus ")
		amount = amount.Neg()
	}

	rupees := amount.Truncate(0)
	paisa := amount.Sub(rupees).Mul(hundred).IntPart()

	b.WriteString(groupPrinter.Sprintf("%d", rupees.IntPart()))
	b.WriteString(" Rupees")
	if paisa != 0 {
		b.WriteString(groupPrinter.Sprintf(" and %d Paisa", paisa))
	}
	b.WriteString(" Only")
	return b.String()
}
