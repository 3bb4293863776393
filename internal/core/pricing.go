package core

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineAmount returns quantity × rate rounded to 2 places.
func LineAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(rate).Round(2)
}

// Subtotal sums the line amounts of lines, recomputed from quantity and rate.
func Subtotal(lines []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineAmount(l.Quantity, l.Rate))
	}
	return sum.Round(2)
}

// GSTAmount applies the GST percentage to the subtotal.
func GSTAmount(subtotal, gstRate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(gstRate).Div(hundred).Round(2)
}

func TotalAfterTax(subtotal, gstAmount decimal.Decimal) decimal.Decimal {
	return subtotal.Add(gstAmount)
}

// WHTAmount applies the withholding percentage to the total after tax.
func WHTAmount(totalAfterTax, whtRate decimal.Decimal) decimal.Decimal {
	return totalAfterTax.Mul(whtRate).Div(hundred).Round(2)
}

func TotalPayable(totalAfterTax, whtAmount decimal.Decimal) decimal.Decimal {
	return totalAfterTax.Sub(whtAmount)
}

// Totals is the full tax cascade for one set of inputs.
type Totals struct {
	Subtotal      decimal.Decimal
	GSTAmount     decimal.Decimal
	TotalAfterTax decimal.Decimal
	WHTAmount     decimal.Decimal
	TotalPayable  decimal.Decimal
	AmountInWords string
}

// ComputeTotals runs the cascade subtotal → GST → total after tax → WHT → payable.
func ComputeTotals(lines []LineItem, gstRate, whtRate decimal.Decimal) Totals {
	var t Totals
	t.Subtotal = Subtotal(lines)
	t.GSTAmount = GSTAmount(t.Subtotal, gstRate)
	t.TotalAfterTax = TotalAfterTax(t.Subtotal, t.GSTAmount)
	t.WHTAmount = WHTAmount(t.TotalAfterTax, whtRate)
	t.TotalPayable = TotalPayable(t.TotalAfterTax, t.WHTAmount)
	t.AmountInWords = AmountInWords(t.TotalPayable)
	return t
}

// Policy holds business rules layered on top of pricing.
type Policy struct {
	// ForceWHTCertificateOnZero sets Conditions.WHT to Yes whenever the
	// withholding amount recomputes to exactly zero.
	ForceWHTCertificateOnZero bool
}

// DefaultPolicy is the rule set used when none is configured.
var DefaultPolicy = Policy{ForceWHTCertificateOnZero: true}

// Recompute re-derives every line amount and all order totals in place, then
// applies the policy. It is the only code path that writes derived fields.
func Recompute(po *PurchaseOrder, policy Policy) {
	for i := range po.Lines {
		po.Lines[i].Amount = LineAmount(po.Lines[i].Quantity, po.Lines[i].Rate)
	}
	t := ComputeTotals(po.Lines, po.GSTRate, po.WHTRate)
	po.Subtotal = t.Subtotal
	po.GSTAmount = t.GSTAmount
	po.TotalAfterTax = t.TotalAfterTax
	po.WHTAmount = t.WHTAmount
	po.TotalPayable = t.TotalPayable
	po.AmountInWords = t.AmountInWords

	if policy.ForceWHTCertificateOnZero && po.WHTAmount.IsZero() {
		po.Conditions.WHT = Yes
	}
}
