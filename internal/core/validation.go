package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Stored precision of rates and quantities. Values finer than this would be
// rounded by the database and no longer reproduce the computed amounts.
const (
	rateScale     = 2
	quantityScale = 4
)

// ValidateForSubmit checks that po can be sent to the server. Every failure is
// collected; the result is nil or a ValidationErrors. today is truncated to a
// calendar date in its own location.
func ValidateForSubmit(po PurchaseOrder, today time.Time) error {
	var errs ValidationErrors

	if po.VendorID == 0 {
		errs.Add("vendor_id", "vendor is required")
	}
	if po.LocationID == 0 {
		errs.Add("location_id", "delivery location is required")
	}
	validateDeliveryDate(po.DeliveryDate, today, &errs)
	po.Conditions.Validate(&errs)
	validatePercent("gst_rate", po.GSTRate, &errs)
	validatePercent("wht_rate", po.WHTRate, &errs)

	lines := 0
	for i, l := range po.Lines {
		if l.Blank() && !l.Bound() {
			continue
		}
		lines++
		validateLine(i, l, &errs)
	}
	if lines == 0 {
		errs.Add("lines", "at least one line item is required")
	}
	return errs.Err()
}

func validateDeliveryDate(s string, today time.Time, errs *ValidationErrors) {
	if s == "" {
		errs.Add("delivery_date", "delivery date is required")
		return
	}
	d, err := time.ParseInLocation(dateLayout, s, today.Location())
	if err != nil {
		errs.Add("delivery_date", "must be a date in YYYY-MM-DD format")
		return
	}
	y, m, day := today.Date()
	if d.Before(time.Date(y, m, day, 0, 0, 0, 0, today.Location())) {
		errs.Add("delivery_date", "delivery date cannot be in the past")
	}
}

func validatePercent(field string, v decimal.Decimal, errs *ValidationErrors) {
	switch {
	case v.IsNegative() || v.GreaterThan(hundred):
		errs.Add(field, "must be between 0 and 100")
	case !fitsScale(v, rateScale):
		errs.Add(field, "must have at most %d decimal places", rateScale)
	}
}

func fitsScale(v decimal.Decimal, places int32) bool {
	return v.Equal(v.Round(places))
}

func validateLine(i int, l LineItem, errs *ValidationErrors) {
	key := func(f string) string { return fmt.Sprintf("lines.%d.%s", i, f) }

	if l.ItemID == nil && !l.Bound() {
		errs.Add(key("item_id"), "item is required")
	}
	switch {
	case l.Quantity.IsNegative():
		errs.Add(key("quantity"), "quantity cannot be negative")
	case l.Quantity.IsZero():
		errs.Add(key("quantity"), "quantity is required")
	case l.DemandCeiling != nil && l.Quantity.GreaterThan(*l.DemandCeiling):
		errs.Add(key("quantity"), "quantity %s exceeds the demand ceiling of %s",
			l.Quantity.String(), l.DemandCeiling.String())
	case !fitsScale(l.Quantity, quantityScale):
		errs.Add(key("quantity"), "quantity must have at most %d decimal places", quantityScale)
	}
	switch {
	case l.Rate.IsNegative():
		errs.Add(key("rate"), "rate cannot be negative")
	case l.Rate.IsZero():
		errs.Add(key("rate"), "rate is required")
	case !fitsScale(l.Rate, rateScale):
		errs.Add(key("rate"), "rate must have at most %d decimal places", rateScale)
	}
	if !l.PurchaseStatus.Valid() {
		errs.Add(key("purchase_status"), "unknown purchase status %q", string(l.PurchaseStatus))
	}
}
