package core_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"procurement-console/internal/core"
)

var today = time.Date(2026, 10, 16, 15, 30, 0, 0, time.UTC)

func validOrder() core.PurchaseOrder {
	po := core.NewDraft(core.DefaultPolicy)
	po.VendorID = 1
	po.LocationID = 2
	po.DeliveryDate = "2026-10-20"
	po.Lines = []core.LineItem{{ItemID: intPtr(1), Quantity: dec("2"), Rate: dec("10")}}
	core.Recompute(&po, core.DefaultPolicy)
	return po
}

func fields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verrs core.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
	return verrs.ByField()
}

func TestValidateForSubmit_Valid(t *testing.T) {
	require.NoError(t, core.ValidateForSubmit(validOrder(), today))

	sameDay := validOrder()
	sameDay.DeliveryDate = "2026-10-16"
	require.NoError(t, core.ValidateForSubmit(sameDay, today))
}

func TestValidateForSubmit_Header(t *testing.T) {
	po := validOrder()
	po.VendorID = 0
	po.LocationID = 0
	po.DeliveryDate = "2026-10-15"

	got := fields(t, core.ValidateForSubmit(po, today))
	require.Contains(t, got, "vendor_id")
	require.Contains(t, got, "location_id")
	require.Equal(t, []string{"delivery date cannot be in the past"}, got["delivery_date"])

	po.DeliveryDate = "20/10/2026"
	got = fields(t, core.ValidateForSubmit(po, today))
	require.Contains(t, got["delivery_date"][0], "YYYY-MM-DD")
}

func TestValidateForSubmit_Lines(t *testing.T) {
	po := validOrder()
	po.Lines = []core.LineItem{
		{},
		{Description: "no item", Quantity: dec("1"), Rate: dec("1")},
		{ItemID: intPtr(1), Quantity: dec("-1"), Rate: dec("0")},
		{ItemID: intPtr(1), Quantity: dec("20"), Rate: dec("5"), DemandID: intPtr(42), DemandCeiling: decPtr("15")},
	}

	got := fields(t, core.ValidateForSubmit(po, today))
	require.NotContains(t, got, "lines.0.item_id", "blank rows are ignored")
	require.Contains(t, got, "lines.1.item_id")
	require.Equal(t, []string{"quantity cannot be negative"}, got["lines.2.quantity"])
	require.Equal(t, []string{"rate is required"}, got["lines.2.rate"])
	require.Contains(t, got["lines.3.quantity"][0], "exceeds the demand ceiling")
}

func TestValidateForSubmit_NoLines(t *testing.T) {
	po := validOrder()
	po.Lines = []core.LineItem{{}}

	got := fields(t, core.ValidateForSubmit(po, today))
	require.Contains(t, got, "lines")
}

func TestValidateForSubmit_BoundLineWithoutCatalogItem(t *testing.T) {
	po := validOrder()
	po.Lines = []core.LineItem{{DemandID: intPtr(8), Description: "Item 8", Quantity: dec("1"), Rate: dec("3")}}

	require.NoError(t, core.ValidateForSubmit(po, today))
}

func TestValidationErrors_FieldMapRoundTrip(t *testing.T) {
	var errs core.ValidationErrors
	errs.Add("vendor_id", "vendor is required")
	errs.Add("lines.0.rate", "rate is required")
	errs.Add("lines.0.rate", "must be a number")

	back := core.FromFieldMap(errs.ByField())
	require.Len(t, back, 3)
	require.Equal(t, "lines.0.rate", back[0].Field)
	require.Equal(t, "vendor_id", back[2].Field)
	require.Nil(t, core.ValidationErrors(nil).Err())
}

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func TestValidateForSubmit_RejectsPrecisionTheStoreWouldRound(t *testing.T) {
	po := validOrder()
	po.Lines[0].Quantity = dec("3")
	po.Lines[0].Rate = dec("10.125")
	core.Recompute(&po, core.DefaultPolicy)
	require.Equal(t, "30.38", po.Lines[0].Amount.StringFixed(2))

	got := fields(t, core.ValidateForSubmit(po, today))
	require.Equal(t, []string{"rate must have at most 2 decimal places"}, got["lines.0.rate"])

	po = validOrder()
	po.Lines[0].Quantity = dec("1.00005")
	po.GSTRate = dec("17.125")
	po.WHTRate = dec("4.5001")
	core.Recompute(&po, core.DefaultPolicy)
	got = fields(t, core.ValidateForSubmit(po, today))
	require.Equal(t, []string{"quantity must have at most 4 decimal places"}, got["lines.0.quantity"])
	require.Equal(t, []string{"must have at most 2 decimal places"}, got["gst_rate"])
	require.Equal(t, []string{"must have at most 2 decimal places"}, got["wht_rate"])

	po = validOrder()
	po.Lines[0].Rate = dec("10.120")
	po.GSTRate = dec("18.00")
	core.Recompute(&po, core.DefaultPolicy)
	require.NoError(t, core.ValidateForSubmit(po, today))
}
