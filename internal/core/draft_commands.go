package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// LineField names an editable column of a line item, using the wire field names.
type LineField string

const (
	FieldItemID         LineField = "item_id"
	FieldDescription    LineField = "description"
	FieldQuantity       LineField = "quantity"
	FieldRate           LineField = "rate"
	FieldLocationID     LineField = "location_id"
	FieldPurchaseStatus LineField = "purchase_status"
)

// AddLineItem appends a row. Demand-bound rows are added through BindDemands.
type AddLineItem struct {
	Line LineItem
}

func (c AddLineItem) apply(po *PurchaseOrder, env DraftEnv, _ *[]Notice) error {
	line := cloneLine(c.Line)
	line.DemandID = nil
	line.DemandNumber = ""
	line.DemandCeiling = nil
	if line.ItemID != nil {
		it, ok := env.Items[*line.ItemID]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownItem, *line.ItemID)
		}
		freezeItem(&line, it)
	}
	po.Lines = append(po.Lines, line)
	return nil
}

// RemoveLineItem deletes the row at Index and releases its demand binding.
type RemoveLineItem struct {
	Index int
}

func (c RemoveLineItem) apply(po *PurchaseOrder, _ DraftEnv, notices *[]Notice) error {
	if c.Index < 0 || c.Index >= len(po.Lines) {
		return fmt.Errorf("%w: %d", ErrLineIndex, c.Index)
	}
	if len(po.Lines) == 1 {
		return ErrLastLineItem
	}
	removed := po.Lines[c.Index]
	po.Lines = append(po.Lines[:c.Index], po.Lines[c.Index+1:]...)
	if removed.DemandID != nil {
		releaseDemand(po, *removed.DemandID)
		*notices = append(*notices, Notice{
			Level:   NoticeInfo,
			Message: fmt.Sprintf("Demand %s released", demandLabel(removed)),
		})
	}
	return nil
}

// UpdateLineItem sets one field of the row at Index from its form value.
type UpdateLineItem struct {
	Index int
	Field LineField
	Value string
}

func (c UpdateLineItem) apply(po *PurchaseOrder, env DraftEnv, notices *[]Notice) error {
	if c.Index < 0 || c.Index >= len(po.Lines) {
		return fmt.Errorf("%w: %d", ErrLineIndex, c.Index)
	}
	line := &po.Lines[c.Index]
	value := strings.TrimSpace(c.Value)

	switch c.Field {
	case FieldItemID:
		if line.Bound() {
			return ErrBoundItem
		}
		if value == "" {
			line.ItemID, line.ItemCode, line.ItemName, line.UOM = nil, "", "", ""
			line.Rate = decimal.Zero
			return nil
		}
		id, err := strconv.Atoi(value)
		if err != nil {
			return fieldError(c.Index, c.Field, "must be a valid item id")
		}
		it, ok := env.Items[id]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownItem, id)
		}
		line.ItemID = &id
		freezeItem(line, it)

	case FieldDescription:
		line.Description = c.Value

	case FieldQuantity:
		qty, err := parseDecimal(value)
		if err != nil {
			return fieldError(c.Index, c.Field, "must be a number")
		}
		if line.DemandCeiling != nil && qty.GreaterThan(*line.DemandCeiling) {
			*notices = append(*notices, Notice{
				Level: NoticeWarning,
				Message: fmt.Sprintf("Quantity for demand %s limited to %s (requested %s)",
					demandLabel(*line), line.DemandCeiling.String(), qty.String()),
			})
			qty = *line.DemandCeiling
		}
		line.Quantity = qty

	case FieldRate:
		rate, err := parseDecimal(value)
		if err != nil {
			return fieldError(c.Index, c.Field, "must be a number")
		}
		line.Rate = rate

	case FieldLocationID:
		if value == "" {
			line.LocationID = nil
			return nil
		}
		id, err := strconv.Atoi(value)
		if err != nil {
			return fieldError(c.Index, c.Field, "must be a valid location id")
		}
		line.LocationID = &id

	case FieldPurchaseStatus:
		ps := PurchaseStatus(value)
		if !ps.Valid() {
			return fieldError(c.Index, c.Field, "unknown purchase status %q", value)
		}
		line.PurchaseStatus = ps

	default:
		return fieldError(c.Index, c.Field, "is read-only")
	}
	return nil
}

// SetGSTRate changes the GST percentage.
type SetGSTRate struct {
	Rate decimal.Decimal
}

func (c SetGSTRate) apply(po *PurchaseOrder, _ DraftEnv, _ *[]Notice) error {
	if err := checkPercent("gst_rate", c.Rate); err != nil {
		return err
	}
	po.GSTRate = c.Rate
	return nil
}

// SetWHTRate changes the withholding percentage.
type SetWHTRate struct {
	Rate decimal.Decimal
}

func (c SetWHTRate) apply(po *PurchaseOrder, _ DraftEnv, _ *[]Notice) error {
	if err := checkPercent("wht_rate", c.Rate); err != nil {
		return err
	}
	po.WHTRate = c.Rate
	return nil
}

// SetConditions replaces the order's terms.
type SetConditions struct {
	Conditions Conditions
}

func (c SetConditions) apply(po *PurchaseOrder, _ DraftEnv, _ *[]Notice) error {
	var errs ValidationErrors
	c.Conditions.Validate(&errs)
	if err := errs.Err(); err != nil {
		return err
	}
	po.Conditions = c.Conditions
	return nil
}

// SetHeader updates the non-nil header fields.
type SetHeader struct {
	VendorID           *int
	VendorName         *string
	LocationID         *int
	LocationName       *string
	DeliveryDate       *string
	ReferenceQuotation *string
	Incoterm           *string
	Label              *string
	Notes              *string
	Attachment         *string
}

func (c SetHeader) apply(po *PurchaseOrder, _ DraftEnv, _ *[]Notice) error {
	setIf(&po.VendorID, c.VendorID)
	setIf(&po.VendorName, c.VendorName)
	setIf(&po.LocationID, c.LocationID)
	setIf(&po.LocationName, c.LocationName)
	setIf(&po.DeliveryDate, c.DeliveryDate)
	setIf(&po.ReferenceQuotation, c.ReferenceQuotation)
	setIf(&po.Incoterm, c.Incoterm)
	setIf(&po.Label, c.Label)
	setIf(&po.Notes, c.Notes)
	if c.Attachment != nil {
		v := *c.Attachment
		po.Attachment = &v
	}
	return nil
}

// ChangeStatus moves the order along the workflow as Role. It is the only
// command accepted once an order has left draft.
type ChangeStatus struct {
	To   Status
	Role string
}

func (c ChangeStatus) apply(po *PurchaseOrder, _ DraftEnv, notices *[]Notice) error {
	t, err := AuthorizeTransition(po.Status, c.To, c.Role)
	if err != nil {
		return err
	}
	po.Status = t.To
	*notices = append(*notices, Notice{Level: NoticeSuccess, Message: t.Label + ": " + string(t.To)})
	return nil
}

func freezeItem(line *LineItem, it Item) {
	line.ItemCode = it.Code
	line.ItemName = it.Name
	line.UOM = it.UOM
	line.Rate = it.Rate
	if line.Description == "" {
		line.Description = it.Name
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func checkPercent(field string, v decimal.Decimal) error {
	var errs ValidationErrors
	validatePercent(field, v, &errs)
	return errs.Err()
}

func fieldError(index int, field LineField, format string, args ...any) error {
	var errs ValidationErrors
	errs.Add(fmt.Sprintf("lines.%d.%s", index, field), format, args...)
	return errs
}

func demandLabel(l LineItem) string {
	if l.DemandNumber != "" {
		return l.DemandNumber
	}
	if l.DemandID != nil {
		return strconv.Itoa(*l.DemandID)
	}
	return "?"
}
