package core

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// DemandType selects which ordering flow a demand feeds.
type DemandType string

const (
	DemandTypeRFQ            DemandType = "rfq"
	DemandTypeMarketPurchase DemandType = "market_purchase"
)

// DemandItem is the item a demand requests. It is either an InventoryItem or a
// NonInventoryItem; a demand without a catalogued item has a nil DemandItem.
type DemandItem interface {
	demandItem()
	itemID() int
	itemName() string
	itemCode() string
	itemUOM() string
	itemDescription() string
	itemRate() decimal.Decimal
}

// InventoryItem is a stocked item from the item master.
type InventoryItem struct {
	ID          int
	Code        string
	Name        string
	Description string
	UOM         string
	Rate        decimal.Decimal
}

func (InventoryItem) demandItem() {}
func (i InventoryItem) itemID() int { return i.ID }
func (i InventoryItem) itemName() string { return i.Name }
func (i InventoryItem) itemCode() string { return i.Code }
func (i InventoryItem) itemUOM() string { return i.UOM }
func (i InventoryItem) itemDescription() string { return i.Description }
func (i InventoryItem) itemRate() decimal.Decimal { return i.Rate }

// NonInventoryItem is a service or consumable that is not stocked. It has no rate.
type NonInventoryItem struct {
	ID          int
	Code        string
	Name        string
	Description string
	UOM         string
}

func (NonInventoryItem) demandItem() {}
func (i NonInventoryItem) itemID() int { return i.ID }
func (i NonInventoryItem) itemName() string { return i.Name }
func (i NonInventoryItem) itemCode() string { return i.Code }
func (i NonInventoryItem) itemUOM() string { return i.UOM }
func (i NonInventoryItem) itemDescription() string { return i.Description }
func (NonInventoryItem) itemRate() decimal.Decimal { return decimal.Zero }

// Demand is an upstream request awaiting fulfilment. The Item* fields are the
// demand's own denormalized copies, used when Item is nil or leaves a field empty.
type Demand struct {
	ID                int
	DemandNumber      string
	Type              DemandType
	LocationID        int
	LocationName      string
	Item              DemandItem
	ItemName          string
	ItemCode          string
	ItemDescription   string
	ItemUOM           string
	Rate              decimal.Decimal
	ApprovedQuantity  decimal.Decimal
	QuantityRemaining decimal.Decimal
	RequiredDate      string // YYYY-MM-DD
}

// Ceiling is the most a bound line item may request against this demand.
func (d Demand) Ceiling() decimal.Decimal {
	return d.ApprovedQuantity.Add(d.QuantityRemaining)
}

// CatalogItemID returns the item master ID, if the demand references one.
func (d Demand) CatalogItemID() *int {
	if d.Item == nil || d.Item.itemID() == 0 {
		return nil
	}
	id := d.Item.itemID()
	return &id
}

// DisplayName prefers the item master name, then the demand's own copy.
func (d Demand) DisplayName() string {
	return d.pick(func(i DemandItem) string { return i.itemName() }, d.ItemName, fmt.Sprintf("Item %d", d.ID))
}

func (d Demand) Code() string {
	return d.pick(func(i DemandItem) string { return i.itemCode() }, d.ItemCode, "")
}

func (d Demand) UOM() string {
	return d.pick(func(i DemandItem) string { return i.itemUOM() }, d.ItemUOM, "")
}

// Description falls back to the display name so a bound row always describes something.
func (d Demand) Description() string {
	return d.pick(func(i DemandItem) string { return i.itemDescription() }, d.ItemDescription, d.DisplayName())
}

// UnitRate prefers a non-zero item master rate, then the demand's rate.
func (d Demand) UnitRate() decimal.Decimal {
	if d.Item != nil && !d.Item.itemRate().IsZero() {
		return d.Item.itemRate()
	}
	return d.Rate
}

// InitialQuantity is the approved quantity, capped at the ceiling.
func (d Demand) InitialQuantity() decimal.Decimal {
	return decimal.Min(d.ApprovedQuantity, d.Ceiling())
}

func (d Demand) pick(fromItem func(DemandItem) string, own, fallback string) string {
	if d.Item != nil {
		if v := fromItem(d.Item); v != "" {
			return v
		}
	}
	if own != "" {
		return own
	}
	return fallback
}

// DemandFilter narrows the pending-demand query.
type DemandFilter struct {
	Type       DemandType
	Search     string
	LocationID int
	DateFrom   string
	DateTo     string
	Page       int
	PerPage    int
}

// DemandService is the read-only demand source.
type DemandService interface {
	// ListPending returns demands not yet bound to a live purchase order.
	ListPending(ctx context.Context, f DemandFilter) (*Page[Demand], error)

	// GetDemands returns the demands with the given IDs, in any status.
	GetDemands(ctx context.Context, ids []int) ([]Demand, error)
}
