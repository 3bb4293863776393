package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// Vendor is a supplier from the vendor master. Read-only here.
type Vendor struct {
	ID               int
	Code             string
	Name             string
	ContactPerson    *string
	Email            *string
	Phone            *string
	Address          *string
	PaymentTermsDays int
	IsActive         bool
}

// Location is a site or warehouse that raises demands and receives deliveries.
type Location struct {
	ID       int
	Code     string
	Name     string
	IsActive bool
}

// Unit is a unit of measure.
type Unit struct {
	ID       int
	Code     string
	Name     string
	IsActive bool
}

// Item is an item master record. Rate and UOM are copied onto a line item when
// the item is selected.
type Item struct {
	ID        int
	Code      string
	Name      string
	UOM       string
	Rate      decimal.Decimal
	Inventory bool
	IsActive  bool
}

// ItemIndex keys items by ID.
func ItemIndex(items []Item) map[int]Item {
	out := make(map[int]Item, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out
}

// LookupService serves the read-only master data the engine depends on.
type LookupService interface {
	// Vendors returns all active vendors ordered by name.
	Vendors(ctx context.Context) ([]Vendor, error)

	// Locations returns all active locations ordered by name.
	Locations(ctx context.Context) ([]Location, error)

	// Units returns the active units of measure.
	Units(ctx context.Context) ([]Unit, error)

	// Items returns the active item master.
	Items(ctx context.Context) ([]Item, error)

	// Users returns the active users.
	Users(ctx context.Context) ([]User, error)

	// ItemsByID returns the requested items, active or not.
	ItemsByID(ctx context.Context, ids []int) (map[int]Item, error)
}
