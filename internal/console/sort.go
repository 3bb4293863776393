package console

import (
	"cmp"
	"slices"
	"strings"

	"procurement-console/internal/core"
)

// SortKey names a sortable column of the purchase order list.
type SortKey string

const (
	SortPONumber     SortKey = "po_number"
	SortVendor       SortKey = "vendor"
	SortLocation     SortKey = "location"
	SortDeliveryDate SortKey = "delivery_date"
	SortStatus       SortKey = "status"
	SortTotal        SortKey = "total_payable"
	SortCreated      SortKey = "created_at"
)

// Sort is the client-side ordering of the loaded page. The zero value keeps
// server order.
type Sort struct {
	Key  SortKey
	Desc bool
}

// Toggle returns the sort after a click on key: the same column flips
// direction, a new column starts ascending.
func (s Sort) Toggle(key SortKey) Sort {
	if s.Key == key {
		return Sort{Key: key, Desc: !s.Desc}
	}
	return Sort{Key: key}
}

// Names resolves relational columns to display names.
type Names struct {
	Vendors   map[int]string
	Locations map[int]string
}

// NamesFrom indexes lookup lists by ID.
func NamesFrom(vendors []core.Vendor, locations []core.Location) Names {
	n := Names{Vendors: map[int]string{}, Locations: map[int]string{}}
	for _, v := range vendors {
		n.Vendors[v.ID] = v.Name
	}
	for _, l := range locations {
		n.Locations[l.ID] = l.Name
	}
	return n
}

func (n Names) vendor(po core.PurchaseOrder) string {
	if name, ok := n.Vendors[po.VendorID]; ok {
		return name
	}
	return po.VendorName
}

func (n Names) location(po core.PurchaseOrder) string {
	if name, ok := n.Locations[po.LocationID]; ok {
		return name
	}
	return po.LocationName
}

// Resolve fills the vendor and location names of po from the lookups.
func (n Names) Resolve(po core.PurchaseOrder) core.PurchaseOrder {
	po.VendorName = n.vendor(po)
	po.LocationName = n.location(po)
	return po
}

// SortOrders returns a sorted copy of the loaded page. Ties keep server order.
func SortOrders(orders []core.PurchaseOrder, s Sort, names Names) []core.PurchaseOrder {
	out := slices.Clone(orders)
	if s.Key == "" {
		return out
	}
	compare := comparator(s.Key, names)
	slices.SortStableFunc(out, func(a, b core.PurchaseOrder) int {
		c := compare(a, b)
		if s.Desc {
			return -c
		}
		return c
	})
	return out
}

func comparator(key SortKey, names Names) func(a, b core.PurchaseOrder) int {
	switch key {
	case SortPONumber:
		return func(a, b core.PurchaseOrder) int { return cmp.Compare(deref(a.PONumber), deref(b.PONumber)) }
	case SortVendor:
		return func(a, b core.PurchaseOrder) int { return compareFold(names.vendor(a), names.vendor(b)) }
	case SortLocation:
		return func(a, b core.PurchaseOrder) int { return compareFold(names.location(a), names.location(b)) }
	case SortDeliveryDate:
		return func(a, b core.PurchaseOrder) int { return cmp.Compare(a.DeliveryDate, b.DeliveryDate) }
	case SortStatus:
		return func(a, b core.PurchaseOrder) int { return cmp.Compare(a.Status, b.Status) }
	case SortTotal:
		return func(a, b core.PurchaseOrder) int { return a.TotalPayable.Cmp(b.TotalPayable) }
	case SortCreated:
		return func(a, b core.PurchaseOrder) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return func(core.PurchaseOrder, core.PurchaseOrder) int { return 0 }
	}
}

func compareFold(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
