package app

import "procurement-console/internal/core"

// PurchaseOrderResult is returned by purchase order lifecycle operations.
type PurchaseOrderResult struct {
	PurchaseOrder *core.PurchaseOrder
}

// PurchaseOrdersResult is returned by ListPurchaseOrders.
type PurchaseOrdersResult struct {
	Page *core.Page[core.PurchaseOrder]
}

// AffordancesResult is returned by GetAffordances.
type AffordancesResult struct {
	Affordances core.Affordances
}

// ExportResult is an XLSX workbook ready to be sent as a download.
type ExportResult struct {
	FileName string
	Data     []byte
	Rows     int
}

// DemandsResult is returned by ListPendingDemands.
type DemandsResult struct {
	Page *core.Page[core.Demand]
}

type VendorsResult struct {
	Vendors []core.Vendor
}

type LocationsResult struct {
	Locations []core.Location
}

type UnitsResult struct {
	Units []core.Unit
}

type ItemsResult struct {
	Items []core.Item
}

type UsersResult struct {
	Users []core.User
}
