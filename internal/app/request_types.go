package app

import "procurement-console/internal/core"

// SavePurchaseOrderRequest is the input for creating or updating a purchase order.
type SavePurchaseOrderRequest struct {
	Input core.PurchaseOrderInput
	Actor core.Actor
}

// ChangeStatusRequest is the input for a workflow transition.
type ChangeStatusRequest struct {
	POID  int
	To    core.Status
	Actor core.Actor
}

// ExportRequest selects the orders and columns of an XLSX export.
// An empty Columns list exports every column.
type ExportRequest struct {
	Filter  core.PurchaseOrderFilter
	Columns []string
}
