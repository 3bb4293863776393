package app

import (
	"context"

	"procurement-console/internal/core"
)

// ApplicationService is the single interface the web and CLI adapters call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// ListPurchaseOrders returns one page of purchase orders matching the filter.
	ListPurchaseOrders(ctx context.Context, f core.PurchaseOrderFilter) (*PurchaseOrdersResult, error)

	// GetPurchaseOrder returns a single purchase order with lines and history.
	GetPurchaseOrder(ctx context.Context, poID int) (*PurchaseOrderResult, error)

	// CreatePurchaseOrder stores a new draft purchase order and assigns its PO number.
	CreatePurchaseOrder(ctx context.Context, req SavePurchaseOrderRequest) (*PurchaseOrderResult, error)

	// UpdatePurchaseOrder replaces the contents of a draft purchase order.
	UpdatePurchaseOrder(ctx context.Context, poID int, req SavePurchaseOrderRequest) (*PurchaseOrderResult, error)

	// DeletePurchaseOrder removes a draft purchase order.
	DeletePurchaseOrder(ctx context.Context, poID int) error

	// NextPONumber previews the number the next created order will receive.
	NextPONumber(ctx context.Context) (string, error)

	// ChangeStatus moves a purchase order along the approval workflow.
	ChangeStatus(ctx context.Context, req ChangeStatusRequest) (*PurchaseOrderResult, error)

	// GetAffordances returns the console actions available to role for an order.
	GetAffordances(ctx context.Context, poID int, role string) (*AffordancesResult, error)

	// ExportPurchaseOrders renders every order matching the filter as an XLSX workbook.
	ExportPurchaseOrders(ctx context.Context, req ExportRequest) (*ExportResult, error)

	// ListPendingDemands returns demands that are not bound to a live purchase order.
	ListPendingDemands(ctx context.Context, f core.DemandFilter) (*DemandsResult, error)

	// ListVendors returns all active vendors.
	ListVendors(ctx context.Context) (*VendorsResult, error)

	// ListLocations returns all active locations.
	ListLocations(ctx context.Context) (*LocationsResult, error)

	// ListUnits returns all active units of measure.
	ListUnits(ctx context.Context) (*UnitsResult, error)

	// ListItems returns the active item master.
	ListItems(ctx context.Context) (*ItemsResult, error)

	// ListUsers returns the active users, for resolving actor names.
	ListUsers(ctx context.Context) (*UsersResult, error)

	// RecordPurchase marks an approved order as purchased on behalf of the
	// downstream purchase flow.
	RecordPurchase(ctx context.Context, poID int) (*PurchaseOrderResult, error)

	// RecordReceipt marks a purchased order as partially or fully received.
	RecordReceipt(ctx context.Context, poID int, complete bool) (*PurchaseOrderResult, error)
}
