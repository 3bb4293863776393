package app

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"procurement-console/internal/core"
	"procurement-console/internal/report"
)

type appService struct {
	orders  core.PurchaseOrderService
	demands core.DemandService
	lookups core.LookupService
	now     func() time.Time
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	orders core.PurchaseOrderService,
	demands core.DemandService,
	lookups core.LookupService,
) ApplicationService {
	return &appService{
		orders:  orders,
		demands: demands,
		lookups: lookups,
		now:     time.Now,
	}
}

// ListPurchaseOrders returns one page of purchase orders matching the filter.
func (s *appService) ListPurchaseOrders(ctx context.Context, f core.PurchaseOrderFilter) (*PurchaseOrdersResult, error) {
	page, err := s.orders.ListPOs(ctx, f)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrdersResult{Page: page}, nil
}

// GetPurchaseOrder returns a single purchase order with lines and history.
func (s *appService) GetPurchaseOrder(ctx context.Context, poID int) (*PurchaseOrderResult, error) {
	po, err := s.orders.GetPO(ctx, poID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{PurchaseOrder: po}, nil
}

// CreatePurchaseOrder stores a new draft purchase order.
func (s *appService) CreatePurchaseOrder(ctx context.Context, req SavePurchaseOrderRequest) (*PurchaseOrderResult, error) {
	po, err := s.orders.CreatePO(ctx, req.Input, req.Actor)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{PurchaseOrder: po}, nil
}

// UpdatePurchaseOrder replaces the contents of a draft purchase order.
func (s *appService) UpdatePurchaseOrder(ctx context.Context, poID int, req SavePurchaseOrderRequest) (*PurchaseOrderResult, error) {
	po, err := s.orders.UpdatePO(ctx, poID, req.Input, req.Actor)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{PurchaseOrder: po}, nil
}

// DeletePurchaseOrder removes a draft purchase order.
func (s *appService) DeletePurchaseOrder(ctx context.Context, poID int) error {
	return s.orders.DeletePO(ctx, poID)
}

// NextPONumber previews the number the next created order will receive.
func (s *appService) NextPONumber(ctx context.Context) (string, error) {
	return s.orders.NextPONumber(ctx, s.now())
}

// ChangeStatus moves a purchase order along the approval workflow.
func (s *appService) ChangeStatus(ctx context.Context, req ChangeStatusRequest) (*PurchaseOrderResult, error) {
	if !req.To.Valid() {
		var errs core.ValidationErrors
		errs.Add("status", "unknown status %q", string(req.To))
		return nil, errs
	}
	po, err := s.orders.TransitionStatus(ctx, req.POID, req.To, req.Actor)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{PurchaseOrder: po}, nil
}

// GetAffordances returns the console actions available to role for an order.
func (s *appService) GetAffordances(ctx context.Context, poID int, role string) (*AffordancesResult, error) {
	po, err := s.orders.GetPO(ctx, poID)
	if err != nil {
		return nil, err
	}
	return &AffordancesResult{Affordances: core.AffordancesFor(po.Status, role)}, nil
}

// ExportPurchaseOrders walks every page matching the filter and renders the
// selected columns as an XLSX workbook.
func (s *appService) ExportPurchaseOrders(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	// Reject unknown columns before touching the database.
	if _, err := report.SelectColumns(report.PurchaseOrderColumns, req.Columns); err != nil {
		var errs core.ValidationErrors
		errs.Add("columns", "%s", err.Error())
		return nil, errs
	}

	f := req.Filter
	f.PerPage = core.MaxPerPage
	var orders []core.PurchaseOrder
	for f.Page = 1; ; f.Page++ {
		page, err := s.orders.ListPOs(ctx, f)
		if err != nil {
			return nil, err
		}
		orders = append(orders, page.Data...)
		if page.CurrentPage >= page.LastPage {
			break
		}
	}

	table, err := report.Project(orders, report.PurchaseOrderColumns, req.Columns)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, "Purchase Orders", table); err != nil {
		return nil, fmt.Errorf("export purchase orders: %w", err)
	}
	return &ExportResult{
		FileName: fmt.Sprintf("purchase_orders_%s.xlsx", s.now().Format("20060102_150405")),
		Data:     buf.Bytes(),
		Rows:     len(orders),
	}, nil
}

// ListPendingDemands returns demands not yet bound to a live purchase order.
func (s *appService) ListPendingDemands(ctx context.Context, f core.DemandFilter) (*DemandsResult, error) {
	page, err := s.demands.ListPending(ctx, f)
	if err != nil {
		return nil, err
	}
	return &DemandsResult{Page: page}, nil
}

func (s *appService) ListVendors(ctx context.Context) (*VendorsResult, error) {
	vendors, err := s.lookups.Vendors(ctx)
	if err != nil {
		return nil, err
	}
	return &VendorsResult{Vendors: vendors}, nil
}

func (s *appService) ListLocations(ctx context.Context) (*LocationsResult, error) {
	locations, err := s.lookups.Locations(ctx)
	if err != nil {
		return nil, err
	}
	return &LocationsResult{Locations: locations}, nil
}

func (s *appService) ListUnits(ctx context.Context) (*UnitsResult, error) {
	units, err := s.lookups.Units(ctx)
	if err != nil {
		return nil, err
	}
	return &UnitsResult{Units: units}, nil
}

func (s *appService) ListItems(ctx context.Context) (*ItemsResult, error) {
	items, err := s.lookups.Items(ctx)
	if err != nil {
		return nil, err
	}
	return &ItemsResult{Items: items}, nil
}

func (s *appService) ListUsers(ctx context.Context) (*UsersResult, error) {
	users, err := s.lookups.Users(ctx)
	if err != nil {
		return nil, err
	}
	return &UsersResult{Users: users}, nil
}

// RecordPurchase transitions an approved order to purchased as the system actor.
func (s *appService) RecordPurchase(ctx context.Context, poID int) (*PurchaseOrderResult, error) {
	return s.ChangeStatus(ctx, ChangeStatusRequest{POID: poID, To: core.StatusPurchased, Actor: core.SystemActor})
}

// RecordReceipt transitions a purchased order to received_partial, or to
// received_full when complete is set.
func (s *appService) RecordReceipt(ctx context.Context, poID int, complete bool) (*PurchaseOrderResult, error) {
	to := core.StatusReceivedPartial
	if complete {
		to = core.StatusReceivedFull
	}
	return s.ChangeStatus(ctx, ChangeStatusRequest{POID: poID, To: to, Actor: core.SystemActor})
}
