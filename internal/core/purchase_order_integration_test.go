package core_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"procurement-console/internal/core"
	"procurement-console/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test to protect live database")
	}

	ctx := context.Background()
	if err := migrations.Up(ctx, dbURL); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE purchase_order_status_history, purchase_order_demands, purchase_order_lines,
		               purchase_orders, document_sequences, demands, items, units, locations, vendors, users
		RESTART IDENTITY CASCADE;

		INSERT INTO vendors (id, code, name) VALUES
		(1, 'V001', 'Test Supplier Ltd'),
		(2, 'V002', 'Inactive Supplier');
		UPDATE vendors SET is_active = false WHERE id = 2;

		INSERT INTO locations (id, code, name) VALUES (1, 'HQ', 'Head Office'), (2, 'S1', 'Site One');
		INSERT INTO users (id, username, full_name, role, is_active) VALUES
		(1, 'asad', 'Asad Khan', 'approver', true),
		(2, 'store1', '', 'store', true),
		(3, 'gone', 'Former Clerk', 'requester', false);

		INSERT INTO units (code, name) VALUES ('kg', 'Kilogram'), ('bag', 'Bag');

		INSERT INTO items (id, code, name, uom, rate, is_inventory) VALUES
		(1, 'STL-10', 'Steel Rod 10mm', 'kg', 92.50, true),
		(2, 'CEM', 'Cement', 'bag', 450.00, true),
		(3, 'SCAF', 'Scaffolding hire', 'day', 0, false);

		INSERT INTO demands (id, demand_number, demand_type, location_id, item_id, approved_quantity, quantity_remaining, required_date) VALUES
		(42, 'DMD-0042', 'rfq', 2, 2, 10, 5, '2026-11-01'),
		(43, 'DMD-0043', 'market_purchase', 2, 3, 3, 0, '2026-11-05');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}
	return pool
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []core.StatusChange
}

func (p *recordingPublisher) PublishStatusChange(_ context.Context, c core.StatusChange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, c)
	return nil
}

type failingPublisher struct{}

func (failingPublisher) PublishStatusChange(context.Context, core.StatusChange) error {
	return errors.New("broker unavailable")
}

func futureDate() string {
	return time.Now().AddDate(0, 0, 14).Format("2006-01-02")
}

func TestPurchaseOrder_Lifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	pub := &recordingPublisher{}
	docs := core.NewDocumentService(pool)
	svc := core.NewPurchaseOrderService(pool, docs, pub, core.DefaultPolicy, nil)
	demands := core.NewDemandService(pool)

	clerk := core.Actor{UserID: 7, Role: "clerk"}
	approver := core.Actor{UserID: 8, Role: core.RoleApprover}
	demandID := 42
	itemID := 1

	input := core.PurchaseOrderInput{
		VendorID:     1,
		LocationID:   1,
		DeliveryDate: futureDate(),
		GSTRate:      decimal.NewFromInt(18),
		WHTRate:      decimal.NewFromInt(5),
		Lines: []core.LineItemInput{
			{DemandID: &demandID, Quantity: decimal.NewFromInt(10), Rate: decimal.NewFromInt(100)},
		},
	}

	year := time.Now().Year()
	var created *core.PurchaseOrder

	t.Run("NextPONumber_Preview", func(t *testing.T) {
		got, err := svc.NextPONumber(ctx, time.Now())
		if err != nil {
			t.Fatalf("NextPONumber: %v", err)
		}
		if want := core.FormatDocumentNumber("PO", year, 1); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("CreatePO_RecomputesOnServer", func(t *testing.T) {
		po, err := svc.CreatePO(ctx, input, clerk)
		if err != nil {
			t.Fatalf("CreatePO: %v", err)
		}
		created = po

		if po.Status != core.StatusDraft {
			t.Errorf("expected status draft, got %s", po.Status)
		}
		if po.PONumber == nil || *po.PONumber != core.FormatDocumentNumber("PO", year, 1) {
			t.Errorf("unexpected PO number %v", po.PONumber)
		}
		if po.VendorName != "Test Supplier Ltd" {
			t.Errorf("expected vendor name, got %q", po.VendorName)
		}
		if !po.TotalPayable.Equal(decimal.NewFromInt(1121)) {
			t.Errorf("expected total payable 1121, got %s", po.TotalPayable)
		}
		if po.AmountInWords != "1,121 Rupees Only" {
			t.Errorf("unexpected amount in words %q", po.AmountInWords)
		}
		if len(po.Lines) != 1 || po.Lines[0].UOM != "bag" || po.Lines[0].DemandNumber != "DMD-0042" {
			t.Fatalf("unexpected lines %+v", po.Lines)
		}
		if !po.Lines[0].DemandCeiling.Equal(decimal.NewFromInt(15)) {
			t.Errorf("expected ceiling 15, got %s", po.Lines[0].DemandCeiling)
		}
		if len(po.DemandIDs) != 1 || po.DemandIDs[0] != 42 {
			t.Errorf("expected demand 42 bound, got %v", po.DemandIDs)
		}
	})

	if created == nil {
		t.Fatal("CreatePO must succeed for the remaining steps")
	}

	t.Run("BoundDemandLeavesPendingPool", func(t *testing.T) {
		page, err := demands.ListPending(ctx, core.DemandFilter{})
		if err != nil {
			t.Fatalf("ListPending: %v", err)
		}
		for _, d := range page.Data {
			if d.ID == 42 {
				t.Error("demand 42 is bound and should not be pending")
			}
		}
		if page.Total != 1 {
			t.Errorf("expected 1 pending demand, got %d", page.Total)
		}
	})

	t.Run("CreatePO_DoubleBindRejected", func(t *testing.T) {
		_, err := svc.CreatePO(ctx, input, clerk)
		var verrs core.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("expected validation errors, got %v", err)
		}
		if _, ok := verrs.ByField()["lines.0.demand_id"]; !ok {
			t.Errorf("expected lines.0.demand_id error, got %v", verrs)
		}
	})

	t.Run("UpdatePO_ReleasesRemovedDemand", func(t *testing.T) {
		update := input
		update.Lines = []core.LineItemInput{
			{ItemID: &itemID, Quantity: decimal.NewFromInt(4), Rate: decimal.RequireFromString("92.50")},
		}
		po, err := svc.UpdatePO(ctx, created.ID, update, clerk)
		if err != nil {
			t.Fatalf("UpdatePO: %v", err)
		}
		if len(po.DemandIDs) != 0 {
			t.Errorf("expected no bound demands, got %v", po.DemandIDs)
		}
		if po.Lines[0].UOM != "kg" {
			t.Errorf("expected UOM frozen from item master, got %q", po.Lines[0].UOM)
		}

		page, err := demands.ListPending(ctx, core.DemandFilter{Search: "DMD-0042"})
		if err != nil {
			t.Fatalf("ListPending: %v", err)
		}
		if page.Total != 1 {
			t.Errorf("expected demand 42 back in the pending pool, got %d", page.Total)
		}
	})

	t.Run("TransitionStatus_Workflow", func(t *testing.T) {
		if _, err := svc.TransitionStatus(ctx, created.ID, core.StatusApproved, approver); !errors.Is(err, core.ErrInvalidTransition) {
			t.Errorf("draft → approved: expected ErrInvalidTransition, got %v", err)
		}

		po, err := svc.TransitionStatus(ctx, created.ID, core.StatusPending, clerk)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if po.Status != core.StatusPending || po.SubmittedAt == nil {
			t.Errorf("expected pending with submitted_at, got %s", po.Status)
		}

		if _, err := svc.TransitionStatus(ctx, created.ID, core.StatusApproved, clerk); !errors.Is(err, core.ErrForbiddenTransition) {
			t.Errorf("clerk approve: expected ErrForbiddenTransition, got %v", err)
		}
		if _, err := svc.UpdatePO(ctx, created.ID, input, clerk); !errors.Is(err, core.ErrNotEditable) {
			t.Errorf("update pending: expected ErrNotEditable, got %v", err)
		}
		if err := svc.DeletePO(ctx, created.ID); !errors.Is(err, core.ErrNotEditable) {
			t.Errorf("delete pending: expected ErrNotEditable, got %v", err)
		}

		po, err = svc.TransitionStatus(ctx, created.ID, core.StatusApproved, approver)
		if err != nil {
			t.Fatalf("approve: %v", err)
		}
		if len(po.History) != 2 {
			t.Errorf("expected 2 history rows, got %d", len(po.History))
		}
		if len(pub.changes) != 2 || pub.changes[1].To != core.StatusApproved {
			t.Errorf("expected published approve change, got %+v", pub.changes)
		}
	})

	t.Run("ListPOs_Filters", func(t *testing.T) {
		page, err := svc.ListPOs(ctx, core.PurchaseOrderFilter{Status: core.StatusApproved})
		if err != nil {
			t.Fatalf("ListPOs: %v", err)
		}
		if page.Total != 1 || page.Data[0].ID != created.ID {
			t.Errorf("expected the approved order, got %+v", page)
		}

		page, err = svc.ListPOs(ctx, core.PurchaseOrderFilter{Status: core.StatusDraft})
		if err != nil {
			t.Fatalf("ListPOs: %v", err)
		}
		if page.Total != 0 || page.LastPage != 1 {
			t.Errorf("expected empty page, got total=%d last=%d", page.Total, page.LastPage)
		}
	})

	t.Run("GetPO_NotFound", func(t *testing.T) {
		if _, err := svc.GetPO(ctx, 999999); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestPurchaseOrder_ValidationFailures(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	svc := core.NewPurchaseOrderService(pool, core.NewDocumentService(pool), nil, core.DefaultPolicy, nil)
	missingItem := 99

	_, err := svc.CreatePO(ctx, core.PurchaseOrderInput{
		VendorID:     2,
		LocationID:   1,
		DeliveryDate: "2020-01-01",
		Lines: []core.LineItemInput{
			{ItemID: &missingItem, Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(1)},
		},
	}, core.Actor{Role: "clerk"})

	var verrs core.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	got := verrs.ByField()
	for _, field := range []string{"vendor_id", "delivery_date", "lines.0.item_id", "lines"} {
		if _, ok := got[field]; !ok {
			t.Errorf("expected error for %s, got %v", field, got)
		}
	}

	// The failed create must not consume a PO number.
	next, err := svc.NextPONumber(ctx, time.Now())
	if err != nil {
		t.Fatalf("NextPONumber: %v", err)
	}
	if want := core.FormatDocumentNumber("PO", time.Now().Year(), 1); next != want {
		t.Errorf("expected %s, got %s", want, next)
	}
}

func TestPurchaseOrder_ConcurrentBindingOfOneDemand(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	svc := core.NewPurchaseOrderService(pool, core.NewDocumentService(pool), nil, core.DefaultPolicy, nil)
	demandID := 42
	input := core.PurchaseOrderInput{
		VendorID:     1,
		LocationID:   1,
		DeliveryDate: futureDate(),
		Lines: []core.LineItemInput{
			{DemandID: &demandID, Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(100)},
		},
	}

	const n = 8
	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreatePO(ctx, input, core.Actor{UserID: 7, Role: "clerk"})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	created := 0
	for err := range errCh {
		var verrs core.ValidationErrors
		switch {
		case err == nil:
			created++
		case errors.As(err, &verrs):
			if _, ok := verrs.ByField()["lines.0.demand_id"]; !ok {
				t.Errorf("expected a demand_id conflict, got %v", verrs)
			}
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one order to bind demand 42, got %d", created)
	}

	var bindings int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM purchase_order_demands WHERE demand_id = $1", demandID,
	).Scan(&bindings); err != nil {
		t.Fatalf("count bindings: %v", err)
	}
	if bindings != 1 {
		t.Errorf("expected one binding row, got %d", bindings)
	}
}

func TestPurchaseOrder_PublishFailureIsLoggedNotFatal(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	svc := core.NewPurchaseOrderService(pool, core.NewDocumentService(pool), failingPublisher{}, core.DefaultPolicy, log)

	itemID := 2
	po, err := svc.CreatePO(ctx, core.PurchaseOrderInput{
		VendorID:     1,
		LocationID:   1,
		DeliveryDate: futureDate(),
		Lines: []core.LineItemInput{
			{ItemID: &itemID, Quantity: decimal.NewFromInt(2), Rate: decimal.NewFromInt(450)},
		},
	}, core.Actor{UserID: 7, Role: "clerk"})
	if err != nil {
		t.Fatalf("CreatePO: %v", err)
	}

	submitted, err := svc.TransitionStatus(ctx, po.ID, core.StatusPending, core.Actor{UserID: 7, Role: "clerk"})
	if err != nil {
		t.Fatalf("TransitionStatus: %v", err)
	}
	if submitted.Status != core.StatusPending {
		t.Errorf("expected pending after a failed publish, got %s", submitted.Status)
	}

	out := logs.String()
	if !strings.Contains(out, "publish status change failed") || !strings.Contains(out, "broker unavailable") {
		t.Errorf("expected the publish failure to be logged, got %q", out)
	}
}
