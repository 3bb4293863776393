package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"procurement-console/internal/adapters/web"
	"procurement-console/internal/api"
	"procurement-console/internal/app"
	"procurement-console/internal/cache"
	"procurement-console/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type fakeService struct {
	app.ApplicationService
	mu          sync.Mutex
	created     []core.PurchaseOrderInput
	lastFilter  core.PurchaseOrderFilter
	lastDemands core.DemandFilter
	createErr   error
	statusErr   error
	actor       core.Actor
}

func orderFromInput(id int, in core.PurchaseOrderInput) *core.PurchaseOrder {
	po := core.PurchaseOrder{
		ID:         id,
		VendorID:   in.VendorID,
		LocationID: in.LocationID,
		GSTRate:    in.GSTRate,
		WHTRate:    in.WHTRate,
		Conditions: core.DefaultConditions(),
		Status:     core.StatusDraft,
		Attachment: in.Attachment,
	}
	for _, l := range in.Lines {
		po.Lines = append(po.Lines, core.LineItem{ItemID: l.ItemID, Quantity: l.Quantity, Rate: l.Rate, DemandID: l.DemandID})
	}
	core.Recompute(&po, core.DefaultPolicy)
	num := core.FormatDocumentNumber(core.DocumentTypePO, 2026, int64(id))
	po.PONumber = &num
	return &po
}

func (f *fakeService) CreatePurchaseOrder(_ context.Context, req app.SavePurchaseOrderRequest) (*app.PurchaseOrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req.Input)
	f.actor = req.Actor
	return &app.PurchaseOrderResult{PurchaseOrder: orderFromInput(len(f.created), req.Input)}, nil
}

func (f *fakeService) GetPurchaseOrder(_ context.Context, id int) (*app.PurchaseOrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id < 1 || id > len(f.created) {
		return nil, fmt.Errorf("purchase order %d: %w", id, core.ErrNotFound)
	}
	return &app.PurchaseOrderResult{PurchaseOrder: orderFromInput(id, f.created[id-1])}, nil
}

func (f *fakeService) ListPurchaseOrders(_ context.Context, filter core.PurchaseOrderFilter) (*app.PurchaseOrdersResult, error) {
	f.lastFilter = filter
	page, perPage := core.NormalizePaging(filter.Page, filter.PerPage)
	return &app.PurchaseOrdersResult{Page: core.NewPage[core.PurchaseOrder](nil, page, perPage, 0)}, nil
}

func (f *fakeService) ChangeStatus(_ context.Context, req app.ChangeStatusRequest) (*app.PurchaseOrderResult, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	f.actor = req.Actor
	po := orderFromInput(req.POID, core.PurchaseOrderInput{})
	po.Status = req.To
	return &app.PurchaseOrderResult{PurchaseOrder: po}, nil
}

func (f *fakeService) ListPendingDemands(_ context.Context, filter core.DemandFilter) (*app.DemandsResult, error) {
	f.lastDemands = filter
	d := core.Demand{
		ID: 42, DemandNumber: "DMD-0042", Type: core.DemandTypeRFQ,
		Item:             core.NonInventoryItem{ID: 3, Name: "Scaffolding hire"},
		ApprovedQuantity: decimal.NewFromInt(3),
	}
	return &app.DemandsResult{Page: core.NewPage([]core.Demand{d}, 1, 15, 1)}, nil
}

func (f *fakeService) ExportPurchaseOrders(_ context.Context, req app.ExportRequest) (*app.ExportResult, error) {
	f.lastFilter = req.Filter
	return &app.ExportResult{FileName: "purchase_orders.xlsx", Data: []byte("PK"), Rows: 0}, nil
}

type memIdempotency struct {
	mu   sync.Mutex
	keys map[string]int
}

func (m *memIdempotency) Claim(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.keys[key]
	if !ok {
		m.keys[key] = 0
		return 0, nil
	}
	if id == 0 {
		return 0, cache.ErrInFlight
	}
	return id, nil
}

func (m *memIdempotency) Complete(_ context.Context, key string, poID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = poID
	return nil
}

func (m *memIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

func newServer(t *testing.T, svc *fakeService) (http.Handler, string) {
	t.Helper()
	dir := t.TempDir()
	h := web.NewHandler(svc, web.Config{
		JWTSecret:   secret,
		UploadDir:   dir,
		Idempotency: &memIdempotency{keys: map[string]int{}},
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return h, dir
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := web.NewToken(secret, 7, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, h http.Handler, method, path string, body any, role string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, role))
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func validRequest() api.PurchaseOrderRequest {
	demandID := 42
	return api.PurchaseOrderRequest{
		VendorID:     1,
		LocationID:   1,
		DeliveryDate: "2026-11-01",
		GSTRate:      decimal.NewFromInt(18),
		WHTRate:      decimal.NewFromInt(5),
		LineItems: []api.LineItemRequest{
			{DemandID: &demandID, Quantity: decimal.NewFromInt(10), Rate: decimal.NewFromInt(100)},
		},
	}
}

func TestHealthIsPublic(t *testing.T) {
	h, _ := newServer(t, &fakeService{})
	rec := do(t, h, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAuth(t *testing.T) {
	h, _ := newServer(t, &fakeService{})

	rec := do(t, h, http.MethodGet, "/purchase-orders", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/purchase-orders", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token(t, "clerk")})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	bad, err := web.NewToken("other-secret", 7, "clerk", time.Hour)
	require.NoError(t, err)
	rec = do(t, h, http.MethodGet, "/purchase-orders", nil, "", "Authorization", "Bearer "+bad)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePurchaseOrder(t *testing.T) {
	svc := &fakeService{}
	h, _ := newServer(t, svc)

	rec := do(t, h, http.MethodPost, "/purchase-orders", validRequest(), "clerk")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Equal(t, "1121.00", raw["total_payable"])
	require.Equal(t, "1,121 Rupees Only", raw["amount_in_words"])
	require.Equal(t, "PO-2026-00001", raw["po_number"])

	require.Equal(t, core.Actor{UserID: 7, Role: "clerk"}, svc.actor)
	require.Len(t, svc.created[0].Lines, 1)
}

func TestCreatePurchaseOrder_ValidationFailure(t *testing.T) {
	var verrs core.ValidationErrors
	verrs.Add("lines.0.quantity", "quantity 20 exceeds the demand ceiling of 15")
	verrs.Add("vendor_id", "vendor is required")
	h, _ := newServer(t, &fakeService{createErr: verrs})

	rec := do(t, h, http.MethodPost, "/purchase-orders", validRequest(), "clerk")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "VALIDATION_FAILED", resp.Code)
	require.Equal(t, []string{"vendor is required"}, resp.Errors["vendor_id"])
	require.Len(t, resp.Errors["lines.0.quantity"], 1)
}

func TestCreatePurchaseOrder_IdempotencyKeyReplays(t *testing.T) {
	svc := &fakeService{}
	h, _ := newServer(t, svc)

	first := do(t, h, http.MethodPost, "/purchase-orders", validRequest(), "clerk", "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusCreated, first.Code)
	second := do(t, h, http.MethodPost, "/purchase-orders", validRequest(), "clerk", "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	require.Len(t, svc.created, 1)

	third := do(t, h, http.MethodPost, "/purchase-orders", validRequest(), "clerk", "Idempotency-Key", "def-456")
	require.Equal(t, http.StatusCreated, third.Code)
	require.Len(t, svc.created, 2)
}

func TestCreatePurchaseOrder_MultipartAttachment(t *testing.T) {
	svc := &fakeService{}
	h, dir := newServer(t, svc)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	payload, err := json.Marshal(validRequest())
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("payload", string(payload)))
	fw, err := mw.CreateFormFile("attachment", "Quotation.PDF")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/purchase-orders", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token(t, "clerk"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	ref := svc.created[0].Attachment
	require.NotNil(t, ref)
	require.True(t, strings.HasSuffix(*ref, ".pdf"))
	data, err := os.ReadFile(filepath.Join(dir, *ref))
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(data))
}

func TestChangeStatus_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: role %q cannot approve", core.ErrForbiddenTransition, "clerk"), http.StatusForbidden},
		{fmt.Errorf("%w: draft → approved", core.ErrInvalidTransition), http.StatusConflict},
		{fmt.Errorf("purchase order 9: %w", core.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("update: %w", core.ErrNotEditable), http.StatusConflict},
		{fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h, _ := newServer(t, &fakeService{statusErr: tc.err})
		rec := do(t, h, http.MethodPatch, "/purchase-orders/9/status", api.StatusRequest{Status: "approved"}, "clerk")
		require.Equal(t, tc.code, rec.Code, tc.err.Error())
	}
}

func TestChangeStatus_UsesTokenRole(t *testing.T) {
	svc := &fakeService{}
	h, _ := newServer(t, svc)
	rec := do(t, h, http.MethodPatch, "/purchase-orders/3/status", api.StatusRequest{Status: "approved"}, core.RoleApprover)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, core.RoleApprover, svc.actor.Role)

	var po api.PurchaseOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &po))
	require.Equal(t, "approved", po.Status)
}

func TestGetPurchaseOrder_NotFoundAndBadID(t *testing.T) {
	h, _ := newServer(t, &fakeService{})
	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/purchase-orders/5", nil, "clerk").Code)
	require.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/purchase-orders/abc", nil, "clerk").Code)
}

func TestListPurchaseOrders_Filters(t *testing.T) {
	svc := &fakeService{}
	h, _ := newServer(t, svc)

	rec := do(t, h, http.MethodGet, "/purchase-orders?status=all&vendor_id=4&label=urgent&page=2", nil, "clerk")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, core.PurchaseOrderFilter{VendorID: 4, Label: "urgent", Page: 2}, svc.lastFilter)

	var page api.Page[api.PurchaseOrder]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, 2, page.CurrentPage)
	require.Equal(t, 1, page.LastPage)
	require.NotNil(t, page.Data)

	rec = do(t, h, http.MethodGet, "/purchase-orders?vendor_id=abc&status=cancelled", nil, "clerk")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Errors, "vendor_id")
	require.Contains(t, resp.Errors, "status")
}

func TestPendingDemands(t *testing.T) {
	svc := &fakeService{}
	h, _ := newServer(t, svc)

	rec := do(t, h, http.MethodGet, "/get-pending-po-demand?search=cement&location_id=2&demand_date_from=2026-10-01&demand_date_to=2026-10-31", nil, "clerk")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, core.DemandFilter{Search: "cement", LocationID: 2, DateFrom: "2026-10-01", DateTo: "2026-10-31"}, svc.lastDemands)

	var page api.Page[api.Demand]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	require.Nil(t, page.Data[0].InventoryItem)
	require.NotNil(t, page.Data[0].NonInventoryItem)
	require.Equal(t, "Scaffolding hire", page.Data[0].ToCore().DisplayName())
}

func TestExport(t *testing.T) {
	svc := &fakeService{}
	h, _ := newServer(t, svc)

	rec := do(t, h, http.MethodGet, "/purchase-orders/export?status=approved&columns=po_number,total_payable", nil, "clerk")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "purchase_orders.xlsx")
	require.Equal(t, core.StatusApproved, svc.lastFilter.Status)
}
