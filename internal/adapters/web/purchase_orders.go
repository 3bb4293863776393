package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"procurement-console/internal/api"
	"procurement-console/internal/app"
	"procurement-console/internal/cache"
	"procurement-console/internal/core"

	"github.com/google/uuid"
)

// listPurchaseOrders handles GET /purchase-orders.
func (h *Handler) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	f, ok := parseOrderFilter(w, r)
	if !ok {
		return
	}
	res, err := h.svc.ListPurchaseOrders(r.Context(), f)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, api.FromPage(res.Page, api.FromOrder))
}

func parseOrderFilter(w http.ResponseWriter, r *http.Request) (core.PurchaseOrderFilter, bool) {
	p := queryParams{q: r.URL.Query()}
	f := core.PurchaseOrderFilter{
		Status:     core.Status(p.str("status")),
		VendorID:   p.integer("vendor_id"),
		LocationID: p.integer("location_id"),
		Label:      p.str("label"),
		Search:     p.str("search"),
		Page:       p.integer("page"),
		PerPage:    p.integer("per_page"),
	}
	if f.Status != "" && !f.Status.Valid() {
		p.errs.Add("status", "unknown status %q", string(f.Status))
	}
	if len(p.errs) > 0 {
		writeValidation(w, r, p.errs)
		return f, false
	}
	return f, true
}

// getPurchaseOrder handles GET /purchase-orders/{id}.
func (h *Handler) getPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, api.FromOrder(*res.PurchaseOrder))
}

// createPurchaseOrder handles POST /purchase-orders. A repeated Idempotency-Key
// replays the order created by the first request.
func (h *Handler) createPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readOrderRequest(w, r)
	if !ok {
		return
	}

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" && h.idem != nil {
		existing, err := h.idem.Claim(r.Context(), key)
		switch {
		case errors.Is(err, cache.ErrInFlight):
			writeError(w, r, err.Error(), "IDEMPOTENCY_CONFLICT", http.StatusConflict)
			return
		case err != nil:
			h.log.Warn("idempotency unavailable, creating without it", "err", err)
			key = ""
		case existing != 0:
			res, err := h.svc.GetPurchaseOrder(r.Context(), existing)
			if err != nil {
				h.writeServiceError(w, r, err)
				return
			}
			w.Header().Set("Idempotent-Replayed", "true")
			writeJSON(w, api.FromOrder(*res.PurchaseOrder))
			return
		}
	} else {
		key = ""
	}

	res, err := h.svc.CreatePurchaseOrder(r.Context(), app.SavePurchaseOrderRequest{Input: in, Actor: actorFromRequest(r)})
	if err != nil {
		if key != "" {
			_ = h.idem.Release(r.Context(), key)
		}
		h.writeServiceError(w, r, err)
		return
	}
	if key != "" {
		if err := h.idem.Complete(r.Context(), key, res.PurchaseOrder.ID); err != nil {
			h.log.Warn("idempotency key not recorded", "po_id", res.PurchaseOrder.ID, "err", err)
		}
	}
	writeJSONStatus(w, http.StatusCreated, api.FromOrder(*res.PurchaseOrder))
}

// updatePurchaseOrder handles PUT /purchase-orders/{id}.
func (h *Handler) updatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := h.readOrderRequest(w, r)
	if !ok {
		return
	}
	res, err := h.svc.UpdatePurchaseOrder(r.Context(), id, app.SavePurchaseOrderRequest{Input: in, Actor: actorFromRequest(r)})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, api.FromOrder(*res.PurchaseOrder))
}

// deletePurchaseOrder handles DELETE /purchase-orders/{id}.
func (h *Handler) deletePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePurchaseOrder(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// nextPONumber handles GET /purchase-orders/next-po-number.
func (h *Handler) nextPONumber(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.NextPONumber(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, api.NextNumberResponse{PONumber: n})
}

// changeStatus handles PATCH /purchase-orders/{id}/status.
func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req api.StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.ChangeStatus(r.Context(), app.ChangeStatusRequest{
		POID:  id,
		To:    core.Status(req.Status),
		Actor: actorFromRequest(r),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, api.FromOrder(*res.PurchaseOrder))
}

// affordances handles GET /purchase-orders/{id}/affordances.
func (h *Handler) affordances(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.GetAffordances(r.Context(), id, actorFromRequest(r).Role)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, api.FromAffordances(res.Affordances))
}

// exportPurchaseOrders handles GET /purchase-orders/export. The columns query
// parameter is a comma-separated list of column keys.
func (h *Handler) exportPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	f, ok := parseOrderFilter(w, r)
	if !ok {
		return
	}
	var columns []string
	if c := r.URL.Query().Get("columns"); c != "" {
		columns = splitAndTrim(c)
	}
	res, err := h.svc.ExportPurchaseOrders(r.Context(), app.ExportRequest{Filter: f, Columns: columns})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	_, _ = w.Write(res.Data)
}

// readOrderRequest decodes a purchase order body. Multipart requests carry the
// JSON in the "payload" field and an optional "attachment" file.
func (h *Handler) readOrderRequest(w http.ResponseWriter, r *http.Request) (core.PurchaseOrderInput, bool) {
	var req api.PurchaseOrderRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if !decodeJSON(w, r, &req) {
			return core.PurchaseOrderInput{}, false
		}
		return req.ToInput(), true
	}

	if err := r.ParseMultipartForm(multipartBodyLimit); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return core.PurchaseOrderInput{}, false
		}
		writeError(w, r, "invalid multipart body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return core.PurchaseOrderInput{}, false
	}
	if err := json.Unmarshal([]byte(r.FormValue("payload")), &req); err != nil {
		writeError(w, r, "invalid payload field: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return core.PurchaseOrderInput{}, false
	}
	in := req.ToInput()

	ref, err := h.saveAttachment(r)
	if err != nil {
		h.log.Error("attachment upload failed", "err", err)
		writeError(w, r, "could not store attachment", "UPLOAD_FAILED", http.StatusInternalServerError)
		return core.PurchaseOrderInput{}, false
	}
	in.Attachment = ref
	return in, true
}

// saveAttachment stores the "attachment" file under a random name and returns
// the opaque reference, or nil when no file was sent.
func (h *Handler) saveAttachment(r *http.Request) (*string, error) {
	file, header, err := r.FormFile("attachment")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	dst, err := os.OpenFile(filepath.Join(h.uploadDir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return nil, fmt.Errorf("create attachment: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		_ = dst.Close()
		return nil, fmt.Errorf("write attachment: %w", err)
	}
	if err := dst.Close(); err != nil {
		return nil, fmt.Errorf("close attachment: %w", err)
	}
	return &name, nil
}
