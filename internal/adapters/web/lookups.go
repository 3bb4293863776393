package web

import (
	"net/http"

	"procurement-console/internal/api"
	"procurement-console/internal/core"
)

// pendingDemands handles GET /get-pending-po-demand.
func (h *Handler) pendingDemands(w http.ResponseWriter, r *http.Request) {
	p := queryParams{q: r.URL.Query()}
	f := core.DemandFilter{
		Type:       core.DemandType(p.str("type")),
		Search:     p.str("search"),
		LocationID: p.integer("location_id"),
		DateFrom:   p.str("demand_date_from"),
		DateTo:     p.str("demand_date_to"),
		Page:       p.integer("page"),
		PerPage:    p.integer("per_page"),
	}
	if f.Type != "" && f.Type != core.DemandTypeRFQ && f.Type != core.DemandTypeMarketPurchase {
		p.errs.Add("type", "must be rfq or market_purchase")
	}
	if len(p.errs) > 0 {
		writeValidation(w, r, p.errs)
		return
	}

	res, err := h.svc.ListPendingDemands(r.Context(), f)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, api.FromPage(res.Page, api.FromDemand))
}

func (h *Handler) listVendors(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListVendors(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, api.Map(res.Vendors, api.FromVendor))
}

func (h *Handler) listLocations(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListLocations(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, api.Map(res.Locations, api.FromLocation))
}

func (h *Handler) listUnits(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListUnits(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, api.Map(res.Units, api.FromUnit))
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListItems(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, api.Map(res.Items, api.FromItem))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, api.Map(res.Users, api.FromUser))
}
