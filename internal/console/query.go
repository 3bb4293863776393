// Package console holds the screen state of the purchase order console: list
// queries, client-side sort, stale-response suppression, debounced search and
// the order form session. It is UI-agnostic; cmd/console drives it from a CLI.
package console

import (
	"strings"

	"procurement-console/internal/core"
)

// All is the filter sentinel meaning "no filter". It is never sent to the server.
const All = "all"

// OrderQuery is the purchase order list's filter state. Status is the explicit
// dropdown value and Tab the status implied by the active tab; the dropdown wins.
type OrderQuery struct {
	Tab        string
	Status     string
	VendorID   int
	LocationID int
	Label      string
	Search     string
	Page       int
	PerPage    int
}

// Filter builds the outgoing filter with sentinels omitted.
func (q OrderQuery) Filter() core.PurchaseOrderFilter {
	status := clean(q.Status)
	if status == "" {
		status = clean(q.Tab)
	}
	return core.PurchaseOrderFilter{
		Status:     core.Status(status),
		VendorID:   q.VendorID,
		LocationID: q.LocationID,
		Label:      clean(q.Label),
		Search:     strings.TrimSpace(q.Search),
		Page:       q.Page,
		PerPage:    q.PerPage,
	}
}

// WithTab and the other With* methods return a copy on page 1.
func (q OrderQuery) WithTab(tab string) OrderQuery {
	q.Tab = tab
	q.Page = 1
	return q
}

func (q OrderQuery) WithStatus(status string) OrderQuery {
	q.Status = status
	q.Page = 1
	return q
}

func (q OrderQuery) WithVendor(id int) OrderQuery {
	q.VendorID = id
	q.Page = 1
	return q
}

func (q OrderQuery) WithLocation(id int) OrderQuery {
	q.LocationID = id
	q.Page = 1
	return q
}

func (q OrderQuery) WithLabel(label string) OrderQuery {
	q.Label = label
	q.Page = 1
	return q
}

func (q OrderQuery) WithSearch(term string) OrderQuery {
	q.Search = term
	q.Page = 1
	return q
}

// WithPage is the only change that keeps the other filters and moves off page 1.
func (q OrderQuery) WithPage(page int) OrderQuery {
	if page < 1 {
		page = 1
	}
	q.Page = page
	return q
}

// DemandQuery is the filter state of the demand-selection list.
type DemandQuery struct {
	Type       core.DemandType
	Search     string
	LocationID int
	DateFrom   string
	DateTo     string
	Page       int
	PerPage    int
}

func (q DemandQuery) Filter() core.DemandFilter {
	return core.DemandFilter{
		Type:       core.DemandType(clean(string(q.Type))),
		Search:     strings.TrimSpace(q.Search),
		LocationID: q.LocationID,
		DateFrom:   clean(q.DateFrom),
		DateTo:     clean(q.DateTo),
		Page:       q.Page,
		PerPage:    q.PerPage,
	}
}

func (q DemandQuery) WithSearch(term string) DemandQuery {
	q.Search = term
	q.Page = 1
	return q
}

func (q DemandQuery) WithLocation(id int) DemandQuery {
	q.LocationID = id
	q.Page = 1
	return q
}

func (q DemandQuery) WithDates(from, to string) DemandQuery {
	q.DateFrom, q.DateTo = from, to
	q.Page = 1
	return q
}

func (q DemandQuery) WithPage(page int) DemandQuery {
	if page < 1 {
		page = 1
	}
	q.Page = page
	return q
}

func clean(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, All) {
		return ""
	}
	return v
}
