package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder is the priced, vendor-bound procurement document.
// The five monetary totals and AmountInWords are derived by Recompute and are
// never set directly.
type PurchaseOrder struct {
	ID                 int
	PONumber           *string
	VendorID           int
	VendorName         string
	LocationID         int
	LocationName       string
	DeliveryDate       string // YYYY-MM-DD
	ReferenceQuotation string
	Incoterm           string
	Label              string
	Notes              string
	Lines              []LineItem
	Conditions         Conditions
	GSTRate            decimal.Decimal
	WHTRate            decimal.Decimal
	Subtotal           decimal.Decimal
	GSTAmount          decimal.Decimal
	TotalAfterTax      decimal.Decimal
	WHTAmount          decimal.Decimal
	TotalPayable       decimal.Decimal
	AmountInWords      string
	Status             Status
	DemandIDs          []int
	Attachment         *string // opaque reference returned by the attachment store
	CreatedBy          *int
	SubmittedAt        *time.Time
	ApprovedAt         *time.Time
	RejectedAt         *time.Time
	PurchasedAt        *time.Time
	ReceivedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	History            []StatusChange
}

// LineItem is one priced row of a purchase order.
type LineItem struct {
	ID          int
	LineNumber  int
	ItemID      *int
	ItemCode    string
	ItemName    string
	Description string
	UOM         string // frozen from the item master
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
	DemandID    *int
	// DemandNumber and DemandCeiling travel with the binding.
	DemandNumber   string
	DemandCeiling  *decimal.Decimal
	LocationID     *int
	PurchaseStatus PurchaseStatus
}

// Bound reports whether the row is bound to an upstream demand.
func (l LineItem) Bound() bool {
	return l.DemandID != nil
}

// Blank reports whether the row is an untouched placeholder.
func (l LineItem) Blank() bool {
	return l.ItemID == nil && l.DemandID == nil && l.Description == "" &&
		l.Quantity.IsZero() && l.Rate.IsZero()
}

// PurchaseStatus labels market-purchase rows.
type PurchaseStatus string

const (
	PurchaseStatusNone         PurchaseStatus = ""
	PurchaseStatusScheduled    PurchaseStatus = "scheduled"
	PurchaseStatusPartial      PurchaseStatus = "partial"
	PurchaseStatusOrdered      PurchaseStatus = "ordered"
	PurchaseStatusNotAvailable PurchaseStatus = "not_available"
	PurchaseStatusMPNPending   PurchaseStatus = "mpn_pending"
)

// Valid reports whether p is empty or a known label.
func (p PurchaseStatus) Valid() bool {
	switch p {
	case PurchaseStatusNone, PurchaseStatusScheduled, PurchaseStatusPartial,
		PurchaseStatusOrdered, PurchaseStatusNotAvailable, PurchaseStatusMPNPending:
		return true
	}
	return false
}

type TaxMode string

const (
	TaxInclusive TaxMode = "inclusive"
	TaxExclusive TaxMode = "exclusive"
)

type YesNo string

const (
	Yes YesNo = "yes"
	No  YesNo = "no"
)

type DeliveryScope string

const (
	DeliveryByVendor   DeliveryScope = "vendor"
	DeliveryByCustomer DeliveryScope = "customer"
)

type DeliveryCost string

const (
	DeliveryFree DeliveryCost = "free"
	DeliveryPaid DeliveryCost = "paid"
)

// Conditions holds five independent binary terms printed on the order.
// WHT is whether a withholding-tax certificate is provided; DeliveryDamages
// is whether the vendor is liable for damage in transit.
type Conditions struct {
	Tax             TaxMode
	WHT             YesNo
	DeliveryScope   DeliveryScope
	DeliveryCost    DeliveryCost
	DeliveryDamages YesNo
}

// DefaultConditions returns the terms a fresh draft starts with.
func DefaultConditions() Conditions {
	return Conditions{
		Tax:             TaxExclusive,
		WHT:             No,
		DeliveryScope:   DeliveryByVendor,
		DeliveryCost:    DeliveryFree,
		DeliveryDamages: Yes,
	}
}

// Validate records an error for every condition outside its two allowed values.
func (c Conditions) Validate(errs *ValidationErrors) {
	if c.Tax != TaxInclusive && c.Tax != TaxExclusive {
		errs.Add("conditions.tax", "must be inclusive or exclusive")
	}
	if c.WHT != Yes && c.WHT != No {
		errs.Add("conditions.wht", "must be yes or no")
	}
	if c.DeliveryScope != DeliveryByVendor && c.DeliveryScope != DeliveryByCustomer {
		errs.Add("conditions.delivery_scope", "must be vendor or customer")
	}
	if c.DeliveryCost != DeliveryFree && c.DeliveryCost != DeliveryPaid {
		errs.Add("conditions.delivery_cost", "must be free or paid")
	}
	if c.DeliveryDamages != Yes && c.DeliveryDamages != No {
		errs.Add("conditions.delivery_damages", "must be yes or no")
	}
}

// StatusChange is one recorded workflow transition.
type StatusChange struct {
	POID      int
	PONumber  string
	From      Status
	To        Status
	ActorID   *int
	ActorRole string
	ChangedAt time.Time
}

// Actor identifies who performs a mutation.
type Actor struct {
	UserID int
	Role   string
}

// SystemActor is used for transitions driven by downstream events.
var SystemActor = Actor{Role: RoleSystem}

// PurchaseOrderFilter narrows ListPOs. Zero values mean "no filter".
type PurchaseOrderFilter struct {
	Status     Status
	VendorID   int
	LocationID int
	Label      string
	Search     string
	Page       int
	PerPage    int
}

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// NormalizePaging clamps page and perPage to usable values.
func NormalizePaging(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// Page is one window of a paginated result.
type Page[T any] struct {
	Data        []T
	CurrentPage int
	PerPage     int
	Total       int
	LastPage    int
}

// NewPage builds a Page and derives LastPage from total and perPage.
func NewPage[T any](data []T, page, perPage, total int) *Page[T] {
	last := 1
	if perPage > 0 && total > 0 {
		last = (total + perPage - 1) / perPage
	}
	if data == nil {
		data = []T{}
	}
	return &Page[T]{Data: data, CurrentPage: page, PerPage: perPage, Total: total, LastPage: last}
}

// LineItemInput is one submitted line. UOM, item name and the demand ceiling are
// resolved by the server from the item master and demand source.
type LineItemInput struct {
	ItemID         *int
	Description    string
	Quantity       decimal.Decimal
	Rate           decimal.Decimal
	DemandID       *int
	LocationID     *int
	PurchaseStatus PurchaseStatus
}

// PurchaseOrderInput is the submitted form of a draft purchase order.
type PurchaseOrderInput struct {
	VendorID           int
	LocationID         int
	DeliveryDate       string
	ReferenceQuotation string
	Incoterm           string
	Label              string
	Notes              string
	Conditions         Conditions
	GSTRate            decimal.Decimal
	WHTRate            decimal.Decimal
	Lines              []LineItemInput
	Attachment         *string
}

// InputFromOrder converts a locally built draft into its submitted form.
func InputFromOrder(po PurchaseOrder) PurchaseOrderInput {
	in := PurchaseOrderInput{
		VendorID:           po.VendorID,
		LocationID:         po.LocationID,
		DeliveryDate:       po.DeliveryDate,
		ReferenceQuotation: po.ReferenceQuotation,
		Incoterm:           po.Incoterm,
		Label:              po.Label,
		Notes:              po.Notes,
		Conditions:         po.Conditions,
		GSTRate:            po.GSTRate,
		WHTRate:            po.WHTRate,
		Attachment:         po.Attachment,
	}
	for _, l := range po.Lines {
		in.Lines = append(in.Lines, LineItemInput{
			ItemID:         l.ItemID,
			Description:    l.Description,
			Quantity:       l.Quantity,
			Rate:           l.Rate,
			DemandID:       l.DemandID,
			LocationID:     l.LocationID,
			PurchaseStatus: l.PurchaseStatus,
		})
	}
	return in
}

// StatusPublisher receives every committed status change.
type StatusPublisher interface {
	PublishStatusChange(ctx context.Context, change StatusChange) error
}

// PurchaseOrderService is the server-side authority over purchase orders.
type PurchaseOrderService interface {
	// CreatePO validates the input, recomputes all totals, assigns a gapless PO
	// number and stores the order in draft together with its demand bindings.
	CreatePO(ctx context.Context, in PurchaseOrderInput, actor Actor) (*PurchaseOrder, error)

	// UpdatePO replaces header, lines and demand bindings of a draft order.
	// Returns ErrNotEditable for any other status.
	UpdatePO(ctx context.Context, poID int, in PurchaseOrderInput, actor Actor) (*PurchaseOrder, error)

	// DeletePO removes a draft order and releases its demands.
	DeletePO(ctx context.Context, poID int) error

	// GetPO returns an order with its lines, demand IDs and status history.
	GetPO(ctx context.Context, poID int) (*PurchaseOrder, error)

	// ListPOs returns one page of orders (without lines) matching the filter.
	ListPOs(ctx context.Context, f PurchaseOrderFilter) (*Page[PurchaseOrder], error)

	// NextPONumber previews the number the next created order will receive.
	NextPONumber(ctx context.Context, at time.Time) (string, error)

	// TransitionStatus moves an order along the workflow after checking the edge
	// and the actor's role under a row lock.
	TransitionStatus(ctx context.Context, poID int, to Status, actor Actor) (*PurchaseOrder, error)
}
