// Package api defines the JSON wire format shared by the HTTP server and the
// console client. Field names are snake_case; money travels as fixed two-place
// strings and quantities and rates as decimal strings.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type Conditions struct {
	Tax             string `json:"tax"`
	WHT             string `json:"wht"`
	DeliveryScope   string `json:"delivery_scope"`
	DeliveryCost    string `json:"delivery_cost"`
	DeliveryDamages string `json:"delivery_damages"`
}

type LineItem struct {
	ID             int              `json:"id,omitempty"`
	LineNumber     int              `json:"line_number,omitempty"`
	ItemID         *int             `json:"item_id"`
	ItemCode       string           `json:"item_code,omitempty"`
	ItemName       string           `json:"item_name,omitempty"`
	Description    string           `json:"description"`
	UOM            string           `json:"uom,omitempty"`
	Quantity       decimal.Decimal  `json:"quantity"`
	Rate           decimal.Decimal  `json:"rate"`
	Amount         Money            `json:"amount"`
	DemandID       *int             `json:"demand_id"`
	DemandNumber   string           `json:"demand_number,omitempty"`
	DemandCeiling  *decimal.Decimal `json:"demand_ceiling,omitempty"`
	LocationID     *int             `json:"location_id"`
	PurchaseStatus string           `json:"purchase_status,omitempty"`
}

type StatusChange struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorID   *int      `json:"actor_id,omitempty"`
	ActorRole string    `json:"actor_role,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

type PurchaseOrder struct {
	ID                 int             `json:"id"`
	PONumber           *string         `json:"po_number"`
	VendorID           int             `json:"vendor_id"`
	VendorName         string          `json:"vendor_name,omitempty"`
	LocationID         int             `json:"location_id"`
	LocationName       string          `json:"location_name,omitempty"`
	DeliveryDate       string          `json:"delivery_date"`
	ReferenceQuotation string          `json:"reference_quotation,omitempty"`
	Incoterm           string          `json:"incoterm,omitempty"`
	Label              string          `json:"label,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	Conditions         Conditions      `json:"conditions"`
	GSTRate            decimal.Decimal `json:"gst_rate"`
	WHTRate            decimal.Decimal `json:"wht_rate"`
	Subtotal           Money           `json:"subtotal"`
	GSTAmount          Money           `json:"gst_amount"`
	TotalAfterTax      Money           `json:"total_after_tax"`
	WHTAmount          Money           `json:"wht_amount"`
	TotalPayable       Money           `json:"total_payable"`
	AmountInWords      string          `json:"amount_in_words"`
	Status             string          `json:"status"`
	DemandIDs          []int           `json:"demand_ids"`
	Attachment         *string         `json:"attachment,omitempty"`
	LineItems          []LineItem      `json:"line_items,omitempty"`
	SubmittedAt        *time.Time      `json:"submitted_at,omitempty"`
	ApprovedAt         *time.Time      `json:"approved_at,omitempty"`
	RejectedAt         *time.Time      `json:"rejected_at,omitempty"`
	PurchasedAt        *time.Time      `json:"purchased_at,omitempty"`
	ReceivedAt         *time.Time      `json:"received_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	History            []StatusChange  `json:"status_history,omitempty"`
}

// LineItemRequest is one submitted line. Derived fields are recomputed by the server.
type LineItemRequest struct {
	ItemID         *int            `json:"item_id"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	Rate           decimal.Decimal `json:"rate"`
	DemandID       *int            `json:"demand_id"`
	LocationID     *int            `json:"location_id"`
	PurchaseStatus string          `json:"purchase_status,omitempty"`
}

// PurchaseOrderRequest is the body of POST and PUT /purchase-orders. In multipart
// requests it is carried in the "payload" field.
type PurchaseOrderRequest struct {
	VendorID           int               `json:"vendor_id"`
	LocationID         int               `json:"location_id"`
	DeliveryDate       string            `json:"delivery_date"`
	ReferenceQuotation string            `json:"reference_quotation,omitempty"`
	Incoterm           string            `json:"incoterm,omitempty"`
	Label              string            `json:"label,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	Conditions         *Conditions       `json:"conditions,omitempty"`
	GSTRate            decimal.Decimal   `json:"gst_rate"`
	WHTRate            decimal.Decimal   `json:"wht_rate"`
	LineItems          []LineItemRequest `json:"line_items"`
	DemandIDs          []int             `json:"demand_ids,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type NextNumberResponse struct {
	PONumber string `json:"po_number"`
}

type Transition struct {
	To     string `json:"to"`
	Action string `json:"action"`
	Label  string `json:"label"`
}

type Affordances struct {
	Status      string       `json:"status"`
	CanEdit     bool         `json:"can_edit"`
	CanDelete   bool         `json:"can_delete"`
	ReadOnly    bool         `json:"read_only"`
	Transitions []Transition `json:"transitions"`
}

type InventoryItem struct {
	ID          int             `json:"id"`
	Code        string          `json:"code,omitempty"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	UOM         string          `json:"uom,omitempty"`
	Rate        decimal.Decimal `json:"rate"`
}

type NonInventoryItem struct {
	ID          int    `json:"id"`
	Code        string `json:"code,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	UOM         string `json:"uom,omitempty"`
}

// Demand carries at most one of InventoryItem and NonInventoryItem.
type Demand struct {
	ID                int               `json:"id"`
	DemandNumber      string            `json:"demand_number"`
	Type              string            `json:"type"`
	LocationID        int               `json:"location_id,omitempty"`
	LocationName      string            `json:"location_name,omitempty"`
	InventoryItem     *InventoryItem    `json:"inventory_item,omitempty"`
	NonInventoryItem  *NonInventoryItem `json:"non_inventory_item,omitempty"`
	ItemName          string            `json:"item_name,omitempty"`
	ItemCode          string            `json:"item_code,omitempty"`
	ItemDescription   string            `json:"item_description,omitempty"`
	ItemUOM           string            `json:"item_uom,omitempty"`
	Rate              decimal.Decimal   `json:"rate"`
	ApprovedQuantity  decimal.Decimal   `json:"approved_quantity"`
	QuantityRemaining decimal.Decimal   `json:"quantity_remaining"`
	RequiredDate      string            `json:"required_date,omitempty"`
}

type Vendor struct {
	ID               int     `json:"id"`
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	ContactPerson    *string `json:"contact_person,omitempty"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Address          *string `json:"address,omitempty"`
	PaymentTermsDays int     `json:"payment_terms_days"`
}

type Location struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type Unit struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type Item struct {
	ID        int             `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	UOM       string          `json:"uom"`
	Rate      decimal.Decimal `json:"rate"`
	Inventory bool            `json:"is_inventory"`
}

type User struct {
	ID       int     `json:"id"`
	Username string  `json:"username"`
	FullName string  `json:"full_name"`
	Email    *string `json:"email,omitempty"`
	Role     string  `json:"role"`
}

// ErrorResponse is the body of every non-2xx response. Errors is set on 422
// and maps field keys such as "lines.0.quantity" to messages.
type ErrorResponse struct {
	Message   string              `json:"message"`
	Code      string              `json:"code"`
	Errors    map[string][]string `json:"errors,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}
