package report

import (
	"procurement-console/internal/core"
)

// PurchaseOrderColumns are the exportable columns of the purchase order list.
// Keys match the JSON field names of the list endpoint.
var PurchaseOrderColumns = []Column[core.PurchaseOrder]{
	{Key: "po_number", Header: "PO Number", Value: func(po core.PurchaseOrder) any { return po.PONumber }},
	{Key: "vendor_name", Header: "Vendor", Value: func(po core.PurchaseOrder) any { return po.VendorName }},
	{Key: "location_name", Header: "Location", Value: func(po core.PurchaseOrder) any { return po.LocationName }},
	{Key: "delivery_date", Header: "Delivery Date", Value: func(po core.PurchaseOrder) any { return po.DeliveryDate }},
	{Key: "label", Header: "Label", Value: func(po core.PurchaseOrder) any { return po.Label }},
	{Key: "status", Header: "Status", Value: func(po core.PurchaseOrder) any { return string(po.Status) }},
	{Key: "subtotal", Header: "Subtotal", Value: func(po core.PurchaseOrder) any { return po.Subtotal }},
	{Key: "gst_amount", Header: "GST", Value: func(po core.PurchaseOrder) any { return po.GSTAmount }},
	{Key: "total_after_tax", Header: "Total After Tax", Value: func(po core.PurchaseOrder) any { return po.TotalAfterTax }},
	{Key: "wht_amount", Header: "WHT", Value: func(po core.PurchaseOrder) any { return po.WHTAmount }},
	{Key: "total_payable", Header: "Total Payable", Value: func(po core.PurchaseOrder) any { return po.TotalPayable }},
	{Key: "amount_in_words", Header: "Amount in Words", Value: func(po core.PurchaseOrder) any { return po.AmountInWords }},
	{Key: "created_at", Header: "Created", Value: func(po core.PurchaseOrder) any { return po.CreatedAt }},
}

// DemandColumns are the columns of the pending demand list.
var DemandColumns = []Column[core.Demand]{
	{Key: "id", Header: "ID", Value: func(d core.Demand) any { return d.ID }},
	{Key: "demand_number", Header: "Demand", Value: func(d core.Demand) any { return d.DemandNumber }},
	{Key: "type", Header: "Type", Value: func(d core.Demand) any { return string(d.Type) }},
	{Key: "item_name", Header: "Item", Value: func(d core.Demand) any { return d.DisplayName() }},
	{Key: "uom", Header: "UOM", Value: func(d core.Demand) any { return d.UOM() }},
	{Key: "ceiling", Header: "Available", Value: func(d core.Demand) any { return d.Ceiling().String() }},
	{Key: "location_name", Header: "Location", Value: func(d core.Demand) any { return d.LocationName }},
	{Key: "required_date", Header: "Required", Value: func(d core.Demand) any { return d.RequiredDate }},
}
