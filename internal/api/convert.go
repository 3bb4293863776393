package api

import (
	"procurement-console/internal/core"
)

func FromConditions(c core.Conditions) Conditions {
	return Conditions{
		Tax:             string(c.Tax),
		WHT:             string(c.WHT),
		DeliveryScope:   string(c.DeliveryScope),
		DeliveryCost:    string(c.DeliveryCost),
		DeliveryDamages: string(c.DeliveryDamages),
	}
}

func (c Conditions) ToCore() core.Conditions {
	return core.Conditions{
		Tax:             core.TaxMode(c.Tax),
		WHT:             core.YesNo(c.WHT),
		DeliveryScope:   core.DeliveryScope(c.DeliveryScope),
		DeliveryCost:    core.DeliveryCost(c.DeliveryCost),
		DeliveryDamages: core.YesNo(c.DeliveryDamages),
	}
}

// FromOrder renders po for the wire. Lines and history are included when loaded.
func FromOrder(po core.PurchaseOrder) PurchaseOrder {
	out := PurchaseOrder{
		ID:                 po.ID,
		PONumber:           po.PONumber,
		VendorID:           po.VendorID,
		VendorName:         po.VendorName,
		LocationID:         po.LocationID,
		LocationName:       po.LocationName,
		DeliveryDate:       po.DeliveryDate,
		ReferenceQuotation: po.ReferenceQuotation,
		Incoterm:           po.Incoterm,
		Label:              po.Label,
		Notes:              po.Notes,
		Conditions:         FromConditions(po.Conditions),
		GSTRate:            po.GSTRate,
		WHTRate:            po.WHTRate,
		Subtotal:           NewMoney(po.Subtotal),
		GSTAmount:          NewMoney(po.GSTAmount),
		TotalAfterTax:      NewMoney(po.TotalAfterTax),
		WHTAmount:          NewMoney(po.WHTAmount),
		TotalPayable:       NewMoney(po.TotalPayable),
		AmountInWords:      po.AmountInWords,
		Status:             string(po.Status),
		DemandIDs:          po.DemandIDs,
		Attachment:         po.Attachment,
		SubmittedAt:        po.SubmittedAt,
		ApprovedAt:         po.ApprovedAt,
		RejectedAt:         po.RejectedAt,
		PurchasedAt:        po.PurchasedAt,
		ReceivedAt:         po.ReceivedAt,
		CreatedAt:          po.CreatedAt,
		UpdatedAt:          po.UpdatedAt,
	}
	if out.DemandIDs == nil {
		out.DemandIDs = []int{}
	}
	for _, l := range po.Lines {
		out.LineItems = append(out.LineItems, LineItem{
			ID:             l.ID,
			LineNumber:     l.LineNumber,
			ItemID:         l.ItemID,
			ItemCode:       l.ItemCode,
			ItemName:       l.ItemName,
			Description:    l.Description,
			UOM:            l.UOM,
			Quantity:       l.Quantity,
			Rate:           l.Rate,
			Amount:         NewMoney(l.Amount),
			DemandID:       l.DemandID,
			DemandNumber:   l.DemandNumber,
			DemandCeiling:  l.DemandCeiling,
			LocationID:     l.LocationID,
			PurchaseStatus: string(l.PurchaseStatus),
		})
	}
	for _, h := range po.History {
		out.History = append(out.History, StatusChange{
			From:      string(h.From),
			To:        string(h.To),
			ActorID:   h.ActorID,
			ActorRole: h.ActorRole,
			ChangedAt: h.ChangedAt,
		})
	}
	return out
}

// ToCore converts a server record back into the domain model. Derived fields
// are taken as sent; the server is the authority for them.
func (p PurchaseOrder) ToCore() core.PurchaseOrder {
	po := core.PurchaseOrder{
		ID:                 p.ID,
		PONumber:           p.PONumber,
		VendorID:           p.VendorID,
		VendorName:         p.VendorName,
		LocationID:         p.LocationID,
		LocationName:       p.LocationName,
		DeliveryDate:       p.DeliveryDate,
		ReferenceQuotation: p.ReferenceQuotation,
		Incoterm:           p.Incoterm,
		Label:              p.Label,
		Notes:              p.Notes,
		Conditions:         p.Conditions.ToCore(),
		GSTRate:            p.GSTRate,
		WHTRate:            p.WHTRate,
		Subtotal:           p.Subtotal.Decimal,
		GSTAmount:          p.GSTAmount.Decimal,
		TotalAfterTax:      p.TotalAfterTax.Decimal,
		WHTAmount:          p.WHTAmount.Decimal,
		TotalPayable:       p.TotalPayable.Decimal,
		AmountInWords:      p.AmountInWords,
		Status:             core.Status(p.Status),
		DemandIDs:          p.DemandIDs,
		Attachment:         p.Attachment,
		SubmittedAt:        p.SubmittedAt,
		ApprovedAt:         p.ApprovedAt,
		RejectedAt:         p.RejectedAt,
		PurchasedAt:        p.PurchasedAt,
		ReceivedAt:         p.ReceivedAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	for _, l := range p.LineItems {
		po.Lines = append(po.Lines, core.LineItem{
			ID:             l.ID,
			LineNumber:     l.LineNumber,
			ItemID:         l.ItemID,
			ItemCode:       l.ItemCode,
			ItemName:       l.ItemName,
			Description:    l.Description,
			UOM:            l.UOM,
			Quantity:       l.Quantity,
			Rate:           l.Rate,
			Amount:         l.Amount.Decimal,
			DemandID:       l.DemandID,
			DemandNumber:   l.DemandNumber,
			DemandCeiling:  l.DemandCeiling,
			LocationID:     l.LocationID,
			PurchaseStatus: core.PurchaseStatus(l.PurchaseStatus),
		})
	}
	for _, h := range p.History {
		po.History = append(po.History, core.StatusChange{
			POID:      p.ID,
			From:      core.Status(h.From),
			To:        core.Status(h.To),
			ActorID:   h.ActorID,
			ActorRole: h.ActorRole,
			ChangedAt: h.ChangedAt,
		})
	}
	return po
}

func RequestFromInput(in core.PurchaseOrderInput) PurchaseOrderRequest {
	c := FromConditions(in.Conditions)
	req := PurchaseOrderRequest{
		VendorID:           in.VendorID,
		LocationID:         in.LocationID,
		DeliveryDate:       in.DeliveryDate,
		ReferenceQuotation: in.ReferenceQuotation,
		Incoterm:           in.Incoterm,
		Label:              in.Label,
		Notes:              in.Notes,
		Conditions:         &c,
		GSTRate:            in.GSTRate,
		WHTRate:            in.WHTRate,
		LineItems:          []LineItemRequest{},
	}
	for _, l := range in.Lines {
		req.LineItems = append(req.LineItems, LineItemRequest{
			ItemID:         l.ItemID,
			Description:    l.Description,
			Quantity:       l.Quantity,
			Rate:           l.Rate,
			DemandID:       l.DemandID,
			LocationID:     l.LocationID,
			PurchaseStatus: string(l.PurchaseStatus),
		})
		if l.DemandID != nil {
			req.DemandIDs = append(req.DemandIDs, *l.DemandID)
		}
	}
	return req
}

// ToInput converts a request body into service input. DemandIDs is informational;
// bindings are taken from the lines.
func (r PurchaseOrderRequest) ToInput() core.PurchaseOrderInput {
	in := core.PurchaseOrderInput{
		VendorID:           r.VendorID,
		LocationID:         r.LocationID,
		DeliveryDate:       r.DeliveryDate,
		ReferenceQuotation: r.ReferenceQuotation,
		Incoterm:           r.Incoterm,
		Label:              r.Label,
		Notes:              r.Notes,
		GSTRate:            r.GSTRate,
		WHTRate:            r.WHTRate,
	}
	if r.Conditions != nil {
		in.Conditions = r.Conditions.ToCore()
	}
	for _, l := range r.LineItems {
		in.Lines = append(in.Lines, core.LineItemInput{
			ItemID:         l.ItemID,
			Description:    l.Description,
			Quantity:       l.Quantity,
			Rate:           l.Rate,
			DemandID:       l.DemandID,
			LocationID:     l.LocationID,
			PurchaseStatus: core.PurchaseStatus(l.PurchaseStatus),
		})
	}
	return in
}

func FromAffordances(a core.Affordances) Affordances {
	out := Affordances{
		Status:      string(a.Status),
		CanEdit:     a.CanEdit,
		CanDelete:   a.CanDelete,
		ReadOnly:    a.ReadOnly,
		Transitions: []Transition{},
	}
	for _, t := range a.Transitions {
		out.Transitions = append(out.Transitions, Transition{To: string(t.To), Action: t.Action, Label: t.Label})
	}
	return out
}

func (a Affordances) ToCore() core.Affordances {
	out := core.Affordances{
		Status:    core.Status(a.Status),
		CanEdit:   a.CanEdit,
		CanDelete: a.CanDelete,
		ReadOnly:  a.ReadOnly,
	}
	for _, t := range a.Transitions {
		out.Transitions = append(out.Transitions, core.Transition{
			From: out.Status, To: core.Status(t.To), Action: t.Action, Label: t.Label,
		})
	}
	return out
}

func FromDemand(d core.Demand) Demand {
	out := Demand{
		ID:                d.ID,
		DemandNumber:      d.DemandNumber,
		Type:              string(d.Type),
		LocationID:        d.LocationID,
		LocationName:      d.LocationName,
		ItemName:          d.ItemName,
		ItemCode:          d.ItemCode,
		ItemDescription:   d.ItemDescription,
		ItemUOM:           d.ItemUOM,
		Rate:              d.Rate,
		ApprovedQuantity:  d.ApprovedQuantity,
		QuantityRemaining: d.QuantityRemaining,
		RequiredDate:      d.RequiredDate,
	}
	switch it := d.Item.(type) {
	case core.InventoryItem:
		out.InventoryItem = &InventoryItem{
			ID: it.ID, Code: it.Code, Name: it.Name, Description: it.Description, UOM: it.UOM, Rate: it.Rate,
		}
	case core.NonInventoryItem:
		out.NonInventoryItem = &NonInventoryItem{
			ID: it.ID, Code: it.Code, Name: it.Name, Description: it.Description, UOM: it.UOM,
		}
	}
	return out
}

// ToCore resolves the nested payload into the tagged union. An inventory item
// wins when both are present.
func (d Demand) ToCore() core.Demand {
	out := core.Demand{
		ID:                d.ID,
		DemandNumber:      d.DemandNumber,
		Type:              core.DemandType(d.Type),
		LocationID:        d.LocationID,
		LocationName:      d.LocationName,
		ItemName:          d.ItemName,
		ItemCode:          d.ItemCode,
		ItemDescription:   d.ItemDescription,
		ItemUOM:           d.ItemUOM,
		Rate:              d.Rate,
		ApprovedQuantity:  d.ApprovedQuantity,
		QuantityRemaining: d.QuantityRemaining,
		RequiredDate:      d.RequiredDate,
	}
	switch {
	case d.InventoryItem != nil:
		it := d.InventoryItem
		out.Item = core.InventoryItem{ID: it.ID, Code: it.Code, Name: it.Name, Description: it.Description, UOM: it.UOM, Rate: it.Rate}
	case d.NonInventoryItem != nil:
		it := d.NonInventoryItem
		out.Item = core.NonInventoryItem{ID: it.ID, Code: it.Code, Name: it.Name, Description: it.Description, UOM: it.UOM}
	}
	return out
}

func FromVendor(v core.Vendor) Vendor {
	return Vendor{
		ID: v.ID, Code: v.Code, Name: v.Name,
		ContactPerson: v.ContactPerson, Email: v.Email, Phone: v.Phone, Address: v.Address,
		PaymentTermsDays: v.PaymentTermsDays,
	}
}

func (v Vendor) ToCore() core.Vendor {
	return core.Vendor{
		ID: v.ID, Code: v.Code, Name: v.Name,
		ContactPerson: v.ContactPerson, Email: v.Email, Phone: v.Phone, Address: v.Address,
		PaymentTermsDays: v.PaymentTermsDays, IsActive: true,
	}
}

func FromLocation(l core.Location) Location { return Location{ID: l.ID, Code: l.Code, Name: l.Name} }

func (l Location) ToCore() core.Location {
	return core.Location{ID: l.ID, Code: l.Code, Name: l.Name, IsActive: true}
}

func FromUnit(u core.Unit) Unit { return Unit{ID: u.ID, Code: u.Code, Name: u.Name} }

func (u Unit) ToCore() core.Unit { return core.Unit{ID: u.ID, Code: u.Code, Name: u.Name, IsActive: true} }

func FromUser(u core.User) User {
	return User{ID: u.ID, Username: u.Username, FullName: u.FullName, Email: u.Email, Role: u.Role}
}

func (u User) ToCore() core.User {
	return core.User{ID: u.ID, Username: u.Username, FullName: u.FullName, Email: u.Email, Role: u.Role, IsActive: true}
}

func FromItem(it core.Item) Item {
	return Item{ID: it.ID, Code: it.Code, Name: it.Name, UOM: it.UOM, Rate: it.Rate, Inventory: it.Inventory}
}

func (it Item) ToCore() core.Item {
	return core.Item{ID: it.ID, Code: it.Code, Name: it.Name, UOM: it.UOM, Rate: it.Rate, Inventory: it.Inventory, IsActive: true}
}

// Map converts every element of in with f.
func Map[T, U any](in []T, f func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

// FromPage renders a domain page with f applied to each element.
func FromPage[T, U any](p *core.Page[T], f func(T) U) Page[U] {
	return Page[U]{
		Data:        Map(p.Data, f),
		CurrentPage: p.CurrentPage,
		PerPage:     p.PerPage,
		Total:       p.Total,
		LastPage:    p.LastPage,
	}
}

// ToCorePage is the inverse of FromPage.
func ToCorePage[T, U any](p Page[T], f func(T) U) *core.Page[U] {
	return &core.Page[U]{
		Data:        Map(p.Data, f),
		CurrentPage: p.CurrentPage,
		PerPage:     p.PerPage,
		Total:       p.Total,
		LastPage:    p.LastPage,
	}
}
