package core

import (
	"fmt"
	"strconv"
)

// BindDemands appends one bound row per selected demand. Demands already bound
// to the order are skipped with a notice; blank placeholder rows are dropped
// when at least one demand is bound.
type BindDemands struct {
	Demands []Demand
}

func (c BindDemands) apply(po *PurchaseOrder, _ DraftEnv, notices *[]Notice) error {
	var added []LineItem
	seen := map[int]bool{}
	for _, d := range c.Demands {
		if hasDemand(po, d.ID) || seen[d.ID] {
			*notices = append(*notices, Notice{
				Level:   NoticeInfo,
				Message: fmt.Sprintf("Demand %s is already added to this order", demandRef(d)),
			})
			continue
		}
		seen[d.ID] = true
		added = append(added, lineFromDemand(d))
	}
	if len(added) == 0 {
		return nil
	}

	kept := po.Lines[:0]
	for _, l := range po.Lines {
		if !l.Blank() {
			kept = append(kept, l)
		}
	}
	po.Lines = append(kept, added...)
	for _, l := range added {
		po.DemandIDs = append(po.DemandIDs, *l.DemandID)
	}
	return nil
}

func lineFromDemand(d Demand) LineItem {
	id := d.ID
	ceiling := d.Ceiling()
	line := LineItem{
		ItemID:        d.CatalogItemID(),
		ItemCode:      d.Code(),
		ItemName:      d.DisplayName(),
		Description:   d.Description(),
		UOM:           d.UOM(),
		Quantity:      d.InitialQuantity(),
		Rate:          d.UnitRate(),
		DemandID:      &id,
		DemandNumber:  d.DemandNumber,
		DemandCeiling: &ceiling,
	}
	if d.LocationID != 0 {
		loc := d.LocationID
		line.LocationID = &loc
	}
	line.Amount = LineAmount(line.Quantity, line.Rate)
	return line
}

func demandRef(d Demand) string {
	if d.DemandNumber != "" {
		return d.DemandNumber
	}
	return strconv.Itoa(d.ID)
}
