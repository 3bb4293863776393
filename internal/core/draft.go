package core

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// NoticeLevel grades a user-facing message produced while applying a command.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message the console shows as a toast.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// DraftEnv is the read-only context commands are applied in.
type DraftEnv struct {
	Items  map[int]Item
	Policy Policy
}

// Command is one user action on a purchase order draft.
type Command interface {
	apply(po *PurchaseOrder, env DraftEnv, notices *[]Notice) error
}

// NewDraft returns an unsaved draft with default conditions and one blank row.
func NewDraft(policy Policy) PurchaseOrder {
	po := PurchaseOrder{
		Status:     StatusDraft,
		Conditions: DefaultConditions(),
		GSTRate:    decimal.Zero,
		WHTRate:    decimal.Zero,
		Lines:      []LineItem{{}},
	}
	Recompute(&po, policy)
	return po
}

// Editable reports whether po accepts commands other than ChangeStatus.
// An order that has never been saved is always editable.
func Editable(po PurchaseOrder) bool {
	return po.ID == 0 || po.Status.Editable()
}

// Reduce applies cmd to a copy of po and recomputes every derived field.
// po itself is never modified; on error it is returned unchanged.
func Reduce(po PurchaseOrder, cmd Command, env DraftEnv) (PurchaseOrder, []Notice, error) {
	if _, isStatus := cmd.(ChangeStatus); !isStatus && !Editable(po) {
		return po, nil, fmt.Errorf("%w (status %s)", ErrNotEditable, po.Status)
	}

	next := clonePO(po)
	var notices []Notice
	if err := cmd.apply(&next, env, &notices); err != nil {
		return po, notices, err
	}
	Recompute(&next, env.Policy)
	return next, notices, nil
}

// ReduceAll applies cmds in order, stopping at the first error.
func ReduceAll(po PurchaseOrder, env DraftEnv, cmds ...Command) (PurchaseOrder, []Notice, error) {
	var all []Notice
	for _, cmd := range cmds {
		next, notices, err := Reduce(po, cmd, env)
		all = append(all, notices...)
		if err != nil {
			return po, all, err
		}
		po = next
	}
	return po, all, nil
}

func clonePO(po PurchaseOrder) PurchaseOrder {
	out := po
	out.Lines = make([]LineItem, len(po.Lines))
	for i, l := range po.Lines {
		out.Lines[i] = cloneLine(l)
	}
	out.DemandIDs = slices.Clone(po.DemandIDs)
	out.History = slices.Clone(po.History)
	return out
}

func cloneLine(l LineItem) LineItem {
	if l.ItemID != nil {
		v := *l.ItemID
		l.ItemID = &v
	}
	if l.DemandID != nil {
		v := *l.DemandID
		l.DemandID = &v
	}
	if l.DemandCeiling != nil {
		v := *l.DemandCeiling
		l.DemandCeiling = &v
	}
	if l.LocationID != nil {
		v := *l.LocationID
		l.LocationID = &v
	}
	return l
}

// hasDemand reports whether demandID is bound anywhere on po.
func hasDemand(po *PurchaseOrder, demandID int) bool {
	if slices.Contains(po.DemandIDs, demandID) {
		return true
	}
	for _, l := range po.Lines {
		if l.DemandID != nil && *l.DemandID == demandID {
			return true
		}
	}
	return false
}

// releaseDemand drops demandID from the order's consumed set.
func releaseDemand(po *PurchaseOrder, demandID int) {
	po.DemandIDs = slices.DeleteFunc(po.DemandIDs, func(id int) bool { return id == demandID })
}
