package core

import (
	"fmt"
	"slices"
)

// Status is the lifecycle state of a purchase order.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusPending         Status = "pending"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusPurchased       Status = "purchased"
	StatusReceivedPartial Status = "received_partial"
	StatusReceivedFull    Status = "received_full"
)

// Roles recognised by the transition table. Any non-empty role may submit.
const (
	RoleAdmin    = "admin"
	RoleApprover = "approver"
	RoleStore    = "store"
	RoleSystem   = "system"
)

// Transition is one edge of the order status workflow. External transitions are
// driven by downstream flows and never offered as console actions.
type Transition struct {
	From     Status   `json:"from"`
	To       Status   `json:"to"`
	Action   string   `json:"action"`
	Label    string   `json:"label"`
	Roles    []string `json:"roles,omitempty"` // empty means any authenticated role
	External bool     `json:"external"`
}

var transitions = []Transition{
	{From: StatusDraft, To: StatusPending, Action: "submit", Label: "Submit for Approval"},
	{From: StatusPending, To: StatusApproved, Action: "approve", Label: "Approve", Roles: []string{RoleApprover, RoleAdmin}},
	{From: StatusPending, To: StatusRejected, Action: "reject", Label: "Reject", Roles: []string{RoleApprover, RoleAdmin}},
	{From: StatusApproved, To: StatusPurchased, Action: "purchase", Label: "Mark Purchased", Roles: []string{RoleSystem, RoleAdmin}, External: true},
	{From: StatusPurchased, To: StatusReceivedPartial, Action: "receive_partial", Label: "Partially Received", Roles: []string{RoleSystem, RoleStore, RoleAdmin}, External: true},
	{From: StatusPurchased, To: StatusReceivedFull, Action: "receive_full", Label: "Fully Received", Roles: []string{RoleSystem, RoleStore, RoleAdmin}, External: true},
	{From: StatusReceivedPartial, To: StatusReceivedFull, Action: "receive_full", Label: "Fully Received", Roles: []string{RoleSystem, RoleStore, RoleAdmin}, External: true},
}

// AllStatuses lists every workflow state in lifecycle order.
var AllStatuses = []Status{
	StatusDraft, StatusPending, StatusApproved, StatusRejected,
	StatusPurchased, StatusReceivedPartial, StatusReceivedFull,
}

// Valid reports whether s is a known workflow state.
func (s Status) Valid() bool {
	return slices.Contains(AllStatuses, s)
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(NextTransitions(s)) == 0
}

// Editable reports whether header, lines, conditions and rates may change.
func (s Status) Editable() bool {
	return s == StatusDraft
}

// NextTransitions returns the legal transitions out of from.
func NextTransitions(from Status) []Transition {
	var out []Transition
	for _, t := range transitions {
		if t.From == from {
			out = append(out, t)
		}
	}
	return out
}

// CanTransition reports whether from → to is an edge of the workflow.
func CanTransition(from, to Status) bool {
	_, ok := findTransition(from, to)
	return ok
}

func findTransition(from, to Status) (Transition, bool) {
	for _, t := range transitions {
		if t.From == from && t.To == to {
			return t, true
		}
	}
	return Transition{}, false
}

// Allows reports whether role may trigger t.
func (t Transition) Allows(role string) bool {
	if role == "" {
		return false
	}
	if len(t.Roles) == 0 {
		return true
	}
	return slices.Contains(t.Roles, role)
}

// AuthorizeTransition validates from → to for role. It returns an error wrapping
// ErrInvalidTransition when the edge does not exist and ErrForbiddenTransition when
// the role may not trigger it.
func AuthorizeTransition(from, to Status, role string) (Transition, error) {
	t, ok := findTransition(from, to)
	if !ok {
		return Transition{}, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
	}
	if !t.Allows(role) {
		return Transition{}, fmt.Errorf("%w: role %q cannot %s", ErrForbiddenTransition, role, t.Action)
	}
	return t, nil
}

// Affordances describes which console actions are enabled for an order.
type Affordances struct {
	Status      Status       `json:"status"`
	CanEdit     bool         `json:"can_edit"`
	CanDelete   bool         `json:"can_delete"`
	ReadOnly    bool         `json:"read_only"`
	Transitions []Transition `json:"transitions"`
}

// AffordancesFor returns the console affordances for an order in status as seen by role.
func AffordancesFor(status Status, role string) Affordances {
	a := Affordances{
		Status:    status,
		CanEdit:   status.Editable(),
		CanDelete: status.Editable(),
		ReadOnly:  !status.Editable(),
	}
	for _, t := range NextTransitions(status) {
		if t.External || !t.Allows(role) {
			continue
		}
		a.Transitions = append(a.Transitions, t)
	}
	return a
}
