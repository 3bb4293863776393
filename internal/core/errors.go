package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrNotEditable         = errors.New("purchase order is not editable in its current status")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrForbiddenTransition = errors.New("status transition not permitted for role")
	ErrLastLineItem        = errors.New("a purchase order must keep at least one line item")
	ErrLineIndex           = errors.New("line item index out of range")
	ErrUnknownItem         = errors.New("item not found in item master")
	ErrBoundItem           = errors.New("the item of a demand-bound line cannot be changed")
)

// FieldError is one field-keyed validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every validation failure found in one pass.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a failure for field.
func (v *ValidationErrors) Add(field, format string, args ...any) {
	*v = append(*v, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Err returns v as an error, or nil when empty.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// ByField groups messages by field name, the shape used on the wire.
func (v ValidationErrors) ByField() map[string][]string {
	out := make(map[string][]string, len(v))
	for _, fe := range v {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

// FromFieldMap rebuilds ValidationErrors from the wire shape. Fields are sorted so
// the resulting order is stable.
func FromFieldMap(m map[string][]string) ValidationErrors {
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out ValidationErrors
	for _, f := range fields {
		for _, msg := range m[f] {
			out = append(out, FieldError{Field: f, Message: msg})
		}
	}
	return out
}
