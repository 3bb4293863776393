// Package report projects records onto named columns for tabular output:
// XLSX exports and the console's table printer share the same projection.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrUnknownColumn = errors.New("unknown column")

// Column extracts one cell from a record of type T.
type Column[T any] struct {
	Key    string
	Header string
	Value  func(T) any
}

// Table is a projected result: one header per column and one row per record.
type Table struct {
	Headers []string
	Rows    [][]any
}

// SelectColumns returns the columns named by keys, in the order given.
// An empty keys list selects every column.
func SelectColumns[T any](all []Column[T], keys []string) ([]Column[T], error) {
	if len(keys) == 0 {
		return all, nil
	}
	byKey := make(map[string]Column[T], len(all))
	for _, c := range all {
		byKey[c.Key] = c
	}
	out := make([]Column[T], 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		c, ok := byKey[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, k)
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return all, nil
	}
	return out, nil
}

// Project builds a Table from records using the columns named by keys.
func Project[T any](records []T, all []Column[T], keys []string) (Table, error) {
	cols, err := SelectColumns(all, keys)
	if err != nil {
		return Table{}, err
	}
	t := Table{Headers: make([]string, len(cols)), Rows: make([][]any, 0, len(records))}
	for i, c := range cols {
		t.Headers[i] = c.Header
	}
	for _, rec := range records {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = c.Value(rec)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Strings renders every cell as text.
func (t Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = FormatCell(v)
		}
		out[i] = cells
	}
	return out
}

// FormatCell renders a cell value for text output. Money is fixed to two places.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case decimal.Decimal:
		return x.StringFixed(2)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02 15:04")
	case *time.Time:
		if x == nil {
			return ""
		}
		return FormatCell(*x)
	default:
		return fmt.Sprint(x)
	}
}
