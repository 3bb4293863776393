package report

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes t as a single-sheet workbook. Money cells are numeric so
// they can be summed in a spreadsheet.
func WriteXLSX(w io.Writer, sheet string, t Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	current := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet != "" && sheet != current {
		if err := f.SetSheetName(current, sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
		current = sheet
	}

	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(current, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if len(t.Headers) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("header style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(t.Headers), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(current, "A1", last, bold); err != nil {
			return fmt.Errorf("header style: %w", err)
		}
	}

	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = xlsxValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(current, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func xlsxValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case *string, time.Time, *time.Time:
		return FormatCell(x)
	default:
		return v
	}
}
