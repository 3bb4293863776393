package report_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"procurement-console/internal/core"
	"procurement-console/internal/report"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleOrders() []core.PurchaseOrder {
	n1, n2 := "PO-2026-00001", "PO-2026-00002"
	return []core.PurchaseOrder{
		{PONumber: &n1, VendorName: "Test Supplier Ltd", Status: core.StatusDraft, TotalPayable: decimal.NewFromInt(1121)},
		{PONumber: &n2, VendorName: "Cement Co", Status: core.StatusApproved, TotalPayable: decimal.RequireFromString("53.1")},
	}
}

func TestProject_SelectsColumnsInRequestedOrder(t *testing.T) {
	table, err := report.Project(sampleOrders(), report.PurchaseOrderColumns, []string{"total_payable", "po_number"})
	require.NoError(t, err)
	require.Equal(t, []string{"Total Payable", "PO Number"}, table.Headers)
	require.Equal(t, [][]string{
		{"1121.00", "PO-2026-00001"},
		{"53.10", "PO-2026-00002"},
	}, table.Strings())
}

func TestProject_EmptyKeysSelectAll(t *testing.T) {
	table, err := report.Project(sampleOrders(), report.PurchaseOrderColumns, nil)
	require.NoError(t, err)
	require.Len(t, table.Headers, len(report.PurchaseOrderColumns))
	require.Len(t, table.Rows, 2)
}

func TestProject_UnknownColumn(t *testing.T) {
	_, err := report.Project(sampleOrders(), report.PurchaseOrderColumns, []string{"po_number", "margin"})
	require.True(t, errors.Is(err, report.ErrUnknownColumn))
}

func TestFormatCell(t *testing.T) {
	var nilStr *string
	var nilTime *time.Time
	at := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

	require.Equal(t, "", report.FormatCell(nil))
	require.Equal(t, "", report.FormatCell(nilStr))
	require.Equal(t, "", report.FormatCell(nilTime))
	require.Equal(t, "", report.FormatCell(time.Time{}))
	require.Equal(t, "2026-10-16 09:30", report.FormatCell(at))
	require.Equal(t, "0.50", report.FormatCell(decimal.RequireFromString("0.5")))
	require.Equal(t, "42", report.FormatCell(42))
}

func TestWriteXLSX(t *testing.T) {
	table, err := report.Project(sampleOrders(), report.PurchaseOrderColumns, []string{"po_number", "vendor_name", "total_payable"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, "Purchase Orders", table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Purchase Orders")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"PO Number", "Vendor", "Total Payable"}, rows[0])
	require.Equal(t, "PO-2026-00001", rows[1][0])
	require.Equal(t, "Cement Co", rows[2][1])
	require.Equal(t, "1121", rows[1][2])
}
