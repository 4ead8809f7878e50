// =============================================================================
// ERP Sales Reconciler - XLSX Export
// =============================================================================
//
// Workbook rendering of a reconciliation run: one sheet for the unified
// ledger and one per aggregated view, plus a summary sheet of the derived
// metrics. Numeric cells carry the aggregated values themselves; anything
// visual (column widths, number formats) is display-only and never feeds
// back into a total.
//
// =============================================================================

package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/erp-sales-reconciler/internal/aggregate"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/types"
)

// WorkbookViews bundles everything a run's workbook shows.
type WorkbookViews struct {
	Ledger        []types.LedgerRow
	ByDate        []aggregate.Group
	BySalesperson []aggregate.Group
	ByStockGroup  []aggregate.Group
	ByStockItem   []aggregate.Group
	Totals        aggregate.Totals
}

// WriteWorkbook writes the run workbook to path.
func WriteWorkbook(path string, views WorkbookViews) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeLedgerSheet(f, "Ledger", views.Ledger); err != nil {
		return err
	}

	groupSheets := []struct {
		name   string
		dim    aggregate.Dimension
		groups []aggregate.Group
	}{
		{"By Date", aggregate.ByDate, views.ByDate},
		{"By Salesperson", aggregate.BySalesperson, views.BySalesperson},
		{"By Stock Group", aggregate.ByStockGroup, views.ByStockGroup},
		{"By Item", aggregate.ByStockItem, views.ByStockItem},
	}
	for _, sheet := range groupSheets {
		if err := writeGroupSheet(f, sheet.name, sheet.dim, sheet.groups); err != nil {
			return err
		}
	}

	if err := writeSummarySheet(f, "Summary", views.Totals); err != nil {
		return err
	}

	// The default sheet excelize creates is replaced by Ledger.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeLedgerSheet(f *excelize.File, name string, rows []types.LedgerRow) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	if err := setRow(f, name, 1, toCells(ledgerHeader)); err != nil {
		return err
	}

	for i, row := range rows {
		cells := []interface{}{
			row.TransactionID,
			row.Date.Format(aggregate.DateLayout),
			row.InvoiceNumber,
			row.VoucherLabel,
			row.CustomerName,
			row.Salesperson,
			row.StockCode,
			row.StockName,
			row.StockGroup,
			row.Quantity.InexactFloat64(),
			row.RevenueAmount.InexactFloat64(),
			row.UnitCost.InexactFloat64(),
			row.TotalCost.InexactFloat64(),
			row.Profit.InexactFloat64(),
			row.IsReturn,
		}
		if err := setRow(f, name, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeGroupSheet(f *excelize.File, name string, dim aggregate.Dimension, groups []aggregate.Group) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	header := []interface{}{dim.String(), "Quantity", "Revenue", "Cost", "Profit", "Margin%"}
	if err := setRow(f, name, 1, header); err != nil {
		return err
	}

	for i, group := range groups {
		cells := []interface{}{
			group.Key,
			group.Quantity.InexactFloat64(),
			group.Revenue.InexactFloat64(),
			group.Cost.InexactFloat64(),
			group.Profit.InexactFloat64(),
			group.Margin,
		}
		if err := setRow(f, name, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, name string, totals aggregate.Totals) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Quantity", totals.Quantity.InexactFloat64()},
		{"Revenue", totals.Revenue.InexactFloat64()},
		{"Cost", totals.Cost.InexactFloat64()},
		{"Profit", totals.Profit.InexactFloat64()},
		{"Margin%", totals.Margin},
		{"MonthlyRunRate", totals.MonthlyRunRate},
		{"ReturnRate%", totals.ReturnRate},
		{"InvoiceCount", totals.InvoiceCount},
		{"ReturnCount", totals.ReturnCount},
		{"Days", totals.Days},
	}
	for i, cells := range rows {
		if err := setRow(f, name, i+1, cells); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
