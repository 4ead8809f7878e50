// =============================================================================
// ERP Sales Reconciler - CSV Export
// =============================================================================
//
// Comma-separated rendering of the unified ledger and of aggregated views.
// Formatting stops at layout: every numeric cell is the decimal sum's exact
// string form, so an exported value always equals the aggregated value with
// no re-rounding between the engine and the file.
//
// =============================================================================

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ginjaninja78/erp-sales-reconciler/internal/aggregate"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/types"
)

// ledgerHeader is the column order of the ledger export.
var ledgerHeader = []string{
	"TransactionID", "Date", "InvoiceNumber", "VoucherLabel", "Customer",
	"Salesperson", "StockCode", "StockName", "StockGroup",
	"Quantity", "Revenue", "UnitCost", "TotalCost", "Profit", "IsReturn",
}

// WriteLedgerCSV writes the full unified ledger, one row per line item.
func WriteLedgerCSV(w io.Writer, rows []types.LedgerRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ledgerHeader); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.TransactionID,
			row.Date.Format(aggregate.DateLayout),
			row.InvoiceNumber,
			row.VoucherLabel,
			row.CustomerName,
			row.Salesperson,
			row.StockCode,
			row.StockName,
			row.StockGroup,
			row.Quantity.String(),
			row.RevenueAmount.String(),
			row.UnitCost.String(),
			row.TotalCost.String(),
			row.Profit.String(),
			strconv.FormatBool(row.IsReturn),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write ledger row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteGroupsCSV writes one aggregated view, one row per group.
func WriteGroupsCSV(w io.Writer, dim aggregate.Dimension, groups []aggregate.Group) error {
	writer := csv.NewWriter(w)

	header := []string{dim.String(), "Quantity", "Revenue", "Cost", "Profit", "Margin%"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write group header: %w", err)
	}

	for _, group := range groups {
		record := []string{
			group.Key,
			group.Quantity.String(),
			group.Revenue.String(),
			group.Cost.String(),
			group.Profit.String(),
			strconv.FormatFloat(group.Margin, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write group row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteTotalsCSV writes the summary metrics block as key/value lines.
func WriteTotalsCSV(w io.Writer, totals aggregate.Totals) error {
	writer := csv.NewWriter(w)

	records := [][]string{
		{"Metric", "Value"},
		{"Quantity", totals.Quantity.String()},
		{"Revenue", totals.Revenue.String()},
		{"Cost", totals.Cost.String()},
		{"Profit", totals.Profit.String()},
		{"Margin%", strconv.FormatFloat(totals.Margin, 'f', 2, 64)},
		{"MonthlyRunRate", strconv.FormatFloat(totals.MonthlyRunRate, 'f', 2, 64)},
		{"ReturnRate%", strconv.FormatFloat(totals.ReturnRate, 'f', 2, 64)},
		{"InvoiceCount", strconv.Itoa(totals.InvoiceCount)},
		{"ReturnCount", strconv.Itoa(totals.ReturnCount)},
		{"Days", strconv.Itoa(totals.Days)},
	}

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write totals row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
