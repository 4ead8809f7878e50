// =============================================================================
// ERP Sales Reconciler - Schema Normalizer Module
// =============================================================================
//
// This module turns raw export records into typed domain rows. The export
// schema is unstable across ERP versions: columns appear, disappear, or are
// renamed between files. Rather than scattering presence checks through the
// pipeline, each logical field carries an ordered candidate-column list in
// the configuration, and resolution happens HERE, ONCE PER DATASET:
//
//   - A candidate is eligible if the column appears anywhere in the dataset.
//   - The first eligible candidate supplies the field for every row. The
//     decision is dataset-level by design; deciding per row would let two
//     rows of one export read revenue from different columns.
//   - Required fields (join key, date source) with no eligible candidate are
//     a SchemaError. Everything else degrades silently per the coercion
//     policy in coerce.go.
//
// Revenue resolution is the three-tier special case: a tax-exclusive total
// if exported, else a basic stock amount, else the tax-inclusive total
// divided by (1 + tax rate) as a last resort.
//
// Field collisions between the header and item exports (both carry SalesMan)
// are resolved by construction: each dataset is normalized independently and
// the header copy is authoritative for merge columns, while the item copy
// survives only as LineItem.Salesperson for identity precedence.
//
// =============================================================================

package normalizer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/erp-sales-reconciler/internal/config"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/types"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/xmlparser"
)

// StockGroupDefault is the sentinel group for items whose export omits the
// stock-group column or leaves it blank.
const StockGroupDefault = "General"

// =============================================================================
// DATASET
// =============================================================================

// Dataset wraps a raw record set with its column-presence index. Resolution
// decisions read column presence over the whole dataset, never per row.
type Dataset struct {
	name    string
	records []xmlparser.Record
	columns map[string]bool
}

// NewDataset indexes a record set. The name appears in schema errors.
func NewDataset(name string, records []xmlparser.Record) *Dataset {
	return &Dataset{
		name:    name,
		records: records,
		columns: xmlparser.Columns(records),
	}
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// HasColumn reports whether any record carries the column.
func (d *Dataset) HasColumn(name string) bool { return d.columns[name] }

// Resolve returns the first candidate column present in the dataset.
func (d *Dataset) Resolve(candidates []string) (string, bool) {
	for _, candidate := range candidates {
		if d.columns[candidate] {
			return candidate, true
		}
	}
	return "", false
}

// require resolves a candidate list that must succeed. Failure is a
// SchemaError naming the dataset, the logical field, and what was tried.
func (d *Dataset) require(field string, candidates []string) (string, error) {
	column, ok := d.Resolve(candidates)
	if !ok {
		return "", &SchemaError{Dataset: d.name, Field: field, Candidates: candidates}
	}
	return column, nil
}

// value reads a column from a record; an unresolved column reads as empty.
func value(record xmlparser.Record, column string) string {
	if column == "" {
		return ""
	}
	return record[column]
}

// =============================================================================
// HEADER NORMALIZATION
// =============================================================================

// NormalizeHeaders resolves and types the transaction-header dataset.
// Headers are deduplicated on the transaction ID, first occurrence winning,
// so the ID is unique in the result. Deleted headers are kept here and
// excluded by the reconciler before classification output is consumed.
//
// An empty dataset is not an error: it normalizes to an empty header set and
// the run produces an empty ledger.
func NormalizeHeaders(d *Dataset, fields config.HeaderFields) ([]types.TransactionHeader, error) {
	if d.Len() == 0 {
		return []types.TransactionHeader{}, nil
	}

	idColumn, err := d.require("transaction_id", fields.TransactionID)
	if err != nil {
		return nil, err
	}
	dateColumn, err := d.require("date_serial", fields.DateSerial)
	if err != nil {
		return nil, err
	}

	// Optional columns resolve to "" when absent and read as empty text.
	voucherColumn, _ := d.Resolve(fields.VoucherLabel)
	deletedColumn, _ := d.Resolve(fields.Deleted)
	salesColumn, _ := d.Resolve(fields.Salesperson)
	customerColumn, _ := d.Resolve(fields.CustomerName)
	invoiceColumn, _ := d.Resolve(fields.InvoiceNumber)

	headers := make([]types.TransactionHeader, 0, d.Len())
	seen := make(map[string]bool, d.Len())

	for _, record := range d.records {
		id := strings.TrimSpace(value(record, idColumn))
		if seen[id] {
			continue
		}
		seen[id] = true

		headers = append(headers, types.TransactionHeader{
			TransactionID: id,
			Date:          SerialDate(value(record, dateColumn)),
			VoucherLabel:  strings.TrimSpace(value(record, voucherColumn)),
			IsDeleted:     Bool(value(record, deletedColumn)),
			Salesperson:   strings.TrimSpace(value(record, salesColumn)),
			CustomerName:  strings.TrimSpace(value(record, customerColumn)),
			InvoiceNumber: strings.TrimSpace(value(record, invoiceColumn)),
		})
	}

	return headers, nil
}

// =============================================================================
// LINE ITEM NORMALIZATION
// =============================================================================

// revenueSource is the dataset-level outcome of the three-tier revenue
// fallback: which column supplies revenue and what it is divided by.
type revenueSource struct {
	column  string
	divisor decimal.Decimal
}

// resolveRevenue applies the three-tier priority over column presence:
//  1. tax-exclusive total, used as-is;
//  2. basic stock amount, used as-is;
//  3. tax-inclusive total divided by (1 + tax rate).
//
// A dataset exposing none of the three yields zero revenue for every row.
func resolveRevenue(d *Dataset, fields config.ItemFields, taxRate float64) revenueSource {
	if column, ok := d.Resolve(fields.RevenueTaxExclusive); ok {
		return revenueSource{column: column, divisor: decimal.NewFromInt(1)}
	}
	if column, ok := d.Resolve(fields.RevenueBasic); ok {
		return revenueSource{column: column, divisor: decimal.NewFromInt(1)}
	}
	if column, ok := d.Resolve(fields.RevenueTaxInclusive); ok {
		return revenueSource{
			column:  column,
			divisor: decimal.NewFromInt(1).Add(decimal.NewFromFloat(taxRate)),
		}
	}
	return revenueSource{}
}

// revenueDivisorPlaces bounds the division in the tier-3 fallback. Division
// by 1.15 is non-terminating for most amounts; 8 fractional digits keeps
// well past display precision while staying deterministic.
const revenueDivisorPlaces = 8

// NormalizeItems resolves and types the line-item dataset.
//
// costCandidates is the operator-facing cost-column order (chosen column
// first); the first candidate present in the dataset supplies unit cost for
// every row, and with no candidate present unit cost is zero. Duplicate item
// rows are preserved: each represents a distinct stock movement.
func NormalizeItems(d *Dataset, fields config.ItemFields, costCandidates []string, taxRate float64) ([]types.LineItem, error) {
	if d.Len() == 0 {
		return []types.LineItem{}, nil
	}

	idColumn, err := d.require("transaction_id", fields.TransactionID)
	if err != nil {
		return nil, err
	}

	nameColumn, _ := d.Resolve(fields.StockName)
	codeColumn, _ := d.Resolve(fields.StockCode)
	groupColumn, _ := d.Resolve(fields.StockGroup)
	qtyColumn, _ := d.Resolve(fields.Quantity)
	salesColumn, _ := d.Resolve(fields.Salesperson)
	costColumn, _ := d.Resolve(costCandidates)
	revenue := resolveRevenue(d, fields, taxRate)

	items := make([]types.LineItem, 0, d.Len())

	for _, record := range d.records {
		quantity := Decimal(value(record, qtyColumn))
		unitCost := Decimal(value(record, costColumn))

		var amount decimal.Decimal
		if revenue.column != "" {
			amount = Decimal(value(record, revenue.column))
			if !revenue.divisor.Equal(decimal.NewFromInt(1)) {
				amount = amount.DivRound(revenue.divisor, revenueDivisorPlaces)
			}
		}

		group := strings.TrimSpace(value(record, groupColumn))
		if group == "" {
			group = StockGroupDefault
		}

		items = append(items, types.LineItem{
			TransactionID: strings.TrimSpace(value(record, idColumn)),
			StockName:     strings.TrimSpace(value(record, nameColumn)),
			StockCode:     strings.TrimSpace(value(record, codeColumn)),
			StockGroup:    group,
			Quantity:      quantity,
			RevenueAmount: amount,
			UnitCost:      unitCost,
			TotalCost:     unitCost.Mul(quantity),
			Salesperson:   strings.TrimSpace(value(record, salesColumn)),
		})
	}

	return items, nil
}

// =============================================================================
// GENERAL LEDGER NORMALIZATION
// =============================================================================

// NormalizeLedger types the optional general-ledger dataset. Every field is
// optional: the GL export is reporting context, never part of the merge, so
// a missing column degrades to empty values rather than a SchemaError.
func NormalizeLedger(d *Dataset, fields config.LedgerFields) []types.GLEntry {
	if d.Len() == 0 {
		return []types.GLEntry{}
	}

	accountColumn, _ := d.Resolve(fields.AccountName)
	dateColumn, _ := d.Resolve(fields.DateSerial)
	debitColumn, _ := d.Resolve(fields.Debit)
	creditColumn, _ := d.Resolve(fields.Credit)

	entries := make([]types.GLEntry, 0, d.Len())
	for _, record := range d.records {
		entries = append(entries, types.GLEntry{
			AccountName: strings.TrimSpace(value(record, accountColumn)),
			Date:        SerialDate(value(record, dateColumn)),
			Debit:       Decimal(value(record, debitColumn)),
			Credit:      Decimal(value(record, creditColumn)),
		})
	}
	return entries
}
