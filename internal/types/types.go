// =============================================================================
// ERP Sales Reconciler - Shared Domain Types
// =============================================================================
//
// This package contains the domain types shared across the pipeline stages to
// avoid import cycles. Types defined here are produced and consumed by:
//   - normalizer   (TransactionHeader, LineItem)
//   - reconciler   (LedgerRow)
//   - aggregate    (LedgerRow, read-only)
//   - export       (LedgerRow, read-only)
//
// =============================================================================

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION HEADER
// =============================================================================

// TransactionHeader represents one voucher (accounting document) from the
// header export: a sale invoice, purchase, return, quotation, and so on.
// The voucher type is a free-text label; classification into kept/ignored
// dispositions happens downstream in the classifier.
type TransactionHeader struct {
	// TransactionID is the join key shared with the line-item export.
	// Unique after deduplication (first occurrence wins).
	TransactionID string

	// Date is the transaction date, decoded from the export's serial
	// day-count value. The zero time means the serial value was absent or
	// unparsable; such headers are dropped at merge, not here.
	Date time.Time

	// VoucherLabel is the free-text voucher type, e.g. "Cash Sale Invoice".
	VoucherLabel string

	// IsDeleted marks headers voided inside the ERP. Defaults to false when
	// the export omits the column. Deleted headers never reach the merge.
	IsDeleted bool

	// Salesperson is the header-level salesperson name. May be empty; the
	// item-level name takes precedence during identity resolution.
	Salesperson string

	// CustomerName is the ledger (customer account) name on the voucher.
	CustomerName string

	// InvoiceNumber is the human-facing invoice number, distinct from the
	// internal TransactionID.
	InvoiceNumber string
}

// =============================================================================
// LINE ITEM
// =============================================================================

// LineItem represents one stock-movement row from the item export, belonging
// to a voucher via TransactionID. The foreign key is not enforced: items
// whose TransactionID matches no retained header are dropped at merge.
type LineItem struct {
	// TransactionID is the join key to the parent header.
	TransactionID string

	// StockName is the item description.
	StockName string

	// StockCode is the item code.
	StockCode string

	// StockGroup is the item's group. When the export omits the column the
	// group defaults to the configured sentinel ("General").
	StockGroup string

	// Quantity is the signed quantity sold (negated for returns alongside
	// revenue and cost).
	Quantity decimal.Decimal

	// RevenueAmount is the tax-exclusive revenue for the row, resolved via
	// the dataset-level three-tier fallback (see normalizer).
	RevenueAmount decimal.Decimal

	// UnitCost is the per-unit cost from the operator-chosen cost column,
	// zero when no candidate column exists.
	UnitCost decimal.Decimal

	// TotalCost is UnitCost * Quantity.
	TotalCost decimal.Decimal

	// Salesperson is the item-level salesperson name, possibly empty.
	Salesperson string
}

// =============================================================================
// UNIFIED LEDGER ROW
// =============================================================================

// LedgerRow is the unified ledger entry: a line item joined to its retained
// transaction header, sign-corrected and attributed. It is the pipeline's
// sole output artifact and is treated as immutable once produced; aggregation
// and export only read it.
type LedgerRow struct {
	TransactionID string
	Date          time.Time
	VoucherLabel  string
	InvoiceNumber string
	CustomerName  string

	StockName  string
	StockCode  string
	StockGroup string

	Quantity      decimal.Decimal
	RevenueAmount decimal.Decimal
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal

	// Profit is RevenueAmount - TotalCost, computed after sign resolution.
	Profit decimal.Decimal

	// Salesperson is the canonical salesperson identity after precedence and
	// whitelist canonicalization.
	Salesperson string

	// IsReturn records whether the return-sign resolver flipped this row.
	IsReturn bool
}

// =============================================================================
// GENERAL LEDGER ENTRY
// =============================================================================

// GLEntry is one row of the optional general-ledger export. GL entries never
// join into the unified ledger; reporting reads them as account context
// alongside the reconciled sales rows.
type GLEntry struct {
	AccountName string
	Date        time.Time
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}
