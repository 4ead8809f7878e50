// =============================================================================
// ERP Sales Reconciler - Reconciliation Merge
// =============================================================================
//
// Inner join of normalized line items to their retained transaction headers
// on the shared transaction ID. The join is one-to-many (header to items) and
// intentionally performs no item deduplication: duplicate item rows are
// distinct stock movements and produce distinct ledger rows.
//
// Dropped silently, by design:
//   - items whose transaction ID matches no retained header (the header was
//     ignored, deleted, deduplicated away, or never exported);
//   - headers whose date never resolved (absent-date sentinel);
//   - headers with zero matching items (they contribute nothing).
//
// =============================================================================

package reconciler

import (
	"github.com/ginjaninja78/erp-sales-reconciler/internal/types"
)

// Merge joins items to headers and returns the unified ledger rows in item
// order. The headers passed in must already be filtered: non-deleted,
// classified Keep, and deduplicated. Undated headers are excluded here, which
// guarantees every output row carries a non-zero header-derived date.
//
// An empty header or item set yields an empty, non-nil ledger.
func Merge(headers []types.TransactionHeader, items []types.LineItem) []types.LedgerRow {
	index := make(map[string]types.TransactionHeader, len(headers))
	for _, header := range headers {
		if header.Date.IsZero() {
			continue
		}
		index[header.TransactionID] = header
	}

	rows := make([]types.LedgerRow, 0, len(items))
	for _, item := range items {
		header, ok := index[item.TransactionID]
		if !ok {
			continue
		}

		rows = append(rows, types.LedgerRow{
			TransactionID: item.TransactionID,
			Date:          header.Date,
			VoucherLabel:  header.VoucherLabel,
			InvoiceNumber: header.InvoiceNumber,
			CustomerName:  header.CustomerName,
			StockName:     item.StockName,
			StockCode:     item.StockCode,
			StockGroup:    item.StockGroup,
			Quantity:      item.Quantity,
			RevenueAmount: item.RevenueAmount,
			UnitCost:      item.UnitCost,
			TotalCost:     item.TotalCost,
			// Salesperson is filled by the identity normalizer; the raw
			// item-level name is carried through for its precedence rule.
			Salesperson: item.Salesperson,
		})
	}

	return rows
}
