// =============================================================================
// ERP Sales Reconciler - Return-Sign Resolver
// =============================================================================
//
// Post-merge sign correction for returned goods. A sale export row always
// carries positive monetary values; the voucher label is what says the goods
// flowed backwards. Rows under a return-classified voucher get revenue, cost,
// and quantity negated exactly once, after which profit is recomputed for
// every row so the identity profit = revenue - cost holds on the signed
// values.
//
// Source-system note: historical variants of this correction negated revenue
// and cost but left quantity positive, which made quantity totals disagree
// with revenue totals on any period containing a return. That inconsistency
// was a defect, not a policy; this implementation negates quantity together
// with the monetary fields.
//
// =============================================================================

package reconciler

import (
	"github.com/ginjaninja78/erp-sales-reconciler/internal/classifier"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/types"
)

// ResolveSigns negates the monetary fields and quantity of return rows, then
// computes profit for all rows. It must run exactly once per ledger: the flip
// is applied from the export's raw positive values, and running it twice
// would undo itself. The IsReturn flag records which rows were flipped.
func ResolveSigns(rows []types.LedgerRow, returns *classifier.ReturnMatcher) []types.LedgerRow {
	for i := range rows {
		if returns.Match(rows[i].VoucherLabel) {
			rows[i].RevenueAmount = rows[i].RevenueAmount.Neg()
			rows[i].TotalCost = rows[i].TotalCost.Neg()
			rows[i].Quantity = rows[i].Quantity.Neg()
			rows[i].IsReturn = true
		}
		rows[i].Profit = rows[i].RevenueAmount.Sub(rows[i].TotalCost)
	}
	return rows
}
