// =============================================================================
// ERP Sales Reconciler - Aggregation Engine
// =============================================================================
//
// Reusable query functions over the unified ledger. Every query takes a
// Filter applied BEFORE aggregation — never after — so a date-range or
// salesperson restriction shapes the sums rather than trimming them.
//
// The engine never mutates ledger rows and never divides by zero: a group
// with no revenue reports a margin of exactly 0, and a range with no
// positive revenue reports a return rate of 0.
//
// =============================================================================

package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/erp-sales-reconciler/internal/types"
)

// Dimension selects the grouping key for GroupBy.
type Dimension int

const (
	// ByDate groups on the calendar date (day granularity).
	ByDate Dimension = iota
	// BySalesperson groups on the canonical salesperson identity.
	BySalesperson
	// ByStockGroup groups on the item group.
	ByStockGroup
	// ByStockItem groups on the stock item name.
	ByStockItem
)

// String returns the dimension name used in report headings.
func (d Dimension) String() string {
	switch d {
	case ByDate:
		return "Date"
	case BySalesperson:
		return "Salesperson"
	case ByStockGroup:
		return "Stock Group"
	case ByStockItem:
		return "Stock Item"
	default:
		return "Unknown"
	}
}

// DateLayout formats date group keys.
const DateLayout = "2006-01-02"

// =============================================================================
// PRE-FILTER
// =============================================================================

// Filter restricts the ledger before aggregation. Zero values mean
// unrestricted: an unset time bound, an empty string, an empty label list.
type Filter struct {
	// From and To bound the transaction date, inclusive on both ends.
	From time.Time
	To   time.Time

	// Salesperson, when set, matches the canonical identity exactly.
	Salesperson string

	// StockGroup, when set, matches the stock group exactly.
	StockGroup string

	// VoucherLabels, when non-empty, admits only rows whose voucher label
	// matches one of the entries (case-insensitive).
	VoucherLabels []string
}

// Apply returns the rows admitted by the filter, preserving order.
func Apply(rows []types.LedgerRow, f Filter) []types.LedgerRow {
	filtered := make([]types.LedgerRow, 0, len(rows))
	for _, row := range rows {
		if f.admits(row) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

func (f Filter) admits(row types.LedgerRow) bool {
	if !f.From.IsZero() && row.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && row.Date.After(f.To) {
		return false
	}
	if f.Salesperson != "" && row.Salesperson != f.Salesperson {
		return false
	}
	if f.StockGroup != "" && row.StockGroup != f.StockGroup {
		return false
	}
	if len(f.VoucherLabels) > 0 {
		matched := false
		for _, label := range f.VoucherLabels {
			if strings.EqualFold(label, row.VoucherLabel) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// =============================================================================
// GROUPED SUMMARIES
// =============================================================================

// Group is one aggregation bucket: sums of the ledger's additive measures
// plus the derived margin.
type Group struct {
	Key      string
	Quantity decimal.Decimal
	Revenue  decimal.Decimal
	Cost     decimal.Decimal
	Profit   decimal.Decimal

	// Margin is profit / revenue * 100 when revenue is positive, else 0.
	Margin float64
}

// GroupBy filters the ledger, then sums quantity, revenue, cost, and profit
// per group along the dimension. Groups come back sorted by key so output is
// deterministic regardless of ledger row order.
func GroupBy(rows []types.LedgerRow, dim Dimension, f Filter) []Group {
	sums := make(map[string]*Group)

	for _, row := range Apply(rows, f) {
		key := groupKey(row, dim)
		group, ok := sums[key]
		if !ok {
			group = &Group{Key: key}
			sums[key] = group
		}
		group.Quantity = group.Quantity.Add(row.Quantity)
		group.Revenue = group.Revenue.Add(row.RevenueAmount)
		group.Cost = group.Cost.Add(row.TotalCost)
		group.Profit = group.Profit.Add(row.Profit)
	}

	groups := make([]Group, 0, len(sums))
	for _, group := range sums {
		group.Margin = margin(group.Profit, group.Revenue)
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

func groupKey(row types.LedgerRow, dim Dimension) string {
	switch dim {
	case ByDate:
		return row.Date.Format(DateLayout)
	case BySalesperson:
		return row.Salesperson
	case ByStockGroup:
		return row.StockGroup
	case ByStockItem:
		return row.StockName
	default:
		return ""
	}
}

// margin computes profit / revenue * 100, returning exactly 0 for zero or
// negative revenue rather than dividing.
func margin(profit, revenue decimal.Decimal) float64 {
	if revenue.Sign() <= 0 {
		return 0
	}
	m, _ := profit.Div(revenue).Mul(decimal.NewFromInt(100)).Float64()
	return m
}

// =============================================================================
// TOTALS AND DERIVED METRICS
// =============================================================================

// Totals summarizes a filtered ledger slice: the additive sums plus the
// derived reporting metrics.
type Totals struct {
	Quantity decimal.Decimal
	Revenue  decimal.Decimal
	Cost     decimal.Decimal
	Profit   decimal.Decimal

	// Margin is profit / revenue * 100 when revenue is positive, else 0.
	Margin float64

	// MonthlyRunRate is revenue / max(days/30, 1), where days spans the
	// first to last transaction date in the filtered rows.
	MonthlyRunRate float64

	// ReturnRate is |sum of negative revenue| / sum of positive revenue
	// * 100, or 0 when there is no positive revenue.
	ReturnRate float64

	// InvoiceCount is the number of distinct transaction IDs among
	// positive-revenue rows; ReturnCount counts distinct transaction IDs
	// among negative-revenue rows. A transaction can appear in both when a
	// mixed voucher carries rows of both signs.
	InvoiceCount int
	ReturnCount  int

	// Days is the inclusive day span of the filtered rows, 0 when empty.
	Days int
}

// Summarize filters the ledger and computes the totals block.
func Summarize(rows []types.LedgerRow, f Filter) Totals {
	filtered := Apply(rows, f)

	var totals Totals
	var positive, negative decimal.Decimal
	invoices := make(map[string]bool)
	returns := make(map[string]bool)
	var first, last time.Time

	for _, row := range filtered {
		totals.Quantity = totals.Quantity.Add(row.Quantity)
		totals.Revenue = totals.Revenue.Add(row.RevenueAmount)
		totals.Cost = totals.Cost.Add(row.TotalCost)
		totals.Profit = totals.Profit.Add(row.Profit)

		switch row.RevenueAmount.Sign() {
		case 1:
			positive = positive.Add(row.RevenueAmount)
			invoices[row.TransactionID] = true
		case -1:
			negative = negative.Add(row.RevenueAmount)
			returns[row.TransactionID] = true
		}

		if first.IsZero() || row.Date.Before(first) {
			first = row.Date
		}
		if last.IsZero() || row.Date.After(last) {
			last = row.Date
		}
	}

	totals.Margin = margin(totals.Profit, totals.Revenue)
	totals.InvoiceCount = len(invoices)
	totals.ReturnCount = len(returns)

	if !first.IsZero() {
		totals.Days = int(last.Sub(first).Hours()/24) + 1
	}

	months := float64(totals.Days) / 30
	if months < 1 {
		months = 1
	}
	runRate, _ := totals.Revenue.Float64()
	totals.MonthlyRunRate = runRate / months

	if positive.Sign() > 0 {
		rate, _ := negative.Abs().Div(positive).Mul(decimal.NewFromInt(100)).Float64()
		totals.ReturnRate = rate
	}

	return totals
}
