package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/erp-sales-reconciler/internal/types"
)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func row(id string, date time.Time, sales, group, item string, qty, revenue, cost int64) types.LedgerRow {
	r := types.LedgerRow{
		TransactionID: id,
		Date:          date,
		Salesperson:   sales,
		StockGroup:    group,
		StockName:     item,
		Quantity:      decimal.NewFromInt(qty),
		RevenueAmount: decimal.NewFromInt(revenue),
		TotalCost:     decimal.NewFromInt(cost),
	}
	r.Profit = r.RevenueAmount.Sub(r.TotalCost)
	r.IsReturn = revenue < 0
	return r
}

func sampleLedger() []types.LedgerRow {
	return []types.LedgerRow{
		row("1", day(1), "سعيد", "Beverages", "Cola", 2, 100, 60),
		row("2", day(1), "أحمد", "Beverages", "Water", 5, 50, 20),
		row("3", day(2), "سعيد", "Snacks", "Chips", 1, 30, 10),
		row("4", day(3), "سعيد", "Beverages", "Cola", -1, -50, -30),
	}
}

func TestGroupByDate(t *testing.T) {
	groups := GroupBy(sampleLedger(), ByDate, Filter{})
	require.Len(t, groups, 3)

	// Sorted by key, so output order is stable regardless of row order.
	require.Equal(t, "2024-05-01", groups[0].Key)
	require.Equal(t, "2024-05-02", groups[1].Key)
	require.Equal(t, "2024-05-03", groups[2].Key)

	require.True(t, groups[0].Revenue.Equal(decimal.NewFromInt(150)))
	require.True(t, groups[0].Profit.Equal(decimal.NewFromInt(70)))
	require.True(t, groups[0].Quantity.Equal(decimal.NewFromInt(7)))
}

func TestGroupBySalesperson(t *testing.T) {
	groups := GroupBy(sampleLedger(), BySalesperson, Filter{})
	require.Len(t, groups, 2)

	byKey := make(map[string]Group)
	for _, g := range groups {
		byKey[g.Key] = g
	}

	// The return row nets against the same salesperson's sales.
	require.True(t, byKey["سعيد"].Revenue.Equal(decimal.NewFromInt(80)))
	require.True(t, byKey["أحمد"].Revenue.Equal(decimal.NewFromInt(50)))
}

func TestGroupMarginZeroOnNonPositiveRevenue(t *testing.T) {
	rows := []types.LedgerRow{
		row("1", day(1), "س", "G", "A", -1, -100, -40),
	}
	groups := GroupBy(rows, ByStockGroup, Filter{})
	require.Len(t, groups, 1)
	require.Equal(t, 0.0, groups[0].Margin)

	// Positive revenue yields the plain percentage.
	groups = GroupBy(sampleLedger(), ByStockItem, Filter{Salesperson: "أحمد"})
	require.Len(t, groups, 1)
	require.InDelta(t, 60.0, groups[0].Margin, 1e-9)
}

func TestFilterDateBoundsInclusive(t *testing.T) {
	from, _ := time.Parse(DateLayout, "2024-05-01")
	to, _ := time.Parse(DateLayout, "2024-05-02")

	filtered := Apply(sampleLedger(), Filter{From: from, To: to})
	require.Len(t, filtered, 3)
	for _, r := range filtered {
		require.False(t, r.Date.Before(from))
		require.False(t, r.Date.After(to))
	}
}

func TestFilterVoucherLabels(t *testing.T) {
	rows := []types.LedgerRow{
		{VoucherLabel: "Cash Sale Invoice", Date: day(1)},
		{VoucherLabel: "Credit Sale Invoice", Date: day(1)},
	}
	filtered := Apply(rows, Filter{VoucherLabels: []string{"cash sale invoice"}})
	require.Len(t, filtered, 1)
	require.Equal(t, "Cash Sale Invoice", filtered[0].VoucherLabel)
}

func TestFilterRunsBeforeAggregation(t *testing.T) {
	// A filtered-out return must not dent the group sums.
	groups := GroupBy(sampleLedger(), ByStockGroup, Filter{Salesperson: "سعيد", StockGroup: "Beverages"})
	require.Len(t, groups, 1)
	require.True(t, groups[0].Revenue.Equal(decimal.NewFromInt(50)))

	groups = GroupBy(sampleLedger(), ByStockGroup, Filter{StockGroup: "Beverages"})
	require.True(t, groups[0].Revenue.Equal(decimal.NewFromInt(100)))
}

func TestSummarize(t *testing.T) {
	totals := Summarize(sampleLedger(), Filter{})

	require.True(t, totals.Revenue.Equal(decimal.NewFromInt(130)))
	require.True(t, totals.Cost.Equal(decimal.NewFromInt(60)))
	require.True(t, totals.Profit.Equal(decimal.NewFromInt(70)))
	require.True(t, totals.Quantity.Equal(decimal.NewFromInt(7)))

	// Three distinct positive-revenue transactions, one distinct return.
	require.Equal(t, 3, totals.InvoiceCount)
	require.Equal(t, 1, totals.ReturnCount)

	// |−50| / 180 positive revenue.
	require.InDelta(t, 27.7778, totals.ReturnRate, 0.001)

	// May 1 through May 3 inclusive.
	require.Equal(t, 3, totals.Days)

	// Under a month of data, the run rate is just the revenue.
	require.InDelta(t, 130.0, totals.MonthlyRunRate, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	totals := Summarize(nil, Filter{})
	require.True(t, totals.Revenue.IsZero())
	require.Equal(t, 0, totals.Days)
	require.Equal(t, 0.0, totals.ReturnRate)
	require.Equal(t, 0.0, totals.Margin)
	require.Equal(t, 0, totals.InvoiceCount)
}

func TestSummarizeRunRateOverLongerSpans(t *testing.T) {
	rows := []types.LedgerRow{
		row("1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "س", "G", "A", 1, 300, 0),
		row("2", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), "س", "G", "A", 1, 300, 0),
	}
	totals := Summarize(rows, Filter{})

	// 60 days inclusive: two months of span, so the rate halves the total.
	require.Equal(t, 60, totals.Days)
	require.InDelta(t, 300.0, totals.MonthlyRunRate, 1e-9)
}

func TestDimensionString(t *testing.T) {
	require.Equal(t, "Date", ByDate.String())
	require.Equal(t, "Salesperson", BySalesperson.String())
	require.Equal(t, "Stock Group", ByStockGroup.String())
	require.Equal(t, "Stock Item", ByStockItem.String())
}
