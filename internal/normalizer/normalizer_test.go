package normalizer

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/erp-sales-reconciler/internal/config"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/xmlparser"
)

func TestDatasetResolve(t *testing.T) {
	d := NewDataset("items", []xmlparser.Record{
		{"TransCode": "1"},
		{"Qty": "3"},
	})

	// The first candidate present anywhere in the dataset wins.
	column, ok := d.Resolve([]string{"TotalQty", "Qty"})
	require.True(t, ok)
	require.Equal(t, "Qty", column)

	_, ok = d.Resolve([]string{"StockName"})
	require.False(t, ok)
}

func TestNormalizeHeaders(t *testing.T) {
	fields := config.Default().Resolution.Header

	headers, err := NormalizeHeaders(NewDataset("header", []xmlparser.Record{
		{"TransCode": " 1 ", "TransDateValue": "45000", "VoucherName": "Cash Sale Invoice", "SalesMan": "سعيد"},
		{"TransCode": "1", "TransDateValue": "45001", "VoucherName": "Duplicate"},
		{"TransCode": "2", "TransDateValue": "bogus", "IsDeleted": "1"},
	}), fields)
	require.NoError(t, err)

	// Duplicate transaction IDs keep the first occurrence only.
	require.Len(t, headers, 2)
	require.Equal(t, "1", headers[0].TransactionID)
	require.Equal(t, "Cash Sale Invoice", headers[0].VoucherLabel)
	require.Equal(t, "سعيد", headers[0].Salesperson)
	require.False(t, headers[0].Date.IsZero())

	// A bogus serial resolves to the absent-date sentinel, not an error.
	require.True(t, headers[1].Date.IsZero())
	require.True(t, headers[1].IsDeleted)
}

func TestNormalizeHeadersEmptyDataset(t *testing.T) {
	headers, err := NormalizeHeaders(NewDataset("header", nil), config.Default().Resolution.Header)
	require.NoError(t, err)
	require.NotNil(t, headers)
	require.Empty(t, headers)
}

func TestNormalizeHeadersSchemaError(t *testing.T) {
	fields := config.Default().Resolution.Header

	// A non-empty dataset with no join-key candidate is fatal.
	_, err := NormalizeHeaders(NewDataset("header", []xmlparser.Record{
		{"TransDateValue": "45000"},
	}), fields)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	require.Equal(t, "header", schemaErr.Dataset)
	require.Equal(t, "transaction_id", schemaErr.Field)

	// Same for the date source.
	_, err = NormalizeHeaders(NewDataset("header", []xmlparser.Record{
		{"TransCode": "1"},
	}), fields)
	require.True(t, errors.As(err, &schemaErr))
	require.Equal(t, "date_serial", schemaErr.Field)
}

func TestNormalizeItemsRevenueTiers(t *testing.T) {
	fields := config.Default().Resolution.Items
	costs := []string{"CostFactor", "AvgCost", "CostPrice"}

	t.Run("tax exclusive wins", func(t *testing.T) {
		items, err := NormalizeItems(NewDataset("items", []xmlparser.Record{
			{"TransCode": "1", "TaxbleAmount": "100", "netStockAmount": "230"},
		}), fields, costs, 0.15)
		require.NoError(t, err)
		require.True(t, items[0].RevenueAmount.Equal(decimal.NewFromInt(100)))
	})

	t.Run("basic amount second", func(t *testing.T) {
		items, err := NormalizeItems(NewDataset("items", []xmlparser.Record{
			{"TransCode": "1", "BasicStockAmount": "150", "netStockAmount": "230"},
		}), fields, costs, 0.15)
		require.NoError(t, err)
		require.True(t, items[0].RevenueAmount.Equal(decimal.NewFromInt(150)))
	})

	t.Run("tax inclusive divided last", func(t *testing.T) {
		items, err := NormalizeItems(NewDataset("items", []xmlparser.Record{
			{"TransCode": "1", "netStockAmount": "230"},
		}), fields, costs, 0.15)
		require.NoError(t, err)
		require.True(t, items[0].RevenueAmount.Equal(decimal.NewFromInt(200)),
			"got %s", items[0].RevenueAmount)
	})

	t.Run("no revenue column yields zero", func(t *testing.T) {
		items, err := NormalizeItems(NewDataset("items", []xmlparser.Record{
			{"TransCode": "1", "TotalQty": "5"},
		}), fields, costs, 0.15)
		require.NoError(t, err)
		require.True(t, items[0].RevenueAmount.IsZero())
	})
}

func TestNormalizeItemsTierIsDatasetLevel(t *testing.T) {
	fields := config.Default().Resolution.Items

	// One row carries the tax-exclusive column, the other does not. The tier
	// decision is per dataset, so the second row reads the same column and
	// coerces its absence to zero rather than falling back per row.
	items, err := NormalizeItems(NewDataset("items", []xmlparser.Record{
		{"TransCode": "1", "TaxbleAmount": "100"},
		{"TransCode": "2", "netStockAmount": "230"},
	}), fields, nil, 0.15)
	require.NoError(t, err)
	require.True(t, items[0].RevenueAmount.Equal(decimal.NewFromInt(100)))
	require.True(t, items[1].RevenueAmount.IsZero())
}

func TestNormalizeItemsCostAndTotals(t *testing.T) {
	fields := config.Default().Resolution.Items

	items, err := NormalizeItems(NewDataset("items", []xmlparser.Record{
		{"TransCode": "1", "TotalQty": "3", "CostFactor": "50", "AvgCost": "60", "StockGroup": ""},
	}), fields, []string{"CostFactor", "AvgCost"}, 0.15)
	require.NoError(t, err)

	item := items[0]
	require.True(t, item.UnitCost.Equal(decimal.NewFromInt(50)))
	require.True(t, item.TotalCost.Equal(decimal.NewFromInt(150)))
	require.Equal(t, StockGroupDefault, item.StockGroup)

	// The candidate order decides which cost column supplies every row.
	items, err = NormalizeItems(NewDataset("items", []xmlparser.Record{
		{"TransCode": "1", "TotalQty": "3", "CostFactor": "50", "AvgCost": "60"},
	}), fields, []string{"AvgCost", "CostFactor"}, 0.15)
	require.NoError(t, err)
	require.True(t, items[0].UnitCost.Equal(decimal.NewFromInt(60)))
}

func TestNormalizeItemsPreservesDuplicates(t *testing.T) {
	fields := config.Default().Resolution.Items

	items, err := NormalizeItems(NewDataset("items", []xmlparser.Record{
		{"TransCode": "1", "StockName": "Widget", "TotalQty": "1"},
		{"TransCode": "1", "StockName": "Widget", "TotalQty": "1"},
	}), fields, nil, 0.15)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestNormalizeLedger(t *testing.T) {
	fields := config.Default().Resolution.Ledger

	// Every ledger field is optional; missing columns degrade to empty values.
	entries := NormalizeLedger(NewDataset("ledger", []xmlparser.Record{
		{"LedgerName": "Sales", "Debit": "0", "Credit": "230"},
		{"SomethingElse": "x"},
	}), fields)
	require.Len(t, entries, 2)
	require.Equal(t, "Sales", entries[0].AccountName)
	require.True(t, entries[0].Credit.Equal(decimal.NewFromInt(230)))
	require.True(t, entries[1].Debit.IsZero())
	require.True(t, entries[1].Date.IsZero())
}
