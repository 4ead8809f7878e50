package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/erp-sales-reconciler/internal/aggregate"
)

func TestParseDimension(t *testing.T) {
	tests := []struct {
		name string
		want aggregate.Dimension
	}{
		{"date", aggregate.ByDate},
		{"salesperson", aggregate.BySalesperson},
		{"group", aggregate.ByStockGroup},
		{"item", aggregate.ByStockItem},
	}
	for _, tt := range tests {
		dim, err := parseDimension(tt.name)
		require.NoError(t, err)
		require.Equal(t, tt.want, dim)
	}

	_, err := parseDimension("week")
	require.Error(t, err)
}

func TestParseFilter(t *testing.T) {
	reset := func() {
		summaryFrom, summaryTo, summarySalesman, summaryGroup = "", "", "", ""
	}
	t.Cleanup(reset)

	reset()
	summaryFrom = "2024-05-01"
	summaryTo = "2024-05-31"
	summarySalesman = "سعيد"

	filter, err := parseFilter()
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), filter.From)
	require.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), filter.To)
	require.Equal(t, "سعيد", filter.Salesperson)

	reset()
	summaryFrom = "05/01/2024"
	_, err = parseFilter()
	require.Error(t, err)

	reset()
	summaryFrom = "2024-05-31"
	summaryTo = "2024-05-01"
	_, err = parseFilter()
	require.Error(t, err)
}
