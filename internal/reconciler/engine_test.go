package reconciler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/erp-sales-reconciler/internal/cache"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/config"
	"github.com/ginjaninja78/erp-sales-reconciler/pkg/utils"
)

const testHeaderXML = `<NewDataSet>
  <Table>
    <TransCode>1</TransCode>
    <TransDateValue>45000</TransDateValue>
    <VoucherName>Cash Sale Invoice</VoucherName>
    <SalesMan>سعيد</SalesMan>
  </Table>
</NewDataSet>`

const testItemsXML = `<NewDataSet>
  <Table>
    <TransCode>1</TransCode>
    <StockName>Widget</StockName>
    <TotalQty>2</TotalQty>
    <TaxbleAmount>200</TaxbleAmount>
    <CostFactor>50</CostFactor>
  </Table>
</NewDataSet>`

// testEngine builds an engine over temp directories and returns it with a
// ready export set.
func testEngine(t *testing.T) (*Engine, utils.ExportSet, *config.Config) {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.InputArchiveDir = filepath.Join(root, "archive")
	cfg.ExportFormat = "csv"

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
	require.NoError(t, fm.EnsureDirectories())

	set := utils.ExportSet{
		Key:        "2024-05_",
		HeaderPath: filepath.Join(cfg.InputDir, "2024-05_header.xml"),
		ItemsPath:  filepath.Join(cfg.InputDir, "2024-05_items.xml"),
	}
	require.NoError(t, os.WriteFile(set.HeaderPath, []byte(testHeaderXML), 0644))
	require.NoError(t, os.WriteFile(set.ItemsPath, []byte(testItemsXML), 0644))

	return NewEngine(cfg, cache.New(), zerolog.Nop(), Options{}), set, cfg
}

func TestEngineRun(t *testing.T) {
	engine, set, cfg := testEngine(t)

	result := engine.Run(set)
	require.True(t, result.Success, "run failed: %v", result.Error)
	require.Len(t, result.Rows, 1)
	require.Equal(t, 1, result.Stats.RowsMerged)

	// The ledger CSV was written.
	require.Len(t, result.OutputFiles, 1)
	require.FileExists(t, result.OutputFiles[0])
	require.Equal(t, filepath.Join(cfg.OutputDir, "2024-05_ledger.csv"), result.OutputFiles[0])

	// The inputs were archived out of the input directory.
	require.NoFileExists(t, set.HeaderPath)
	require.FileExists(t, filepath.Join(cfg.InputArchiveDir, "2024-05_header.xml"))
	require.FileExists(t, filepath.Join(cfg.InputArchiveDir, "2024-05_items.xml"))
}

func TestEngineDryRun(t *testing.T) {
	engine, set, cfg := testEngine(t)
	engine.DryRun = true

	result := engine.Run(set)
	require.True(t, result.Success)
	require.Len(t, result.Rows, 1)
	require.Empty(t, result.OutputFiles)

	// Nothing written, nothing archived.
	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.FileExists(t, set.HeaderPath)
	require.FileExists(t, set.ItemsPath)
}

func TestEngineLedgerCacheHit(t *testing.T) {
	engine, set, _ := testEngine(t)
	engine.DryRun = true

	first := engine.Run(set)
	require.True(t, first.Success)

	// Same content, same options: the second run serves the cached ledger.
	second := engine.Run(set)
	require.True(t, second.Success)
	require.Equal(t, len(first.Rows), len(second.Rows))
	require.Equal(t, first.Stats.RowsMerged, second.Stats.RowsMerged)
	for i := range first.Rows {
		require.True(t, first.Rows[i].RevenueAmount.Equal(second.Rows[i].RevenueAmount))
	}
}

func TestEngineCostColumnChangesLedgerKey(t *testing.T) {
	_, set, cfg := testEngine(t)
	shared := cache.New()

	itemsXML := `<NewDataSet><Table>
    <TransCode>1</TransCode><TotalQty>1</TotalQty>
    <TaxbleAmount>100</TaxbleAmount>
    <CostFactor>50</CostFactor><AvgCost>60</AvgCost>
  </Table></NewDataSet>`
	require.NoError(t, os.WriteFile(set.ItemsPath, []byte(itemsXML), 0644))

	base := NewEngine(cfg, shared, zerolog.Nop(), Options{})
	base.DryRun = true
	override := NewEngine(cfg, shared, zerolog.Nop(), Options{CostColumn: "AvgCost"})
	override.DryRun = true

	first := base.Run(set)
	require.True(t, first.Success)
	second := override.Run(set)
	require.True(t, second.Success)

	// A different cost column must never be served from the other's entry.
	require.False(t, first.Rows[0].UnitCost.Equal(second.Rows[0].UnitCost))
}

func TestEngineMalformedInput(t *testing.T) {
	engine, set, cfg := testEngine(t)
	require.NoError(t, os.WriteFile(set.ItemsPath, []byte("<NewDataSet><Table>"), 0644))

	result := engine.Run(set)
	require.False(t, result.Success)
	require.Error(t, result.Error)

	// A failed run writes no partial output and archives nothing.
	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.FileExists(t, set.HeaderPath)
}

func TestEngineLedgerContext(t *testing.T) {
	engine, _, cfg := testEngine(t)

	glPath := filepath.Join(cfg.InputDir, "2024-05_ledger.xml")
	glXML := `<NewDataSet><Table>
    <LedgerName>Sales</LedgerName>
    <TransDateValue>45000</TransDateValue>
    <Credit>230</Credit>
  </Table></NewDataSet>`
	require.NoError(t, os.WriteFile(glPath, []byte(glXML), 0644))

	entries, err := engine.LedgerContext(glPath)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Sales", entries[0].AccountName)
}
