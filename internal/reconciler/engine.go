// =============================================================================
// ERP Sales Reconciler - Run Engine
// =============================================================================
//
// The engine wraps the pure Reconcile pipeline with everything one export
// set's run needs at the edges: reading and parsing the export files,
// content-keyed caching, report export, and archival. Each Run call is
// self-contained; the engine itself holds only immutable configuration and
// the shared cache, so concurrent runs over different sets are safe.
//
// Caching levels (both optional for correctness, see the cache package):
//   - raw records per input file, keyed on file content, so switching the
//     cost column re-normalizes without re-parsing;
//   - the finished ledger, keyed on both files' content plus the options
//     that shape the output.
//
// =============================================================================

package reconciler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/erp-sales-reconciler/internal/aggregate"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/cache"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/config"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/export"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/normalizer"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/types"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/xmlparser"
	"github.com/ginjaninja78/erp-sales-reconciler/pkg/utils"
)

// Engine runs the reconciliation pipeline for export sets.
type Engine struct {
	cfg   *config.Config
	cache *cache.Cache
	log   zerolog.Logger
	fm    *utils.FileManager
	opts  Options

	// DryRun parses and reconciles but writes no output and archives
	// nothing.
	DryRun bool
}

// NewEngine creates an engine. The cache may be shared across engines; pass
// a fresh one to disable reuse between invocations.
func NewEngine(cfg *config.Config, c *cache.Cache, log zerolog.Logger, opts Options) *Engine {
	return &Engine{
		cfg:   cfg,
		cache: c,
		log:   log,
		fm:    utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir),
		opts:  opts,
	}
}

// Result is the outcome of processing one export set.
type Result struct {
	// Set identifies the processed export set.
	Set utils.ExportSet

	// OutputFiles are the report files written, empty on failure or dry run.
	OutputFiles []string

	// Success reports whether the run completed; Error holds the fatal
	// error otherwise. A failed run writes no partial output.
	Success bool
	Error   error

	// Rows is the unified ledger; kept on the result so callers (the
	// summary command, tests) can query it without re-running.
	Rows []types.LedgerRow

	// Stats are the pipeline stage counts.
	Stats Stats

	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// Run processes one export set end to end.
func (e *Engine) Run(set utils.ExportSet) Result {
	start := time.Now()
	log := e.log.With().Str("set", set.Key).Logger()
	result := Result{Set: set}

	fail := func(err error) Result {
		result.Error = err
		result.Elapsed = time.Since(start)
		log.Error().Err(err).Msg("reconciliation failed")
		return result
	}

	// Read both inputs fully before processing begins; the content bytes
	// also drive the cache keys.
	headerBytes, err := os.ReadFile(set.HeaderPath)
	if err != nil {
		return fail(fmt.Errorf("failed to read header export: %w", err))
	}
	itemBytes, err := os.ReadFile(set.ItemsPath)
	if err != nil {
		return fail(fmt.Errorf("failed to read items export: %w", err))
	}

	ledgerKey := cache.Key(
		headerBytes, itemBytes,
		[]byte(e.costColumn()),
		[]byte(strconv.FormatFloat(e.cfg.TaxRate, 'f', -1, 64)),
	)

	rows, hit := e.cache.Ledger(ledgerKey)
	if hit {
		log.Debug().Msg("ledger cache hit")
		result.Rows = rows
		result.Stats.RowsMerged = len(rows)
	} else {
		headerRecords, err := e.parseCached(set.HeaderPath, headerBytes)
		if err != nil {
			return fail(err)
		}
		itemRecords, err := e.parseCached(set.ItemsPath, itemBytes)
		if err != nil {
			return fail(err)
		}

		rows, stats, err := Reconcile(headerRecords, itemRecords, e.cfg, e.opts)
		if err != nil {
			return fail(err)
		}
		e.cache.PutLedger(ledgerKey, rows)

		result.Rows = rows
		result.Stats = stats
		log.Info().
			Int("headers", stats.HeadersRead).
			Int("items", stats.ItemsRead).
			Int("rows", stats.RowsMerged).
			Int("returns", stats.RowsReturned).
			Msg("reconciled export set")
	}

	// The optional general-ledger file rides along for reporting context;
	// a malformed GL file is as fatal as any other malformed input.
	if set.LedgerPath != "" {
		if _, err := e.parseLedgerContext(set.LedgerPath); err != nil {
			return fail(err)
		}
	}

	if e.DryRun {
		result.Success = true
		result.Elapsed = time.Since(start)
		return result
	}

	outputs, err := e.writeReports(set, result.Rows)
	if err != nil {
		return fail(err)
	}
	result.OutputFiles = outputs

	for _, input := range []string{set.HeaderPath, set.ItemsPath, set.LedgerPath} {
		if input == "" {
			continue
		}
		if _, err := e.fm.ArchiveInputFile(input); err != nil {
			return fail(err)
		}
	}

	result.Success = true
	result.Elapsed = time.Since(start)
	return result
}

// LedgerContext parses and normalizes a general-ledger export for reporting.
func (e *Engine) LedgerContext(path string) ([]types.GLEntry, error) {
	return e.parseLedgerContext(path)
}

func (e *Engine) parseLedgerContext(path string) ([]types.GLEntry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger export: %w", err)
	}
	records, err := e.parseCached(path, content)
	if err != nil {
		return nil, err
	}
	dataset := normalizer.NewDataset("ledger", records)
	return normalizer.NormalizeLedger(dataset, e.cfg.Resolution.Ledger), nil
}

// parseCached extracts raw records, consulting the content-keyed cache
// first.
func (e *Engine) parseCached(path string, content []byte) ([]xmlparser.Record, error) {
	key := cache.Key(content)
	if records, ok := e.cache.Records(key); ok {
		e.log.Debug().Str("file", filepath.Base(path)).Msg("record cache hit")
		return records, nil
	}

	records, err := xmlparser.Parse(bytes.NewReader(content), e.cfg.Encoding)
	if err != nil {
		return nil, err
	}
	e.cache.PutRecords(key, records)
	return records, nil
}

// costColumn returns the effective unit-cost column for this engine's runs.
func (e *Engine) costColumn() string {
	if e.opts.CostColumn != "" {
		return e.opts.CostColumn
	}
	return e.cfg.CostColumn
}

// writeReports renders the configured outputs for one reconciled set.
func (e *Engine) writeReports(set utils.ExportSet, rows []types.LedgerRow) ([]string, error) {
	views := export.WorkbookViews{
		Ledger:        rows,
		ByDate:        aggregate.GroupBy(rows, aggregate.ByDate, aggregate.Filter{}),
		BySalesperson: aggregate.GroupBy(rows, aggregate.BySalesperson, aggregate.Filter{}),
		ByStockGroup:  aggregate.GroupBy(rows, aggregate.ByStockGroup, aggregate.Filter{}),
		ByStockItem:   aggregate.GroupBy(rows, aggregate.ByStockItem, aggregate.Filter{}),
		Totals:        aggregate.Summarize(rows, aggregate.Filter{}),
	}

	var outputs []string

	if e.cfg.ExportFormat == "csv" || e.cfg.ExportFormat == "both" {
		csvPath := filepath.Join(e.cfg.OutputDir, fmt.Sprintf("%sledger.csv", set.Key))
		file, err := os.Create(csvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create ledger csv: %w", err)
		}
		err = export.WriteLedgerCSV(file, rows)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, csvPath)
	}

	if e.cfg.ExportFormat == "xlsx" || e.cfg.ExportFormat == "both" {
		xlsxPath := filepath.Join(e.cfg.OutputDir, fmt.Sprintf("%sreport.xlsx", set.Key))
		if err := export.WriteWorkbook(xlsxPath, views); err != nil {
			return nil, err
		}
		outputs = append(outputs, xlsxPath)
	}

	return outputs, nil
}
