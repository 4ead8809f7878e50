// =============================================================================
// ERP Sales Reconciler - Reconcile Command
// =============================================================================
//
// This file defines the 'reconcile' command, which runs the full pipeline:
//
//   1. Load and validate the configuration
//   2. Discover export sets in the input directory (or take an explicit
//      --header/--items pair)
//   3. For each set, concurrently:
//      a. Parse the header and item exports (content-keyed cache)
//      b. Normalize, classify, merge, sign-correct, attribute
//      c. Write the ledger CSV and/or report workbook
//      d. Archive the processed inputs
//   4. Write the run summary and error log
//
// A fatal error in one set (malformed document, missing join key) aborts
// that set with no partial output; other sets continue unless
// continue_on_error is disabled.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/erp-sales-reconciler/internal/cache"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/config"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/logger"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/reconciler"
	"github.com/ginjaninja78/erp-sales-reconciler/pkg/utils"
)

// Command flags.
var (
	dryRun     bool
	headerFile string
	itemsFile  string
	ledgerFile string
	costColumn string
	format     string
)

// reconcileCmd represents the 'reconcile' command.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile ERP export sets into unified sales ledgers",
	Long: `The reconcile command scans the input directory for export sets (a header
file plus an items file sharing a name, optionally with a general-ledger
file), reconciles each into a unified sales ledger, and writes the configured
reports to the output directory.

Sets are processed concurrently and independently: a malformed export or a
missing join-key column aborts its own set with no partial output, while the
remaining sets continue. Successfully processed inputs are archived.

An explicit pair can be reconciled without discovery:
  reconciler reconcile --header may_header.xml --items may_items.xml`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile()
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Reconcile without writing output files or archiving inputs")
	reconcileCmd.Flags().StringVar(&headerFile, "header", "",
		"Path to a header export (bypasses discovery, requires --items)")
	reconcileCmd.Flags().StringVar(&itemsFile, "items", "",
		"Path to an items export (bypasses discovery, requires --header)")
	reconcileCmd.Flags().StringVar(&ledgerFile, "ledger", "",
		"Path to an optional general-ledger export (with --header/--items)")
	reconcileCmd.Flags().StringVar(&costColumn, "cost-column", "",
		"Override the configured unit-cost column for this run")
	reconcileCmd.Flags().StringVar(&format, "format", "",
		"Override the configured export format: csv, xlsx, or both")
}

// runReconcile orchestrates one invocation across all its export sets.
func runReconcile() error {
	start := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if costColumn != "" {
		known := false
		for _, candidate := range cfg.CostColumnCandidates {
			if candidate == costColumn {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("--cost-column %q is not among the configured candidates %v",
				costColumn, cfg.CostColumnCandidates)
		}
	}
	log := newLogger(cfg)
	runID := utils.NewRunID()
	log = log.With().Str("run_id", runID).Logger()

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	sets, unpaired, err := discoverSets(cfg, fm)
	if err != nil {
		return err
	}
	for _, path := range unpaired {
		log.Warn().Str("file", filepath.Base(path)).Msg("unpaired export file skipped")
	}
	if len(sets) == 0 {
		log.Info().Msg("no export sets to process")
		return nil
	}
	log.Info().Int("sets", len(sets)).Msg("processing export sets")

	// One engine per invocation: the cache is shared so identical inputs
	// across sets parse once, and each Run call is otherwise isolated.
	engine := reconciler.NewEngine(cfg, cache.New(), log,
		reconciler.Options{CostColumn: costColumn})
	engine.DryRun = dryRun

	results := make(chan reconciler.Result, len(sets))
	sem := make(chan struct{}, cfg.MaxConcurrency)
	var wg sync.WaitGroup

	for _, set := range sets {
		wg.Add(1)
		go func(set utils.ExportSet) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results <- engine.Run(set)
		}(set)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results and build the run summary.
	summary := utils.RunSummary{RunID: runID, StartTime: start, TotalSets: len(sets)}
	var errorEntries []utils.ErrorLogEntry
	var firstErr error

	for result := range results {
		outcome := utils.SetOutcome{
			Key:         result.Set.Key,
			Success:     result.Success,
			OutputFiles: result.OutputFiles,
			RowsMerged:  result.Stats.RowsMerged,
			Elapsed:     result.Elapsed,
		}
		if result.Success {
			summary.SuccessfulSets++
			summary.HeadersRead += result.Stats.HeadersRead
			summary.ItemsRead += result.Stats.ItemsRead
			summary.RowsMerged += result.Stats.RowsMerged
			summary.Returns += result.Stats.RowsReturned
		} else {
			summary.FailedSets++
			outcome.Error = result.Error.Error()
			errorEntries = append(errorEntries, utils.ErrorLogEntry{
				Timestamp: time.Now(),
				SetKey:    result.Set.Key,
				File:      result.Set.HeaderPath,
				Message:   result.Error.Error(),
			})
			if firstErr == nil {
				firstErr = result.Error
			}
		}
		summary.Sets = append(summary.Sets, outcome)
	}
	summary.EndTime = time.Now()

	if !dryRun {
		if _, err := utils.WriteRunSummary(summary, cfg.OutputDir); err != nil {
			return err
		}
		if _, err := utils.WriteErrorLog(runID, errorEntries, cfg.OutputDir); err != nil {
			return err
		}
	}

	log.Info().
		Int("ok", summary.SuccessfulSets).
		Int("failed", summary.FailedSets).
		Dur("elapsed", summary.EndTime.Sub(summary.StartTime)).
		Msg("run complete")

	if firstErr != nil && !cfg.ContinueOnError {
		return firstErr
	}
	if summary.SuccessfulSets == 0 && firstErr != nil {
		return fmt.Errorf("all export sets failed: %w", firstErr)
	}
	return nil
}

// discoverSets returns the explicit pair when given, else scans the input
// directory.
func discoverSets(cfg *config.Config, fm *utils.FileManager) ([]utils.ExportSet, []string, error) {
	if headerFile != "" || itemsFile != "" {
		if headerFile == "" || itemsFile == "" {
			return nil, nil, fmt.Errorf("--header and --items must be given together")
		}
		key := filepath.Base(headerFile)
		return []utils.ExportSet{{
			Key:        key,
			HeaderPath: headerFile,
			ItemsPath:  itemsFile,
			LedgerPath: ledgerFile,
		}}, nil, nil
	}
	return fm.DiscoverExportSets(cfg.HeaderToken, cfg.ItemsToken, cfg.LedgerToken)
}

// loadConfig loads the configuration and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if format != "" {
		cfg.ExportFormat = format
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newLogger builds the invocation's root logger.
func newLogger(cfg *config.Config) zerolog.Logger {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logger.New(level)
}
