// =============================================================================
// ERP Sales Reconciler - Pipeline Orchestration
// =============================================================================
//
// The reconciliation pipeline for one export set, as a pure function over
// raw records:
//
//   1. Normalize headers     (candidate-column resolution, typing, dedup)
//   2. Filter headers        (drop deleted, classify voucher labels)
//   3. Normalize line items  (revenue tiering, cost-column choice)
//   4. Merge                 (inner join on transaction ID, date guarantee)
//   5. Resolve signs         (negate return rows, compute profit)
//   6. Apply identity        (canonical salesperson per row)
//
// Reconcile holds no global state and touches no I/O, so two runs over
// different export sets are fully isolated and a run is trivially testable
// without a CLI harness. For fixed inputs and options the output multiset is
// identical on every run; row order follows item order for display.
//
// Failure semantics: the only errors produced are structural —
// xmlparser.MalformedInputError happens upstream in extraction, and
// normalizer.SchemaError here when a join key or date source is entirely
// absent. A failed run returns no partial ledger.
//
// =============================================================================

package reconciler

import (
	"github.com/ginjaninja78/erp-sales-reconciler/internal/classifier"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/config"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/normalizer"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/types"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/xmlparser"
)

// Options are the tunables the reconciliation logic accepts. CostColumn
// overrides the configured unit-cost column for this run; empty means use
// the configuration's choice.
type Options struct {
	CostColumn string
}

// Stats counts what each pipeline stage kept and dropped. All drops below
// the merge are silent by design; the stats exist so a run's log can still
// account for every input row.
type Stats struct {
	HeadersRead     int
	HeadersDeduped  int
	HeadersDeleted  int
	HeadersIgnored  int
	HeadersRetained int

	ItemsRead    int
	RowsMerged   int
	RowsUnmatch  int
	RowsReturned int
}

// Reconcile runs the full pipeline over raw header and item records and
// returns the unified ledger.
func Reconcile(headerRecords, itemRecords []xmlparser.Record, cfg *config.Config, opts Options) ([]types.LedgerRow, Stats, error) {
	stats := Stats{
		HeadersRead: len(headerRecords),
		ItemsRead:   len(itemRecords),
	}

	// Stage 1: normalize headers.
	headerSet := normalizer.NewDataset("header", headerRecords)
	headers, err := normalizer.NormalizeHeaders(headerSet, cfg.Resolution.Header)
	if err != nil {
		return nil, stats, err
	}
	stats.HeadersDeduped = stats.HeadersRead - len(headers)

	// Stage 2: drop deleted headers, then classify voucher labels.
	voucher := classifier.New(cfg.Classifier.Exclude, cfg.Classifier.Include)
	retained := make([]types.TransactionHeader, 0, len(headers))
	for _, header := range headers {
		if header.IsDeleted {
			stats.HeadersDeleted++
			continue
		}
		if voucher.Classify(header.VoucherLabel) == classifier.Ignore {
			stats.HeadersIgnored++
			continue
		}
		retained = append(retained, header)
	}
	stats.HeadersRetained = len(retained)

	// Stage 3: normalize line items with the run's cost-column choice.
	costCandidates := cfg.CostCandidates()
	if opts.CostColumn != "" {
		costCandidates = prependUnique(opts.CostColumn, costCandidates)
	}
	itemSet := normalizer.NewDataset("items", itemRecords)
	items, err := normalizer.NormalizeItems(itemSet, cfg.Resolution.Items, costCandidates, cfg.TaxRate)
	if err != nil {
		return nil, stats, err
	}

	// Stage 4: merge.
	rows := Merge(retained, items)
	stats.RowsMerged = len(rows)
	stats.RowsUnmatch = len(items) - len(rows)

	// Stage 5: return-sign resolution and profit.
	returns := classifier.NewReturnMatcher(cfg.Classifier.ReturnPatterns)
	rows = ResolveSigns(rows, returns)
	for _, row := range rows {
		if row.IsReturn {
			stats.RowsReturned++
		}
	}

	// Stage 6: canonical salesperson identity.
	identity := NewIdentityNormalizer(cfg.Identity)
	rows = ApplyIdentity(rows, retained, identity)

	return rows, stats, nil
}

// prependUnique puts the override column first without duplicating it.
func prependUnique(column string, candidates []string) []string {
	ordered := make([]string, 0, len(candidates)+1)
	ordered = append(ordered, column)
	for _, candidate := range candidates {
		if candidate != column {
			ordered = append(ordered, candidate)
		}
	}
	return ordered
}
