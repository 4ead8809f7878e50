// =============================================================================
// ERP Sales Reconciler - Summary Command
// =============================================================================
//
// This file defines the 'summary' command, which reconciles a single export
// pair in memory and prints an aggregate view to stdout instead of writing
// report files. It is the quick-look counterpart to 'reconcile': same
// pipeline, no output directory involvement, no archiving.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/erp-sales-reconciler/internal/aggregate"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/reconciler"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/xmlparser"
)

// Summary command flags.
var (
	summaryHeaderFile string
	summaryItemsFile  string
	summaryBy         string
	summaryFrom       string
	summaryTo         string
	summarySalesman   string
	summaryGroup      string
)

// summaryCmd represents the 'summary' command.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Reconcile one export pair and print an aggregate view",
	Long: `The summary command reconciles a header/items export pair in memory and
prints grouped totals to stdout. Nothing is written to the output directory
and the inputs are not archived.

The grouping dimension is chosen with --by (date, salesperson, group, or
item), and the ledger can be restricted before aggregation with the filter
flags:

  reconciler summary --header may_header.xml --items may_items.xml \
    --by salesperson --from 2024-05-01 --to 2024-05-31`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runSummary()
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().StringVar(&summaryHeaderFile, "header", "",
		"Path to the header export (required)")
	summaryCmd.Flags().StringVar(&summaryItemsFile, "items", "",
		"Path to the items export (required)")
	summaryCmd.Flags().StringVar(&summaryBy, "by", "date",
		"Grouping dimension: date, salesperson, group, or item")
	summaryCmd.Flags().StringVar(&summaryFrom, "from", "",
		"Earliest transaction date to include (YYYY-MM-DD, inclusive)")
	summaryCmd.Flags().StringVar(&summaryTo, "to", "",
		"Latest transaction date to include (YYYY-MM-DD, inclusive)")
	summaryCmd.Flags().StringVar(&summarySalesman, "salesperson", "",
		"Restrict to one canonical salesperson identity")
	summaryCmd.Flags().StringVar(&summaryGroup, "group", "",
		"Restrict to one stock group")

	summaryCmd.MarkFlagRequired("header")
	summaryCmd.MarkFlagRequired("items")
}

// runSummary reconciles the pair and prints the requested view.
func runSummary() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dim, err := parseDimension(summaryBy)
	if err != nil {
		return err
	}
	filter, err := parseFilter()
	if err != nil {
		return err
	}

	headerRecords, err := xmlparser.ParseFile(summaryHeaderFile, cfg.Encoding)
	if err != nil {
		return err
	}
	itemRecords, err := xmlparser.ParseFile(summaryItemsFile, cfg.Encoding)
	if err != nil {
		return err
	}

	rows, stats, err := reconciler.Reconcile(headerRecords, itemRecords, cfg,
		reconciler.Options{})
	if err != nil {
		return err
	}

	groups := aggregate.GroupBy(rows, dim, filter)
	totals := aggregate.Summarize(rows, filter)

	printGroups(dim, groups)
	printTotals(totals, stats)
	return nil
}

// parseDimension maps the --by flag onto a grouping dimension.
func parseDimension(name string) (aggregate.Dimension, error) {
	switch name {
	case "date":
		return aggregate.ByDate, nil
	case "salesperson":
		return aggregate.BySalesperson, nil
	case "group":
		return aggregate.ByStockGroup, nil
	case "item":
		return aggregate.ByStockItem, nil
	default:
		return 0, fmt.Errorf("unknown --by dimension %q (want date, salesperson, group, or item)", name)
	}
}

// parseFilter builds the pre-aggregation filter from the flag values.
func parseFilter() (aggregate.Filter, error) {
	filter := aggregate.Filter{
		Salesperson: summarySalesman,
		StockGroup:  summaryGroup,
	}
	if summaryFrom != "" {
		from, err := time.Parse(aggregate.DateLayout, summaryFrom)
		if err != nil {
			return aggregate.Filter{}, fmt.Errorf("invalid --from date %q: %w", summaryFrom, err)
		}
		filter.From = from
	}
	if summaryTo != "" {
		to, err := time.Parse(aggregate.DateLayout, summaryTo)
		if err != nil {
			return aggregate.Filter{}, fmt.Errorf("invalid --to date %q: %w", summaryTo, err)
		}
		filter.To = to
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return aggregate.Filter{}, fmt.Errorf("--to %s is before --from %s", summaryTo, summaryFrom)
	}
	return filter, nil
}

// printGroups writes the grouped view as an aligned table.
func printGroups(dim aggregate.Dimension, groups []aggregate.Group) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tQuantity\tRevenue\tCost\tProfit\tMargin %%\n", dim)
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\n",
			g.Key, g.Quantity, g.Revenue, g.Cost, g.Profit, g.Margin)
	}
	w.Flush()
}

// printTotals writes the totals block beneath the grouped view.
func printTotals(totals aggregate.Totals, stats reconciler.Stats) {
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Rows merged\t%d\n", stats.RowsMerged)
	fmt.Fprintf(w, "Revenue\t%s\n", totals.Revenue)
	fmt.Fprintf(w, "Cost\t%s\n", totals.Cost)
	fmt.Fprintf(w, "Profit\t%s\n", totals.Profit)
	fmt.Fprintf(w, "Margin\t%.2f%%\n", totals.Margin)
	fmt.Fprintf(w, "Monthly run rate\t%.2f\n", totals.MonthlyRunRate)
	fmt.Fprintf(w, "Return rate\t%.2f%%\n", totals.ReturnRate)
	fmt.Fprintf(w, "Invoices\t%d\n", totals.InvoiceCount)
	fmt.Fprintf(w, "Returns\t%d\n", totals.ReturnCount)
	fmt.Fprintf(w, "Days covered\t%d\n", totals.Days)
	w.Flush()
}
