// =============================================================================
// ERP Sales Reconciler - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// ('reconcile', 'summary', 'validate', 'version') attach to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (reconciler)
//   ├── reconcileCmd (reconciler reconcile)
//   ├── summaryCmd   (reconciler summary)
//   ├── validateCmd  (reconciler validate)
//   └── versionCmd   (reconciler version)
//
// The root command owns the global flags (--config, --verbose); individual
// commands load and validate the configuration themselves.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile holds the path to the configuration file, overridable via --config.
var cfgFile string

// verbose enables debug logging when set.
var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "ERP Sales Reconciler - Merge ERP export files into a unified sales ledger",
	Long: `ERP Sales Reconciler is a CLI tool that reconciles the transaction-header
and line-item XML exports of a legacy ERP system (optionally plus a
general-ledger export) into one normalized ledger of sale line items, carrying
quantity, revenue, cost, and profit, attributed to a canonical salesperson and
a transaction date.

The exports' column names shift between ERP versions; resolution tables,
voucher keyword sets, and salesperson identity rules all live in the YAML
configuration, with built-in defaults matching the known export versions.

Example Usage:
  reconciler reconcile                      # Reconcile all export sets in the input directory
  reconciler reconcile --cost-column AvgCost
  reconciler summary --by salesperson       # Print an aggregate view for one export set
  reconciler validate                       # Check the configuration without processing`,

	Run: func(cmd *cobra.Command, args []string) {
		// Without a subcommand, print the help message.
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (built-in defaults apply when absent)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
