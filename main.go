// =============================================================================
// ERP Sales Reconciler - Main Entry Point
// =============================================================================
//
// This is the main entry point for the ERP Sales Reconciler CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   reconciler reconcile     - Reconcile all export sets in the input directory
//   reconciler summary       - Reconcile one export pair and print totals
//   reconciler validate      - Validate the configuration without processing
//   reconciler version       - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/erp-sales-reconciler/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
