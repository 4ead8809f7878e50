package normalizer

import (
	"fmt"
	"strings"
)

// SchemaError reports that a dataset is missing every candidate column for a
// required logical field (the join key or the date source). It is fatal for
// the run: without the join key no merge is possible, and guessing a column
// would silently corrupt every downstream total.
type SchemaError struct {
	// Dataset names the input the column is missing from ("header", "items").
	Dataset string

	// Field is the logical field that failed to resolve.
	Field string

	// Candidates are the column names that were tried, in order.
	Candidates []string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s dataset: no column found for required field %q (tried %s)",
		e.Dataset, e.Field, strings.Join(e.Candidates, ", "))
}
