// =============================================================================
// ERP Sales Reconciler - Text Coercion Helpers
// =============================================================================
//
// Lenient text-to-type coercion for exported field values. The exports are
// known to carry unreliable text, so every coercion absorbs its own failure:
// numbers fall back to zero, dates to the absent-date sentinel, booleans to
// false. Nothing here ever returns an error; an implementation that raised on
// a malformed numeric field would change every downstream total. The only
// fatal conditions in the pipeline are structural (see SchemaError and
// xmlparser.MalformedInputError).
//
// =============================================================================

package normalizer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SerialEpoch anchors the ERP's serial day-count dates, the spreadsheet
// convention: day 0 is 1899-12-30.
var SerialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Decimal parses s as a decimal number. Unparsable or empty text coerces to
// zero, never to an error.
func Decimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SerialDate decodes a serial day-count value into a calendar date:
// epoch + floor(serial) days. Fractional day parts (time of day) are
// discarded. Unparsable text coerces to the zero time, the absent-date
// sentinel; rows carrying it are removed at merge, not here.
func SerialDate(s string) time.Time {
	serial, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	days := serial.Floor().IntPart()
	return SerialEpoch.AddDate(0, 0, int(days))
}

// Bool decodes the flag forms the exports use. Anything unrecognized,
// including an absent value, is false.
func Bool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
