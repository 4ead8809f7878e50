// =============================================================================
// ERP Sales Reconciler - Voucher Classifier Module
// =============================================================================
//
// This module assigns each transaction header a binary disposition from its
// free-text voucher label: Keep (participates in the sales ledger) or Ignore
// (dropped before merge). The ERP's voucher names are free text across
// deployments and languages, so classification is ordered keyword matching,
// not an enum:
//
//   1. The EXCLUDE set (purchase, quotation, order terms) is evaluated first.
//      Any match ignores the voucher immediately, even when an include
//      keyword also matches. A label like "Purchase Return Invoice" is a
//      supplier-side document; omitting ambiguous documents from sales
//      totals is the required conservative bias.
//   2. The INCLUDE set (sale, cash, invoice, credit, return terms) is
//      evaluated next; any match keeps the voucher.
//   3. Labels matching neither set are ignored.
//
// Classification is idempotent and stateless. The line items of an ignored
// voucher become unmatched and are silently dropped at merge; that is the
// merge's documented behavior, not an error.
//
// =============================================================================

package classifier

import "strings"

// Disposition is the binary outcome of voucher classification.
type Disposition int

const (
	// Ignore excludes the voucher, and with it all its line items, from the
	// unified ledger. The default for unknown labels.
	Ignore Disposition = iota

	// Keep admits the voucher into the merge.
	Keep
)

// String returns the disposition name for logs.
func (d Disposition) String() string {
	if d == Keep {
		return "keep"
	}
	return "ignore"
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classifier matches voucher labels against the configured keyword sets.
// Matching is case-insensitive substring containment; keyword sets are
// lowercased once at construction.
type Classifier struct {
	exclude []string
	include []string
}

// New builds a classifier from the exclude and include keyword sets.
func New(exclude, include []string) *Classifier {
	return &Classifier{
		exclude: lowerAll(exclude),
		include: lowerAll(include),
	}
}

// Classify returns the disposition for a voucher label. Exclude keywords are
// checked before include keywords; see the module header for why the order
// is load-bearing.
func (c *Classifier) Classify(label string) Disposition {
	lowered := strings.ToLower(label)

	for _, keyword := range c.exclude {
		if strings.Contains(lowered, keyword) {
			return Ignore
		}
	}
	for _, keyword := range c.include {
		if strings.Contains(lowered, keyword) {
			return Keep
		}
	}
	return Ignore
}

// =============================================================================
// RETURN MATCHER
// =============================================================================

// ReturnMatcher identifies returned-goods vouchers, whose merged rows get
// their monetary values negated by the sign resolver. Patterns cover the
// English term and its localized synonym and match case-insensitively.
type ReturnMatcher struct {
	patterns []string
}

// NewReturnMatcher builds a matcher from the configured return patterns.
func NewReturnMatcher(patterns []string) *ReturnMatcher {
	return &ReturnMatcher{patterns: lowerAll(patterns)}
}

// Match reports whether the voucher label denotes a return.
func (m *ReturnMatcher) Match(label string) bool {
	lowered := strings.ToLower(label)
	for _, pattern := range m.patterns {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}

func lowerAll(keywords []string) []string {
	lowered := make([]string, len(keywords))
	for i, keyword := range keywords {
		lowered[i] = strings.ToLower(strings.TrimSpace(keyword))
	}
	return lowered
}
