// =============================================================================
// ERP Sales Reconciler - Salesperson Identity Normalizer
// =============================================================================
//
// Canonicalizes salesperson attribution across its two competing sources.
// The ERP records a salesperson both per line item and per voucher header,
// and data entry has produced several spellings of the same staff members.
//
// Resolution precedence: the item-level name wins when non-empty, then the
// header-level name, then the configured "unassigned" sentinel.
//
// Canonicalization is an explicit substring whitelist from configuration:
// the first rule whose every substring occurs in the trimmed name maps the
// whole name to that rule's canonical identity. Compound rules (a name
// containing two known staff members) are listed before their components.
// Unknown names pass through trimmed but unmerged. This is deliberately not
// fuzzy matching; a similarity metric would eventually merge two genuinely
// different people and corrupt attribution.
//
// =============================================================================

package reconciler

import (
	"strings"

	"github.com/ginjaninja78/erp-sales-reconciler/internal/config"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/types"
)

// IdentityNormalizer resolves and canonicalizes salesperson names.
type IdentityNormalizer struct {
	rules      []config.IdentityRule
	unassigned string
	nullForms  map[string]bool
}

// NewIdentityNormalizer builds a normalizer from the identity configuration.
func NewIdentityNormalizer(cfg config.IdentityConfig) *IdentityNormalizer {
	nullForms := make(map[string]bool, len(cfg.NullForms))
	for _, form := range cfg.NullForms {
		nullForms[strings.ToLower(strings.TrimSpace(form))] = true
	}
	return &IdentityNormalizer{
		rules:      cfg.Rules,
		unassigned: cfg.Unassigned,
		nullForms:  nullForms,
	}
}

// Resolve applies source precedence and canonicalization: the item-level name
// when usable, else the header-level name, else the unassigned sentinel.
func (n *IdentityNormalizer) Resolve(itemName, headerName string) string {
	if !n.isNull(itemName) {
		return n.Canonicalize(itemName)
	}
	if !n.isNull(headerName) {
		return n.Canonicalize(headerName)
	}
	return n.unassigned
}

// Canonicalize maps one resolved name to its canonical identity. It is
// idempotent: a canonical identity contains its own rule substrings and maps
// back to itself.
func (n *IdentityNormalizer) Canonicalize(name string) string {
	if n.isNull(name) {
		return n.unassigned
	}
	trimmed := strings.TrimSpace(name)

	for _, rule := range n.rules {
		if containsAll(trimmed, rule.Contains) {
			return rule.Canonical
		}
	}
	return trimmed
}

// isNull reports whether the value is empty or one of the textual null forms
// the exports produce.
func (n *IdentityNormalizer) isNull(name string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	return trimmed == "" || n.nullForms[trimmed]
}

func containsAll(name string, substrings []string) bool {
	for _, substring := range substrings {
		if !strings.Contains(name, substring) {
			return false
		}
	}
	return true
}

// ApplyIdentity fills the canonical salesperson on every ledger row. At this
// point each row's Salesperson field still holds the raw item-level name from
// the merge; the header-level fallback comes from the retained header set.
func ApplyIdentity(rows []types.LedgerRow, headers []types.TransactionHeader, n *IdentityNormalizer) []types.LedgerRow {
	headerNames := make(map[string]string, len(headers))
	for _, header := range headers {
		headerNames[header.TransactionID] = header.Salesperson
	}

	for i := range rows {
		rows[i].Salesperson = n.Resolve(rows[i].Salesperson, headerNames[rows[i].TransactionID])
	}
	return rows
}
