package reconciler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/erp-sales-reconciler/internal/config"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/types"
)

func defaultIdentity() *IdentityNormalizer {
	return NewIdentityNormalizer(config.Default().Identity)
}

func TestCanonicalize(t *testing.T) {
	n := defaultIdentity()

	// Spelling variants of one staff member collapse to the canonical form.
	require.Equal(t, "سعيد", n.Canonicalize("سعيد"))
	require.Equal(t, "سعيد", n.Canonicalize("  سعيد محمد "))
	require.Equal(t, "أحمد", n.Canonicalize("أحمد علي"))

	// The compound rule is listed first, so a name carrying both staff
	// members maps to the shared identity, not to either component.
	require.Equal(t, "سعيد وأحمد", n.Canonicalize("سعيد و أحمد"))

	// Unknown names pass through trimmed but unmerged.
	require.Equal(t, "خالد", n.Canonicalize(" خالد "))

	// Null forms collapse to the unassigned sentinel.
	require.Equal(t, "Unassigned", n.Canonicalize(""))
	require.Equal(t, "Unassigned", n.Canonicalize("NULL"))
	require.Equal(t, "Unassigned", n.Canonicalize(" - "))
}

func TestCanonicalizeIdempotent(t *testing.T) {
	n := defaultIdentity()
	for _, name := range []string{"سعيد", "أحمد", "سعيد وأحمد", "خالد", "Unassigned"} {
		once := n.Canonicalize(name)
		require.Equal(t, once, n.Canonicalize(once), name)
	}
}

func TestResolvePrecedence(t *testing.T) {
	n := defaultIdentity()

	// Item-level name wins when usable.
	require.Equal(t, "أحمد", n.Resolve("أحمد محمد", "سعيد"))

	// A null item-level name falls back to the header.
	require.Equal(t, "سعيد", n.Resolve("", "سعيد"))
	require.Equal(t, "سعيد", n.Resolve("null", "سعيد محمد"))

	// Both null resolves to the sentinel.
	require.Equal(t, "Unassigned", n.Resolve("", ""))
	require.Equal(t, "Unassigned", n.Resolve("none", "-"))
}

func TestApplyIdentity(t *testing.T) {
	n := defaultIdentity()

	headers := []types.TransactionHeader{
		{TransactionID: "1", Salesperson: "سعيد"},
		{TransactionID: "2", Salesperson: ""},
	}
	rows := []types.LedgerRow{
		{TransactionID: "1", Salesperson: "أحمد علي"},
		{TransactionID: "1", Salesperson: ""},
		{TransactionID: "2", Salesperson: ""},
	}

	rows = ApplyIdentity(rows, headers, n)
	require.Equal(t, "أحمد", rows[0].Salesperson)
	require.Equal(t, "سعيد", rows[1].Salesperson)
	require.Equal(t, "Unassigned", rows[2].Salesperson)
}
