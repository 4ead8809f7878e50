// =============================================================================
// ERP Sales Reconciler - Run Cache Module
// =============================================================================
//
// Content-keyed caching of pipeline artifacts, purely a performance
// optimization: a cache hit must be value-identical to a fresh computation,
// and nothing here participates in the durable data model (there is none).
//
// Two artifact kinds are cached, with distinct key inputs:
//
//   - Raw record sets, keyed on input content alone. Re-running with a
//     different cost column re-resolves from cached raw records without
//     re-parsing the export files.
//   - Unified ledgers, keyed on input content plus the reconciliation
//     options (cost column, tax rate), since those change the output.
//
// The cache is instance-scoped, not global: concurrent runs over different
// export sets share one Cache value under its lock, and nothing else.
//
// =============================================================================

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/ginjaninja78/erp-sales-reconciler/internal/types"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/xmlparser"
)

// Cache holds parsed records and reconciled ledgers by content key.
type Cache struct {
	mu      sync.RWMutex
	records map[string][]xmlparser.Record
	ledgers map[string][]types.LedgerRow
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		records: make(map[string][]xmlparser.Record),
		ledgers: make(map[string][]types.LedgerRow),
	}
}

// Key derives a cache key from any number of byte parts. Each part's length
// is folded into the hash so concatenation boundaries cannot collide.
func Key(parts ...[]byte) string {
	h := sha256.New()
	for _, part := range parts {
		var n [8]byte
		length := len(part)
		for i := 0; i < 8; i++ {
			n[i] = byte(length >> (8 * i))
		}
		h.Write(n[:])
		h.Write(part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Records returns the cached record set for the key, if present.
func (c *Cache) Records(key string) ([]xmlparser.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	records, ok := c.records[key]
	return records, ok
}

// PutRecords stores a record set under the key.
func (c *Cache) PutRecords(key string, records []xmlparser.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[key] = records
}

// Ledger returns the cached ledger for the key, if present.
func (c *Cache) Ledger(key string) ([]types.LedgerRow, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ledger, ok := c.ledgers[key]
	return ledger, ok
}

// PutLedger stores a ledger under the key.
func (c *Cache) PutLedger(key string, ledger []types.LedgerRow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ledgers[key] = ledger
}
