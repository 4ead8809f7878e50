package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/erp-sales-reconciler/internal/types"
	"github.com/ginjaninja78/erp-sales-reconciler/internal/xmlparser"
)

func TestKeyDeterministic(t *testing.T) {
	a := Key([]byte("header"), []byte("items"))
	b := Key([]byte("header"), []byte("items"))
	require.Equal(t, a, b)
	require.Len(t, a, 64)
}

func TestKeyBoundaries(t *testing.T) {
	// Part lengths are folded into the hash, so shifting bytes across a
	// boundary must produce a different key.
	require.NotEqual(t, Key([]byte("ab"), []byte("c")), Key([]byte("a"), []byte("bc")))
	require.NotEqual(t, Key([]byte("abc")), Key([]byte("abc"), []byte("")))
	require.NotEqual(t, Key([]byte("abc"), []byte("x")), Key([]byte("abc"), []byte("y")))
}

func TestRecordsRoundTrip(t *testing.T) {
	c := New()
	key := Key([]byte("content"))

	_, ok := c.Records(key)
	require.False(t, ok)

	records := []xmlparser.Record{{"TransCode": "1"}}
	c.PutRecords(key, records)

	got, ok := c.Records(key)
	require.True(t, ok)
	require.Equal(t, records, got)
}

func TestLedgerRoundTrip(t *testing.T) {
	c := New()
	key := Key([]byte("content"), []byte("CostFactor"))

	_, ok := c.Ledger(key)
	require.False(t, ok)

	ledger := []types.LedgerRow{{TransactionID: "1"}}
	c.PutLedger(key, ledger)

	got, ok := c.Ledger(key)
	require.True(t, ok)
	require.Equal(t, ledger, got)
}

func TestConcurrentAccess(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := Key([]byte{byte(n % 4)})
			c.PutRecords(key, []xmlparser.Record{{"TransCode": "1"}})
			c.Records(key)
			c.PutLedger(key, []types.LedgerRow{{TransactionID: "1"}})
			c.Ledger(key)
		}(i)
	}
	wg.Wait()
}
