package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenwallet/lumen/internal/activity"
)

const testNode = "https://localhost:8080"

// backdate rewrites an entry's timestamp so staleness paths can be tested
// without sleeping.
func backdate(c *ActivityCache, node string, kind activity.Kind, age time.Duration) {
	key := Key(node, kind)
	entry := c.Entries[key]
	entry.UpdatedAt = time.Now().Add(-age)
	c.Entries[key] = entry
}

func TestFileStorageSaveLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "activity.json")
	storage := NewFileStorage(path)
	assert.Equal(t, path, storage.Path())
	assert.False(t, storage.Exists())

	c := NewActivityCache()
	c.Set(ActivityCacheEntry{
		Node:  testNode,
		Kind:  activity.KindInvoice,
		Items: []activity.Item{{Kind: activity.KindInvoice, RHash: "aaa", Memo: "coffee", Value: 2100}},
	})
	c.Set(ActivityCacheEntry{
		Node:  testNode,
		Kind:  activity.KindPayment,
		Items: []activity.Item{{Kind: activity.KindPayment, PaymentHash: "bbb", Value: 500}},
	})

	require.NoError(t, storage.Save(c))
	assert.True(t, storage.Exists())

	// The atomic write must not leave temp files next to the cache.
	leftovers, err := filepath.Glob(path + ".tmp-*")
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	loaded, err := storage.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Size())

	inv, ok, _ := loaded.Get(testNode, activity.KindInvoice)
	require.True(t, ok)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "coffee", inv.Items[0].Memo)

	pay, ok, _ := loaded.Get(testNode, activity.KindPayment)
	require.True(t, ok)
	require.Len(t, pay.Items, 1)
	assert.Equal(t, int64(500), pay.Items[0].Value)
}

func TestFileStorageLoadMissingFile(t *testing.T) {
	t.Parallel()

	storage := NewFileStorage(filepath.Join(t.TempDir(), "absent.json"))

	c, err := storage.Load()
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Size())
}

func TestFileStorageSaveCreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.json")
	storage := NewFileStorage(path)

	c := NewActivityCache()
	c.Set(ActivityCacheEntry{Node: testNode, Kind: activity.KindTransaction})

	require.NoError(t, storage.Save(c))
	assert.FileExists(t, path)
}

func TestFileStorageLoadQuarantinesCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o640))
	storage := NewFileStorage(path)

	c, err := storage.Load()
	require.ErrorIs(t, err, ErrCorruptCache)

	// The caller still gets a usable cache, and the bad file is renamed
	// aside rather than deleted.
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Size())
	assert.NoFileExists(t, path)

	moved, globErr := filepath.Glob(path + ".corrupt.*")
	require.NoError(t, globErr)
	assert.Len(t, moved, 1)
}

func TestFileStorageDelete(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "activity.json")
	storage := NewFileStorage(path)

	require.NoError(t, storage.Save(NewActivityCache()))
	require.NoError(t, storage.Delete())
	assert.False(t, storage.Exists())

	// Deleting a file that is already gone succeeds.
	require.NoError(t, storage.Delete())
}

func TestCacheGetSet(t *testing.T) {
	t.Parallel()

	c := NewActivityCache()

	entry, ok, _ := c.Get(testNode, activity.KindPayment)
	assert.False(t, ok)
	assert.Nil(t, entry)

	c.Set(ActivityCacheEntry{
		Node:  testNode,
		Kind:  activity.KindInvoice,
		Items: []activity.Item{{Kind: activity.KindInvoice, RHash: "aaa"}},
	})

	entry, ok, age := c.Get(testNode, activity.KindInvoice)
	require.True(t, ok)
	require.NotNil(t, entry)
	assert.Len(t, entry.Items, 1)
	assert.False(t, entry.UpdatedAt.IsZero(), "Set must stamp the entry")
	assert.Less(t, age, time.Second)
}

func TestCacheKindsAreIndependent(t *testing.T) {
	t.Parallel()

	c := NewActivityCache()
	c.Set(ActivityCacheEntry{
		Node:  testNode,
		Kind:  activity.KindInvoice,
		Items: []activity.Item{{Kind: activity.KindInvoice, RHash: "aaa"}},
	})
	c.Set(ActivityCacheEntry{
		Node:  testNode,
		Kind:  activity.KindTransaction,
		Items: []activity.Item{{Kind: activity.KindTransaction, TxHash: "bbb"}},
	})

	inv, ok, _ := c.Get(testNode, activity.KindInvoice)
	require.True(t, ok)
	assert.Equal(t, "aaa", inv.Items[0].RHash)

	tx, ok, _ := c.Get(testNode, activity.KindTransaction)
	require.True(t, ok)
	assert.Equal(t, "bbb", tx.Items[0].TxHash)
}

func TestCacheStaleness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		age       time.Duration
		threshold time.Duration
		want      bool
	}{
		{"fresh entry", 0, DefaultStaleness, false},
		{"older than threshold", 10 * time.Minute, DefaultStaleness, true},
		{"custom threshold holds longer", 10 * time.Minute, time.Hour, false},
		{"custom threshold expires sooner", 2 * time.Second, time.Second, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := NewActivityCache()
			c.Set(ActivityCacheEntry{Node: testNode, Kind: activity.KindInvoice})
			if tc.age > 0 {
				backdate(c, testNode, activity.KindInvoice, tc.age)
			}

			assert.Equal(t, tc.want, c.IsStaleWithDuration(testNode, activity.KindInvoice, tc.threshold))
		})
	}

	t.Run("missing entry is stale", func(t *testing.T) {
		t.Parallel()
		assert.True(t, NewActivityCache().IsStale(testNode, activity.KindPayment))
	})
}

func TestCacheDelete(t *testing.T) {
	t.Parallel()

	c := NewActivityCache()
	c.Set(ActivityCacheEntry{Node: testNode, Kind: activity.KindInvoice})
	c.Delete(testNode, activity.KindInvoice)

	_, ok, _ := c.Get(testNode, activity.KindInvoice)
	assert.False(t, ok)
}

func TestCacheClear(t *testing.T) {
	t.Parallel()

	c := NewActivityCache()
	c.Set(ActivityCacheEntry{Node: testNode, Kind: activity.KindInvoice})
	c.Set(ActivityCacheEntry{Node: testNode, Kind: activity.KindPayment})
	require.Equal(t, 2, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestCacheGetAllForNode(t *testing.T) {
	t.Parallel()

	c := NewActivityCache()
	c.Set(ActivityCacheEntry{Node: testNode, Kind: activity.KindInvoice})
	c.Set(ActivityCacheEntry{Node: testNode, Kind: activity.KindPayment})
	c.Set(ActivityCacheEntry{Node: "https://other:8080", Kind: activity.KindInvoice})

	assert.Len(t, c.GetAllForNode(testNode), 2)
	assert.Len(t, c.GetAllForNode("https://other:8080"), 1)
	assert.Empty(t, c.GetAllForNode("https://unknown:8080"))
}

func TestCachePrune(t *testing.T) {
	t.Parallel()

	c := NewActivityCache()
	c.Set(ActivityCacheEntry{Node: testNode, Kind: activity.KindInvoice})
	c.Set(ActivityCacheEntry{Node: testNode, Kind: activity.KindPayment})
	backdate(c, testNode, activity.KindPayment, time.Hour)

	removed := c.Prune(30 * time.Minute)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Size())

	_, ok, _ := c.Get(testNode, activity.KindInvoice)
	assert.True(t, ok, "fresh entry survives the prune")
	_, ok, _ = c.Get(testNode, activity.KindPayment)
	assert.False(t, ok, "aged entry is pruned")
}

func TestCacheEntryAge(t *testing.T) {
	t.Parallel()

	entry := ActivityCacheEntry{UpdatedAt: time.Now().Add(-time.Minute)}
	age := entry.Age()
	assert.GreaterOrEqual(t, age, time.Minute)
	assert.Less(t, age, time.Minute+10*time.Second)
}
