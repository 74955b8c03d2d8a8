package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	db, err := OpenBolt(path)
	require.NoError(t, err)

	// Changes made in a cache are persisted only after writing it.
	committed := BTreeCacheable{db}
	cache := committed.CacheWrap()
	require.NoError(t, cache.Set([]byte("alice"), []byte("100")))
	require.NoError(t, cache.Set([]byte("bob"), []byte("50")))
	assert.Nil(t, mustGet(t, db, []byte("alice")))
	require.NoError(t, cache.Write())

	discarded := committed.CacheWrap()
	require.NoError(t, discarded.Set([]byte("carol"), []byte("1")))
	discarded.Discard()

	require.NoError(t, db.Close())

	db, err = OpenBolt(path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, []byte("100"), mustGet(t, db, []byte("alice")))
	assert.Equal(t, []byte("50"), mustGet(t, db, []byte("bob")))
	assert.False(t, mustHas(t, db, []byte("carol")))

	it, err := db.ReverseIterator(nil, nil)
	require.NoError(t, err)
	defer it.Close()
	var keys []string
	for ; it.Valid(); require.NoError(t, it.Next()) {
		keys = append(keys, string(it.Key()))
	}
	assert.Equal(t, []string{"bob", "alice"}, keys)

	require.NoError(t, db.Delete([]byte("bob")))
	assert.Nil(t, mustGet(t, db, []byte("bob")))
}
