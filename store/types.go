package store

import "github.com/alium-swap/ledger"

// Aliases of the ledger storage interfaces, so implementations in this
// package read without the ledger qualifier.
type (
	ReadOnlyKVStore  = ledger.ReadOnlyKVStore
	SetDeleter       = ledger.SetDeleter
	KVStore          = ledger.KVStore
	Batch            = ledger.Batch
	Iterator         = ledger.Iterator
	CacheableKVStore = ledger.CacheableKVStore
	KVCacheWrap      = ledger.KVCacheWrap
)

// Model is one key value entry, as produced by iterators.
type Model struct {
	Key, Value []byte
}

func Pair(key, value []byte) Model {
	return Model{Key: key, Value: value}
}
