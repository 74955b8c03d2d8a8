package ledger

// ReadOnlyKVStore gives read access to an ordered key value store.
type ReadOnlyKVStore interface {
	// Get returns nil if the key does not exist.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)

	// Iterator walks keys in [start, end) in ascending order. A nil bound
	// is open. The range must not be written while the iterator is used.
	Iterator(start, end []byte) (Iterator, error)
	// ReverseIterator walks keys in [start, end) in descending order.
	ReverseIterator(start, end []byte) (Iterator, error)
}

// SetDeleter is the write side shared by stores and batches.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is implemented by every storage backend.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter

	// NewBatch returns a batch of writes applied together on Write.
	NewBatch() Batch
}

type Batch interface {
	SetDeleter
	Write() error
}

// Iterator is a cursor over a range of keys:
//
//   it, err := db.Iterator(start, end)
//   ...
//   defer it.Close()
//   for ; it.Valid(); it.Next() {
//   	key, value := it.Key(), it.Value()
//   }
//
// Key, Value and Next panic once Valid returns false. Returned slices must
// not be modified.
type Iterator interface {
	Valid() bool
	Next() error
	Key() []byte
	Value() []byte
	Close()
}

// CacheableKVStore can stage writes in a cache wrap that is later written
// or discarded as a whole.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap is a scratch pad over a store. Reads see the staged writes.
// Write applies them to the parent store, Discard drops them. Cache wraps
// nest.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}
