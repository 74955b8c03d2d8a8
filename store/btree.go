package store

import (
	"bytes"

	"github.com/google/btree"
)

// DefaultFreeListSize is the number of btree nodes kept for reuse.
const DefaultFreeListSize = btree.DefaultFreeListSize

// BTreeCacheable gives any KVStore btree cache wraps. Writing a cache wrap
// goes through a single batch of the store, so a bbolt store commits it in
// one transaction.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns an empty store kept in memory only.
func MemStore() CacheableKVStore {
	return BTreeCacheable{KVStore: EmptyKVStore{}}.CacheWrap()
}

// BTreeCacheWrap stages writes in a btree on top of a read only parent.
// Staged writes are also recorded in the batch, which is what Write
// applies.
type BTreeCacheWrap struct {
	bt     *btree.BTree
	free   *btree.FreeList
	parent ReadOnlyKVStore
	batch  Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap returns an empty cache wrap over parent. free may be
// nil; passing the list of another wrap shares its nodes.
func NewBTreeCacheWrap(parent ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		bt:     btree.NewWithFreeList(2, free),
		free:   free,
		parent: parent,
		batch:  batch,
	}
}

// CacheWrap nests another cache wrap. Its writes land in this one.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

func (b BTreeCacheWrap) NewBatch() Batch {
	return newApplyBatch(b)
}

// Write applies the staged writes to the parent and empties the wrap.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops the staged writes. It may be called any number of times.
func (b BTreeCacheWrap) Discard() {
	for b.bt.DeleteMin() != nil {
	}
	if r, ok := b.batch.(interface{ Reset() }); ok {
		r.Reset()
	}
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	if key == nil {
		panic("nil key")
	}
	if value == nil {
		value = []byte{}
	}
	b.bt.ReplaceOrInsert(&entry{key: key, value: value})
	return b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	if key == nil {
		panic("nil key")
	}
	b.bt.ReplaceOrInsert(&entry{key: key, deleted: true})
	return b.batch.Delete(key)
}

func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	if e := b.staged(key); e != nil {
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	return b.parent.Get(key)
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	if e := b.staged(key); e != nil {
		return !e.deleted, nil
	}
	return b.parent.Has(key)
}

func (b BTreeCacheWrap) staged(key []byte) *entry {
	if item := b.bt.Get(&entry{key: key}); item != nil {
		return item.(*entry)
	}
	return nil
}

// Iterator merges the staged writes with the parent range. The result is
// loaded upfront.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	data, err := b.merged(start, end)
	if err != nil {
		return nil, err
	}
	return NewSliceIterator(data), nil
}

func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	data, err := b.merged(start, end)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
		data[i], data[j] = data[j], data[i]
	}
	return NewSliceIterator(data), nil
}

// merged returns the visible models in [start, end) in ascending order.
// A staged entry hides the parent value of the same key.
func (b BTreeCacheWrap) merged(start, end []byte) ([]Model, error) {
	it, err := b.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var res []Model
	flush := func(e *entry) {
		if !e.deleted {
			res = append(res, Pair(e.key, e.value))
		}
	}
	for _, e := range b.stagedRange(start, end) {
		for it.Valid() && bytes.Compare(it.Key(), e.key) < 0 {
			res = append(res, Pair(it.Key(), it.Value()))
			if err := it.Next(); err != nil {
				return nil, err
			}
		}
		if it.Valid() && bytes.Equal(it.Key(), e.key) {
			if err := it.Next(); err != nil {
				return nil, err
			}
		}
		flush(e)
	}
	for it.Valid() {
		res = append(res, Pair(it.Key(), it.Value()))
		if err := it.Next(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (b BTreeCacheWrap) stagedRange(start, end []byte) []*entry {
	var res []*entry
	collect := func(item btree.Item) bool {
		res = append(res, item.(*entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		b.bt.Ascend(collect)
	case start == nil:
		b.bt.AscendLessThan(&entry{key: end}, collect)
	case end == nil:
		b.bt.AscendGreaterOrEqual(&entry{key: start}, collect)
	default:
		b.bt.AscendRange(&entry{key: start}, &entry{key: end}, collect)
	}
	return res
}

// entry is a staged write. Deleted entries hide the parent value.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

func (e *entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(*entry).key) < 0
}
