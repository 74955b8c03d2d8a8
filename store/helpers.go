package store

// SliceIterator iterates over models loaded in memory.
type SliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*SliceIterator)(nil)

func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{data: data}
}

func (s *SliceIterator) Valid() bool {
	return s.idx < len(s.data)
}

// Next panics when called on an exhausted iterator.
func (s *SliceIterator) Next() error {
	s.current()
	s.idx++
	return nil
}

func (s *SliceIterator) Key() []byte {
	return s.current().Key
}

func (s *SliceIterator) Value() []byte {
	return s.current().Value
}

func (s *SliceIterator) Close() {
	s.data = nil
}

func (s *SliceIterator) current() Model {
	if !s.Valid() {
		panic("iterator exhausted")
	}
	return s.data[s.idx]
}

// EmptyKVStore holds no data and ignores writes. It is the bottom layer of
// MemStore.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (EmptyKVStore) Get([]byte) ([]byte, error) { return nil, nil }
func (EmptyKVStore) Has([]byte) (bool, error) { return false, nil }
func (EmptyKVStore) Set(key, value []byte) error { return nil }
func (EmptyKVStore) Delete(key []byte) error { return nil }
func (e EmptyKVStore) NewBatch() Batch { return newApplyBatch(e) }
func (EmptyKVStore) Iterator(_, _ []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}
func (EmptyKVStore) ReverseIterator(_, _ []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

// Op is a single pending write. A nil Value deletes the key.
type Op struct {
	Key   []byte
	Value []byte
}

func (o Op) isDelete() bool {
	return o.Value == nil
}

// opBatch collects operations and passes all of them to flush on Write.
type opBatch struct {
	ops   []Op
	flush func([]Op) error
}

var _ Batch = (*opBatch)(nil)

// newApplyBatch returns a batch executing its operations one by one on out.
// It is not atomic and must only write to in-memory layers.
func newApplyBatch(out SetDeleter) Batch {
	return &opBatch{flush: func(ops []Op) error {
		for _, op := range ops {
			var err error
			if op.isDelete() {
				err = out.Delete(op.Key)
			} else {
				err = out.Set(op.Key, op.Value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}}
}

func (b *opBatch) Set(key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	b.ops = append(b.ops, Op{Key: key, Value: value})
	return nil
}

func (b *opBatch) Delete(key []byte) error {
	b.ops = append(b.ops, Op{Key: key})
	return nil
}

func (b *opBatch) Write() error {
	if len(b.ops) == 0 {
		return nil
	}
	err := b.flush(b.ops)
	b.ops = nil
	return err
}

func (b *opBatch) Reset() {
	b.ops = nil
}
