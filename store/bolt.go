package store

import (
	"bytes"
	"time"

	"github.com/alium-swap/ledger/errors"
	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("ledger")

// BoltStore is a KVStore persisted in a single bbolt database file. All
// values are kept in one bbolt bucket, ordered by key.
//
// Writes that are not grouped in a batch are executed each in its own
// transaction. Use it wrapped in BTreeCacheable and write cache wraps to
// commit many changes in a single transaction.
type BoltStore struct {
	db *bolt.DB
}

var _ KVStore = (*BoltStore)(nil)

// OpenBolt opens (or creates) the database file at given path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %q: %s", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(errors.ErrDatabase, "create bucket: %s", err)
	}
	return &BoltStore{db: db}, nil
}

// Close releases the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Get returns a copy of the stored value or nil.
func (s *BoltStore) Get(key []byte) ([]byte, error) {
	var res []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(boltBucket).Get(key); v != nil {
			res = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return res, nil
}

// Has returns true if a value is stored under given key.
func (s *BoltStore) Has(key []byte) (bool, error) {
	v, err := s.Get(key)
	return v != nil, err
}

// Set stores the value in its own transaction.
func (s *BoltStore) Set(key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	return s.update([]Op{{Key: key, Value: value}})
}

// Delete removes the value in its own transaction.
func (s *BoltStore) Delete(key []byte) error {
	return s.update([]Op{{Key: key}})
}

// NewBatch returns a batch that writes all operations in a single bbolt
// transaction.
func (s *BoltStore) NewBatch() Batch {
	return &opBatch{flush: s.update}
}

func (s *BoltStore) update(ops []Op) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		for _, op := range ops {
			var err error
			if op.isDelete() {
				err = b.Delete(op.Key)
			} else {
				err = b.Put(op.Key, op.Value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Iterator returns all values within the range in ascending order. Values
// are loaded upfront so that the iterator does not hold a transaction open.
func (s *BoltStore) Iterator(start, end []byte) (Iterator, error) {
	data, err := s.load(start, end)
	if err != nil {
		return nil, err
	}
	return NewSliceIterator(data), nil
}

// ReverseIterator returns all values within the range in descending order.
func (s *BoltStore) ReverseIterator(start, end []byte) (Iterator, error) {
	data, err := s.load(start, end)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
		data[i], data[j] = data[j], data[i]
	}
	return NewSliceIterator(data), nil
}

func (s *BoltStore) load(start, end []byte) ([]Model, error) {
	var res []Model
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(boltBucket).Cursor()
		var k, v []byte
		if start == nil {
			k, v = c.First()
		} else {
			k, v = c.Seek(start)
		}
		for ; k != nil; k, v = c.Next() {
			if end != nil && bytes.Compare(k, end) >= 0 {
				break
			}
			res = append(res, Pair(append([]byte{}, k...), append([]byte{}, v...)))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return res, nil
}
