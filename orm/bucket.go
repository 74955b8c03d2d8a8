/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of object.
* Objects are encoded with go-amino, so any struct of supported field
types can be stored without code generation.
* Easy queries for one and iteration.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/errors"
	amino "github.com/tendermint/go-amino"
)

var (
	isBucketName = regexp.MustCompile(`^[a-z_]{3,16}$`).MatchString

	cdc = amino.NewCodec()
)

// Model is anything that can be stored in a bucket.
type Model interface {
	// Validate returns error if the object is not in a valid
	// state to save to the db (eg. field missing, out of range, ...)
	Validate() error
}

// Marshal serializes a model using the binary encoding shared by all
// buckets.
func Marshal(m interface{}) ([]byte, error) {
	raw, err := cdc.MarshalBinaryBare(m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidModel, err.Error())
	}
	return raw, nil
}

// Unmarshal loads a serialized model into dst, that must be a pointer.
func Unmarshal(raw []byte, dst interface{}) error {
	if err := cdc.UnmarshalBinaryBare(raw, dst); err != nil {
		return errors.Wrap(errors.ErrInvalidModel, err.Error())
	}
	return nil
}

// Bucket is a prefixed subspace of the DB. All keys of a bucket are
// prefixed with "<name>:", so buckets with different names never collide.
type Bucket struct {
	name   string
	prefix []byte
}

// NewBucket creates a bucket to store data
func NewBucket(name string) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
	}
}

// Name returns the name of the bucket.
func (b Bucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including prefix.
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// GetRaw returns the value stored under given key, or nil.
func (b Bucket) GetRaw(db ledger.ReadOnlyKVStore, key []byte) ([]byte, error) {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return nil, errors.Wrapf(err, "bucket %s", b.name)
	}
	return raw, nil
}

// SetRaw stores the value as it is, without validation.
func (b Bucket) SetRaw(db ledger.KVStore, key, value []byte) error {
	if err := db.Set(b.DBKey(key), value); err != nil {
		return errors.Wrapf(err, "bucket %s", b.name)
	}
	return nil
}

// Get loads the model stored under given key into dst. It returns false
// if nothing is stored under that key, in which case dst is not modified.
func (b Bucket) Get(db ledger.ReadOnlyKVStore, key []byte, dst Model) (bool, error) {
	raw, err := b.GetRaw(db, key)
	if err != nil || raw == nil {
		return false, err
	}
	if err := Unmarshal(raw, dst); err != nil {
		return false, errors.Wrapf(err, "bucket %s, key %X", b.name, key)
	}
	return true, nil
}

// Has returns true if anything is stored under given key.
func (b Bucket) Has(db ledger.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Save validates the model and writes it under given key.
func (b Bucket) Save(db ledger.KVStore, key []byte, m Model) error {
	if err := m.Validate(); err != nil {
		return errors.Wrapf(err, "bucket %s, key %X", b.name, key)
	}
	raw, err := Marshal(m)
	if err != nil {
		return err
	}
	return b.SetRaw(db, key, raw)
}

// Delete removes the value stored under given key. Deleting a missing key
// is not an error.
func (b Bucket) Delete(db ledger.KVStore, key []byte) error {
	if err := db.Delete(b.DBKey(key)); err != nil {
		return errors.Wrapf(err, "bucket %s", b.name)
	}
	return nil
}

// Iterate calls fn for every value stored in the bucket, in ascending key
// order. Keys passed to fn do not contain the bucket prefix. Iteration stops
// at the first error, which is returned.
//
// fn must not write to the bucket.
func (b Bucket) Iterate(db ledger.ReadOnlyKVStore, fn func(key, value []byte) error) error {
	it, err := db.Iterator(b.prefix, prefixEnd(b.prefix))
	if err != nil {
		return errors.Wrapf(err, "bucket %s", b.name)
	}
	defer it.Close()

	for ; it.Valid(); {
		if err := fn(it.Key()[len(b.prefix):], it.Value()); err != nil {
			return err
		}
		if err := it.Next(); err != nil {
			return errors.Wrapf(err, "bucket %s", b.name)
		}
	}
	return nil
}

// prefixEnd returns the smallest key that is greater than all keys starting
// with given prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	// all bytes were 0xff
	return nil
}
