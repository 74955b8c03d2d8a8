package orm

import (
	"encoding/binary"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/errors"
)

// Counter is a persistent, unsigned counter stored under a single key:
//    _n.<bucket>:<name>
type Counter struct {
	id []byte
}

// NewCounter returns a counter for given bucket and name.
func NewCounter(bucket, name string) Counter {
	return Counter{id: []byte("_n." + bucket + ":" + name)}
}

// Value returns the current state of the counter. A counter that was never
// incremented is zero.
func (c Counter) Value(db ledger.ReadOnlyKVStore) (uint64, error) {
	raw, err := db.Get(c.id)
	if err != nil {
		return 0, err
	}
	return decodeCounter(raw)
}

// Add increments the counter by n and returns the new value.
func (c Counter) Add(db ledger.KVStore, n uint64) (uint64, error) {
	val, err := c.Value(db)
	if err != nil {
		return 0, err
	}
	if val+n < val {
		return 0, errors.Wrapf(errors.ErrOverflow, "counter %s", c.id)
	}
	val += n
	return val, db.Set(c.id, encodeCounter(val))
}

// Reset sets the counter back to zero.
func (c Counter) Reset(db ledger.KVStore) error {
	return db.Delete(c.id)
}

func decodeCounter(raw []byte) (uint64, error) {
	if raw == nil {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, errors.ErrInvalidState.Newf("counter value of %d bytes", len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

func encodeCounter(val uint64) []byte {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, val)
	return raw
}
