package ledger

import (
	"encoding/json"

	"github.com/alium-swap/ledger/errors"
)

// Options is the app_state of a genesis document. Every extension owns the
// keys it reads.
type Options map[string]json.RawMessage

// ReadOptions decodes the value under key into obj. A missing key leaves
// obj untouched.
func (o Options) ReadOptions(key string, obj interface{}) error {
	raw, ok := o[key]
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "genesis %q: %s", key, err)
	}
	return nil
}

// Initializer loads the genesis state of an extension.
type Initializer interface {
	FromGenesis(Options, KVStore) error
}

// InitializerFunc adapts a function to the Initializer interface.
type InitializerFunc func(Options, KVStore) error

func (fn InitializerFunc) FromGenesis(opts Options, db KVStore) error {
	return fn(opts, db)
}

// ChainInitializers runs inits in order and stops at the first error.
func ChainInitializers(inits ...Initializer) Initializer {
	return InitializerFunc(func(opts Options, db KVStore) error {
		for _, in := range inits {
			if err := in.FromGenesis(opts, db); err != nil {
				return err
			}
		}
		return nil
	})
}
