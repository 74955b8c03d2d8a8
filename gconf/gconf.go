/*
Package gconf keeps the settings of each extension in the database.

Every extension owns one configuration value stored under "_c:<pkg>".
Values are validated on every write. At genesis they are read from the
"conf" section, keyed by the extension name.
*/
package gconf

import (
	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/orm"
)

// ReadStore is the part of ledger.ReadOnlyKVStore Load needs.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is the part of ledger.KVStore Save needs.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// Configuration is a settings value of one extension.
type Configuration interface {
	Validate() error
}

const keyPrefix = "_c:"

func storageKey(pkg string) []byte {
	return append([]byte(keyPrefix), pkg...)
}

// Save writes src as the configuration of pkg. Invalid values are rejected.
func Save(db Store, pkg string, src Configuration) error {
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "%s configuration", pkg)
	}
	raw, err := orm.Marshal(src)
	if err != nil {
		return errors.Wrapf(err, "encode %s configuration", pkg)
	}
	return db.Set(storageKey(pkg), raw)
}

// Load decodes the configuration of pkg into dst. It fails with ErrNotFound
// before the first Save.
func Load(db ReadStore, pkg string, dst Configuration) error {
	raw, err := db.Get(storageKey(pkg))
	switch {
	case err != nil:
		return err
	case raw == nil:
		return errors.ErrNotFound.Newf("%s configuration", pkg)
	}
	return errors.Wrapf(orm.Unmarshal(raw, dst), "decode %s configuration", pkg)
}

// InitConfig reads opts["conf"][pkg] into conf and saves it.
func InitConfig(db Store, opts ledger.Options, pkg string, conf Configuration) error {
	var sections ledger.Options
	if err := opts.ReadOptions("conf", &sections); err != nil {
		return errors.Wrap(err, "genesis conf")
	}
	if _, ok := sections[pkg]; !ok {
		return errors.ErrNotFound.Newf("genesis has no %s configuration", pkg)
	}
	if err := sections.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(err, "genesis %s configuration", pkg)
	}
	return Save(db, pkg, conf)
}
