package redistribution

import (
	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/gconf"
)

// Initializer loads the configuration from
// opts["conf"]["redistribution"].
type Initializer struct{}

var _ ledger.Initializer = Initializer{}

func (i Initializer) FromGenesis(opts ledger.Options, db ledger.KVStore) error {
	if err := gconf.InitConfig(db, opts, confPkg, &Configuration{}); err != nil {
		return errors.Wrap(err, "init redistribution")
	}
	return nil
}
