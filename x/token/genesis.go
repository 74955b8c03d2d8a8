package token

import (
	"strings"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/gconf"
)

// GenesisAccount is used to parse the json from genesis file
// use ledger.Address, so address in hex, not base64
type GenesisAccount struct {
	Address ledger.Address `json:"address"`
	Balance amount.Amount  `json:"balance"`
}

// Initializer fulfils the ledger.Initializer interface to load the token
// configuration and initial balances from the genesis file.
//
// Configuration is read from opts["conf"]["token:<TICKER>"] and balances
// from opts["<ticker>"].
type Initializer struct {
	Ledger *Ledger
}

var _ ledger.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (i Initializer) FromGenesis(opts ledger.Options, db ledger.KVStore) error {
	l := i.Ledger
	if err := gconf.InitConfig(db, opts, l.ConfigPackage(), &Configuration{}); err != nil {
		return errors.Wrapf(err, "init %s", l.ticker)
	}

	var accts []GenesisAccount
	if err := opts.ReadOptions(strings.ToLower(l.ticker), &accts); err != nil {
		return err
	}
	for n, a := range accts {
		if err := a.Address.Validate(); err != nil {
			return errors.Wrapf(err, "%s genesis account %d", l.ticker, n)
		}
		if err := l.issue(db, a.Address, a.Balance); err != nil {
			return errors.Wrapf(err, "%s genesis account %d", l.ticker, n)
		}
	}
	return nil
}
