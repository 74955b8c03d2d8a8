package exchange

import (
	"context"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/gconf"
)

// GenesisLiquidity describes the reserves deposited at genesis. The provider
// must hold both amounts.
type GenesisLiquidity struct {
	Provider ledger.Address `json:"provider"`
	Token    amount.Amount  `json:"token"`
	Base     amount.Amount  `json:"base"`
}

// Initializer loads the market configuration from opts["conf"]["exchange"]
// and deposits the optional initial liquidity from opts["exchange"].
//
// It must run after the token balances were loaded.
type Initializer struct {
	Router *Router
}

var _ ledger.Initializer = Initializer{}

func (i Initializer) FromGenesis(opts ledger.Options, db ledger.KVStore) error {
	if err := gconf.InitConfig(db, opts, confPkg, &Configuration{}); err != nil {
		return errors.Wrap(err, "init exchange")
	}

	var liq *GenesisLiquidity
	if err := opts.ReadOptions(confPkg, &liq); err != nil {
		return err
	}
	if liq == nil {
		return nil
	}
	if err := liq.Provider.Validate(); err != nil {
		return errors.Wrap(err, "liquidity provider")
	}
	cdb, ok := db.(ledger.CacheableKVStore)
	if !ok {
		return errors.Wrap(errors.ErrDatabase, "genesis store cannot be cache wrapped")
	}
	return i.Router.AddLiquidity(context.Background(), cdb, liq.Provider, liq.Token, liq.Base)
}
