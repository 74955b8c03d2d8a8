package app

import (
	"encoding/json"
	"os"
	"regexp"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/x/exchange"
	"github.com/alium-swap/ledger/x/mintcurve"
	"github.com/alium-swap/ledger/x/redistribution"
	"github.com/alium-swap/ledger/x/token"
)

// Genesis is the content of the genesis file.
type Genesis struct {
	ChainID  string         `json:"chain_id"`
	AppState ledger.Options `json:"app_state"`
}

// LoadGenesis reads the genesis file at given path.
func LoadGenesis(path string) (*Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "read genesis %q: %s", path, err)
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "parse genesis %q: %s", path, err)
	}
	return &gen, nil
}

// GenesisParams describe a new deployment.
type GenesisParams struct {
	ChainID string
	// Admin administers the fee token, the base asset and the
	// redistribution.
	Admin ledger.Address
	// DevAccount receives the dev fee. When not set the fee is collected by
	// the redistribution pool.
	DevAccount ledger.Address
	// Recipients of the redistribution pool.
	Recipients []redistribution.Recipient
}

// NewGenesis returns the genesis of a deployment with default fees and
// prices. The redistribution pool is exempt from fees and it is the treasury
// of the mint curve. The mint curve administers the derivative token.
func NewGenesis(p GenesisParams) (*Genesis, error) {
	pool := redistribution.PoolAddress(FeeTicker)
	if p.DevAccount == nil {
		p.DevAccount = pool
	}
	conf := map[string]interface{}{
		"token:" + FeeTicker: token.Configuration{
			Admin:       p.Admin,
			DevAccount:  p.DevAccount,
			DevFeeBps:   500,
			BurnFeeBps:  500,
			FeesEnabled: true,
			Exempt:      []ledger.Address{pool},
		},
		"token:" + BaseTicker:       token.Configuration{Admin: p.Admin},
		"token:" + DerivativeTicker: token.Configuration{Admin: mintcurve.Address(DerivativeTicker)},
		"exchange":                  exchange.Configuration{FeeBps: exchange.DefaultFeeBps},
		"redistribution": redistribution.Configuration{
			Admin:          p.Admin,
			Recipients:     p.Recipients,
			SwapDeadline:   redistribution.Duration(20 * 60),
			MaxSlippageBps: 100,
		},
		"mintcurve": mintcurve.DefaultConfiguration(pool),
	}
	raw, err := json.Marshal(conf)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "marshal configuration: %s", err)
	}
	return &Genesis{
		ChainID:  p.ChainID,
		AppState: ledger.Options{"conf": raw},
	}, nil
}

// _app: is a prefix for internal data
const chainIDKey = "_app:chainID"

var isChainID = regexp.MustCompile(`^[a-zA-Z0-9_.-]{4,128}$`).MatchString

// loadChainID returns the chain id, or an empty string if the genesis was
// not loaded yet.
func loadChainID(db ledger.ReadOnlyKVStore) (string, error) {
	v, err := db.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(db ledger.KVStore, chainID string) error {
	if !isChainID(chainID) {
		return errors.Wrapf(errors.ErrInvalidInput, "chain id: %q", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := db.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrInvalidState, "can't modify chain id after genesis init")
	}
	return db.Set(k, []byte(chainID))
}
