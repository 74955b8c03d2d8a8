package mintcurve

import (
	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
	"github.com/alium-swap/ledger/errors"
)

const confPkg = "mintcurve"

var (
	// DefaultBasePrice is the price of the first unit.
	DefaultBasePrice = amount.Tokens(5)
	// DefaultRewardUnit is the price increase of every minted unit.
	DefaultRewardUnit = amount.Tokens(1)
)

// Configuration of the curve.
type Configuration struct {
	BasePrice  amount.Amount `json:"base_price"`
	RewardUnit amount.Amount `json:"reward_unit"`
	// Treasury receives the payment for minted units.
	Treasury ledger.Address `json:"treasury"`
}

// DefaultConfiguration returns the configuration with default prices that
// pays to given treasury.
func DefaultConfiguration(treasury ledger.Address) Configuration {
	return Configuration{
		BasePrice:  DefaultBasePrice,
		RewardUnit: DefaultRewardUnit,
		Treasury:   treasury,
	}
}

func (c *Configuration) Validate() error {
	var errs error
	if c.BasePrice.IsZero() {
		errs = errors.AppendField(errs, "BasePrice", errors.ErrInvalidModel.New("must be greater than zero"))
	}
	if err := c.Treasury.Validate(); err != nil {
		errs = errors.AppendField(errs, "Treasury", errors.ErrInvalidModel.New(err.Error()))
	}
	return errs
}
