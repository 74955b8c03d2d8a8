package exchange

import (
	"github.com/alium-swap/ledger/amount"
	"github.com/alium-swap/ledger/errors"
)

const confPkg = "exchange"

// DefaultFeeBps is the swap fee of 0.3%.
const DefaultFeeBps = 30

// Configuration of the market.
type Configuration struct {
	// FeeBps is the part of every swap input that stays in the pool.
	FeeBps uint32 `json:"fee_bps"`
}

// Validate ensures the swap fee is below 100%.
func (c *Configuration) Validate() error {
	if c.FeeBps >= amount.BpsDenominator {
		return errors.Field("FeeBps", errors.ErrInvalidModel, "%d bps fee leaves nothing to swap", c.FeeBps)
	}
	return nil
}
