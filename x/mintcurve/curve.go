package mintcurve

import (
	"context"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/gconf"
	"github.com/alium-swap/ledger/orm"
	"github.com/alium-swap/ledger/x/token"
)

// Curve sells units of the derivative token for the payment token.
type Curve struct {
	payment    *token.Ledger
	derivative *token.Ledger
	addr       ledger.Address
	minted     orm.Counter
}

// NewCurve returns a curve selling derivative for payment. The curve
// address must be the admin of the derivative token.
func NewCurve(payment, derivative *token.Ledger) *Curve {
	return &Curve{
		payment:    payment,
		derivative: derivative,
		addr:       Address(derivative.Ticker()),
		minted:     orm.NewCounter("mintcurve", "minted"),
	}
}

// Address returns the account of the curve selling given derivative token.
// Buyers approve it to collect the payment.
func Address(ticker string) ledger.Address {
	return ledger.NewCondition("mint", "curve", []byte(ticker)).Address()
}

// Address returns the account of the curve.
func (c *Curve) Address() ledger.Address {
	return c.addr
}

// Config returns the current configuration.
func (c *Curve) Config(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, confPkg, &conf); err != nil {
		return conf, errors.Wrap(err, "load mintcurve configuration")
	}
	return conf, nil
}

// SetConfig validates and stores the configuration.
func (c *Curve) SetConfig(db gconf.Store, conf Configuration) error {
	return gconf.Save(db, confPkg, &conf)
}

// MintedCount returns the number of units minted so far.
func (c *Curve) MintedCount(db ledger.ReadOnlyKVStore) (uint64, error) {
	return c.minted.Value(db)
}

// BalanceOf returns the derivative token balance of an account.
func (c *Curve) BalanceOf(db ledger.ReadOnlyKVStore, a ledger.Address) (amount.Amount, error) {
	return c.derivative.BalanceOf(db, a)
}

// CountMintPrice returns the payment required to mint count units now.
func (c *Curve) CountMintPrice(db ledger.ReadOnlyKVStore, count uint64) (amount.Amount, error) {
	conf, err := c.Config(db)
	if err != nil {
		return amount.Zero(), err
	}
	minted, err := c.MintedCount(db)
	if err != nil {
		return amount.Zero(), err
	}
	return Price(conf, minted, count)
}

// Price returns the payment required to mint count units when minted units
// were already sold.
func Price(conf Configuration, minted, count uint64) (amount.Amount, error) {
	if count == 0 {
		return amount.Zero(), errors.ErrInvalidAmount.New("count must be greater than zero")
	}
	n := amount.New(count)

	base, err := conf.BasePrice.MulUint64(count)
	if err != nil {
		return amount.Zero(), err
	}
	// n*m + n*(n-1)/2 units of reward
	steps, err := n.MulUint64(minted)
	if err != nil {
		return amount.Zero(), err
	}
	triangle, err := n.MulUint64(count - 1)
	if err != nil {
		return amount.Zero(), err
	}
	triangle, err = triangle.Div(2)
	if err != nil {
		return amount.Zero(), err
	}
	steps, err = steps.Add(triangle)
	if err != nil {
		return amount.Zero(), err
	}
	reward, err := conf.RewardUnit.Mul(steps)
	if err != nil {
		return amount.Zero(), err
	}
	return base.Add(reward)
}

// Mint sells count units to the caller. The caller must have approved the
// curve account to transfer the price in payment tokens. The price is
// transferred to the treasury and count whole derivative tokens are minted
// to the caller.
func (c *Curve) Mint(ctx context.Context, db ledger.CacheableKVStore, caller ledger.Address, count uint64) (amount.Amount, error) {
	var price amount.Amount
	err := ledger.Atomic(ctx, db, func(ctx context.Context, db ledger.KVCacheWrap) error {
		conf, err := c.Config(db)
		if err != nil {
			return err
		}
		minted, err := c.MintedCount(db)
		if err != nil {
			return err
		}
		price, err = Price(conf, minted, count)
		if err != nil {
			return err
		}
		units, err := amount.Unit().MulUint64(count)
		if err != nil {
			return err
		}

		if _, err := c.minted.Add(db, count); err != nil {
			return err
		}
		if _, err := c.payment.TransferFrom(ctx, db, c.addr, caller, conf.Treasury, price); err != nil {
			return errors.Wrap(err, "collect payment")
		}
		if err := c.derivative.Mint(ctx, db, c.addr, caller, units); err != nil {
			return errors.Wrap(err, "mint")
		}
		ledger.Emit(ctx, MintEvent{To: caller, Count: count, Price: price})
		ledger.GetLogger(ctx).Info("units minted",
			"module", "mintcurve",
			"to", caller,
			"count", count,
			"price", price)
		return nil
	})
	observe(count, err)
	if err != nil {
		return amount.Zero(), err
	}
	return price, nil
}

// Burn destroys derivative tokens of the caller. The payment is not
// refunded.
func (c *Curve) Burn(ctx context.Context, db ledger.CacheableKVStore, caller ledger.Address, amt amount.Amount) error {
	return c.derivative.Burn(ctx, db, caller, amt)
}
