package exchange

import (
	"context"
	"time"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/gconf"
	"github.com/alium-swap/ledger/x/token"
	"github.com/jonboulle/clockwork"
)

// Router trades the fee token for the base asset.
type Router struct {
	tok   *token.Ledger
	base  *token.Ledger
	clock clockwork.Clock
	pair  ledger.Address
}

// NewRouter returns a router of a pair of given tokens. Deadlines are
// checked against the clock.
func NewRouter(tok, base *token.Ledger, clock clockwork.Clock) *Router {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Router{
		tok:   tok,
		base:  base,
		clock: clock,
		pair:  PairAddress(tok.Ticker(), base.Ticker()),
	}
}

// PairAddress returns the account holding the reserves of a pair.
func PairAddress(tokenTicker, baseTicker string) ledger.Address {
	return ledger.NewCondition("exchange", "pair", []byte(tokenTicker+"-"+baseTicker)).Address()
}

// Address returns the pair account. It holds the reserves and it is the
// spender that must be approved before swapping.
func (r *Router) Address() ledger.Address {
	return r.pair
}

// Reserves returns the amount of fee token and base asset held by the pair.
func (r *Router) Reserves(db ledger.ReadOnlyKVStore) (tokenReserve, baseReserve amount.Amount, err error) {
	tokenReserve, err = r.tok.BalanceOf(db, r.pair)
	if err != nil {
		return
	}
	baseReserve, err = r.base.BalanceOf(db, r.pair)
	return
}

// GetAmountOut returns the amount of base asset a swap of amountIn fee
// tokens would produce, if the pair received the whole input.
func (r *Router) GetAmountOut(db ledger.ReadOnlyKVStore, amountIn amount.Amount) (amount.Amount, error) {
	conf, err := r.Config(db)
	if err != nil {
		return amount.Zero(), err
	}
	tokenReserve, baseReserve, err := r.Reserves(db)
	if err != nil {
		return amount.Zero(), err
	}
	return amountOut(amountIn, tokenReserve, baseReserve, conf.FeeBps)
}

// amountOut implements the constant product formula:
//   in' = in * (10000 - fee)
//   out = in' * reserveOut / (reserveIn * 10000 + in')
func amountOut(in, reserveIn, reserveOut amount.Amount, feeBps uint32) (amount.Amount, error) {
	if in.IsZero() {
		return amount.Zero(), errors.ErrInvalidAmount.New("zero input")
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return amount.Zero(), errors.Wrap(errors.ErrSwap, "insufficient liquidity")
	}
	inWithFee, err := in.MulUint64(uint64(amount.BpsDenominator - feeBps))
	if err != nil {
		return amount.Zero(), err
	}
	scaledReserve, err := reserveIn.MulUint64(amount.BpsDenominator)
	if err != nil {
		return amount.Zero(), err
	}
	den, err := scaledReserve.Add(inWithFee)
	if err != nil {
		return amount.Zero(), err
	}
	return inWithFee.MulDiv(reserveOut, den)
}

// SwapExactTokensForBase sells exactly amountIn fee tokens of the sender and
// sends the bought base asset to the recipient. The sender must have
// approved the pair account to spend amountIn.
//
// The swap fails with ErrExpired if executed after the deadline and with
// ErrSlippage if the output is lower than amountOutMin. A failed swap has
// no effect.
func (r *Router) SwapExactTokensForBase(
	ctx context.Context,
	db ledger.CacheableKVStore,
	sender ledger.Address,
	amountIn, amountOutMin amount.Amount,
	to ledger.Address,
	deadline time.Time,
) (amount.Amount, error) {
	var out amount.Amount
	err := ledger.Atomic(ctx, db, func(ctx context.Context, db ledger.KVCacheWrap) error {
		if now := r.clock.Now(); now.After(deadline) {
			return errors.Wrapf(errors.ErrExpired, "deadline %s passed at %s", deadline.UTC().Format(time.RFC3339), now.UTC().Format(time.RFC3339))
		}
		conf, err := r.Config(db)
		if err != nil {
			return err
		}
		tokenReserve, baseReserve, err := r.Reserves(db)
		if err != nil {
			return err
		}

		if _, err := r.tok.TransferFrom(ctx, db, r.pair, sender, r.pair, amountIn); err != nil {
			return errors.Wrap(err, "collect input")
		}
		// Fee on transfer tokens deliver less than amountIn.
		balance, err := r.tok.BalanceOf(db, r.pair)
		if err != nil {
			return err
		}
		received, err := balance.Sub(tokenReserve)
		if err != nil {
			return err
		}

		out, err = amountOut(received, tokenReserve, baseReserve, conf.FeeBps)
		if err != nil {
			return err
		}
		if !out.IsGTE(amountOutMin) {
			return errors.Wrapf(errors.ErrSlippage, "output %s, minimum %s", out, amountOutMin)
		}
		if out.IsZero() {
			return errors.Wrap(errors.ErrSwap, "insufficient output amount")
		}
		if _, err := r.base.Transfer(ctx, db, r.pair, to, out); err != nil {
			return errors.Wrap(err, "deliver output")
		}
		ledger.Emit(ctx, SwapEvent{Sender: sender, To: to, AmountIn: received, AmountOut: out})
		ledger.GetLogger(ctx).Debug("swap",
			"sender", sender,
			"to", to,
			"amount_in", received,
			"amount_out", out)
		return nil
	})
	observeSwap(err)
	if err != nil {
		return amount.Zero(), err
	}
	return out, nil
}

// AddLiquidity deposits both assets of the provider into the pair.
func (r *Router) AddLiquidity(ctx context.Context, db ledger.CacheableKVStore, provider ledger.Address, tokenAmt, baseAmt amount.Amount) error {
	return ledger.Atomic(ctx, db, func(ctx context.Context, db ledger.KVCacheWrap) error {
		if _, err := r.tok.Transfer(ctx, db, provider, r.pair, tokenAmt); err != nil {
			return errors.Wrap(err, "deposit token")
		}
		if _, err := r.base.Transfer(ctx, db, provider, r.pair, baseAmt); err != nil {
			return errors.Wrap(err, "deposit base")
		}
		ledger.Emit(ctx, LiquidityEvent{Provider: provider, Token: tokenAmt, Base: baseAmt})
		return nil
	})
}

// Config returns the current market configuration.
func (r *Router) Config(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, confPkg, &conf); err != nil {
		return conf, errors.Wrap(err, "load exchange configuration")
	}
	return conf, nil
}

// SetConfig validates and stores the market configuration.
func (r *Router) SetConfig(db gconf.Store, conf Configuration) error {
	return gconf.Save(db, confPkg, &conf)
}
