package redistribution

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/gconf"
	"github.com/alium-swap/ledger/orm"
	"github.com/alium-swap/ledger/x/token"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Router sells the fee token for the base asset.
type Router interface {
	// Address is the spender that must be approved to pull the input.
	Address() ledger.Address
	// GetAmountOut quotes a swap of amountIn tokens that reach the router.
	GetAmountOut(db ledger.ReadOnlyKVStore, amountIn amount.Amount) (amount.Amount, error)
	SwapExactTokensForBase(ctx context.Context, db ledger.CacheableKVStore, sender ledger.Address, amountIn, amountOutMin amount.Amount, to ledger.Address, deadline time.Time) (amount.Amount, error)
}

// PoolAddress returns the account that collects the fee tokens of given
// ticker.
func PoolAddress(ticker string) ledger.Address {
	return ledger.NewCondition("redist", "pool", []byte(ticker)).Address()
}

// Redistributor releases the pool to the configured recipients.
type Redistributor struct {
	tok    *token.Ledger
	base   *token.Ledger
	router Router
	clock  clockwork.Clock
	pool   ledger.Address

	errorsCounter orm.Counter
	// releasing is set while a release is in progress.
	releasing int32
}

// NewRedistributor returns a redistributor of the tok pool. SwapToBase
// recipients are paid in base bought through the router.
func NewRedistributor(tok, base *token.Ledger, router Router, clock clockwork.Clock) *Redistributor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Redistributor{
		tok:           tok,
		base:          base,
		router:        router,
		clock:         clock,
		pool:          PoolAddress(tok.Ticker()),
		errorsCounter: orm.NewCounter("redist", "errors"),
	}
}

// Pool returns the address of the redistribution pool.
func (r *Redistributor) Pool() ledger.Address {
	return r.pool
}

// Config returns the current configuration.
func (r *Redistributor) Config(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, confPkg, &conf); err != nil {
		return conf, errors.Wrap(err, "load redistribution configuration")
	}
	return conf, nil
}

// SetConfig validates and stores the configuration.
func (r *Redistributor) SetConfig(db gconf.Store, conf Configuration) error {
	return gconf.Save(db, confPkg, &conf)
}

// ErrorsCounter returns the number of payouts that failed since the last
// reset.
func (r *Redistributor) ErrorsCounter(db ledger.ReadOnlyKVStore) (uint64, error) {
	return r.errorsCounter.Value(db)
}

// ResetErrorsCounter sets the errors counter back to zero. Only the admin
// may do that.
func (r *Redistributor) ResetErrorsCounter(ctx context.Context, db ledger.CacheableKVStore, caller ledger.Address) error {
	return ledger.Atomic(ctx, db, func(ctx context.Context, db ledger.KVCacheWrap) error {
		conf, err := r.Config(db)
		if err != nil {
			return err
		}
		if !conf.Admin.Equals(caller) {
			return errors.Wrapf(errors.ErrUnauthorized, "%s is not the admin", caller)
		}
		return r.errorsCounter.Reset(db)
	})
}

// LastRun returns the result of the most recent release that found funds in
// the pool. ErrNotFound is returned if there was none.
func (r *Redistributor) LastRun(db ledger.ReadOnlyKVStore) (*Run, error) {
	var run Run
	ok, err := runs.Get(db, lastRunID, &run)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrap(errors.ErrNotFound, "no release yet")
	}
	return &run, nil
}

// Release splits the whole balance of the pool between recipients.
//
// Each recipient is paid in isolation. A payout that fails is rolled back,
// the errors counter is incremented and an ErrorHandled event is published.
// The release continues with the next recipient. An error is returned only
// if the release itself cannot be executed, for example when called while
// another release is in progress. In that case nothing of the release is
// written, the payouts already made included.
func (r *Redistributor) Release(ctx context.Context, db ledger.CacheableKVStore) (*Run, error) {
	if !atomic.CompareAndSwapInt32(&r.releasing, 0, 1) {
		return nil, errors.Wrap(errors.ErrReentrancy, "release in progress")
	}
	defer atomic.StoreInt32(&r.releasing, 0)

	start := r.clock.Now()
	var run *Run
	err := ledger.Atomic(ctx, db, func(ctx context.Context, db ledger.KVCacheWrap) error {
		var err error
		run, err = r.release(ctx, db, start)
		return err
	})
	if err != nil {
		run = nil
	}
	releaseDuration.Observe(r.clock.Since(start).Seconds())
	switch {
	case err != nil:
		releasesTotal.WithLabelValues("error").Inc()
	case run.Failures > 0:
		releasesTotal.WithLabelValues("partial").Inc()
	default:
		releasesTotal.WithLabelValues("ok").Inc()
	}
	return run, err
}

func (r *Redistributor) release(ctx context.Context, db ledger.CacheableKVStore, now time.Time) (*Run, error) {
	conf, err := r.Config(db)
	if err != nil {
		return nil, err
	}
	gross, err := r.tok.BalanceOf(db, r.pool)
	if err != nil {
		return nil, errors.Wrap(err, "pool balance")
	}
	run := &Run{
		ID:          uuid.New().String(),
		Time:        now.Unix(),
		Gross:       gross,
		Distributed: amount.Zero(),
	}
	log := ledger.GetLogger(ctx).With("module", "redistribution", "run", run.ID)
	if gross.IsZero() {
		log.Debug("pool is empty")
		return run, nil
	}

	for _, rc := range conf.Recipients {
		owed := gross.MulBps(rc.ShareBps)
		if owed.IsZero() {
			continue
		}
		payout := Payout{
			Recipient: rc.Account,
			Mode:      rc.Mode,
			Owed:      owed,
			Delivered: amount.Zero(),
		}

		err := ledger.Atomic(ctx, db, func(ctx context.Context, db ledger.KVCacheWrap) error {
			delivered, err := r.pay(ctx, db, conf, rc, owed, now)
			payout.Delivered = delivered
			return err
		})
		if err != nil {
			payout.Delivered = amount.Zero()
			payout.Error = err.Error()
			run.Failures++
			if err := r.handleFailure(ctx, db, rc, err); err != nil {
				return nil, err
			}
			log.Error("payout failed",
				"recipient", rc.Account,
				"mode", rc.Mode,
				"owed", owed,
				"reason", err)
		} else {
			run.Distributed, err = run.Distributed.Add(owed)
			if err != nil {
				return nil, err
			}
		}
		run.Payouts = append(run.Payouts, payout)
	}

	if err := runs.Save(db, lastRunID, run); err != nil {
		return nil, errors.Wrap(err, "save run")
	}
	ledger.Emit(ctx, ReleasedEvent{
		Run:         run.ID,
		Gross:       run.Gross,
		Distributed: run.Distributed,
		Failures:    run.Failures,
	})
	log.Info("pool released",
		"gross", run.Gross,
		"distributed", run.Distributed,
		"failures", run.Failures)
	return run, nil
}

// pay delivers owed fee tokens of the pool to a single recipient and returns
// what the recipient received.
func (r *Redistributor) pay(ctx context.Context, db ledger.KVCacheWrap, conf Configuration, rc Recipient, owed amount.Amount, now time.Time) (amount.Amount, error) {
	switch rc.Mode {
	case Direct:
		est, err := r.tok.Transfer(ctx, db, r.pool, rc.Account, owed)
		if err != nil {
			return amount.Zero(), err
		}
		return est.AmountOut, nil
	case SwapToBase:
		out, err := r.swap(ctx, db, conf, owed, now)
		if err != nil {
			return amount.Zero(), err
		}
		if _, err := r.base.Transfer(ctx, db, r.pool, rc.Account, out); err != nil {
			return amount.Zero(), err
		}
		return out, nil
	default:
		return amount.Zero(), errors.Wrapf(errors.ErrInvalidState, "unknown mode %d", uint32(rc.Mode))
	}
}

// swap sells owed fee tokens of the pool. The base asset is received by the
// pool.
func (r *Redistributor) swap(ctx context.Context, db ledger.KVCacheWrap, conf Configuration, owed amount.Amount, now time.Time) (amount.Amount, error) {
	spender := r.router.Address()
	// The router receives what is left after the token fees.
	est, err := r.tok.EstimateOutput(db, r.pool, spender, owed)
	if err != nil {
		return amount.Zero(), err
	}
	quote, err := r.router.GetAmountOut(db, est.AmountOut)
	if err != nil {
		return amount.Zero(), errors.Wrapf(errors.ErrSwap, "quote: %s", err)
	}
	minOut := quote.MulBps(amount.BpsDenominator - conf.MaxSlippageBps)

	if err := r.tok.Approve(ctx, db, r.pool, spender, owed); err != nil {
		return amount.Zero(), err
	}
	deadline := now.Add(conf.SwapDeadline.Duration())
	out, err := r.router.SwapExactTokensForBase(ctx, db, r.pool, owed, minOut, r.pool, deadline)
	if err != nil {
		return amount.Zero(), errors.Wrapf(errors.ErrSwap, "swap: %s", err)
	}
	return out, nil
}

// handleFailure records a failed payout. It is executed outside of the
// rolled back payout.
func (r *Redistributor) handleFailure(ctx context.Context, db ledger.KVStore, rc Recipient, cause error) error {
	if _, err := r.errorsCounter.Add(db, 1); err != nil {
		return errors.Wrap(err, "errors counter")
	}
	ledger.Emit(ctx, ErrorHandledEvent{Recipient: rc.Account, Reason: cause.Error()})
	payoutFailuresTotal.WithLabelValues(rc.Mode.String(), failureReason(cause)).Inc()
	return nil
}
