package redistribution

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/ledgertest"
	"github.com/alium-swap/ledger/ledgertest/assert"
	"github.com/alium-swap/ledger/x/exchange"
	"github.com/alium-swap/ledger/x/token"
	"github.com/jonboulle/clockwork"
)

type fixture struct {
	alm    *token.Ledger
	base   *token.Ledger
	router *exchange.Router
	redist *Redistributor
	db     ledger.CacheableKVStore
	ctx    context.Context
	rec    *ledgertest.EventRecorder
	admin  ledger.Address
}

// newFixture returns a redistributor of an ALM pool with given recipients.
// ALM charges 5% dev and 5% burn fee, the pool is exempt. The exchange holds
// 1e12 units of both assets.
func newFixture(t testing.TB, router Router, recipients ...Recipient) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC))
	f := &fixture{
		alm:   token.NewLedger("ALM"),
		base:  token.NewLedger("BASE"),
		db:    ledgertest.Store(),
		rec:   &ledgertest.EventRecorder{},
		admin: ledgertest.NewAddress(),
	}
	f.ctx = ledger.WithEventSink(context.Background(), f.rec)
	f.router = exchange.NewRouter(f.alm, f.base, clock)
	if router == nil {
		router = f.router
	}
	f.redist = NewRedistributor(f.alm, f.base, router, clock)

	provider := ledgertest.NewAddress()
	assert.Nil(t, f.alm.SetConfig(f.db, token.Configuration{
		Admin:       f.admin,
		DevAccount:  ledgertest.NewAddress(),
		DevFeeBps:   500,
		BurnFeeBps:  500,
		FeesEnabled: true,
		Exempt:      []ledger.Address{f.redist.Pool(), provider},
	}))
	assert.Nil(t, f.base.SetConfig(f.db, token.Configuration{Admin: f.admin}))
	assert.Nil(t, f.router.SetConfig(f.db, exchange.Configuration{FeeBps: exchange.DefaultFeeBps}))
	assert.Nil(t, f.redist.SetConfig(f.db, Configuration{
		Admin:          f.admin,
		Recipients:     recipients,
		SwapDeadline:   Duration(20 * 60),
		MaxSlippageBps: 100,
	}))

	assert.Nil(t, f.alm.Mint(f.ctx, f.db, f.admin, provider, amount.New(1000000000000)))
	assert.Nil(t, f.base.Mint(f.ctx, f.db, f.admin, provider, amount.New(1000000000000)))
	assert.Nil(t, f.router.AddLiquidity(f.ctx, f.db, provider, amount.New(1000000000000), amount.New(1000000000000)))
	f.rec.Reset()
	return f
}

func (f *fixture) fillPool(t testing.TB, amt amount.Amount) {
	t.Helper()
	assert.Nil(t, f.alm.Mint(f.ctx, f.db, f.admin, f.redist.Pool(), amt))
}

func (f *fixture) balance(t testing.TB, l *token.Ledger, a ledger.Address) amount.Amount {
	t.Helper()
	bal, err := l.BalanceOf(f.db, a)
	assert.Nil(t, err)
	return bal
}

func (f *fixture) errorsCounter(t testing.TB) uint64 {
	t.Helper()
	n, err := f.redist.ErrorsCounter(f.db)
	assert.Nil(t, err)
	return n
}

func TestReleaseDirectAndSwap(t *testing.T) {
	staker, holders := ledgertest.NewAddress(), ledgertest.NewAddress()
	f := newFixture(t, nil,
		Recipient{Account: staker, ShareBps: 5000, Mode: Direct},
		Recipient{Account: holders, ShareBps: 5000, Mode: SwapToBase},
	)
	f.fillPool(t, amount.New(100000))

	run, err := f.redist.Release(f.ctx, f.db)
	assert.Nil(t, err)

	assert.Equal(t, uint64(0), f.errorsCounter(t))
	assert.Equal(t, amount.New(50000), f.balance(t, f.alm, staker))
	assert.Equal(t, amount.New(49849), f.balance(t, f.base, holders))
	assert.Equal(t, amount.Zero(), f.balance(t, f.alm, f.redist.Pool()))
	assert.Equal(t, amount.Zero(), f.balance(t, f.base, f.redist.Pool()))

	assert.Equal(t, amount.New(100000), run.Gross)
	assert.Equal(t, amount.New(100000), run.Distributed)
	assert.Equal(t, uint32(0), run.Failures)
	assert.Equal(t, 2, len(run.Payouts))
	assert.Equal(t, amount.New(49849), run.Payouts[1].Delivered)
	assert.Equal(t, 0, len(f.rec.Named(EventErrorHandled)))
	assert.Equal(t, 1, len(f.rec.Named(exchange.EventSwap)))

	last, err := f.redist.LastRun(f.db)
	assert.Nil(t, err)
	assert.Equal(t, run, last)
}

func TestReleaseIsolatesFailingRecipient(t *testing.T) {
	alice, broken, holders := ledgertest.NewAddress(), ledgertest.NewAddress(), ledgertest.NewAddress()
	f := newFixture(t, nil,
		Recipient{Account: alice, ShareBps: 3000, Mode: Direct},
		Recipient{Account: broken, ShareBps: 3000, Mode: Direct},
		Recipient{Account: holders, ShareBps: 4000, Mode: SwapToBase},
	)
	f.alm.RegisterReceiver(broken, token.ReceiverFunc(func(context.Context, ledger.CacheableKVStore, string, ledger.Address, amount.Amount) error {
		return errors.ErrInvalidState.New("not accepting payments")
	}))
	f.fillPool(t, amount.New(100000))

	run, err := f.redist.Release(f.ctx, f.db)
	assert.Nil(t, err)

	assert.Equal(t, uint64(1), f.errorsCounter(t))
	assert.Equal(t, uint32(1), run.Failures)
	assert.Equal(t, amount.New(70000), run.Distributed)
	assert.Equal(t, true, run.Payouts[1].Failed())
	assert.Equal(t, amount.New(30000), f.balance(t, f.alm, alice))
	assert.Equal(t, amount.Zero(), f.balance(t, f.alm, broken))
	assert.Equal(t, amount.New(39879), f.balance(t, f.base, holders))
	// What the failed recipient was owed stays in the pool.
	assert.Equal(t, amount.New(30000), f.balance(t, f.alm, f.redist.Pool()))

	handled := f.rec.Named(EventErrorHandled)
	assert.Equal(t, 1, len(handled))
	assert.Equal(t, broken, handled[0].(ErrorHandledEvent).Recipient)

	// The next release splits what is left in the pool.
	run, err = f.redist.Release(f.ctx, f.db)
	assert.Nil(t, err)
	assert.Equal(t, amount.New(30000), run.Gross)
	assert.Equal(t, uint64(2), f.errorsCounter(t))
	assert.Equal(t, amount.New(39000), f.balance(t, f.alm, alice))
	assert.Equal(t, amount.New(9000), f.balance(t, f.alm, f.redist.Pool()))
}

func TestReleaseLeavesDustInPool(t *testing.T) {
	a, b, c := ledgertest.NewAddress(), ledgertest.NewAddress(), ledgertest.NewAddress()
	f := newFixture(t, nil,
		Recipient{Account: a, ShareBps: 3333, Mode: Direct},
		Recipient{Account: b, ShareBps: 3333, Mode: Direct},
		Recipient{Account: c, ShareBps: 3334, Mode: Direct},
	)
	f.fillPool(t, amount.New(10001))

	run, err := f.redist.Release(f.ctx, f.db)
	assert.Nil(t, err)
	assert.Equal(t, amount.New(10000), run.Distributed)
	assert.Equal(t, amount.New(3333), f.balance(t, f.alm, a))
	assert.Equal(t, amount.New(3333), f.balance(t, f.alm, b))
	assert.Equal(t, amount.New(3334), f.balance(t, f.alm, c))
	assert.Equal(t, amount.New(1), f.balance(t, f.alm, f.redist.Pool()))
}

func TestReleaseEmptyPool(t *testing.T) {
	f := newFixture(t, nil, Recipient{Account: ledgertest.NewAddress(), ShareBps: 10000, Mode: Direct})

	run, err := f.redist.Release(f.ctx, f.db)
	assert.Nil(t, err)
	assert.Equal(t, amount.Zero(), run.Gross)
	assert.Equal(t, 0, len(run.Payouts))
	assert.Equal(t, 0, len(f.rec.Events()))

	_, err = f.redist.LastRun(f.db)
	assert.IsErr(t, errors.ErrNotFound, err)
}

type failingRouter struct {
	addr ledger.Address
	err  error
}

func (r failingRouter) Address() ledger.Address { return r.addr }

func (r failingRouter) GetAmountOut(ledger.ReadOnlyKVStore, amount.Amount) (amount.Amount, error) {
	return amount.New(1000), nil
}

func (r failingRouter) SwapExactTokensForBase(context.Context, ledger.CacheableKVStore, ledger.Address, amount.Amount, amount.Amount, ledger.Address, time.Time) (amount.Amount, error) {
	return amount.Zero(), r.err
}

func TestReleaseSwapFailure(t *testing.T) {
	cases := map[string]struct {
		swapErr error
	}{
		"deadline passed": {swapErr: errors.Wrap(errors.ErrExpired, "too late")},
		"output too low":  {swapErr: errors.Wrap(errors.ErrSlippage, "price moved")},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			router := failingRouter{addr: ledgertest.NewAddress(), err: tc.swapErr}
			staker, holders := ledgertest.NewAddress(), ledgertest.NewAddress()
			f := newFixture(t, router,
				Recipient{Account: staker, ShareBps: 5000, Mode: Direct},
				Recipient{Account: holders, ShareBps: 5000, Mode: SwapToBase},
			)
			f.fillPool(t, amount.New(100000))

			run, err := f.redist.Release(f.ctx, f.db)
			assert.Nil(t, err)
			assert.Equal(t, uint32(1), run.Failures)
			assert.Equal(t, uint64(1), f.errorsCounter(t))
			assert.Equal(t, amount.New(50000), f.balance(t, f.alm, staker))
			assert.Equal(t, amount.New(50000), f.balance(t, f.alm, f.redist.Pool()))

			// The approval of the failed swap was rolled back.
			allowance, err := f.alm.Allowance(f.db, f.redist.Pool(), router.Address())
			assert.Nil(t, err)
			assert.Equal(t, amount.Zero(), allowance)
			assert.Equal(t, 0, len(f.rec.Named(token.EventApproval)))
		})
	}
}

func TestReleaseIsNotReentrant(t *testing.T) {
	attacker, other := ledgertest.NewAddress(), ledgertest.NewAddress()
	f := newFixture(t, nil,
		Recipient{Account: attacker, ShareBps: 5000, Mode: Direct},
		Recipient{Account: other, ShareBps: 5000, Mode: Direct},
	)
	var reentered error
	f.alm.RegisterReceiver(attacker, token.ReceiverFunc(func(ctx context.Context, db ledger.CacheableKVStore, _ string, _ ledger.Address, _ amount.Amount) error {
		_, reentered = f.redist.Release(ctx, db)
		return reentered
	}))
	f.fillPool(t, amount.New(1000))

	run, err := f.redist.Release(f.ctx, f.db)
	assert.Nil(t, err)
	assert.IsErr(t, errors.ErrReentrancy, reentered)
	assert.Equal(t, uint32(1), run.Failures)
	assert.Equal(t, amount.Zero(), f.balance(t, f.alm, attacker))
	assert.Equal(t, amount.New(500), f.balance(t, f.alm, other))
	assert.Equal(t, amount.New(500), f.balance(t, f.alm, f.redist.Pool()))
}

func TestResetErrorsCounter(t *testing.T) {
	broken := ledgertest.NewAddress()
	f := newFixture(t, nil, Recipient{Account: broken, ShareBps: 10000, Mode: Direct})
	f.alm.RegisterReceiver(broken, token.ReceiverFunc(func(context.Context, ledger.CacheableKVStore, string, ledger.Address, amount.Amount) error {
		return errors.ErrInvalidState.New("closed")
	}))
	f.fillPool(t, amount.New(1000))
	_, err := f.redist.Release(f.ctx, f.db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), f.errorsCounter(t))

	err = f.redist.ResetErrorsCounter(f.ctx, f.db, ledgertest.NewAddress())
	assert.IsErr(t, errors.ErrUnauthorized, err)
	assert.Equal(t, uint64(1), f.errorsCounter(t))

	assert.Nil(t, f.redist.ResetErrorsCounter(f.ctx, f.db, f.admin))
	assert.Equal(t, uint64(0), f.errorsCounter(t))
}

func TestReleaseFailureKeepsPoolUntouched(t *testing.T) {
	staker := ledgertest.NewAddress()
	f := newFixture(t, nil, Recipient{Account: staker, ShareBps: 10000, Mode: Direct})
	f.fillPool(t, amount.New(1000))
	f.rec.Reset()

	_, err := f.redist.Release(f.ctx, runRecordFails{f.db})
	assert.IsErr(t, errors.ErrDatabase, err)
	assert.Equal(t, amount.Zero(), f.balance(t, f.alm, staker))
	assert.Equal(t, amount.New(1000), f.balance(t, f.alm, f.redist.Pool()))
	assert.Equal(t, 0, len(f.rec.Named(EventReleased)))
	assert.Equal(t, 0, len(f.rec.Named(token.EventTransfer)))

	_, err = f.redist.LastRun(f.db)
	assert.IsErr(t, errors.ErrNotFound, err)
}

// runRecordFails rejects every write of a release record, at any cache
// level.
type runRecordFails struct {
	ledger.CacheableKVStore
}

func (s runRecordFails) Set(key, value []byte) error {
	if bytes.HasPrefix(key, []byte("redist_run:")) {
		return errors.ErrDatabase.New("disk full")
	}
	return s.CacheableKVStore.Set(key, value)
}

func (s runRecordFails) CacheWrap() ledger.KVCacheWrap {
	return runRecordWrapFails{s.CacheableKVStore.CacheWrap()}
}

type runRecordWrapFails struct {
	ledger.KVCacheWrap
}

func (w runRecordWrapFails) Set(key, value []byte) error {
	return runRecordFails{w.KVCacheWrap}.Set(key, value)
}

func (w runRecordWrapFails) CacheWrap() ledger.KVCacheWrap {
	return runRecordWrapFails{w.KVCacheWrap.CacheWrap()}
}
