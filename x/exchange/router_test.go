package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/ledgertest"
	"github.com/alium-swap/ledger/ledgertest/assert"
	"github.com/alium-swap/ledger/x/token"
	"github.com/jonboulle/clockwork"
)

type market struct {
	tok      *token.Ledger
	base     *token.Ledger
	router   *Router
	clock    *clockwork.FakeClock
	db       ledger.CacheableKVStore
	ctx      context.Context
	rec      *ledgertest.EventRecorder
	admin    ledger.Address
	provider ledger.Address
}

// newMarket returns a market with 1000 fee tokens and 100 base tokens of
// liquidity. The fee token charges 5% dev and 5% burn fee.
func newMarket(t testing.TB) *market {
	t.Helper()
	m := &market{
		tok:      token.NewLedger("ALM"),
		base:     token.NewLedger("BASE"),
		clock:    clockwork.NewFakeClockAt(time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)),
		db:       ledgertest.Store(),
		rec:      &ledgertest.EventRecorder{},
		admin:    ledgertest.NewAddress(),
		provider: ledgertest.NewAddress(),
	}
	m.ctx = ledger.WithEventSink(context.Background(), m.rec)
	m.router = NewRouter(m.tok, m.base, m.clock)

	assert.Nil(t, m.tok.SetConfig(m.db, token.Configuration{
		Admin:       m.admin,
		DevAccount:  ledgertest.NewAddress(),
		DevFeeBps:   500,
		BurnFeeBps:  500,
		FeesEnabled: true,
		Exempt:      []ledger.Address{m.provider},
	}))
	assert.Nil(t, m.base.SetConfig(m.db, token.Configuration{Admin: m.admin}))
	assert.Nil(t, m.router.SetConfig(m.db, Configuration{FeeBps: DefaultFeeBps}))

	assert.Nil(t, m.tok.Mint(m.ctx, m.db, m.admin, m.provider, amount.Tokens(1000)))
	assert.Nil(t, m.base.Mint(m.ctx, m.db, m.admin, m.provider, amount.Tokens(100)))
	assert.Nil(t, m.router.AddLiquidity(m.ctx, m.db, m.provider, amount.Tokens(1000), amount.Tokens(100)))
	return m
}

func (m *market) fund(t testing.TB, to ledger.Address, amt amount.Amount) {
	t.Helper()
	assert.Nil(t, m.tok.Mint(m.ctx, m.db, m.admin, to, amt))
	assert.Nil(t, m.tok.Approve(m.ctx, m.db, to, m.router.Address(), amt))
}

func TestAmountOut(t *testing.T) {
	cases := map[string]struct {
		in, reserveIn, reserveOut amount.Amount
		feeBps                    uint32
		want                      amount.Amount
		wantErr                   *errors.Error
	}{
		"with swap fee": {
			in: amount.New(1000), reserveIn: amount.New(10000), reserveOut: amount.New(10000),
			feeBps: 30,
			want:   amount.New(906),
		},
		"without swap fee": {
			in: amount.New(1000), reserveIn: amount.New(10000), reserveOut: amount.New(10000),
			want: amount.New(909),
		},
		"zero input": {
			in: amount.Zero(), reserveIn: amount.New(10000), reserveOut: amount.New(10000),
			wantErr: errors.ErrInvalidAmount,
		},
		"empty pool": {
			in: amount.New(1000), reserveIn: amount.Zero(), reserveOut: amount.New(10000),
			wantErr: errors.ErrSwap,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := amountOut(tc.in, tc.reserveIn, tc.reserveOut, tc.feeBps)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSwapMeasuresReceivedAmount(t *testing.T) {
	m := newMarket(t)
	seller, recipient := ledgertest.NewAddress(), ledgertest.NewAddress()
	m.fund(t, seller, amount.Tokens(10))

	// 10% of the input is charged by the token itself.
	received := amount.Tokens(9)
	want, err := amountOut(received, amount.Tokens(1000), amount.Tokens(100), DefaultFeeBps)
	assert.Nil(t, err)

	naive, err := m.router.GetAmountOut(m.db, amount.Tokens(10))
	assert.Nil(t, err)
	if naive.Cmp(want) <= 0 {
		t.Fatalf("quote %s must be above the real output %s", naive, want)
	}

	deadline := m.clock.Now().Add(time.Minute)
	got, err := m.router.SwapExactTokensForBase(m.ctx, m.db, seller, amount.Tokens(10), want, recipient, deadline)
	assert.Nil(t, err)
	assert.Equal(t, want, got)

	bal, err := m.base.BalanceOf(m.db, recipient)
	assert.Nil(t, err)
	assert.Equal(t, want, bal)

	tokenReserve, baseReserve, err := m.router.Reserves(m.db)
	assert.Nil(t, err)
	assert.Equal(t, amount.Tokens(1009), tokenReserve)
	wantBase, err := amount.Tokens(100).Sub(want)
	assert.Nil(t, err)
	assert.Equal(t, wantBase, baseReserve)

	swaps := m.rec.Named(EventSwap)
	assert.Equal(t, 1, len(swaps))
	assert.Equal(t, SwapEvent{Sender: seller, To: recipient, AmountIn: received, AmountOut: want}, swaps[0])
}

func TestFailedSwapHasNoEffect(t *testing.T) {
	cases := map[string]struct {
		amountIn amount.Amount
		minOut   amount.Amount
		deadline time.Duration
		advance  time.Duration
		wantErr  *errors.Error
	}{
		"deadline passed": {
			amountIn: amount.Tokens(10),
			minOut:   amount.Zero(),
			deadline: time.Minute,
			advance:  2 * time.Minute,
			wantErr:  errors.ErrExpired,
		},
		"output below minimum": {
			amountIn: amount.Tokens(10),
			minOut:   amount.Tokens(1),
			deadline: time.Minute,
			wantErr:  errors.ErrSlippage,
		},
		"allowance too small": {
			amountIn: amount.Tokens(11),
			minOut:   amount.Zero(),
			deadline: time.Minute,
			wantErr:  errors.ErrInsufficientAllowance,
		},
		"output rounds to zero": {
			amountIn: amount.New(10),
			minOut:   amount.Zero(),
			deadline: time.Minute,
			wantErr:  errors.ErrSwap,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			m := newMarket(t)
			seller := ledgertest.NewAddress()
			m.fund(t, seller, amount.Tokens(10))
			m.rec.Reset()

			deadline := m.clock.Now().Add(tc.deadline)
			m.clock.Advance(tc.advance)

			_, err := m.router.SwapExactTokensForBase(m.ctx, m.db, seller, tc.amountIn, tc.minOut, seller, deadline)
			assert.IsErr(t, tc.wantErr, err)

			bal, err := m.tok.BalanceOf(m.db, seller)
			assert.Nil(t, err)
			assert.Equal(t, amount.Tokens(10), bal)
			allowance, err := m.tok.Allowance(m.db, seller, m.router.Address())
			assert.Nil(t, err)
			assert.Equal(t, amount.Tokens(10), allowance)
			tokenReserve, baseReserve, err := m.router.Reserves(m.db)
			assert.Nil(t, err)
			assert.Equal(t, amount.Tokens(1000), tokenReserve)
			assert.Equal(t, amount.Tokens(100), baseReserve)
			assert.Equal(t, 0, len(m.rec.Events()))
		})
	}
}

func TestConfigurationValidation(t *testing.T) {
	assert.Nil(t, (&Configuration{FeeBps: 9999}).Validate())
	assert.FieldError(t, (&Configuration{FeeBps: 10000}).Validate(), "FeeBps", errors.ErrInvalidModel)
}
