/*
Package app wires all extensions together over a single committed store.

Every operation of App is serialized with an exclusive lock and executed on
a cache wrap of the committed store. The changes are written only if the
operation succeeds.

Receiver hooks that call back into the ledger must use the extension API with
the store they were given. Calling App from a hook deadlocks.
*/
package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/x/exchange"
	"github.com/alium-swap/ledger/x/mintcurve"
	"github.com/alium-swap/ledger/x/redistribution"
	"github.com/alium-swap/ledger/x/token"
	"github.com/jonboulle/clockwork"
	"github.com/tendermint/tendermint/libs/log"
)

// Tickers of the assets managed by the app.
const (
	FeeTicker        = "ALM"
	BaseTicker       = "BASE"
	DerivativeTicker = "SALM"
)

// App holds all extensions and the committed store.
type App struct {
	mu     sync.RWMutex
	db     ledger.CacheableKVStore
	logger log.Logger
	sink   ledger.EventSink
	clock  clockwork.Clock

	ALM           *token.Ledger
	Base          *token.Ledger
	SALM          *token.Ledger
	Router        *exchange.Router
	Redistributor *redistribution.Redistributor
	Curve         *mintcurve.Curve
}

// Option configures the App.
type Option func(*App)

// WithLogger sets the logger passed to all extensions.
func WithLogger(logger log.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// WithEventSink sets where events of successful operations are published.
func WithEventSink(sink ledger.EventSink) Option {
	return func(a *App) { a.sink = sink }
}

// WithClock sets the clock used for swap deadlines and scheduling.
func WithClock(clock clockwork.Clock) Option {
	return func(a *App) { a.clock = clock }
}

// New returns an app working on given committed store.
func New(db ledger.CacheableKVStore, opts ...Option) *App {
	a := &App{
		db:     db,
		logger: log.NewNopLogger(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.ALM = token.NewLedger(FeeTicker)
	a.Base = token.NewLedger(BaseTicker)
	a.SALM = token.NewLedger(DerivativeTicker)
	a.Router = exchange.NewRouter(a.ALM, a.Base, a.clock)
	a.Redistributor = redistribution.NewRedistributor(a.ALM, a.Base, a.Router, a.clock)
	a.Curve = mintcurve.NewCurve(a.ALM, a.SALM)
	return a
}

// Token returns the ledger of the token with given ticker.
func (a *App) Token(ticker string) (*token.Ledger, error) {
	switch strings.ToUpper(ticker) {
	case FeeTicker:
		return a.ALM, nil
	case BaseTicker:
		return a.Base, nil
	case DerivativeTicker:
		return a.SALM, nil
	default:
		return nil, errors.Wrapf(errors.ErrNotFound, "token %q", ticker)
	}
}

// Initializer returns the initializer of all extensions, in the order they
// depend on each other.
func (a *App) Initializer() ledger.Initializer {
	return ledger.ChainInitializers(
		token.Initializer{Ledger: a.ALM},
		token.Initializer{Ledger: a.Base},
		token.Initializer{Ledger: a.SALM},
		exchange.Initializer{Router: a.Router},
		redistribution.Initializer{},
		mintcurve.Initializer{},
	)
}

// InitChain loads the genesis. It fails if a genesis was already loaded.
func (a *App) InitChain(ctx context.Context, gen *Genesis) error {
	return a.Update(ctx, func(ctx context.Context, db ledger.KVCacheWrap) error {
		if err := saveChainID(db, gen.ChainID); err != nil {
			return err
		}
		if err := a.Initializer().FromGenesis(gen.AppState, db); err != nil {
			return errors.Wrap(err, "genesis")
		}
		ledger.GetLogger(ctx).Info("genesis loaded", "chain_id", gen.ChainID)
		return nil
	})
}

// ChainID returns the chain id of the loaded genesis, or an empty string.
func (a *App) ChainID() (string, error) {
	var id string
	err := a.View(func(db ledger.ReadOnlyKVStore) error {
		var err error
		id, err = loadChainID(db)
		return err
	})
	return id, err
}

// Update executes fn with an exclusive access to the store. Changes are
// written only if fn succeeds.
func (a *App) Update(ctx context.Context, fn func(context.Context, ledger.KVCacheWrap) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ledger.Atomic(a.context(ctx), a.db, fn)
}

// View executes fn with a read access to the store.
func (a *App) View(fn func(ledger.ReadOnlyKVStore) error) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return fn(a.db)
}

func (a *App) context(ctx context.Context) context.Context {
	ctx = ledger.WithLogger(ctx, a.logger)
	if a.sink != nil {
		ctx = ledger.WithEventSink(ctx, a.sink)
	}
	return ctx
}

// Release releases the redistribution pool.
//
// Payout failures do not fail the release. They are part of the returned
// run.
func (a *App) Release(ctx context.Context) (*redistribution.Run, error) {
	var run *redistribution.Run
	err := a.Update(ctx, func(ctx context.Context, db ledger.KVCacheWrap) error {
		var err error
		run, err = a.Redistributor.Release(ctx, db)
		return err
	})
	return run, err
}

// NewScheduler returns a scheduler releasing the pool every interval.
func (a *App) NewScheduler(interval time.Duration) (*redistribution.Scheduler, error) {
	return redistribution.NewScheduler(redistribution.SchedulerConfig{
		Interval: interval,
		Release:  a.Release,
		Logger:   a.logger,
		Clock:    a.clock,
	})
}
