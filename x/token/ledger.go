package token

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/gconf"
	"github.com/alium-swap/ledger/orm"
)

// IsTicker is the RegExp to ensure valid token tickers
var IsTicker = regexp.MustCompile(`^[A-Z]{3,5}$`).MatchString

var supplyKey = []byte("total")

// Receiver is notified when tokens are credited to the address it was
// registered for.
//
// OnReceive is called after the balances were updated, within the same
// atomic operation. Returning an error rejects the payment and reverts the
// whole transfer. The receiver may use db to call back into the ledger.
type Receiver interface {
	OnReceive(ctx context.Context, db ledger.CacheableKVStore, token string, from ledger.Address, amt amount.Amount) error
}

// ReceiverFunc adapts a function to the Receiver interface.
type ReceiverFunc func(ctx context.Context, db ledger.CacheableKVStore, token string, from ledger.Address, amt amount.Amount) error

func (fn ReceiverFunc) OnReceive(ctx context.Context, db ledger.CacheableKVStore, token string, from ledger.Address, amt amount.Amount) error {
	return fn(ctx, db, token, from, amt)
}

// Ledger keeps balances, allowances and the total supply of a single token.
type Ledger struct {
	ticker     string
	balances   orm.Bucket
	allowances orm.Bucket
	supply     orm.Bucket

	mu        sync.RWMutex
	receivers map[string]Receiver
}

// NewLedger returns a ledger of the token with given ticker. It panics if
// the ticker is not valid.
func NewLedger(ticker string) *Ledger {
	if !IsTicker(ticker) {
		panic(fmt.Sprintf("invalid ticker: %q", ticker))
	}
	prefix := strings.ToLower(ticker)
	return &Ledger{
		ticker:     ticker,
		balances:   orm.NewBucket(prefix + "_bal"),
		allowances: orm.NewBucket(prefix + "_alw"),
		supply:     orm.NewBucket(prefix + "_sup"),
		receivers:  make(map[string]Receiver),
	}
}

// Ticker returns the ticker of the token.
func (l *Ledger) Ticker() string {
	return l.ticker
}

// ConfigPackage is the name under which the configuration is stored.
func (l *Ledger) ConfigPackage() string {
	return "token:" + l.ticker
}

// Config returns the current configuration.
func (l *Ledger) Config(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, l.ConfigPackage(), &conf); err != nil {
		return conf, errors.Wrapf(err, "load %s configuration", l.ticker)
	}
	return conf, nil
}

// SetConfig validates and stores the configuration.
func (l *Ledger) SetConfig(db gconf.Store, conf Configuration) error {
	return gconf.Save(db, l.ConfigPackage(), &conf)
}

// RegisterReceiver installs a hook called for every payment to addr. Only
// one receiver per address is kept, registering another one replaces it. A
// nil receiver removes the hook.
func (l *Ledger) RegisterReceiver(addr ledger.Address, r Receiver) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r == nil {
		delete(l.receivers, addr.String())
		return
	}
	l.receivers[addr.String()] = r
}

func (l *Ledger) receiver(addr ledger.Address) Receiver {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.receivers[addr.String()]
}

// BalanceOf returns the balance of an account. Unknown accounts hold zero.
func (l *Ledger) BalanceOf(db ledger.ReadOnlyKVStore, a ledger.Address) (amount.Amount, error) {
	raw, err := l.balances.GetRaw(db, a)
	if err != nil {
		return amount.Zero(), err
	}
	return amount.FromBytes(raw)
}

// TotalSupply returns the amount of all tokens in existence.
func (l *Ledger) TotalSupply(db ledger.ReadOnlyKVStore) (amount.Amount, error) {
	raw, err := l.supply.GetRaw(db, supplyKey)
	if err != nil {
		return amount.Zero(), err
	}
	return amount.FromBytes(raw)
}

// Allowance returns how much spender may still transfer on behalf of owner.
func (l *Ledger) Allowance(db ledger.ReadOnlyKVStore, owner, spender ledger.Address) (amount.Amount, error) {
	raw, err := l.allowances.GetRaw(db, allowanceKey(owner, spender))
	if err != nil {
		return amount.Zero(), err
	}
	return amount.FromBytes(raw)
}

// IterateBalances calls fn for every account holding a non zero balance, in
// ascending address order.
func (l *Ledger) IterateBalances(db ledger.ReadOnlyKVStore, fn func(ledger.Address, amount.Amount) error) error {
	return l.balances.Iterate(db, func(key, value []byte) error {
		bal, err := amount.FromBytes(value)
		if err != nil {
			return err
		}
		return fn(ledger.Address(key).Clone(), bal)
	})
}

// EstimateOutput returns what a transfer of amt from one address to another
// would produce under the current configuration, without changing any
// state. Balances are not checked.
func (l *Ledger) EstimateOutput(db ledger.ReadOnlyKVStore, from, to ledger.Address, amt amount.Amount) (Estimate, error) {
	conf, err := l.Config(db)
	if err != nil {
		return Estimate{}, err
	}
	return conf.split(from, to, amt), nil
}

// Transfer moves amt from one account to another, charging the configured
// fees. The returned estimate describes how the amount was split.
func (l *Ledger) Transfer(ctx context.Context, db ledger.CacheableKVStore, from, to ledger.Address, amt amount.Amount) (Estimate, error) {
	var est Estimate
	err := ledger.Atomic(ctx, db, func(ctx context.Context, db ledger.KVCacheWrap) error {
		var err error
		est, err = l.move(ctx, db, from, to, amt)
		return err
	})
	observe(l.ticker, "transfer", err)
	if err != nil {
		return Estimate{}, err
	}
	return est, nil
}

// TransferFrom moves amt from one account to another on behalf of the
// spender. The allowance that the owner granted to the spender is reduced
// by amt, unless it is unlimited.
func (l *Ledger) TransferFrom(ctx context.Context, db ledger.CacheableKVStore, spender, from, to ledger.Address, amt amount.Amount) (Estimate, error) {
	var est Estimate
	err := ledger.Atomic(ctx, db, func(ctx context.Context, db ledger.KVCacheWrap) error {
		if err := l.spendAllowance(db, from, spender, amt); err != nil {
			return err
		}
		var err error
		est, err = l.move(ctx, db, from, to, amt)
		return err
	})
	observe(l.ticker, "transfer_from", err)
	if err != nil {
		return Estimate{}, err
	}
	return est, nil
}

// Approve sets the amount that spender may transfer on behalf of owner. Use
// amount.Max() for an allowance that is never reduced.
func (l *Ledger) Approve(ctx context.Context, db ledger.CacheableKVStore, owner, spender ledger.Address, amt amount.Amount) error {
	err := ledger.Atomic(ctx, db, func(ctx context.Context, db ledger.KVCacheWrap) error {
		if err := owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
		if err := spender.Validate(); err != nil {
			return errors.Wrap(err, "spender")
		}
		if err := l.setAllowance(db, owner, spender, amt); err != nil {
			return err
		}
		ledger.Emit(ctx, ApprovalEvent{Token: l.ticker, Owner: owner, Spender: spender, Amount: amt})
		return nil
	})
	observe(l.ticker, "approve", err)
	return err
}

// Mint creates amt new tokens and credits them to an account. Only the
// admin can mint.
func (l *Ledger) Mint(ctx context.Context, db ledger.CacheableKVStore, caller, to ledger.Address, amt amount.Amount) error {
	err := ledger.Atomic(ctx, db, func(ctx context.Context, db ledger.KVCacheWrap) error {
		if err := l.requireAdmin(db, caller); err != nil {
			return err
		}
		if err := to.Validate(); err != nil {
			return errors.Wrap(err, "recipient")
		}
		if err := l.issue(db, to, amt); err != nil {
			return err
		}
		ledger.Emit(ctx, TransferEvent{Token: l.ticker, From: nil, To: to, Amount: amt})
		ledger.GetLogger(ctx).Info("mint", "token", l.ticker, "to", to, "amount", amt)
		return nil
	})
	observe(l.ticker, "mint", err)
	return err
}

// Burn destroys amt tokens of the caller.
func (l *Ledger) Burn(ctx context.Context, db ledger.CacheableKVStore, caller ledger.Address, amt amount.Amount) error {
	err := ledger.Atomic(ctx, db, func(ctx context.Context, db ledger.KVCacheWrap) error {
		if err := l.debit(db, caller, amt); err != nil {
			return err
		}
		if err := l.reduceSupply(db, amt); err != nil {
			return err
		}
		ledger.Emit(ctx,
			BurnEvent{Token: l.ticker, Account: caller, Amount: amt},
			TransferEvent{Token: l.ticker, From: caller, To: nil, Amount: amt},
		)
		return nil
	})
	observe(l.ticker, "burn", err)
	return err
}

// EnableAllFees turns fee collection on. Only the admin can do this.
func (l *Ledger) EnableAllFees(ctx context.Context, db ledger.CacheableKVStore, caller ledger.Address) error {
	return l.toggleFees(ctx, db, caller, true)
}

// DisableAllFees turns fee collection off, so that transfers move the full
// amount. Only the admin can do this.
func (l *Ledger) DisableAllFees(ctx context.Context, db ledger.CacheableKVStore, caller ledger.Address) error {
	return l.toggleFees(ctx, db, caller, false)
}

func (l *Ledger) toggleFees(ctx context.Context, db ledger.CacheableKVStore, caller ledger.Address, enabled bool) error {
	err := ledger.Atomic(ctx, db, func(ctx context.Context, db ledger.KVCacheWrap) error {
		conf, err := l.Config(db)
		if err != nil {
			return err
		}
		if !caller.Equals(conf.Admin) {
			return errors.Wrapf(errors.ErrUnauthorized, "%s is not the %s admin", caller, l.ticker)
		}
		conf.FeesEnabled = enabled
		if err := l.SetConfig(db, conf); err != nil {
			return err
		}
		ledger.GetLogger(ctx).Info("fees toggled", "token", l.ticker, "enabled", enabled)
		return nil
	})
	observe(l.ticker, "toggle_fees", err)
	return err
}

// move applies a single fee charging transfer. Balances are updated before
// the receiver hook of the recipient is called.
func (l *Ledger) move(ctx context.Context, db ledger.KVCacheWrap, from, to ledger.Address, amt amount.Amount) (Estimate, error) {
	if err := from.Validate(); err != nil {
		return Estimate{}, errors.Wrap(err, "sender")
	}
	if err := to.Validate(); err != nil {
		return Estimate{}, errors.Wrap(err, "recipient")
	}
	conf, err := l.Config(db)
	if err != nil {
		return Estimate{}, err
	}
	est := conf.split(from, to, amt)

	if err := l.debit(db, from, amt); err != nil {
		return Estimate{}, err
	}
	if err := l.credit(db, to, est.AmountOut); err != nil {
		return Estimate{}, err
	}
	events := []ledger.Event{
		TransferEvent{Token: l.ticker, From: from, To: to, Amount: est.AmountOut},
	}
	if !est.DevFee.IsZero() {
		if err := l.credit(db, conf.DevAccount, est.DevFee); err != nil {
			return Estimate{}, err
		}
		events = append(events, TransferEvent{Token: l.ticker, From: from, To: conf.DevAccount, Amount: est.DevFee})
		feesChargedTotal.WithLabelValues(l.ticker, "dev").Inc()
	}
	if !est.BurnFee.IsZero() {
		if err := l.reduceSupply(db, est.BurnFee); err != nil {
			return Estimate{}, err
		}
		events = append(events, TransferEvent{Token: l.ticker, From: from, To: nil, Amount: est.BurnFee})
		feesChargedTotal.WithLabelValues(l.ticker, "burn").Inc()
	}
	ledger.Emit(ctx, events...)
	ledger.GetLogger(ctx).Debug("transfer",
		"token", l.ticker,
		"from", from,
		"to", to,
		"amount", amt,
		"net", est.AmountOut,
		"dev_fee", est.DevFee,
		"burn_fee", est.BurnFee)

	if r := l.receiver(to); r != nil {
		if err := r.OnReceive(ctx, db, l.ticker, from, est.AmountOut); err != nil {
			return Estimate{}, errors.Wrapf(errors.ErrRecipient, "%s rejected %s %s: %s", to, est.AmountOut, l.ticker, err)
		}
	}
	return est, nil
}

func (l *Ledger) requireAdmin(db ledger.ReadOnlyKVStore, caller ledger.Address) error {
	conf, err := l.Config(db)
	if err != nil {
		return err
	}
	if !caller.Equals(conf.Admin) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not the %s admin", caller, l.ticker)
	}
	return nil
}

func (l *Ledger) debit(db ledger.KVStore, a ledger.Address, amt amount.Amount) error {
	bal, err := l.BalanceOf(db, a)
	if err != nil {
		return err
	}
	if !bal.IsGTE(amt) {
		return errors.Wrapf(errors.ErrInsufficientBalance, "%s holds %s %s, needs %s", a, bal, l.ticker, amt)
	}
	rest, err := bal.Sub(amt)
	if err != nil {
		return err
	}
	return l.setBalance(db, a, rest)
}

func (l *Ledger) credit(db ledger.KVStore, a ledger.Address, amt amount.Amount) error {
	bal, err := l.BalanceOf(db, a)
	if err != nil {
		return err
	}
	total, err := bal.Add(amt)
	if err != nil {
		return err
	}
	return l.setBalance(db, a, total)
}

func (l *Ledger) setBalance(db ledger.KVStore, a ledger.Address, bal amount.Amount) error {
	if bal.IsZero() {
		return l.balances.Delete(db, a)
	}
	return l.balances.SetRaw(db, a, bal.Bytes())
}

// issue credits newly created tokens and increases the supply.
func (l *Ledger) issue(db ledger.KVStore, to ledger.Address, amt amount.Amount) error {
	supply, err := l.TotalSupply(db)
	if err != nil {
		return err
	}
	supply, err = supply.Add(amt)
	if err != nil {
		return errors.Wrap(err, "total supply")
	}
	if err := l.supply.SetRaw(db, supplyKey, supply.Bytes()); err != nil {
		return err
	}
	return l.credit(db, to, amt)
}

func (l *Ledger) reduceSupply(db ledger.KVStore, amt amount.Amount) error {
	supply, err := l.TotalSupply(db)
	if err != nil {
		return err
	}
	supply, err = supply.Sub(amt)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidState, "burn exceeds total supply")
	}
	return l.supply.SetRaw(db, supplyKey, supply.Bytes())
}

func (l *Ledger) setAllowance(db ledger.KVStore, owner, spender ledger.Address, amt amount.Amount) error {
	key := allowanceKey(owner, spender)
	if amt.IsZero() {
		return l.allowances.Delete(db, key)
	}
	return l.allowances.SetRaw(db, key, amt.Bytes())
}

func (l *Ledger) spendAllowance(db ledger.KVStore, owner, spender ledger.Address, amt amount.Amount) error {
	allowed, err := l.Allowance(db, owner, spender)
	if err != nil {
		return err
	}
	if allowed.IsMax() {
		return nil
	}
	if !allowed.IsGTE(amt) {
		return errors.Wrapf(errors.ErrInsufficientAllowance, "%s may spend %s %s of %s, needs %s", spender, allowed, l.ticker, owner, amt)
	}
	rest, err := allowed.Sub(amt)
	if err != nil {
		return err
	}
	return l.setAllowance(db, owner, spender, rest)
}

// allowanceKey is owner followed by spender. Both addresses are of fixed
// length so the key is unambiguous.
func allowanceKey(owner, spender ledger.Address) []byte {
	key := make([]byte, 0, len(owner)+len(spender))
	key = append(key, owner...)
	return append(key, spender...)
}
