package exchange

import (
	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
)

const (
	EventSwap           = "Swap"
	EventLiquidityAdded = "LiquidityAdded"
)

// SwapEvent is published for every executed swap. AmountIn is what the
// pair actually received.
type SwapEvent struct {
	Sender    ledger.Address
	To        ledger.Address
	AmountIn  amount.Amount
	AmountOut amount.Amount
}

func (SwapEvent) EventName() string { return EventSwap }

// LiquidityEvent is published when reserves are deposited.
type LiquidityEvent struct {
	Provider ledger.Address
	Token    amount.Amount
	Base     amount.Amount
}

func (LiquidityEvent) EventName() string { return EventLiquidityAdded }
