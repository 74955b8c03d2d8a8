package mintcurve

import (
	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
)

const EventMint = "Mint"

// MintEvent is published when units of the derivative token are sold.
type MintEvent struct {
	To    ledger.Address
	Count uint64
	Price amount.Amount
}

func (MintEvent) EventName() string { return EventMint }
