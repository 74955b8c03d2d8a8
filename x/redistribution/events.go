package redistribution

import (
	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
)

const (
	EventErrorHandled = "ErrorHandled"
	EventReleased     = "Released"
)

// ErrorHandledEvent is published for every payout that failed and was rolled
// back.
type ErrorHandledEvent struct {
	Recipient ledger.Address
	Reason    string
}

func (ErrorHandledEvent) EventName() string { return EventErrorHandled }

// ReleasedEvent is published at the end of every release that found funds
// in the pool.
type ReleasedEvent struct {
	Run         string
	Gross       amount.Amount
	Distributed amount.Amount
	Failures    uint32
}

func (ReleasedEvent) EventName() string { return EventReleased }
