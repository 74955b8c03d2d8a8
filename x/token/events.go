package token

import (
	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
)

// Names of all events published by the token ledger.
const (
	EventTransfer = "Transfer"
	EventApproval = "Approval"
	EventBurn     = "Burn"
)

// TransferEvent is published for every balance movement. Minting is a
// transfer from the zero address, destroying tokens is a transfer to the
// zero address.
type TransferEvent struct {
	Token  string
	From   ledger.Address
	To     ledger.Address
	Amount amount.Amount
}

func (TransferEvent) EventName() string { return EventTransfer }

// ApprovalEvent is published when an owner sets the allowance of a spender.
type ApprovalEvent struct {
	Token   string
	Owner   ledger.Address
	Spender ledger.Address
	Amount  amount.Amount
}

func (ApprovalEvent) EventName() string { return EventApproval }

// BurnEvent is published when an account destroys its own tokens.
type BurnEvent struct {
	Token   string
	Account ledger.Address
	Amount  amount.Amount
}

func (BurnEvent) EventName() string { return EventBurn }
