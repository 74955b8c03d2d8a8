package redistribution

import (
	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/orm"
)

// Payout is the outcome of paying a single recipient.
type Payout struct {
	Recipient ledger.Address `json:"recipient"`
	Mode      Mode           `json:"mode"`
	// Owed is the part of the pool allocated to the recipient, in fee
	// tokens.
	Owed amount.Amount `json:"owed"`
	// Delivered is what the recipient received. It is denominated in the
	// fee token for direct recipients and in the base asset otherwise.
	Delivered amount.Amount `json:"delivered"`
	// Error is empty when the payout succeeded.
	Error string `json:"error,omitempty"`
}

// Failed returns true if the payout was rolled back.
func (p Payout) Failed() bool {
	return p.Error != ""
}

// Run is the result of a single release.
type Run struct {
	ID string `json:"id"`
	// Time is the UNIX time of the release.
	Time  int64         `json:"time"`
	Gross amount.Amount `json:"gross"`
	// Distributed is the sum owed to recipients that were paid.
	Distributed amount.Amount `json:"distributed"`
	Payouts     []Payout      `json:"payouts"`
	Failures    uint32        `json:"failures"`
}

var _ orm.Model = (*Run)(nil)

func (r *Run) Validate() error {
	if r.ID == "" {
		return errors.Wrap(errors.ErrInvalidModel, "missing run id")
	}
	if r.Gross.Cmp(r.Distributed) < 0 {
		return errors.Wrap(errors.ErrInvalidModel, "distributed more than the gross")
	}
	return nil
}

var (
	runs      = orm.NewBucket("redist_run")
	lastRunID = []byte("last")
)
