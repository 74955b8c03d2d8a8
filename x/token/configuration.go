package token

import (
	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
	"github.com/alium-swap/ledger/errors"
)

// Configuration is the fee and administration setup of a single token.
type Configuration struct {
	// Admin is allowed to mint and to toggle fees.
	Admin ledger.Address `json:"admin"`
	// DevAccount receives the dev fee share of every transfer. Required
	// if DevFeeBps is not zero.
	DevAccount ledger.Address `json:"dev_account"`
	DevFeeBps  uint32         `json:"dev_fee_bps"`
	BurnFeeBps uint32         `json:"burn_fee_bps"`
	// FeesEnabled toggles fee collection without changing the rates.
	FeesEnabled bool `json:"fees_enabled"`
	// Exempt addresses send and receive without paying fees.
	Exempt []ledger.Address `json:"exempt"`
}

// Validate returns all problems of the configuration as field errors.
func (c *Configuration) Validate() error {
	var errs error
	if err := c.Admin.Validate(); err != nil {
		errs = errors.Append(errs, errors.Field("Admin", errors.ErrInvalidModel, "%s", err))
	}
	switch {
	case c.DevFeeBps > amount.BpsDenominator:
		errs = errors.AppendField(errs, "DevFeeBps",
			errors.ErrInvalidModel.Newf("%d bps exceeds 100%%", c.DevFeeBps))
	case c.BurnFeeBps > amount.BpsDenominator:
		errs = errors.AppendField(errs, "BurnFeeBps",
			errors.ErrInvalidModel.Newf("%d bps exceeds 100%%", c.BurnFeeBps))
	case c.DevFeeBps+c.BurnFeeBps > amount.BpsDenominator:
		errs = errors.AppendField(errs, "BurnFeeBps",
			errors.ErrInvalidModel.New("total fee exceeds 100%"))
	}
	switch {
	case c.DevAccount.IsZero() && c.DevFeeBps > 0:
		errs = errors.AppendField(errs, "DevAccount",
			errors.ErrInvalidModel.New("required when dev fee is set"))
	case !c.DevAccount.IsZero():
		if err := c.DevAccount.Validate(); err != nil {
			errs = errors.Append(errs, errors.Field("DevAccount", errors.ErrInvalidModel, "%s", err))
		}
	}
	for i, a := range c.Exempt {
		if err := a.Validate(); err != nil {
			errs = errors.Append(errs, errors.Field(errors.FieldPath("Exempt", i), errors.ErrInvalidModel, "%s", err))
		}
	}
	return errs
}

func (c *Configuration) isExempt(a ledger.Address) bool {
	for _, e := range c.Exempt {
		if e.Equals(a) {
			return true
		}
	}
	return false
}

// Estimate is the outcome of a transfer.
type Estimate struct {
	// AmountOut is the net amount credited to the recipient.
	AmountOut amount.Amount `json:"amount_out"`
	// Excluded is the sum of all fees.
	Excluded amount.Amount `json:"excluded"`
	DevFee   amount.Amount `json:"dev_fee"`
	BurnFee  amount.Amount `json:"burn_fee"`
}

// split applies the fee formula to a transfer of amt from one address to
// another. It never fails because the fee rates are validated to not exceed
// 100% in total.
func (c *Configuration) split(from, to ledger.Address, amt amount.Amount) Estimate {
	if !c.FeesEnabled || c.isExempt(from) || c.isExempt(to) {
		return Estimate{AmountOut: amt, Excluded: amount.Zero(), DevFee: amount.Zero(), BurnFee: amount.Zero()}
	}
	dev := amt.MulBps(c.DevFeeBps)
	burn := amt.MulBps(c.BurnFeeBps)
	excluded, err := dev.Add(burn)
	if err != nil {
		panic(err)
	}
	out, err := amt.Sub(excluded)
	if err != nil {
		panic(err)
	}
	return Estimate{AmountOut: out, Excluded: excluded, DevFee: dev, BurnFee: burn}
}
