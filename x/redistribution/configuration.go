package redistribution

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
	"github.com/alium-swap/ledger/errors"
)

const confPkg = "redistribution"

// Mode defines how a recipient is paid.
type Mode uint32

const (
	// Direct recipients receive the fee token.
	Direct Mode = 0
	// SwapToBase recipients receive the base asset bought with their part.
	SwapToBase Mode = 1
)

func (m Mode) String() string {
	switch m {
	case Direct:
		return "direct"
	case SwapToBase:
		return "swap_to_base"
	default:
		return fmt.Sprintf("mode(%d)", uint32(m))
	}
}

func (m Mode) Validate() error {
	if m != Direct && m != SwapToBase {
		return errors.Wrapf(errors.ErrInvalidInput, "unknown mode %d", uint32(m))
	}
	return nil
}

func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts both the name and the numeric value of the mode.
func (m *Mode) UnmarshalJSON(raw []byte) error {
	var n uint32
	if err := json.Unmarshal(raw, &n); err == nil {
		*m = Mode(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, "mode must be a string or a number")
	}
	switch strings.ToLower(s) {
	case "direct":
		*m = Direct
	case "swap_to_base", "swap":
		*m = SwapToBase
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "unknown mode %q", s)
	}
	return nil
}

// Duration is a time span stored with a second precision.
type Duration int64

// Duration returns the standard library representation.
func (d Duration) Duration() time.Duration {
	return time.Duration(d) * time.Second
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration().String())
}

// UnmarshalJSON accepts a number of seconds or a duration string, for
// example "20m".
func (d *Duration) UnmarshalJSON(raw []byte) error {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		*d = Duration(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, "duration must be a string or a number")
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "duration %q: %s", s, err)
	}
	*d = Duration(td / time.Second)
	return nil
}

// Recipient is a single beneficiary of the redistribution.
type Recipient struct {
	Account  ledger.Address `json:"account"`
	ShareBps uint32         `json:"share_bps"`
	Mode     Mode           `json:"mode"`
}

// Configuration of the redistributor. The recipient list is set once, at
// genesis.
type Configuration struct {
	// Admin may reset the errors counter.
	Admin      ledger.Address `json:"admin"`
	Recipients []Recipient    `json:"recipients"`
	// SwapDeadline is added to the release time to compute the deadline
	// of every swap.
	SwapDeadline Duration `json:"swap_deadline"`
	// MaxSlippageBps is how much the swap output may be lower than quoted.
	MaxSlippageBps uint32 `json:"max_slippage_bps"`
}

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Admin", validAddress(c.Admin))
	if len(c.Recipients) == 0 {
		errs = errors.AppendField(errs, "Recipients", errors.ErrInvalidModel.New("at least one recipient required"))
	}

	var total uint64
	seen := make(map[string]struct{}, len(c.Recipients))
	for i, r := range c.Recipients {
		if err := validAddress(r.Account); err != nil {
			errs = errors.AppendField(errs, errors.FieldPath("Recipients", i, "Account"), err)
		} else if _, ok := seen[string(r.Account)]; ok {
			errs = errors.AppendField(errs, errors.FieldPath("Recipients", i, "Account"), errors.ErrInvalidModel.Newf("duplicated recipient %s", r.Account))
		}
		seen[string(r.Account)] = struct{}{}

		if r.ShareBps == 0 {
			errs = errors.AppendField(errs, errors.FieldPath("Recipients", i, "ShareBps"), errors.ErrInvalidModel.New("share must be greater than zero"))
		}
		total += uint64(r.ShareBps)

		if err := r.Mode.Validate(); err != nil {
			errs = errors.AppendField(errs, errors.FieldPath("Recipients", i, "Mode"), errors.ErrInvalidModel.New(err.Error()))
		}
	}
	if len(c.Recipients) > 0 && total != amount.BpsDenominator {
		errs = errors.AppendField(errs, "Recipients", errors.ErrInvalidModel.Newf("shares sum up to %d, not %d", total, amount.BpsDenominator))
	}

	if c.SwapDeadline < 0 {
		errs = errors.AppendField(errs, "SwapDeadline", errors.ErrInvalidModel.New("negative"))
	}
	if c.MaxSlippageBps > amount.BpsDenominator {
		errs = errors.AppendField(errs, "MaxSlippageBps", errors.ErrInvalidModel.Newf("%d bps", c.MaxSlippageBps))
	}
	return errs
}

func validAddress(a ledger.Address) error {
	if err := a.Validate(); err != nil {
		return errors.ErrInvalidModel.New(err.Error())
	}
	return nil
}
