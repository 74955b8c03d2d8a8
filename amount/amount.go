package amount

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/alium-swap/ledger/errors"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

const (
	// Decimals is the number of fractional digits of a whole token unit.
	Decimals = 18

	// BpsDenominator is the value of 100% expressed in basis points.
	BpsDenominator = 10000
)

var (
	unit    = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(Decimals))
	bpsBase = uint256.NewInt(BpsDenominator)
)

// Amount is an unsigned 256 bit integer counting the smallest indivisible
// units of a token. One whole token is 10^Decimals units.
//
// Amount is a value type. All arithmetic returns a new value and never
// modifies the receiver.
type Amount struct {
	v uint256.Int
}

// Zero returns an amount of no value.
func Zero() Amount {
	return Amount{}
}

// New returns an amount of given base units.
func New(units uint64) Amount {
	var a Amount
	a.v.SetUint64(units)
	return a
}

// Tokens returns an amount of given whole tokens.
//   Tokens(2) == 2 * 10^18 units
func Tokens(n uint64) Amount {
	var a Amount
	a.v.Mul(uint256.NewInt(n), unit)
	return a
}

// Unit returns a single whole token.
func Unit() Amount {
	return Tokens(1)
}

// Max returns the largest representable amount. An allowance of Max is never
// decremented.
func Max() Amount {
	var a Amount
	a.v.SetAllOne()
	return a
}

// FromBig converts a big integer. Negative values and values that do not fit
// in 256 bits are rejected.
func FromBig(b *big.Int) (Amount, error) {
	if b == nil {
		return Zero(), nil
	}
	if b.Sign() < 0 {
		return Zero(), errors.ErrInvalidAmount.Newf("negative value %s", b)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return Zero(), errors.Wrapf(errors.ErrOverflow, "%s", b)
	}
	return Amount{v: *v}, nil
}

// Big returns this amount as a big integer.
func (a Amount) Big() *big.Int {
	return a.v.ToBig()
}

// Uint64 returns the value if it fits in 64 bits.
func (a Amount) Uint64() (uint64, bool) {
	return a.v.Uint64(), a.v.IsUint64()
}

// Add returns a + b or ErrOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	var res Amount
	if _, overflow := res.v.AddOverflow(&a.v, &b.v); overflow {
		return Zero(), errors.Wrapf(errors.ErrOverflow, "%s + %s", a, b)
	}
	return res, nil
}

// Sub returns a - b. Subtracting more than a holds is an ErrOverflow.
func (a Amount) Sub(b Amount) (Amount, error) {
	var res Amount
	if _, underflow := res.v.SubOverflow(&a.v, &b.v); underflow {
		return Zero(), errors.Wrapf(errors.ErrOverflow, "%s - %s", a, b)
	}
	return res, nil
}

// Mul returns a * b or ErrOverflow.
func (a Amount) Mul(b Amount) (Amount, error) {
	var res Amount
	if _, overflow := res.v.MulOverflow(&a.v, &b.v); overflow {
		return Zero(), errors.Wrapf(errors.ErrOverflow, "%s * %s", a, b)
	}
	return res, nil
}

// MulUint64 returns a * n or ErrOverflow.
func (a Amount) MulUint64(n uint64) (Amount, error) {
	return a.Mul(New(n))
}

// MulDiv returns floor(a * num / den). The intermediate product is computed
// with 512 bit precision so only the final result may overflow.
func (a Amount) MulDiv(num, den Amount) (Amount, error) {
	if den.IsZero() {
		return Zero(), errors.ErrInvalidAmount.New("division by zero")
	}
	var res Amount
	if _, overflow := res.v.MulDivOverflow(&a.v, &num.v, &den.v); overflow {
		return Zero(), errors.Wrapf(errors.ErrOverflow, "%s * %s / %s", a, num, den)
	}
	return res, nil
}

// MulBps returns floor(a * bps / 10000). For bps not greater than 10000 the
// result is never greater than a.
func (a Amount) MulBps(bps uint32) Amount {
	var res Amount
	// A product of a 256 bit value and a 32 bit value divided by 10000
	// cannot overflow as long as bps <= 10000.
	res.v.MulDivOverflow(&a.v, uint256.NewInt(uint64(bps)), bpsBase)
	return res
}

// Div returns floor(a / n).
func (a Amount) Div(n uint64) (Amount, error) {
	if n == 0 {
		return Zero(), errors.ErrInvalidAmount.New("division by zero")
	}
	var res Amount
	res.v.Div(&a.v, uint256.NewInt(n))
	return res, nil
}

// Cmp returns 1 if a is greater than b, -1 if a is smaller than b and 0 if
// both are equal.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// Equals returns true if both amounts hold the same value.
func (a Amount) Equals(b Amount) bool {
	return a.v.Eq(&b.v)
}

// IsGTE returns true if a is at least as large as b.
func (a Amount) IsGTE(b Amount) bool {
	return a.v.Cmp(&b.v) >= 0
}

// IsZero returns true if the amount has no value.
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// IsMax returns true if the amount equals Max().
func (a Amount) IsMax() bool {
	m := Max()
	return a.v.Eq(&m.v)
}

// String returns the amount as decimal integer of base units.
func (a Amount) String() string {
	return a.v.Dec()
}

// Format returns the amount in whole tokens, with trailing zeros of the
// fractional part removed.
//   Tokens(3).Format() == "3"
//   New(1500000000000000000).Format() == "1.5"
func (a Amount) Format() string {
	return decimal.NewFromBigInt(a.v.ToBig(), -Decimals).String()
}

// Parse reads a human readable token value, for example "1.5", into base
// units. At most Decimals fractional digits are accepted.
func Parse(human string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(human))
	if err != nil {
		return Zero(), errors.Wrapf(errors.ErrInvalidAmount, "parse %q: %s", human, err)
	}
	if d.IsNegative() {
		return Zero(), errors.ErrInvalidAmount.Newf("negative value %q", human)
	}
	units := d.Shift(Decimals)
	if !units.Equal(units.Truncate(0)) {
		return Zero(), errors.ErrInvalidAmount.Newf("more than %d decimals in %q", Decimals, human)
	}
	return FromBig(units.BigInt())
}

// ParseUnits reads a decimal integer of base units.
func ParseUnits(s string) (Amount, error) {
	v, err := uint256.FromDecimal(strings.TrimSpace(s))
	if err != nil {
		return Zero(), errors.Wrapf(errors.ErrInvalidAmount, "parse %q: %s", s, err)
	}
	return Amount{v: *v}, nil
}

// MustParseUnits is like ParseUnits but panics on error. Use it for
// constants and in tests.
func MustParseUnits(s string) Amount {
	a, err := ParseUnits(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Bytes returns a 32 byte big endian representation.
func (a Amount) Bytes() []byte {
	b := a.v.Bytes32()
	return b[:]
}

// FromBytes decodes a big endian representation of at most 32 bytes.
func FromBytes(raw []byte) (Amount, error) {
	if len(raw) > 32 {
		return Zero(), errors.ErrInvalidAmount.Newf("%d bytes value", len(raw))
	}
	var a Amount
	a.v.SetBytes(raw)
	return a, nil
}

// MarshalAmino represents the amount as 32 bytes in the binary encoding.
func (a Amount) MarshalAmino() ([]byte, error) {
	return a.Bytes(), nil
}

func (a *Amount) UnmarshalAmino(raw []byte) error {
	v, err := FromBytes(raw)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalJSON encodes the amount as a string of base units, so that values
// above 2^53 survive JavaScript clients.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a string of base units, a number of base units or a
// string with a "tokens" suffix, for example "1.5 tokens".
func (a *Amount) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return errors.Wrap(errors.ErrInvalidAmount, "cannot decode json")
		}
		s = n.String()
	}

	var (
		v   Amount
		err error
	)
	if human := strings.TrimSuffix(strings.TrimSpace(s), "tokens"); human != strings.TrimSpace(s) {
		v, err = Parse(human)
	} else {
		v, err = ParseUnits(s)
	}
	if err != nil {
		return err
	}
	*a = v
	return nil
}
