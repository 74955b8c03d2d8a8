package amount

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/ledgertest/assert"
)

func TestArithmetic(t *testing.T) {
	cases := map[string]struct {
		fn      func() (Amount, error)
		want    Amount
		wantErr *errors.Error
	}{
		"add": {
			fn:   func() (Amount, error) { return New(7).Add(New(5)) },
			want: New(12),
		},
		"add overflow": {
			fn:      func() (Amount, error) { return Max().Add(New(1)) },
			wantErr: errors.ErrOverflow,
		},
		"sub": {
			fn:   func() (Amount, error) { return New(7).Sub(New(5)) },
			want: New(2),
		},
		"sub below zero": {
			fn:      func() (Amount, error) { return New(5).Sub(New(7)) },
			wantErr: errors.ErrOverflow,
		},
		"mul": {
			fn:   func() (Amount, error) { return Tokens(3).MulUint64(4) },
			want: Tokens(12),
		},
		"mul overflow": {
			fn:      func() (Amount, error) { return Max().MulUint64(2) },
			wantErr: errors.ErrOverflow,
		},
		"mul div keeps precision of the intermediate product": {
			fn:   func() (Amount, error) { return Max().MulDiv(New(3), New(3)) },
			want: Max(),
		},
		"mul div by zero": {
			fn:      func() (Amount, error) { return New(1).MulDiv(New(3), Zero()) },
			wantErr: errors.ErrInvalidAmount,
		},
		"div truncates": {
			fn:   func() (Amount, error) { return New(10).Div(3) },
			want: New(3),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := tc.fn()
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want.String(), got.String())
		})
	}
}

func TestMulBps(t *testing.T) {
	cases := map[string]struct {
		a    Amount
		bps  uint32
		want Amount
	}{
		"five percent": {
			a:    New(1000000000000),
			bps:  500,
			want: New(50000000000),
		},
		"truncates toward zero": {
			a:    New(19),
			bps:  500,
			want: New(0),
		},
		"full": {
			a:    Max(),
			bps:  BpsDenominator,
			want: Max(),
		},
		"nothing": {
			a:    Tokens(10),
			bps:  0,
			want: Zero(),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got := tc.a.MulBps(tc.bps)
			if !got.Equals(tc.want) {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestParseAndFormat(t *testing.T) {
	cases := map[string]struct {
		human   string
		want    Amount
		format  string
		wantErr *errors.Error
	}{
		"whole": {
			human:  "3",
			want:   Tokens(3),
			format: "3",
		},
		"fraction": {
			human:  "1.5",
			want:   New(1500000000000000000),
			format: "1.5",
		},
		"smallest unit": {
			human:  "0.000000000000000001",
			want:   New(1),
			format: "0.000000000000000001",
		},
		"too many decimals": {
			human:   "0.0000000000000000001",
			wantErr: errors.ErrInvalidAmount,
		},
		"negative": {
			human:   "-1",
			wantErr: errors.ErrInvalidAmount,
		},
		"garbage": {
			human:   "one",
			wantErr: errors.ErrInvalidAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := Parse(tc.human)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.format, got.Format())
		})
	}
}

func TestJSON(t *testing.T) {
	raw, err := json.Marshal(Tokens(2))
	assert.Nil(t, err)
	assert.Equal(t, `"2000000000000000000"`, string(raw))

	cases := map[string]struct {
		raw     string
		want    Amount
		wantErr bool
	}{
		"string of units":  {raw: `"2000000000000000000"`, want: Tokens(2)},
		"number of units":  {raw: `100000`, want: New(100000)},
		"tokens suffix":    {raw: `"1.5 tokens"`, want: New(1500000000000000000)},
		"negative number":  {raw: `-1`, wantErr: true},
		"not a number":     {raw: `"abc"`, wantErr: true},
		"wrong json value": {raw: `{}`, wantErr: true},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got Amount
			err := json.Unmarshal([]byte(tc.raw), &got)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("want error, got %s", got)
				}
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBinary(t *testing.T) {
	a := MustParseUnits("123456789012345678901234567890")
	raw, err := a.MarshalAmino()
	assert.Nil(t, err)
	assert.Equal(t, 32, len(raw))

	var got Amount
	assert.Nil(t, got.UnmarshalAmino(raw))
	assert.Equal(t, a, got)

	_, err = FromBytes(make([]byte, 33))
	assert.IsErr(t, errors.ErrInvalidAmount, err)
}

func TestFromBig(t *testing.T) {
	_, err := FromBig(big.NewInt(-1))
	assert.IsErr(t, errors.ErrInvalidAmount, err)

	huge := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = FromBig(huge)
	assert.IsErr(t, errors.ErrOverflow, err)

	got, err := FromBig(big.NewInt(42))
	assert.Nil(t, err)
	assert.Equal(t, New(42), got)
	assert.Equal(t, "42", got.Big().String())
}
