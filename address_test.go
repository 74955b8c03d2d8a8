package ledger_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAddressPrinting(t *testing.T) {
	Convey("pool address prints as upper case hex", t, func() {
		addr := ledger.NewCondition("redist", "pool", []byte("ALM")).Address()

		So(addr.String(), ShouldEqual, fmt.Sprintf("%X", []byte(addr)))
		So(len(addr), ShouldEqual, ledger.AddressLength)
	})

	Convey("zero address prints as nil", t, func() {
		var addr ledger.Address
		So(addr.String(), ShouldEqual, "(nil)")
		So(addr.IsZero(), ShouldBeTrue)
	})

	Convey("condition prints its data in hex", t, func() {
		cond := ledger.NewCondition("mint", "curve", []byte{0xAB, 0xCD})
		So(cond.String(), ShouldEqual, "mint/curve/ABCD")
	})
}

func TestParseAddress(t *testing.T) {
	treasury := ledger.NewCondition("redist", "pool", []byte("treasury")).Address()
	b32, err := treasury.Bech32()
	if err != nil {
		t.Fatalf("cannot encode bech32: %s", err)
	}

	cases := map[string]struct {
		json     string
		wantErr  *errors.Error
		wantAddr ledger.Address
	}{
		"bare hex": {
			json:     fmt.Sprintf(`"%X"`, []byte(treasury)),
			wantAddr: treasury,
		},
		"hex prefix": {
			json:     fmt.Sprintf(`"hex:%X"`, []byte(treasury)),
			wantAddr: treasury,
		},
		"condition": {
			json:     `"cond:mint/curve/73616c6d"`,
			wantAddr: ledger.NewCondition("mint", "curve", []byte("salm")).Address(),
		},
		"bech32": {
			json:     fmt.Sprintf(`"bech32:%s"`, b32),
			wantAddr: treasury,
		},
		"hex of the wrong length": {
			json:    `"A1B2C3"`,
			wantErr: errors.ErrInvalidInput,
		},
		"condition without type": {
			json:    `"cond:mint/73616c6d"`,
			wantErr: errors.ErrInvalidInput,
		},
		"condition data not hex": {
			json:    `"cond:mint/curve/salm"`,
			wantErr: errors.ErrInvalidInput,
		},
		"unknown prefix": {
			json:    `"base58:xxx"`,
			wantErr: errors.ErrInvalidInput,
		},
		"zero address": {
			json:     `""`,
			wantAddr: nil,
		},
		"empty condition": {
			json:     `"cond:"`,
			wantAddr: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var a ledger.Address
			err := json.Unmarshal([]byte(tc.json), &a)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && !a.Equals(tc.wantAddr) {
				t.Fatalf("got address: %q", a)
			}
		})
	}
}

func TestAddressJSONRoundTrip(t *testing.T) {
	addr := ledger.NewCondition("token", "dev", []byte("fees")).Address()
	raw, err := json.Marshal(addr)
	if err != nil {
		t.Fatalf("marshal: %s", err)
	}
	var got ledger.Address
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if !got.Equals(addr) {
		t.Fatalf("want %s, got %s", addr, got)
	}
}
