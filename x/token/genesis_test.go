package token

import (
	"encoding/json"
	"testing"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/store"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenesis(t *testing.T) {
	Convey("Given a token ledger", t, func() {
		l := NewLedger("ALM")
		ini := Initializer{Ledger: l}
		db := store.MemStore()

		Convey("A genesis without configuration is rejected", func() {
			err := ini.FromGenesis(ledger.Options{}, db)
			So(err, ShouldNotBeNil)
		})

		Convey("A genesis with configuration and accounts is loaded", func() {
			const genesis = `{
				"conf": {
					"token:ALM": {
						"admin": "cond:test/admin/01",
						"dev_account": "cond:test/dev/01",
						"dev_fee_bps": 500,
						"burn_fee_bps": 500,
						"fees_enabled": true
					}
				},
				"alm": [
					{"address": "cond:test/user/01", "balance": "1000"},
					{"address": "cond:test/user/02", "balance": "2.5 tokens"}
				]
			}`
			var opts ledger.Options
			So(json.Unmarshal([]byte(genesis), &opts), ShouldBeNil)
			So(ini.FromGenesis(opts, db), ShouldBeNil)

			conf, err := l.Config(db)
			So(err, ShouldBeNil)
			So(conf.DevFeeBps, ShouldEqual, uint32(500))
			So(conf.FeesEnabled, ShouldBeTrue)
			So(conf.Admin.Equals(ledger.NewCondition("test", "admin", []byte{1}).Address()), ShouldBeTrue)

			user1 := ledger.NewCondition("test", "user", []byte{1}).Address()
			bal, err := l.BalanceOf(db, user1)
			So(err, ShouldBeNil)
			So(bal.String(), ShouldEqual, "1000")

			supply, err := l.TotalSupply(db)
			So(err, ShouldBeNil)
			So(supply.String(), ShouldEqual, "2500000000000001000")
		})

		Convey("An invalid configuration is rejected", func() {
			const genesis = `{
				"conf": {
					"token:ALM": {
						"admin": "cond:test/admin/01",
						"dev_fee_bps": 500
					}
				}
			}`
			var opts ledger.Options
			So(json.Unmarshal([]byte(genesis), &opts), ShouldBeNil)
			So(ini.FromGenesis(opts, db), ShouldNotBeNil)
		})

		Convey("An account with a malformed address is rejected", func() {
			const genesis = `{
				"conf": {
					"token:ALM": {"admin": "cond:test/admin/01"}
				},
				"alm": [{"address": "", "balance": "1"}]
			}`
			var opts ledger.Options
			So(json.Unmarshal([]byte(genesis), &opts), ShouldBeNil)
			So(ini.FromGenesis(opts, db), ShouldNotBeNil)
		})
	})
}
