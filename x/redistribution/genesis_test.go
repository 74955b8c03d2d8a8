package redistribution

import (
	"encoding/json"
	"testing"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/store"
	"github.com/alium-swap/ledger/x/token"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenesis(t *testing.T) {
	Convey("Given a redistributor", t, func() {
		redist := NewRedistributor(token.NewLedger("ALM"), token.NewLedger("BASE"), nil, nil)
		db := store.MemStore()

		Convey("A valid configuration is loaded", func() {
			const genesis = `{
				"conf": {
					"redistribution": {
						"admin": "cond:test/admin/01",
						"recipients": [
							{"account": "cond:test/staker/01", "share_bps": 5000, "mode": "direct"},
							{"account": "cond:test/holders/01", "share_bps": 5000, "mode": "swap_to_base"}
						],
						"swap_deadline": "20m",
						"max_slippage_bps": 100
					}
				}
			}`
			var opts ledger.Options
			So(json.Unmarshal([]byte(genesis), &opts), ShouldBeNil)
			So(Initializer{}.FromGenesis(opts, db), ShouldBeNil)

			conf, err := redist.Config(db)
			So(err, ShouldBeNil)
			So(conf.Recipients, ShouldHaveLength, 2)
			So(conf.Recipients[1].Mode, ShouldEqual, SwapToBase)
			So(conf.SwapDeadline, ShouldEqual, Duration(1200))
		})

		Convey("Shares that do not sum up to 100% are rejected", func() {
			const genesis = `{
				"conf": {
					"redistribution": {
						"admin": "cond:test/admin/01",
						"recipients": [
							{"account": "cond:test/staker/01", "share_bps": 50}
						]
					}
				}
			}`
			var opts ledger.Options
			So(json.Unmarshal([]byte(genesis), &opts), ShouldBeNil)
			So(Initializer{}.FromGenesis(opts, db), ShouldNotBeNil)
		})
	})
}
