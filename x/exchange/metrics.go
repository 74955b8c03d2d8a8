package exchange

import (
	"github.com/alium-swap/ledger/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var swapsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "alm_exchange_swaps_total",
		Help: "Total number of swap attempts",
	},
	[]string{"status"},
)

func observeSwap(err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.ErrExpired.Is(err):
		status = "expired"
	case errors.ErrSlippage.Is(err):
		status = "slippage"
	default:
		status = "error"
	}
	swapsTotal.WithLabelValues(status).Inc()
}
