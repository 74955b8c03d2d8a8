package token

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alm_token_operations_total",
			Help: "Total number of token ledger operations",
		},
		[]string{"token", "operation", "status"},
	)

	feesChargedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alm_token_fees_charged_total",
			Help: "Total number of transfers that were charged a non zero fee",
		},
		[]string{"token", "kind"},
	)
)

func observe(token, operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	operationsTotal.WithLabelValues(token, operation, status).Inc()
}
