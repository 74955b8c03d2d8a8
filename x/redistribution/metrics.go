package redistribution

import (
	"github.com/alium-swap/ledger/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	releasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alm_redistribution_releases_total",
			Help: "Total number of pool releases",
		},
		[]string{"status"},
	)

	payoutFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alm_redistribution_payout_failures_total",
			Help: "Total number of failed payouts by reason",
		},
		[]string{"mode", "reason"},
	)

	releaseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alm_redistribution_release_duration_seconds",
			Help:    "Duration of pool releases",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// failureReason maps an error to a label of low cardinality.
func failureReason(err error) string {
	switch {
	case errors.ErrSwap.Is(err):
		return "swap"
	case errors.ErrExpired.Is(err):
		return "expired"
	case errors.ErrSlippage.Is(err):
		return "slippage"
	case errors.ErrRecipient.Is(err):
		return "recipient"
	case errors.ErrInsufficientBalance.Is(err), errors.ErrInsufficientAllowance.Is(err):
		return "funds"
	case errors.ErrPanic.Is(err):
		return "panic"
	default:
		return "other"
	}
}
