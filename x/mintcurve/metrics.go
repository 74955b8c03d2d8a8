package mintcurve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mintsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alm_mintcurve_mints_total",
			Help: "Total number of mint calls",
		},
		[]string{"status"},
	)

	mintedUnitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alm_mintcurve_minted_units_total",
			Help: "Total number of derivative token units minted",
		},
	)
)

func observe(count uint64, err error) {
	if err != nil {
		mintsTotal.WithLabelValues("error").Inc()
		return
	}
	mintsTotal.WithLabelValues("ok").Inc()
	mintedUnitsTotal.Add(float64(count))
}
