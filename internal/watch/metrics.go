package watch

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the watcher's view of the pool and ledger.
type Metrics struct {
	Samples        prometheus.Counter
	SampleFailures prometheus.Counter
	CounterHeavy   prometheus.Gauge
	TotalMinted    prometheus.Gauge
	TotalRevenue   prometheus.Gauge
	SharesHeld     prometheus.Gauge
	Operations     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Samples: factory.NewCounter(prometheus.CounterOpts{
			Name: "usdu_adapter_samples_total",
			Help: "Pool observations taken by the watcher.",
		}),
		SampleFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "usdu_adapter_sample_failures_total",
			Help: "Pool observations that failed after retries.",
		}),
		CounterHeavy: factory.NewGauge(prometheus.GaugeOpts{
			Name: "usdu_adapter_pool_counter_heavy",
			Help: "1 when the pool is counter-asset-heavy, 0 otherwise.",
		}),
		TotalMinted: factory.NewGauge(prometheus.GaugeOpts{
			Name: "usdu_adapter_total_minted",
			Help: "Outstanding stablecoin debt in token units.",
		}),
		TotalRevenue: factory.NewGauge(prometheus.GaugeOpts{
			Name: "usdu_adapter_total_revenue",
			Help: "Cumulative recognized revenue in token units.",
		}),
		SharesHeld: factory.NewGauge(prometheus.GaugeOpts{
			Name: "usdu_adapter_shares_held",
			Help: "LP shares held by the adapter.",
		}),
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usdu_adapter_operations_total",
			Help: "Adapter operations attempted by the watcher.",
		}, []string{"kind", "outcome"}),
	}
}

// approx converts a big integer token amount to a float for gauge export.
// Metrics are observability only; the ledger keeps the exact values.
func approx(value *big.Int) float64 {
	if value == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(value).Float64()
	return f
}
