// Package metrics exposes Prometheus collectors for status computations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rustyeddy/proptrack/engine"
)

const namespace = "proptrack"

type Metrics struct {
	Computations   *prometheus.CounterVec // result=fresh|fallback
	DroppedTrades  prometheus.Counter
	Equity         *prometheus.GaugeVec
	HighWaterMark  *prometheus.GaugeVec
	DrawdownRoom   *prometheus.GaugeVec // account, axis
	Violations     *prometheus.GaugeVec // account, axis; 1 when violated
	Passed         *prometheus.GaugeVec
	LedgerMutation *prometheus.CounterVec // op=add|update|delete|batch|refresh
}

// New registers with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers with r; tests pass a fresh registry.
func NewWithRegistry(r prometheus.Registerer) *Metrics {
	factory := promauto.With(r)
	return &Metrics{
		Computations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_computations_total",
			Help:      "Status computations by result",
		}, []string{"result"}),
		DroppedTrades: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_trades_total",
			Help:      "Malformed trades excluded from computations",
		}),
		Equity: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "equity",
			Help:      "Current equity per account",
		}, []string{"account"}),
		HighWaterMark: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "high_water_mark",
			Help:      "Peak equity per account",
		}, []string{"account"}),
		DrawdownRoom: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "drawdown_distance",
			Help:      "Room left before a drawdown limit is hit",
		}, []string{"account", "axis"}),
		Violations: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "drawdown_violations",
			Help:      "1 when the drawdown limit on axis is violated",
		}, []string{"account", "axis"}),
		Passed: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "challenge_passed",
			Help:      "1 when the challenge currently passes",
		}, []string{"account"}),
		LedgerMutation: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_mutations_total",
			Help:      "Ledger mutations by operation",
		}, []string{"op"}),
	}
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ObserveStatus implements engine.Observer. Gauges are only moved by fresh
// results so a fallback never publishes stale data as new.
func (m *Metrics) ObserveStatus(accountID string, r engine.Result) {
	if !r.Fresh {
		m.Computations.WithLabelValues("fallback").Inc()
		return
	}
	m.Computations.WithLabelValues("fresh").Inc()
	m.DroppedTrades.Add(float64(r.Dropped))

	if accountID == "" {
		return
	}
	st := r.Status
	m.Equity.WithLabelValues(accountID).Set(st.CurrentEquity)
	m.HighWaterMark.WithLabelValues(accountID).Set(st.HighWaterMark)
	m.DrawdownRoom.WithLabelValues(accountID, "daily").Set(st.DistanceToDailyDrawdown)
	m.DrawdownRoom.WithLabelValues(accountID, "overall").Set(st.DistanceToOverallDrawdown)
	m.Violations.WithLabelValues(accountID, "daily").Set(b2f(st.IsDailyDrawdownViolated))
	m.Violations.WithLabelValues(accountID, "overall").Set(b2f(st.IsOverallDrawdownViolated))
	m.Passed.WithLabelValues(accountID).Set(b2f(st.IsPassed))
}

// ObserveMutation counts a ledger operation.
func (m *Metrics) ObserveMutation(op string) {
	m.LedgerMutation.WithLabelValues(op).Inc()
}

// Forget drops the per-account series of a deleted account.
func (m *Metrics) Forget(accountID string) {
	m.Equity.DeleteLabelValues(accountID)
	m.HighWaterMark.DeleteLabelValues(accountID)
	m.Passed.DeleteLabelValues(accountID)
	for _, axis := range []string{"daily", "overall"} {
		m.DrawdownRoom.DeleteLabelValues(accountID, axis)
		m.Violations.DeleteLabelValues(accountID, axis)
	}
}
