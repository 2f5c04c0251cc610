package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trading_etl"

// Metrics groups the collectors recorded by a pipeline run.
type Metrics struct {
	registry *prometheus.Registry

	TradesGenerated prometheus.Counter
	TradesLoaded    prometheus.Counter
	LoadsSkipped    prometheus.Counter
	TradesExtracted prometheus.Gauge
	HighValueTrades prometheus.Gauge
	SummaryRows     prometheus.Gauge
	StageDuration   *prometheus.HistogramVec
	StageFailures   *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TradesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_generated_total",
			Help:      "Synthetic trades produced by the generator.",
		}),
		TradesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_loaded_total",
			Help:      "Trades inserted into the primary store.",
		}),
		LoadsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_skipped_total",
			Help:      "Load stages skipped because the primary store was already populated.",
		}),
		TradesExtracted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trades_extracted",
			Help:      "Trades read back by the last run.",
		}),
		HighValueTrades: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "high_value_trades",
			Help:      "High-value trades found by the last run.",
		}),
		SummaryRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stock_summary_rows",
			Help:      "Symbols in the last stock summary.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		StageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Pipeline stages that returned an error.",
		}, []string{"stage"}),
	}

	m.registry.MustRegister(
		m.TradesGenerated,
		m.TradesLoaded,
		m.LoadsSkipped,
		m.TradesExtracted,
		m.HighValueTrades,
		m.SummaryRows,
		m.StageDuration,
		m.StageFailures,
		prometheus.NewGoCollector(),
	)
	return m
}

// ObserveStage records how long a stage took and whether it failed.
func (m *Metrics) ObserveStage(stage string, start time.Time, err error) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err != nil {
		m.StageFailures.WithLabelValues(stage).Inc()
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
