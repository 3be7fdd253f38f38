package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	marketengine "market-sim-go/internal/market-engine"
)

const namespace = "market_engine"

// Metrics implements marketengine.Observer on a private prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	cycles        prometheus.Counter
	cycleDuration prometheus.Histogram
	overruns      prometheus.Counter
	instruments   prometheus.Gauge
	marketFactor  prometheus.Gauge
	dropped       prometheus.Counter
}

var _ marketengine.Observer = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed simulation cycles.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time spent updating every instrument in one cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		overruns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_overruns_total",
			Help:      "Cycles that took longer than the configured interval.",
		}),
		instruments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "instruments",
			Help:      "Instruments updated in the last cycle.",
		}),
		marketFactor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "market_factor",
			Help:      "Shared market sentiment after the last cycle.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_dropped_subscribers_total",
			Help:      "Feed subscribers dropped for falling behind.",
		}),
	}
	m.registry.MustRegister(
		m.cycles, m.cycleDuration, m.overruns, m.instruments, m.marketFactor, m.dropped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveCycle(s marketengine.CycleStats) {
	m.cycles.Inc()
	m.cycleDuration.Observe(s.Duration.Seconds())
	if s.Overrun {
		m.overruns.Inc()
	}
	m.instruments.Set(float64(s.Instruments))
	m.marketFactor.Set(s.MarketFactor)
}

func (m *Metrics) ObserveDroppedSubscriber() {
	m.dropped.Inc()
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
