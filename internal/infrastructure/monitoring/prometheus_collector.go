package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector exports presence client activity to Prometheus.
// It satisfies ports.ClientMetrics.
type PrometheusCollector struct {
	// Counters
	updatesTotal   *prometheus.CounterVec
	ticksTotal     *prometheus.CounterVec
	shutdownsTotal prometheus.Counter

	// Histograms
	peerCallDuration *prometheus.HistogramVec
}

func NewPrometheusCollector() *PrometheusCollector {
	return newPrometheusCollector(prometheus.DefaultRegisterer)
}

func newPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		updatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presencegate_updates_total",
			Help: "Total number of presence update attempts by outcome",
		}, []string{"outcome"}),

		ticksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presencegate_ticks_total",
			Help: "Total number of event pump cycles by outcome",
		}, []string{"outcome"}),

		shutdownsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "presencegate_shutdowns_total",
			Help: "Total number of client shutdowns",
		}),

		peerCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "presencegate_peer_call_duration_seconds",
			Help:    "Duration of calls into the presence peer",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"op"}),
	}
}

func (p *PrometheusCollector) RecordUpdate(outcome string, peerDuration time.Duration) {
	p.updatesTotal.WithLabelValues(outcome).Inc()

	// Rejected updates never reach the peer and carry no duration
	if peerDuration > 0 {
		p.peerCallDuration.WithLabelValues("submit_update").Observe(peerDuration.Seconds())
	}
}

func (p *PrometheusCollector) RecordTick(outcome string, peerDuration time.Duration) {
	p.ticksTotal.WithLabelValues(outcome).Inc()

	if peerDuration > 0 {
		p.peerCallDuration.WithLabelValues("process_events").Observe(peerDuration.Seconds())
	}
}

func (p *PrometheusCollector) RecordShutdown() {
	p.shutdownsTotal.Inc()
}
