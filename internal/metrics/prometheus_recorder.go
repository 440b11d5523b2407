package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "carestay"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	mutations       *prom.CounterVec
	sectorOccupancy *prom.GaugeVec
	flushDuration   *prom.HistogramVec
	notifications   *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		mutations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "store_mutations_total",
			Help:      "State store mutations by operation and whether they changed state",
		}, []string{"op", "applied"}),
		sectorOccupancy: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "sector_occupancy_percent",
			Help:      "Share of occupied rooms per sector",
		}, []string{"sector"}),
		flushDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_flush_duration_seconds",
			Help:      "Duration of snapshot writes to the durable slot",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		notifications: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "push_notifications_total",
			Help:      "Vacancy push notifications by outcome",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.mutations, pr.sectorOccupancy, pr.flushDuration, pr.notifications)
	return pr
}

func (p *PrometheusRecorder) IncMutation(op string, applied bool) {
	if p == nil {
		return
	}
	label := "false"
	if applied {
		label = "true"
	}
	p.mutations.WithLabelValues(op, label).Inc()
}

func (p *PrometheusRecorder) SetSectorOccupancy(sector string, rate float64) {
	if p == nil {
		return
	}
	p.sectorOccupancy.WithLabelValues(sector).Set(rate)
}

func (p *PrometheusRecorder) ObserveFlush(d time.Duration, err error) {
	if p == nil {
		return
	}
	res := "success"
	if err != nil {
		res = "failed"
	}
	p.flushDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncNotification(result string) {
	if p == nil {
		return
	}
	p.notifications.WithLabelValues(result).Inc()
}
