package metrics

import "time"

// Recorder defines observability hooks for the state store, snapshot flushes
// and push notifications. Implementations may forward to Prometheus.
type Recorder interface {
	IncMutation(op string, applied bool)
	SetSectorOccupancy(sector string, rate float64)
	ObserveFlush(d time.Duration, err error)
	IncNotification(result string) // result: sent|failed|expired|dropped
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncMutation(string, bool) {}
func (NoopRecorder) SetSectorOccupancy(string, float64) {}
func (NoopRecorder) ObserveFlush(time.Duration, error) {}
func (NoopRecorder) IncNotification(string) {}
