package persist

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Snapshotter is the state holder the flusher writes out.
type Snapshotter interface {
	Dirty() bool
	Save(ctx context.Context, slot Slot) error
}

// Flusher periodically writes a dirty state holder to its slot.
type Flusher struct {
	src      Snapshotter
	slot     Slot
	interval time.Duration
	log      *zap.Logger
	done     chan struct{}
}

// NewFlusher creates a flusher writing src to slot every interval.
func NewFlusher(src Snapshotter, slot Slot, interval time.Duration, log *zap.Logger) *Flusher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flusher{src: src, slot: slot, interval: interval, log: log, done: make(chan struct{})}
}

// Run flushes on every tick until ctx is cancelled. The final write at
// shutdown is left to the caller.
func (f *Flusher) Run(ctx context.Context) {
	defer close(f.done)
	f.log.Info("snapshot flusher started", zap.Duration("interval", f.interval))

	timer := time.NewTimer(f.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			f.log.Info("snapshot flusher shutting down")
			return
		case <-timer.C:
			if err := f.FlushOnce(ctx); err != nil {
				f.log.Error("snapshot flush failed", zap.Error(err))
			}
			timer.Reset(f.interval)
		}
	}
}

// Done is closed once Run has returned.
func (f *Flusher) Done() <-chan struct{} {
	return f.done
}

// FlushOnce saves the state if it changed since the last save.
func (f *Flusher) FlushOnce(ctx context.Context) error {
	if !f.src.Dirty() {
		return nil
	}
	if err := f.src.Save(ctx, f.slot); err != nil {
		return err
	}
	f.log.Debug("snapshot flushed")
	return nil
}
