// v1
// internal/telemetry/sink.go
package telemetry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"ssacity/api/internal/models"
)

// Batch is the bin state produced by one tick.
type Batch struct {
	Tick      uint64
	Timestamp time.Time
	Bins      []models.SmartBin
}

// Reading is the wire form of one bin in a batch.
type Reading struct {
	models.SmartBin
	Tick      uint64    `json:"tick"`
	Timestamp time.Time `json:"timestamp"`
}

// Readings flattens the batch into per-bin wire records.
func (b Batch) Readings() []Reading {
	out := make([]Reading, 0, len(b.Bins))
	for _, bin := range b.Bins {
		out = append(out, Reading{SmartBin: bin, Tick: b.Tick, Timestamp: b.Timestamp})
	}
	return out
}

// Sink receives tick batches.
type Sink interface {
	Name() string
	Publish(ctx context.Context, batch Batch) error
	Close() error
}

// PublishObserver is notified of every publish attempt.
type PublishObserver interface {
	ObservePublish(sink string, err error)
}

// Fanout hands a batch to every configured sink. A failing sink never
// prevents the others from receiving the batch.
type Fanout struct {
	sinks    []Sink
	observer PublishObserver
	log      *zap.Logger
}

// NewFanout publishes to sinks in order. observer may be nil.
func NewFanout(log *zap.Logger, observer PublishObserver, sinks ...Sink) *Fanout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fanout{sinks: sinks, observer: observer, log: log}
}

// Len returns the number of sinks.
func (f *Fanout) Len() int { return len(f.sinks) }

// Publish sends batch to all sinks and returns the joined sink errors.
func (f *Fanout) Publish(ctx context.Context, batch Batch) error {
	var errs []error
	for _, s := range f.sinks {
		err := s.Publish(ctx, batch)
		if f.observer != nil {
			f.observer.ObservePublish(s.Name(), err)
		}
		if err != nil {
			f.log.Warn("telemetry_publish_failed",
				zap.String("sink", s.Name()),
				zap.Uint64("tick", batch.Tick),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		f.log.Debug("telemetry_published", zap.String("sink", s.Name()), zap.Int("bins", len(batch.Bins)))
	}
	return errors.Join(errs...)
}

// Close closes every sink and returns the joined errors.
func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
