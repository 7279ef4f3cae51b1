// v1
// internal/updater/updater.go
package updater

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ssacity/api/internal/models"
	"ssacity/api/internal/telemetry"
)

// Ticker is the state the updater mutates.
type Ticker interface {
	Tick() []models.SmartBin
	TickStats() (uint64, time.Time)
}

// Publisher receives the post-tick snapshot.
type Publisher interface {
	Publish(ctx context.Context, batch telemetry.Batch) error
}

// Observer records tick outcomes.
type Observer interface {
	ObserveTick(d time.Duration, bins []models.SmartBin)
	IncTickFailure()
}

// Updater runs the sensor drift pass on a fixed schedule. A pass that
// panics is logged and counted and the schedule carries on; a pass that
// is still running when the next one is due causes that one to be skipped.
// Snapshots are published off the schedule by a separate loop, so a slow
// sink never delays the drift pass. Only the newest unpublished snapshot
// is kept.
type Updater struct {
	sim      Ticker
	pub      Publisher
	obs      Observer
	log      *zap.Logger
	interval time.Duration

	// publishTimeout bounds one Publish call.
	publishTimeout time.Duration
	pending        chan telemetry.Batch
	dropMu         sync.Mutex

	cron *cron.Cron
	job  cron.Job
}

// New schedules a pass every interval. pub and obs may be nil.
func New(sim Ticker, interval time.Duration, pub Publisher, obs Observer, log *zap.Logger) (*Updater, error) {
	if sim == nil {
		return nil, errors.New("updater: nil simulator")
	}
	if interval < time.Second {
		return nil, fmt.Errorf("updater: interval must be at least 1s, got %s", interval)
	}
	if log == nil {
		log = zap.NewNop()
	}
	u := &Updater{
		sim:            sim,
		pub:            pub,
		obs:            obs,
		log:            log,
		interval:       interval,
		publishTimeout: interval,
		pending:        make(chan telemetry.Batch, 1),
	}
	cl := cronLogger{log: log}
	u.cron = cron.New(cron.WithLogger(cl))
	// SkipIfStillRunning must sit outside Recover: it hands its token back
	// only when the wrapped job returns normally.
	u.job = cron.NewChain(
		cron.SkipIfStillRunning(cl),
		cron.Recover(cl),
		countPanics(obs),
	).Then(cron.FuncJob(u.runOnce))
	if _, err := u.cron.AddJob(fmt.Sprintf("@every %s", interval), u.job); err != nil {
		return nil, fmt.Errorf("schedule sensor updates: %w", err)
	}
	return u, nil
}

// Run performs one pass immediately, then follows the schedule until ctx
// is cancelled. It waits for an in-flight pass and the publish loop before
// returning.
func (u *Updater) Run(ctx context.Context) error {
	u.log.Info("sensor_updater_started",
		zap.Duration("interval", u.interval),
		zap.Duration("publish_timeout", u.publishTimeout),
	)
	published := make(chan struct{})
	go func() {
		defer close(published)
		u.publishLoop(ctx)
	}()

	u.job.Run()
	u.cron.Start()
	<-ctx.Done()
	stopped := u.cron.Stop()
	<-stopped.Done()
	<-published
	u.log.Info("sensor_updater_stopped")
	return nil
}

// RunOnce executes a single guarded pass outside the schedule. The
// snapshot is queued for the publish loop.
func (u *Updater) RunOnce() {
	u.job.Run()
}

func (u *Updater) runOnce() {
	start := time.Now()
	bins := u.sim.Tick()
	tick, at := u.sim.TickStats()
	elapsed := time.Since(start)
	if u.obs != nil {
		u.obs.ObserveTick(elapsed, bins)
	}
	if u.pub != nil {
		u.enqueue(telemetry.Batch{Tick: tick, Timestamp: at, Bins: bins})
	}
	u.log.Info("tick_completed",
		zap.Uint64("tick", tick),
		zap.Int("bins", len(bins)),
		zap.Duration("elapsed", elapsed),
	)
}

// enqueue replaces any snapshot the publish loop has not picked up yet.
func (u *Updater) enqueue(b telemetry.Batch) {
	u.dropMu.Lock()
	defer u.dropMu.Unlock()
	select {
	case u.pending <- b:
		return
	default:
	}
	select {
	case stale := <-u.pending:
		u.log.Warn("telemetry_batch_dropped", zap.Uint64("tick", stale.Tick))
	default:
	}
	u.pending <- b
}

func (u *Updater) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-u.pending:
			u.publish(ctx, b)
		}
	}
}

// drain publishes the queued snapshot, if any.
func (u *Updater) drain(ctx context.Context) {
	select {
	case b := <-u.pending:
		u.publish(ctx, b)
	default:
	}
}

func (u *Updater) publish(ctx context.Context, b telemetry.Batch) {
	pctx, cancel := context.WithTimeout(ctx, u.publishTimeout)
	defer cancel()
	// Sink failures are logged by the publisher and never reach the schedule.
	_ = u.pub.Publish(pctx, b)
}

func countPanics(obs Observer) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			defer func() {
				if r := recover(); r != nil {
					if obs != nil {
						obs.IncTickFailure()
					}
					panic(r)
				}
			}()
			j.Run()
		})
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Sugar().Debugw("cron_"+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Sugar().Errorw("cron_"+msg, append(keysAndValues, "err", err)...)
}
