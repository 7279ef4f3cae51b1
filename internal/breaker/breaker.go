// v1
// internal/breaker/breaker.go
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the breaker position.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned without running the operation while the breaker is open.
var ErrOpen = errors.New("circuit breaker is open; fast-fail")

// Config holds the breaker tunables.
type Config struct {
	// MaxFailures consecutive failures open the breaker.
	MaxFailures int
	// ResetTimeout is how long the breaker stays open before a trial call.
	ResetTimeout time.Duration
	// SuccessesToClose trial successes close a half-open breaker.
	SuccessesToClose int
	// AttemptTimeout bounds each guarded call; zero disables it.
	AttemptTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxFailures < 1 {
		c.MaxFailures = 5
	}
	if c.ResetTimeout <= 0 {
		c.ResetTimeout = 30 * time.Second
	}
	if c.SuccessesToClose < 1 {
		c.SuccessesToClose = 1
	}
	return c
}

// Breaker guards calls to an unreliable dependency.
type Breaker struct {
	name string
	cfg  Config
	log  *zap.Logger

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time

	probe    func(ctx context.Context) error
	onChange func(name string, s State)
}

// New builds a closed breaker. probe, when set, runs before the first trial
// call after the reset timeout; a failing probe keeps the breaker open.
func New(name string, cfg Config, log *zap.Logger, probe func(ctx context.Context) error) *Breaker {
	if log == nil {
		log = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	b := &Breaker{name: name, cfg: cfg, log: log.With(zap.String("breaker", name)), probe: probe}
	b.log.Info("breaker_created",
		zap.Int("max_failures", cfg.MaxFailures),
		zap.Duration("reset_timeout", cfg.ResetTimeout),
		zap.Int("successes_to_close", cfg.SuccessesToClose),
	)
	return b
}

// Name returns the breaker name.
func (b *Breaker) Name() string { return b.name }

// OnStateChange registers fn to be called after every transition and once
// immediately with the current state. fn runs with the breaker lock held and
// must not call back into the breaker.
func (b *Breaker) OnStateChange(fn func(name string, s State)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
	if fn != nil {
		fn(b.name, b.State())
	}
}

// State returns the current position.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Execute runs op unless the breaker is open.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	b.mu.Lock()
	if b.state == Open {
		since := time.Since(b.openedAt)
		if since < b.cfg.ResetTimeout {
			b.mu.Unlock()
			b.log.Debug("breaker_fast_fail", zap.Duration("since_open", since))
			return ErrOpen
		}
		b.transition(HalfOpen)
		b.mu.Unlock()
		if b.probe != nil {
			if err := b.probe(ctx); err != nil {
				b.log.Warn("breaker_probe_failed", zap.Error(err))
				b.mu.Lock()
				b.trip()
				b.mu.Unlock()
				return ErrOpen
			}
			b.log.Info("breaker_probe_ok")
		}
	} else {
		b.mu.Unlock()
	}

	attemptCtx, cancel := b.attemptContext(ctx)
	err := op(attemptCtx)
	cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.onSuccess()
		return nil
	}
	b.onFailure(err)
	return err
}

func (b *Breaker) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.cfg.AttemptTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.cfg.AttemptTimeout)
}

// onSuccess and onFailure run with mu held.
func (b *Breaker) onSuccess() {
	switch b.state {
	case HalfOpen:
		b.successes++
		if b.successes >= b.cfg.SuccessesToClose {
			b.transition(Closed)
		}
	default:
		b.failures = 0
	}
}

func (b *Breaker) onFailure(err error) {
	if b.state == HalfOpen {
		b.log.Warn("breaker_halfopen_op_failed", zap.Error(err))
		b.trip()
		return
	}
	b.failures++
	b.log.Warn("operation_failure", zap.Int("failures", b.failures), zap.Error(err))
	if b.failures >= b.cfg.MaxFailures {
		b.trip()
	}
}

func (b *Breaker) trip() {
	b.openedAt = time.Now()
	b.transition(Open)
}

func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	b.failures = 0
	b.successes = 0
	if from == to {
		return
	}
	if to == Open {
		b.log.Error("breaker_opened", zap.String("from", from.String()))
	} else {
		b.log.Info("breaker_state_changed", zap.String("from", from.String()), zap.String("to", to.String()))
	}
	if b.onChange != nil {
		b.onChange(b.name, to)
	}
}
