// v2
// internal/http/health.go
package httpserver

import (
	"sync"
	"time"
)

// HealthState carries the readiness flag reported on /health/ready. The
// application flips it on once the listener is up and off again when
// shutdown begins.
type HealthState struct {
	mu      sync.RWMutex
	ready   bool
	started time.Time
}

// NewHealthState starts not ready, with uptime measured from now.
func NewHealthState() *HealthState {
	return &HealthState{started: time.Now()}
}

// SetReady flips the readiness flag.
func (h *HealthState) SetReady(value bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = value
}

// Ready reports the readiness flag.
func (h *HealthState) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// Uptime reports the time since the state was created.
func (h *HealthState) Uptime() time.Duration {
	return time.Since(h.started)
}
