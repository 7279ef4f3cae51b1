// v0
// internal/simulator/tick.go
package simulator

import (
	"go.uber.org/zap"

	"ssacity/api/internal/models"
	"ssacity/api/internal/rng"
)

// Drift parameters applied to every bin on every tick.
const (
	fillStepMin      = 0.1
	fillStepMax      = 2.0
	tempStepAbs      = 0.5
	drainStepMin     = 0.01
	drainStepMax     = 0.05
	faultChance      = 0.005
	recoveryChance   = 0.1
	maintenanceShare = 0.5
)

// Tick runs one mutation pass over all bins under the write lock and
// returns a copy of the resulting state.
func (s *Simulator) Tick() []models.SmartBin {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.bins {
		b := &s.bins[i]
		b.FillLevel = clamp(b.FillLevel+s.binRand.Uniform(fillStepMin, fillStepMax), models.MinFillLevel, models.MaxFillLevel)
		b.Temperature = clamp(b.Temperature+s.binRand.Uniform(-tempStepAbs, tempStepAbs), models.MinTemperature, models.MaxTemperature)
		b.BatteryLevel = clamp(b.BatteryLevel-s.binRand.Uniform(drainStepMin, drainStepMax), models.MinBatteryLevel, models.MaxBatteryLevel)
		if next, ok := nextStatus(s.binRand, b.Status); ok {
			if next != b.Status {
				changed++
				s.log.Info("bin_status_changed",
					zap.String("bin_id", b.BinID),
					zap.String("from", string(b.Status)),
					zap.String("to", string(next)),
				)
			}
			b.Status = next
		}
	}
	s.ticks++
	s.lastTick = s.now()
	s.log.Debug("tick_applied", zap.Uint64("tick", s.ticks), zap.Int("status_changes", changed))
	return append([]models.SmartBin(nil), s.bins...)
}

// nextStatus draws the memoryless status flip for one bin. The fault branch
// is tried first for every bin; only when it does not fire may a
// non-active bin return to service.
func nextStatus(r *rng.Stream, current models.BinStatus) (models.BinStatus, bool) {
	if r.Chance(faultChance) {
		if r.Chance(maintenanceShare) {
			return models.StatusMaintenance, true
		}
		return models.StatusOffline, true
	}
	if current != models.StatusActive && r.Chance(recoveryChance) {
		return models.StatusActive, true
	}
	return current, false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
