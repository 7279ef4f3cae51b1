// v0
// internal/simulator/simulator.go
package simulator

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"ssacity/api/internal/models"
	"ssacity/api/internal/rng"
	"ssacity/api/internal/seed"
)

// ErrUnknownBin is returned by maintenance operations for ids that were
// never seeded.
var ErrUnknownBin = errors.New("unknown bin")

// Options tunes a Simulator. Zero values fall back to the built-in defaults.
type Options struct {
	// Random is the source all draws come from. Seed it for reproducible runs.
	Random *rng.Source
	// Clock returns the current time; defaults to time.Now.
	Clock func() time.Time
	// Logger receives tick and maintenance events.
	Logger *zap.Logger
}

// Simulator owns the in-memory bin collection and the static zone table.
// Ticks and maintenance operations take the write lock; every read copies
// bins out under the read lock so callers never observe a half-updated record.
type Simulator struct {
	mu       sync.RWMutex
	bins     []models.SmartBin
	index    map[string]int
	zones    []models.CityZone
	ticks    uint64
	lastTick time.Time

	binRand       *rng.Stream
	alertRand     *rng.Stream
	analyticsRand *rng.Stream

	now func() time.Time
	log *zap.Logger
}

// New seeds one bin per location and loads the zone table. It runs the
// initializer exactly once; the returned Simulator is ready for reads.
func New(tables seed.Tables, opts Options) (*Simulator, error) {
	if len(tables.Locations) == 0 {
		return nil, errors.New("simulator: no bin locations")
	}
	src := opts.Random
	if src == nil {
		src = rng.New(0)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Simulator{
		index:         make(map[string]int, len(tables.Locations)),
		zones:         append([]models.CityZone(nil), tables.Zones...),
		binRand:       src.For(rng.SubsystemBins),
		alertRand:     src.For(rng.SubsystemAlerts),
		analyticsRand: src.For(rng.SubsystemAnalytics),
		now:           clock,
		log:           log,
	}
	s.initialize(tables.Locations)
	s.log.Info("simulator_initialized",
		zap.Int("bins", len(s.bins)),
		zap.Int("zones", len(s.zones)),
		zap.Int64("seed", src.Seed()),
	)
	return s, nil
}

func (s *Simulator) initialize(locations []models.Location) {
	now := s.now()
	s.bins = make([]models.SmartBin, 0, len(locations))
	for i, loc := range locations {
		id := fmt.Sprintf("BIN_%03d", i+1)
		s.bins = append(s.bins, models.SmartBin{
			BinID:        id,
			Location:     loc.Name,
			GPSLat:       loc.Lat,
			GPSLon:       loc.Lon,
			FillLevel:    float64(s.binRand.IntRange(0, 100)),
			Temperature:  s.binRand.Uniform(18, 32),
			BatteryLevel: s.binRand.Uniform(30, 100),
			LastEmptied:  now.Add(-time.Duration(s.binRand.IntRange(1, 48)) * time.Hour),
			Status:       models.StatusActive,
			WasteType:    rng.Pick(s.binRand, models.WasteTypes),
		})
		s.index[id] = i
	}
}

// Bins returns a copy of every bin in insertion order.
func (s *Simulator) Bins() []models.SmartBin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SmartBin(nil), s.bins...)
}

// Bin returns a copy of one bin.
func (s *Simulator) Bin(id string) (models.SmartBin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return models.SmartBin{}, false
	}
	return s.bins[i], true
}

// Zones returns the static zone table.
func (s *Simulator) Zones() []models.CityZone {
	return append([]models.CityZone(nil), s.zones...)
}

// TickStats reports how many ticks have run and when the latest one ran.
func (s *Simulator) TickStats() (uint64, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticks, s.lastTick
}

// Now exposes the simulator clock so collaborators stamp responses consistently.
func (s *Simulator) Now() time.Time {
	return s.now()
}

// Collect empties a bin and records the collection time.
func (s *Simulator) Collect(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("collect %s: %w", id, ErrUnknownBin)
	}
	s.bins[i].FillLevel = models.MinFillLevel
	s.bins[i].LastEmptied = s.now()
	s.log.Info("bin_collected", zap.String("bin_id", id))
	return nil
}

// ReplaceBattery restores a bin's battery to full charge.
func (s *Simulator) ReplaceBattery(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("replace battery %s: %w", id, ErrUnknownBin)
	}
	s.bins[i].BatteryLevel = models.MaxBatteryLevel
	s.log.Info("battery_replaced", zap.String("bin_id", id))
	return nil
}
