// v0
// internal/city/city.go
package city

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"ssacity/api/internal/rng"
	"ssacity/api/internal/seed"
)

// ErrUnknownRegion is returned for region names outside the configured set.
var ErrUnknownRegion = errors.New("unknown region")

// History window limits.
const (
	DefaultHistoryHours = 72
	MaxHistoryHours     = 720
	forecastHours       = 24
	maxIncidents        = 5
)

var (
	congestionLevels = []string{"Low", "Medium", "High", "Critical"}
	overallStatuses  = []string{"Normal", "Attention Needed", "Critical"}
	airQualityLabels = []string{"Good", "Moderate", "Poor", "Hazardous"}
	incidentLevels   = []string{"Low", "Medium", "High", "Critical"}
	incidentStatuses = []string{"New", "Acknowledged", "Resolved"}
)

// Simulator produces region-level readings. It holds no mutable state of
// its own; every call draws fresh values.
type Simulator struct {
	regions   []string
	incidents []seed.IncidentType
	r         *rng.Stream
	now       func() time.Time
}

// New builds a city simulator over the configured regions.
func New(tables seed.Tables, src *rng.Source, clock func() time.Time) *Simulator {
	if src == nil {
		src = rng.New(0)
	}
	if clock == nil {
		clock = time.Now
	}
	return &Simulator{
		regions:   append([]string(nil), tables.Regions...),
		incidents: append([]seed.IncidentType(nil), tables.IncidentTypes...),
		r:         src.For(rng.SubsystemCity),
		now:       clock,
	}
}

// Regions lists the known region names.
func (s *Simulator) Regions() []string {
	return append([]string(nil), s.regions...)
}

// Resolve maps a region name onto its canonical spelling, ignoring case.
func (s *Simulator) Resolve(name string) (string, error) {
	want := strings.TrimSpace(name)
	for _, r := range s.regions {
		if strings.EqualFold(r, want) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownRegion, name)
}

// Region returns a fresh snapshot for the named region.
func (s *Simulator) Region(name string) (RegionSnapshot, error) {
	canonical, err := s.Resolve(name)
	if err != nil {
		return RegionSnapshot{}, err
	}
	return s.snapshot(canonical, s.now()), nil
}

func (s *Simulator) snapshot(region string, now time.Time) RegionSnapshot {
	r := s.r
	return RegionSnapshot{
		Region:    region,
		Timestamp: now,
		Traffic: Traffic{
			Level:             r.IntRange(0, 100),
			Congestion:        rng.Pick(r, congestionLevels),
			VehiclesPerMinute: r.IntRange(10, 200),
			AvgSpeed:          r.IntRange(20, 80),
		},
		Environment: Environment{
			AirQualityIndex: round(r.Uniform(0, 300), 1),
			Temperature:     round(r.Uniform(10, 40), 1),
			Humidity:        r.IntRange(30, 95),
			NoiseLevel:      r.IntRange(40, 110),
		},
		Energy: Energy{
			UsageKWh:            r.IntRange(500, 5000),
			SolarProduction:     r.IntRange(100, 1000),
			GridDemand:          r.IntRange(400, 4000),
			RenewablePercentage: round(r.Uniform(20, 80), 1),
		},
		Infrastructure: Infrastructure{
			PublicTransportUsage: r.IntRange(200, 2000),
			ParkingAvailability:  r.IntRange(0, 100),
			WasteLevel:           r.IntRange(0, 100),
			WaterConsumption:     r.IntRange(1000, 10000),
		},
	}
}

// Overview returns every region together with a city summary.
func (s *Simulator) Overview() Overview {
	now := s.now()
	regions := make([]RegionSnapshot, 0, len(s.regions))
	for _, name := range s.regions {
		regions = append(regions, s.snapshot(name, now))
	}
	return Overview{
		Timestamp:     now,
		OverallStatus: rng.Pick(s.r, overallStatuses),
		Regions:       regions,
		CitySummary: Summary{
			TotalEnergyUsage:      s.r.IntRange(10000, 50000),
			AvgTrafficCongestion:  s.r.IntRange(20, 80),
			AirQualityStatus:      rng.Pick(s.r, airQualityLabels),
			PublicTransportRiders: s.r.IntRange(5000, 50000),
		},
	}
}

// Incidents returns zero to five incidents ordered by priority, highest
// first. Ties keep their generation order.
func (s *Simulator) Incidents() []Incident {
	now := s.now()
	n := s.r.IntRange(0, maxIncidents)
	out := make([]Incident, 0, n)
	for i := 0; i < n; i++ {
		kind := s.incidents[s.r.Intn(len(s.incidents))]
		subtype := rng.Pick(s.r, kind.Subtypes)
		out = append(out, Incident{
			ID:        i + 1,
			Type:      kind.Type,
			Subtype:   subtype,
			Region:    rng.Pick(s.r, s.regions),
			Level:     rng.Pick(s.r, incidentLevels),
			Message:   fmt.Sprintf("%s detected in %s", subtype, rng.Pick(s.r, s.regions)),
			Timestamp: now.Add(-time.Duration(s.r.IntRange(0, 60)) * time.Minute),
			Status:    rng.Pick(s.r, incidentStatuses),
			Priority:  s.r.IntRange(1, 5),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// Predictions returns exactly 24 hourly entries starting at the current hour.
func (s *Simulator) Predictions() []HourlyPrediction {
	now := s.now()
	out := make([]HourlyPrediction, 0, forecastHours)
	for h := 0; h < forecastHours; h++ {
		at := now.Add(time.Duration(h) * time.Hour)
		out = append(out, HourlyPrediction{
			Hour:                   at.Hour(),
			Timestamp:              at,
			TrafficPrediction:      s.r.IntRange(0, 100),
			EnergyDemandPrediction: s.r.IntRange(10000, 60000),
			AirQualityPrediction:   round(s.r.Uniform(0, 300), 1),
			ProbabilityIncident:    round(s.r.Uniform(0, 0.3), 2),
		})
	}
	return out
}

// Historical returns hours buckets one hour apart, oldest first, the last
// one an hour before now.
func (s *Simulator) Historical(hours int) ([]HistoricalBucket, error) {
	if hours <= 0 || hours > MaxHistoryHours {
		return nil, fmt.Errorf("hours must be within 1..%d, got %d", MaxHistoryHours, hours)
	}
	start := s.now().Add(-time.Duration(hours) * time.Hour)
	out := make([]HistoricalBucket, 0, hours)
	for i := 0; i < hours; i++ {
		out = append(out, HistoricalBucket{
			Timestamp:       start.Add(time.Duration(i) * time.Hour),
			Traffic:         s.r.IntRange(0, 100),
			EnergyUsage:     s.r.IntRange(10000, 60000),
			AirQuality:      round(s.r.Uniform(0, 300), 1),
			PublicTransport: s.r.IntRange(1000, 10000),
			Incidents:       s.r.IntRange(0, 10),
		})
	}
	return out, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
