// v0
// internal/simulator/analytics.go
package simulator

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"ssacity/api/internal/models"
	"ssacity/api/internal/rng"
)

var topLocations = []string{"CBD", "Westlands", "Kilimani", "Eastleigh"}

// MatchZoneBins returns the bins whose location contains the first word of
// the zone name. The match is a case-sensitive substring test and is loose
// on purpose: "Central Business District" matches nothing among the Nairobi
// locations (they are labelled CBD_*), while a zone named "Karen & Langata"
// picks up Karen_Hardy and would also pick up any "Karen" substring elsewhere.
func MatchZoneBins(zone models.CityZone, bins []models.SmartBin) []models.SmartBin {
	fields := strings.Fields(zone.Name)
	if len(fields) == 0 {
		return nil
	}
	token := fields[0]
	var out []models.SmartBin
	for _, b := range bins {
		if strings.Contains(b.Location, token) {
			out = append(out, b)
		}
	}
	return out
}

// ZoneAnalytics returns one record per zone in table order.
func (s *Simulator) ZoneAnalytics() []models.ZoneAnalytics {
	bins := s.Bins()
	out := make([]models.ZoneAnalytics, 0, len(s.zones))
	for _, z := range s.zones {
		matched := MatchZoneBins(z, bins)
		out = append(out, models.ZoneAnalytics{
			ZoneID:               z.ZoneID,
			Name:                 z.Name,
			SmartBinCount:        z.SmartBinCount,
			MatchedBins:          len(matched),
			ActiveBins:           countActive(matched),
			AvgFillLevel:         round1(meanFill(matched)),
			WastePerDayKg:        z.AvgWastePerDay,
			PriorityLevel:        z.PriorityLevel,
			CollectionEfficiency: s.analyticsRand.Uniform(75, 98),
		})
	}
	return out
}

// OperationalKPIs rolls up the current bins together with a few random
// dashboard figures.
func (s *Simulator) OperationalKPIs() models.OperationalKPIs {
	bins := s.Bins()
	ticks, last := s.TickStats()
	k := models.OperationalKPIs{
		TotalBins:             len(bins),
		AvgFillLevel:          round1(meanFill(bins)),
		ActiveAlerts:          len(GenerateAlerts(bins, s.now(), s.alertRand)),
		TotalCollectionsToday: s.analyticsRand.IntRange(15, 25),
		TotalWasteCollectedKg: round1(s.analyticsRand.Uniform(5000, 15000)),
		AvgRouteEfficiency:    round1(s.analyticsRand.Uniform(75, 95)),
		CollectionCoverage:    round1(s.analyticsRand.Uniform(85, 98)),
		TickCount:             ticks,
		LastTick:              last,
	}
	for _, b := range bins {
		if b.FillLevel > OverflowFillThreshold {
			k.CriticalBins++
		}
		if b.FillLevel > 80 {
			k.BinsAbove80++
		}
		if !b.IsActive() {
			k.BinsOffline++
		}
		if b.BatteryLevel < LowBatteryThreshold {
			k.LowBatteryBins++
		}
	}
	return k
}

// PlatformMetrics returns citizen engagement figures. They are independent
// draws and do not depend on bin state.
func (s *Simulator) PlatformMetrics() models.PlatformMetrics {
	r := s.analyticsRand
	return models.PlatformMetrics{
		TotalUsers:        r.IntRange(1500, 2000),
		ActiveUsers:       r.IntRange(800, 1200),
		AvgSeparationRate: round1(r.Uniform(45, 85)),
		TotalRewards:      round2(r.Uniform(50000, 150000)),
		UserGrowth:        round1(r.Uniform(5, 15)),
		TopLocation:       rng.Pick(r, topLocations),
	}
}

func countActive(bins []models.SmartBin) int {
	n := 0
	for _, b := range bins {
		if b.IsActive() {
			n++
		}
	}
	return n
}

func meanFill(bins []models.SmartBin) float64 {
	if len(bins) == 0 {
		return 0
	}
	levels := make([]float64, len(bins))
	for i, b := range bins {
		levels[i] = b.FillLevel
	}
	return stat.Mean(levels, nil)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
