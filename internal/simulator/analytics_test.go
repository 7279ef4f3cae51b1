// v0
// internal/simulator/analytics_test.go
package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssacity/api/internal/models"
	"ssacity/api/internal/rng"
)

func bin(id, loc string, fill, battery float64, status models.BinStatus) models.SmartBin {
	return models.SmartBin{BinID: id, Location: loc, FillLevel: fill, BatteryLevel: battery, Temperature: 25, Status: status}
}

func TestGenerateAlertsExactCoverage(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	bins := []models.SmartBin{
		bin("BIN_001", "A", 85, 20, models.StatusActive),    // neither: thresholds are strict
		bin("BIN_002", "B", 90, 50, models.StatusActive),    // overflow high
		bin("BIN_003", "C", 97, 10, models.StatusOffline),   // overflow critical + battery
		bin("BIN_004", "D", 10, 19.99, models.StatusActive), // battery only
		bin("BIN_005", "E", 50, 60, models.StatusActive),    // none
	}
	alerts := GenerateAlerts(bins, now, rng.New(1).For(rng.SubsystemAlerts))
	require.Len(t, alerts, 4)

	assert.Equal(t, models.AlertOverflowRisk, alerts[0].Type)
	assert.Equal(t, "BIN_002", alerts[0].BinID)
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
	assert.InDelta(t, 0.90, alerts[0].Confidence, 1e-9)
	assert.Equal(t, "ALERT_BIN_002_1717228800", alerts[0].AlertID)
	assert.Equal(t, "Schedule collection for B", alerts[0].RecommendedAction)
	lead := alerts[0].PredictedTime.Sub(now)
	assert.GreaterOrEqual(t, lead, time.Hour)
	assert.LessOrEqual(t, lead, 6*time.Hour)
	assert.Zero(t, lead%time.Hour)

	assert.Equal(t, models.AlertOverflowRisk, alerts[1].Type)
	assert.Equal(t, models.SeverityCritical, alerts[1].Severity)
	assert.InDelta(t, 0.95, alerts[1].Confidence, 1e-9, "confidence is capped")

	assert.Equal(t, models.AlertMaintenanceNeeded, alerts[2].Type)
	assert.Equal(t, "BIN_003", alerts[2].BinID)
	assert.Equal(t, "BATT_BIN_003_1717228800", alerts[2].AlertID)
	assert.Equal(t, models.SeverityMedium, alerts[2].Severity)
	assert.Equal(t, 0.8, alerts[2].Confidence)
	assert.Equal(t, now.Add(7*24*time.Hour), alerts[2].PredictedTime)
	assert.Equal(t, "Replace battery at C", alerts[2].RecommendedAction)

	assert.Equal(t, "BIN_004", alerts[3].BinID)
}

func TestGenerateAlertsEmpty(t *testing.T) {
	alerts := GenerateAlerts(nil, time.Now(), rng.New(1).For("a"))
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestMatchZoneBinsIsLooseSubstring(t *testing.T) {
	bins := []models.SmartBin{
		bin("1", "CBD_Moi_Avenue", 0, 50, models.StatusActive),
		bin("2", "Westlands_Sarit", 0, 50, models.StatusActive),
		bin("3", "Upper_Westlands_Ext", 0, 50, models.StatusActive),
		bin("4", "westlands_lower", 0, 50, models.StatusActive),
	}
	got := MatchZoneBins(models.CityZone{Name: "Westlands & Parklands"}, bins)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].BinID)
	assert.Equal(t, "3", got[1].BinID)

	assert.Empty(t, MatchZoneBins(models.CityZone{Name: "Central Business District"}, bins))
	assert.Empty(t, MatchZoneBins(models.CityZone{Name: "   "}, bins))
}

func TestZoneAnalytics(t *testing.T) {
	sim := newTestSimulator(t, 21)
	require.NoError(t, sim.Collect("BIN_003")) // Westlands_Sarit
	analytics := sim.ZoneAnalytics()
	require.Len(t, analytics, 5)

	cbd := analytics[0]
	assert.Equal(t, "Z001", cbd.ZoneID)
	assert.Equal(t, 45, cbd.SmartBinCount)
	assert.Zero(t, cbd.MatchedBins)
	assert.Zero(t, cbd.AvgFillLevel)

	west := analytics[1]
	assert.Equal(t, 1, west.MatchedBins)
	assert.Equal(t, 1, west.ActiveBins)
	assert.Equal(t, 0.0, west.AvgFillLevel)
	assert.Equal(t, 7200.2, west.WastePerDayKg)
	assert.Equal(t, 4, west.PriorityLevel)

	for _, a := range analytics {
		assert.GreaterOrEqual(t, a.CollectionEfficiency, 75.0)
		assert.Less(t, a.CollectionEfficiency, 98.0)
	}
}

func TestOperationalKPIs(t *testing.T) {
	sim := newTestSimulator(t, 31)
	sim.Tick()
	bins := sim.Bins()
	k := sim.OperationalKPIs()

	assert.Equal(t, len(bins), k.TotalBins)
	assert.Equal(t, len(sim.Alerts()), k.ActiveAlerts)
	above80, offline := 0, 0
	for _, b := range bins {
		if b.FillLevel > 80 {
			above80++
		}
		if b.Status != models.StatusActive {
			offline++
		}
	}
	assert.Equal(t, above80, k.BinsAbove80)
	assert.Equal(t, offline, k.BinsOffline)
	assert.LessOrEqual(t, k.CriticalBins, k.BinsAbove80)

	assert.GreaterOrEqual(t, k.TotalCollectionsToday, 15)
	assert.LessOrEqual(t, k.TotalCollectionsToday, 25)
	assert.GreaterOrEqual(t, k.TotalWasteCollectedKg, 5000.0)
	assert.LessOrEqual(t, k.TotalWasteCollectedKg, 15000.0)
	assert.GreaterOrEqual(t, k.AvgRouteEfficiency, 75.0)
	assert.LessOrEqual(t, k.AvgRouteEfficiency, 95.0)
	assert.GreaterOrEqual(t, k.CollectionCoverage, 85.0)
	assert.LessOrEqual(t, k.CollectionCoverage, 98.0)
	assert.Equal(t, uint64(1), k.TickCount)
}

func TestPlatformMetricsRanges(t *testing.T) {
	sim := newTestSimulator(t, 41)
	for i := 0; i < 200; i++ {
		m := sim.PlatformMetrics()
		require.GreaterOrEqual(t, m.TotalUsers, 1500)
		require.LessOrEqual(t, m.TotalUsers, 2000)
		require.GreaterOrEqual(t, m.ActiveUsers, 800)
		require.LessOrEqual(t, m.ActiveUsers, 1200)
		require.GreaterOrEqual(t, m.AvgSeparationRate, 45.0)
		require.LessOrEqual(t, m.AvgSeparationRate, 85.0)
		require.GreaterOrEqual(t, m.TotalRewards, 50000.0)
		require.LessOrEqual(t, m.TotalRewards, 150000.0)
		require.GreaterOrEqual(t, m.UserGrowth, 5.0)
		require.LessOrEqual(t, m.UserGrowth, 15.0)
		require.Contains(t, topLocations, m.TopLocation)
	}
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 12.3, round1(12.34))
	assert.Equal(t, 12.35, round2(12.3456))
	assert.Equal(t, 0.0, meanFill(nil))
}
