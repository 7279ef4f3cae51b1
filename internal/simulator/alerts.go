// v0
// internal/simulator/alerts.go
package simulator

import (
	"fmt"
	"math"
	"time"

	"ssacity/api/internal/models"
	"ssacity/api/internal/rng"
)

// Alert thresholds.
const (
	OverflowFillThreshold = 85.0
	CriticalFillThreshold = 95.0
	LowBatteryThreshold   = 20.0

	overflowMaxConfidence = 0.95
	batteryConfidence     = 0.8
	batteryLeadTime       = 7 * 24 * time.Hour
)

// Alerts evaluates the current bins and returns fresh alerts.
func (s *Simulator) Alerts() []models.PredictiveAlert {
	return GenerateAlerts(s.Bins(), s.now(), s.alertRand)
}

// GenerateAlerts emits one overflow_risk alert per bin above the overflow
// threshold and one maintenance_needed alert per bin below the battery
// threshold, in bin order. Nothing is deduplicated across calls.
func GenerateAlerts(bins []models.SmartBin, now time.Time, r *rng.Stream) []models.PredictiveAlert {
	alerts := make([]models.PredictiveAlert, 0)
	stamp := now.Unix()
	for _, b := range bins {
		if b.FillLevel > OverflowFillThreshold {
			severity := models.SeverityHigh
			if b.FillLevel > CriticalFillThreshold {
				severity = models.SeverityCritical
			}
			alerts = append(alerts, models.PredictiveAlert{
				AlertID:           fmt.Sprintf("ALERT_%s_%d", b.BinID, stamp),
				Type:              models.AlertOverflowRisk,
				BinID:             b.BinID,
				Location:          b.Location,
				Severity:          severity,
				PredictedTime:     now.Add(time.Duration(r.IntRange(1, 6)) * time.Hour),
				Confidence:        math.Min(overflowMaxConfidence, b.FillLevel/100),
				RecommendedAction: "Schedule collection for " + b.Location,
			})
		}
		if b.BatteryLevel < LowBatteryThreshold {
			alerts = append(alerts, models.PredictiveAlert{
				AlertID:           fmt.Sprintf("BATT_%s_%d", b.BinID, stamp),
				Type:              models.AlertMaintenanceNeeded,
				BinID:             b.BinID,
				Location:          b.Location,
				Severity:          models.SeverityMedium,
				PredictedTime:     now.Add(batteryLeadTime),
				Confidence:        batteryConfidence,
				RecommendedAction: "Replace battery at " + b.Location,
			})
		}
	}
	return alerts
}
