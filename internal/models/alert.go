// v1
// internal/models/alert.go
package models

import "time"

// AlertType classifies a predictive alert.
type AlertType string

const (
	AlertOverflowRisk      AlertType = "overflow_risk"
	AlertMaintenanceNeeded AlertType = "maintenance_needed"
)

// Severity ranks an alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// PredictiveAlert is generated on every read and never stored.
type PredictiveAlert struct {
	AlertID           string    `json:"alert_id"`
	Type              AlertType `json:"type"`
	BinID             string    `json:"bin_id"`
	Location          string    `json:"location"`
	Severity          Severity  `json:"severity"`
	PredictedTime     time.Time `json:"predicted_time"`
	Confidence        float64   `json:"confidence"`
	RecommendedAction string    `json:"recommended_action"`
}
