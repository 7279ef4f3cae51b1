// v0
// internal/models/kpi.go
package models

import "time"

// OperationalKPIs rolls the current bin state up into dashboard figures.
// Fields drawn at random carry no signal and only stay within their ranges.
type OperationalKPIs struct {
	TotalBins             int       `json:"total_bins"`
	AvgFillLevel          float64   `json:"avg_fill_level"`
	CriticalBins          int       `json:"critical_bins"`
	BinsAbove80           int       `json:"bins_above_80"`
	BinsOffline           int       `json:"bins_offline"`
	LowBatteryBins        int       `json:"low_battery_bins"`
	ActiveAlerts          int       `json:"active_alerts"`
	TotalCollectionsToday int       `json:"total_collections_today"`
	TotalWasteCollectedKg float64   `json:"total_waste_collected_kg"`
	AvgRouteEfficiency    float64   `json:"avg_route_efficiency"`
	CollectionCoverage    float64   `json:"collection_coverage"`
	TickCount             uint64    `json:"tick_count"`
	LastTick              time.Time `json:"last_tick"`
}

// PlatformMetrics describes the citizen engagement side of the platform.
type PlatformMetrics struct {
	TotalUsers        int     `json:"total_users"`
	ActiveUsers       int     `json:"active_users"`
	AvgSeparationRate float64 `json:"avg_separation_rate"`
	TotalRewards      float64 `json:"total_rewards"`
	UserGrowth        float64 `json:"user_growth"`
	TopLocation       string  `json:"top_location"`
}
