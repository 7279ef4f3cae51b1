// v0
// internal/city/models.go
package city

import "time"

// RegionSnapshot is a synthetic reading set for one city region.
type RegionSnapshot struct {
	Region         string         `json:"region"`
	Timestamp      time.Time      `json:"timestamp"`
	Traffic        Traffic        `json:"traffic"`
	Environment    Environment    `json:"environment"`
	Energy         Energy         `json:"energy"`
	Infrastructure Infrastructure `json:"infrastructure"`
}

type Traffic struct {
	Level             int    `json:"level"`
	Congestion        string `json:"congestion"`
	VehiclesPerMinute int    `json:"vehicles_per_minute"`
	AvgSpeed          int    `json:"avg_speed"`
}

type Environment struct {
	AirQualityIndex float64 `json:"air_quality_index"`
	Temperature     float64 `json:"temperature"`
	Humidity        int     `json:"humidity"`
	NoiseLevel      int     `json:"noise_level"`
}

type Energy struct {
	UsageKWh            int     `json:"usage_kwh"`
	SolarProduction     int     `json:"solar_production"`
	GridDemand          int     `json:"grid_demand"`
	RenewablePercentage float64 `json:"renewable_percentage"`
}

type Infrastructure struct {
	PublicTransportUsage int `json:"public_transport_usage"`
	ParkingAvailability  int `json:"parking_availability"`
	WasteLevel           int `json:"waste_level"`
	WaterConsumption     int `json:"water_consumption"`
}

// Overview is the city-wide dashboard: every region plus a summary.
type Overview struct {
	Timestamp     time.Time        `json:"timestamp"`
	OverallStatus string           `json:"overall_status"`
	Regions       []RegionSnapshot `json:"regions"`
	CitySummary   Summary          `json:"city_summary"`
}

type Summary struct {
	TotalEnergyUsage      int    `json:"total_energy_usage"`
	AvgTrafficCongestion  int    `json:"avg_traffic_congestion"`
	AirQualityStatus      string `json:"air_quality_status"`
	PublicTransportRiders int    `json:"public_transport_riders"`
}

// Incident is a synthetic operational event raised against a region.
type Incident struct {
	ID        int       `json:"id"`
	Type      string    `json:"type"`
	Subtype   string    `json:"subtype"`
	Region    string    `json:"region"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Priority  int       `json:"priority"`
}

// HourlyPrediction is one entry of the 24 hour forecast.
type HourlyPrediction struct {
	Hour                   int       `json:"hour"`
	Timestamp              time.Time `json:"timestamp"`
	TrafficPrediction      int       `json:"traffic_prediction"`
	EnergyDemandPrediction int       `json:"energy_demand_prediction"`
	AirQualityPrediction   float64   `json:"air_quality_prediction"`
	ProbabilityIncident    float64   `json:"probability_incident"`
}

// HistoricalBucket is one hour of synthetic history.
type HistoricalBucket struct {
	Timestamp       time.Time `json:"timestamp"`
	Traffic         int       `json:"traffic"`
	EnergyUsage     int       `json:"energy_usage"`
	AirQuality      float64   `json:"air_quality"`
	PublicTransport int       `json:"public_transport"`
	Incidents       int       `json:"incidents"`
}
