// v0
// internal/models/zone.go
package models

// CollectionFrequency is how often a zone is serviced.
type CollectionFrequency string

const (
	FrequencyDaily    CollectionFrequency = "daily"
	FrequencyBiWeekly CollectionFrequency = "bi-weekly"
	FrequencyWeekly   CollectionFrequency = "weekly"
)

// CityZone is static reference data describing a reporting area.
type CityZone struct {
	ZoneID              string              `yaml:"zone_id" json:"zone_id"`
	Name                string              `yaml:"name" json:"name"`
	Population          int                 `yaml:"population" json:"population"`
	SmartBinCount       int                 `yaml:"smart_bin_count" json:"smart_bin_count"`
	AvgWastePerDay      float64             `yaml:"avg_waste_per_day" json:"avg_waste_per_day"`
	CollectionFrequency CollectionFrequency `yaml:"collection_frequency" json:"collection_frequency"`
	PriorityLevel       int                 `yaml:"priority_level" json:"priority_level"`
}

// ZoneAnalytics combines a zone's static attributes with the live state of
// the bins matched to it.
type ZoneAnalytics struct {
	ZoneID               string  `json:"zone_id"`
	Name                 string  `json:"name"`
	SmartBinCount        int     `json:"smart_bin_count"`
	MatchedBins          int     `json:"matched_bins"`
	ActiveBins           int     `json:"active_bins"`
	AvgFillLevel         float64 `json:"avg_fill_level"`
	WastePerDayKg        float64 `json:"waste_per_day_kg"`
	PriorityLevel        int     `json:"priority_level"`
	CollectionEfficiency float64 `json:"collection_efficiency"`
}
