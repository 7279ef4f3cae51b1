// v0
// internal/models/bin.go
package models

import "time"

// BinStatus is the operational state reported by a smart bin.
type BinStatus string

const (
	StatusActive      BinStatus = "active"
	StatusMaintenance BinStatus = "maintenance"
	StatusOffline     BinStatus = "offline"
)

// WasteType classifies what a bin collects.
type WasteType string

const (
	WastePlastic WasteType = "plastic"
	WasteOrganic WasteType = "organic"
	WasteMixed   WasteType = "mixed"
)

// WasteTypes lists the waste types a bin can be seeded with.
var WasteTypes = []WasteType{WastePlastic, WasteOrganic, WasteMixed}

// Sensor bounds. Every mutation of a SmartBin keeps its readings inside them.
const (
	MinFillLevel    = 0.0
	MaxFillLevel    = 100.0
	MinBatteryLevel = 0.0
	MaxBatteryLevel = 100.0
	MinTemperature  = 15.0
	MaxTemperature  = 35.0
)

// Location is a named point where a bin is installed.
type Location struct {
	Name string  `yaml:"name" json:"name"`
	Lat  float64 `yaml:"lat" json:"lat"`
	Lon  float64 `yaml:"lon" json:"lon"`
}

// SmartBin is the telemetry record of one simulated waste receptacle.
type SmartBin struct {
	BinID        string    `json:"bin_id"`
	Location     string    `json:"location"`
	GPSLat       float64   `json:"gps_lat"`
	GPSLon       float64   `json:"gps_lon"`
	FillLevel    float64   `json:"fill_level"`
	Temperature  float64   `json:"temperature"`
	BatteryLevel float64   `json:"battery_level"`
	LastEmptied  time.Time `json:"last_emptied"`
	Status       BinStatus `json:"status"`
	WasteType    WasteType `json:"waste_type"`
}

// IsActive reports whether the bin is currently in service.
func (b SmartBin) IsActive() bool {
	return b.Status == StatusActive
}
