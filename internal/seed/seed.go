// v0
// internal/seed/seed.go
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ssacity/api/internal/models"
)

//go:embed tables.yaml
var defaultTables []byte

// IncidentType groups the incident subtypes raised for one domain.
type IncidentType struct {
	Type     string   `yaml:"type"`
	Subtypes []string `yaml:"subtypes"`
}

// Tables is the static reference data the simulators start from.
type Tables struct {
	Locations     []models.Location `yaml:"locations"`
	Zones         []models.CityZone `yaml:"zones"`
	Regions       []string          `yaml:"regions"`
	IncidentTypes []IncidentType    `yaml:"incident_types"`
}

// Default returns the built-in Nairobi tables.
func Default() (Tables, error) {
	return parse(defaultTables)
}

// Load reads tables from path, or returns the built-in tables when path is
// empty. Unknown keys are rejected so typos surface at boot.
func Load(path string) (Tables, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read seed tables: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (Tables, error) {
	var t Tables
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return Tables{}, fmt.Errorf("parse seed tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tables{}, err
	}
	return t, nil
}

// Validate checks that every table is populated and internally consistent.
func (t Tables) Validate() error {
	if len(t.Locations) == 0 {
		return errors.New("seed tables: at least one location required")
	}
	seen := make(map[string]struct{}, len(t.Locations))
	for i, loc := range t.Locations {
		if strings.TrimSpace(loc.Name) == "" {
			return fmt.Errorf("seed tables: location %d has no name", i)
		}
		if _, dup := seen[loc.Name]; dup {
			return fmt.Errorf("seed tables: duplicate location %q", loc.Name)
		}
		seen[loc.Name] = struct{}{}
	}
	for i, z := range t.Zones {
		if z.ZoneID == "" || strings.TrimSpace(z.Name) == "" {
			return fmt.Errorf("seed tables: zone %d needs zone_id and name", i)
		}
		switch z.CollectionFrequency {
		case models.FrequencyDaily, models.FrequencyBiWeekly, models.FrequencyWeekly:
		default:
			return fmt.Errorf("seed tables: zone %s has unknown collection_frequency %q", z.ZoneID, z.CollectionFrequency)
		}
		if z.PriorityLevel < 1 || z.PriorityLevel > 5 {
			return fmt.Errorf("seed tables: zone %s priority_level must be within 1..5", z.ZoneID)
		}
	}
	if len(t.Regions) == 0 {
		return errors.New("seed tables: at least one region required")
	}
	if len(t.IncidentTypes) == 0 {
		return errors.New("seed tables: at least one incident type required")
	}
	for _, it := range t.IncidentTypes {
		if len(it.Subtypes) == 0 {
			return fmt.Errorf("seed tables: incident type %q has no subtypes", it.Type)
		}
	}
	return nil
}
