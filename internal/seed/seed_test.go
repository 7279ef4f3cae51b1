// v0
// internal/seed/seed_test.go
package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssacity/api/internal/models"
)

func TestDefaultTables(t *testing.T) {
	tables, err := Default()
	require.NoError(t, err)

	require.Len(t, tables.Locations, 10)
	assert.Equal(t, "CBD_Moi_Avenue", tables.Locations[0].Name)
	assert.InDelta(t, -1.286389, tables.Locations[0].Lat, 1e-9)
	assert.Equal(t, "Runda_Muthaiga", tables.Locations[9].Name)

	require.Len(t, tables.Zones, 5)
	assert.Equal(t, models.CityZone{
		ZoneID:              "Z002",
		Name:                "Westlands & Parklands",
		Population:          280000,
		SmartBinCount:       38,
		AvgWastePerDay:      7200.2,
		CollectionFrequency: models.FrequencyDaily,
		PriorityLevel:       4,
	}, tables.Zones[1])
	assert.Equal(t, models.FrequencyBiWeekly, tables.Zones[3].CollectionFrequency)

	assert.Equal(t, []string{"Downtown", "Uptown", "Industrial", "Residential", "Commercial"}, tables.Regions)
	require.Len(t, tables.IncidentTypes, 4)
	assert.Equal(t, "Road Closure", tables.IncidentTypes[0].Subtypes[2])
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	tables, err := Load("")
	require.NoError(t, err)
	assert.Len(t, tables.Locations, 10)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locatons: []\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	body := `
locations:
  - {name: A, lat: 0, lon: 0}
  - {name: A, lat: 1, lon: 1}
regions: [North]
incident_types:
  - {type: Traffic, subtypes: [Accident]}
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate location")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
