// v0
// internal/export/xlsx.go
package export

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"ssacity/api/internal/models"
)

// Sheet names in the generated workbook.
const (
	SheetBins  = "Smart Bins"
	SheetZones = "Zone Analytics"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	binHeaders = []string{
		"Bin ID", "Location", "Latitude", "Longitude", "Fill Level (%)",
		"Temperature (°C)", "Battery (%)", "Last Emptied", "Status", "Waste Type",
	}
	binWidths = []float64{12, 20, 12, 12, 14, 16, 12, 22, 14, 12}

	zoneHeaders = []string{
		"Zone ID", "Name", "Smart Bins", "Matched Bins", "Active Bins",
		"Avg Fill (%)", "Waste/Day (kg)", "Priority", "Collection Efficiency (%)",
	}
	zoneWidths = []float64{10, 28, 12, 14, 12, 12, 16, 10, 24}
)

// Workbook renders bins and zone analytics into an xlsx document.
func Workbook(bins []models.SmartBin, zones []models.ZoneAnalytics) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	binRows := make([][]interface{}, 0, len(bins))
	for _, b := range bins {
		binRows = append(binRows, []interface{}{
			b.BinID, b.Location, b.GPSLat, b.GPSLon, round1(b.FillLevel),
			round1(b.Temperature), round1(b.BatteryLevel), b.LastEmptied.UTC().Format(time.RFC3339),
			string(b.Status), string(b.WasteType),
		})
	}
	if err := writeSheet(f, SheetBins, binHeaders, binWidths, binRows, style); err != nil {
		return nil, err
	}

	zoneRows := make([][]interface{}, 0, len(zones))
	for _, z := range zones {
		zoneRows = append(zoneRows, []interface{}{
			z.ZoneID, z.Name, z.SmartBinCount, z.MatchedBins, z.ActiveBins,
			z.AvgFillLevel, z.WastePerDayKg, z.PriorityLevel, round1(z.CollectionEfficiency),
		})
	}
	if err := writeSheet(f, SheetZones, zoneHeaders, zoneWidths, zoneRows, style); err != nil {
		return nil, err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(SheetBins)
	if err != nil {
		return nil, fmt.Errorf("find sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, headers []string, widths []float64, rows [][]interface{}, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, header); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("style header %s: %w", cell, err)
		}
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if col < len(widths) {
			if err := f.SetColWidth(name, colName, colName, widths[col]); err != nil {
				return fmt.Errorf("set width %s: %w", colName, err)
			}
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header %s: %w", name, err)
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
