package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "summary"
	rowsSheet    = "rows"
	costsSheet   = "costs"
)

// BuildSiteXLSX renders the site design as a workbook with a summary, a
// device-per-line rows sheet and the cost breakdown.
func BuildSiteXLSX(in Input) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{rowsSheet, costsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	site, summary, est := in.Site, in.Summary, in.Estimate

	_ = f.SetCellValue(summarySheet, "A1", "Site Report")
	summaryRows := [][2]interface{}{
		{"Site", site.Name},
		{"Path", site.Path},
		{"Address", site.Address},
		{"Stage", site.Stage},
		{"Generated", generatedAt(in).Format(time.RFC3339)},
		{"Devices", summary.DeviceCount},
		{"Rows", summary.RowCount},
		{"Total Capacity (kWh)", summary.TotalCapacity},
		{"Device Area", summary.DeviceArea},
		{"Footprint Area", summary.FootprintArea},
		{"Buffer Width", summary.Buffer.Width},
		{"Buffer Length", summary.Buffer.Length},
		{"Buffer Area", summary.Buffer.Area},
		{"Hardware Cost", est.HardwareCost},
		{"Total Cost", est.TotalCost},
	}
	for i, kv := range summaryRows {
		row := i + 3
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), kv[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), kv[1])
	}

	headers := []string{"Row", "Device", "Manufacturer", "Category", "Instance", "X", "Y", "Width", "Length", "Capacity (kWh)", "Cost"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(rowsSheet, cell, h)
	}
	line := 2
	for r, row := range in.Layout {
		for _, d := range row {
			values := []interface{}{
				r + 1, d.Name, d.Manufacturer, string(d.Category), d.InstanceID,
				coordinate(d.X), coordinate(d.Y), d.Width, d.Length, d.CapacityKWh, d.Cost,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, line)
				_ = f.SetCellValue(rowsSheet, cell, v)
			}
			line++
		}
	}

	_ = f.SetCellValue(costsSheet, "A1", "Item")
	_ = f.SetCellValue(costsSheet, "B1", "Amount")
	_ = f.SetCellValue(costsSheet, "A2", "Hardware")
	_ = f.SetCellValue(costsSheet, "B2", est.HardwareCost)
	for i, l := range est.Lines {
		row := i + 3
		_ = f.SetCellValue(costsSheet, fmt.Sprintf("A%d", row), l.Display)
		_ = f.SetCellValue(costsSheet, fmt.Sprintf("B%d", row), l.Amount)
	}
	totalRow := len(est.Lines) + 3
	_ = f.SetCellValue(costsSheet, fmt.Sprintf("A%d", totalRow), "Total")
	_ = f.SetCellValue(costsSheet, fmt.Sprintf("B%d", totalRow), est.TotalCost)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
