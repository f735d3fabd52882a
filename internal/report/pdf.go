package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// BuildSitePDF renders a one-page site summary followed by the device table
// and cost breakdown.
func BuildSitePDF(in Input) ([]byte, error) {
	site, summary, est := in.Site, in.Summary, in.Estimate

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, fmt.Sprintf("Site Report: %s", site.Name))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Path: %s", site.Path))
	pdf.Ln(5)
	if site.Address != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Address: %s", site.Address))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Stage: %s", site.Stage))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt(in).Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Devices: %d in %d rows", summary.DeviceCount, summary.RowCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Capacity (kWh): %.1f", summary.TotalCapacity))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Buffer: %.1f x %.1f (%.1f)", summary.Buffer.Width, summary.Buffer.Length, summary.Buffer.Area))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(15, 6, "Row", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Device", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Category", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "X", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Y", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Capacity (kWh)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Cost", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for r, row := range in.Layout {
		for _, d := range row {
			pdf.CellFormat(15, 6, fmt.Sprintf("%d", r+1), "1", 0, "C", false, 0, "")
			pdf.CellFormat(45, 6, d.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, string(d.Category), "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 6, coordinate(d.X), "1", 0, "R", false, 0, "")
			pdf.CellFormat(20, 6, coordinate(d.Y), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%.1f", d.CapacityKWh), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", d.Cost), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 6, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(80, 6, "Hardware", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", est.HardwareCost), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	for _, l := range est.Lines {
		pdf.CellFormat(80, 6, l.Display, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", l.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 6, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", est.TotalCost), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
