// Package report exports a site design as a spreadsheet or a printable PDF.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KevinKickass/OpenSitePlanner/internal/estimate"
	"github.com/KevinKickass/OpenSitePlanner/internal/layout"
	"github.com/KevinKickass/OpenSitePlanner/internal/observability/metrics"
	"github.com/KevinKickass/OpenSitePlanner/internal/types"
)

var ErrUnsupportedFormat = errors.New("unsupported report format")

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts "xlsx" or "pdf" in any case. An empty value means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Input is everything a report renders.
type Input struct {
	Site        types.Site
	Layout      types.Layout
	Summary     layout.Summary
	Estimate    estimate.Estimate
	GeneratedAt time.Time
}

// Filename is the download name for the site report.
func Filename(site types.Site, f Format) string {
	name := site.Path
	if name == "" {
		name = site.ID
	}
	return fmt.Sprintf("%s-report.%s", name, f)
}

// Build renders the report in the requested format.
func Build(f Format, in Input) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	switch f {
	case FormatXLSX:
		data, err = BuildSiteXLSX(in)
	case FormatPDF:
		data, err = BuildSitePDF(in)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}

	metrics.ObserveReport(string(f), err)
	return data, err
}

func generatedAt(in Input) time.Time {
	if in.GeneratedAt.IsZero() {
		return time.Now().UTC()
	}
	return in.GeneratedAt
}

func coordinate(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *p)
}
