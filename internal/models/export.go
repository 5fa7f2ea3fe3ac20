package models

import "time"

// ChartTab names an analytics chart.
type ChartTab string

const (
	ChartStatus   ChartTab = "status"
	ChartLocation ChartTab = "location"
	ChartTrend    ChartTab = "trend"
)

// ChartTabs lists the analytics tabs in display order.
var ChartTabs = []ChartTab{ChartStatus, ChartLocation, ChartTrend}

// Valid reports whether the tab is known.
func (c ChartTab) Valid() bool {
	return c == ChartStatus || c == ChartLocation || c == ChartTrend
}

// ExportFormat is a downloadable artifact type.
type ExportFormat string

const (
	FormatPNG  ExportFormat = "png"
	FormatPDF  ExportFormat = "pdf"
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ExportFile is one stored artifact with its signed download link.
type ExportFile struct {
	Format      ExportFormat `json:"format"`
	FileName    string       `json:"file_name"`
	ContentType string       `json:"content_type"`
	Token       string       `json:"token"`
	URL         string       `json:"url"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// ExportResult groups the artifacts produced by one export request.
type ExportResult struct {
	ID        string       `json:"id"`
	Chart     ChartTab     `json:"chart,omitempty"`
	Files     []ExportFile `json:"files"`
	CreatedAt time.Time    `json:"created_at"`
}
