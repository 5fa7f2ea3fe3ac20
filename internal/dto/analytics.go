package dto

import (
	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/internal/roster"
)

// AnalyticsResponse carries every chart series for the analytics view.
type AnalyticsResponse struct {
	Total     int                `json:"total"`
	Status    []roster.Bucket    `json:"status"`
	Location  []roster.Bucket    `json:"location"`
	Trend     []roster.Bucket    `json:"trend"`
	Roles     []string           `json:"roles"`
	Locations []string           `json:"locations"`
	Filter    models.FilterState `json:"filter"`
}

// Series returns the buckets behind a chart tab, or false for unknown tabs.
func (r *AnalyticsResponse) Series(tab models.ChartTab) ([]roster.Bucket, bool) {
	switch tab {
	case models.ChartStatus:
		return r.Status, true
	case models.ChartLocation:
		return r.Location, true
	case models.ChartTrend:
		return r.Trend, true
	default:
		return nil, false
	}
}

// ExportChartRequest selects the chart to export. Filter fields come from the
// query string.
type ExportChartRequest struct {
	Chart models.ChartTab `json:"chart" form:"chart"`
}
