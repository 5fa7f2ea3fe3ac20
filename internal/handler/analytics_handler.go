package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-admin/internal/dto"
	"github.com/noah-isme/teacher-admin/internal/models"
	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
	"github.com/noah-isme/teacher-admin/pkg/response"
)

type analyticsService interface {
	Summary(ctx context.Context, filter models.FilterState) (*dto.AnalyticsResponse, error)
}

type chartExporter interface {
	ExportChart(ctx context.Context, chart models.ChartTab, filter models.FilterState) (*models.ExportResult, error)
	ChartPNG(ctx context.Context, chart models.ChartTab, filter models.FilterState) ([]byte, error)
}

// AnalyticsHandler exposes chart data and chart exports.
type AnalyticsHandler struct {
	analytics analyticsService
	exports   chartExporter
	loc       *time.Location
}

// NewAnalyticsHandler constructs an analytics handler.
func NewAnalyticsHandler(analytics analyticsService, exports chartExporter, loc *time.Location) *AnalyticsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsHandler{analytics: analytics, exports: exports, loc: loc}
}

// Summary godoc
// @Summary Analytics summary
// @Description Status, location and monthly trend series over the filtered roster.
// @Tags Analytics
// @Security BearerAuth
// @Produce json
// @Param name query string false "Name contains"
// @Param status query string false "Status"
// @Param role query string false "Role"
// @Param location query string false "Location"
// @Param from query string false "Created on/after"
// @Param to query string false "Created on/before"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /analytics [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	summary, err := h.analytics.Summary(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Export godoc
// @Summary Export analytics chart
// @Description Rasterise the selected chart to analytics.png and a landscape analytics.pdf. An unknown chart writes nothing and returns 204.
// @Tags Exports
// @Security BearerAuth
// @Produce json
// @Param chart query string true "status, location or trend"
// @Param role query string false "Role"
// @Param location query string false "Location"
// @Success 201 {object} response.Envelope
// @Success 204
// @Failure 502 {object} response.Envelope
// @Router /analytics/export [post]
func (h *AnalyticsHandler) Export(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	var req dto.ExportChartRequest
	_ = c.ShouldBindQuery(&req)
	if req.Chart == "" {
		_ = c.ShouldBindJSON(&req)
	}

	result, err := h.exports.ExportChart(c.Request.Context(), req.Chart, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result == nil {
		response.NoContent(c)
		return
	}
	response.Created(c, result)
}

// Chart godoc
// @Summary Chart image
// @Tags Analytics
// @Security BearerAuth
// @Produce png
// @Param chart query string true "status, location or trend"
// @Success 200 {file} binary
// @Success 204
// @Router /analytics/chart.png [get]
func (h *AnalyticsHandler) Chart(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	png, err := h.exports.ChartPNG(c.Request.Context(), models.ChartTab(c.Query("chart")), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if png == nil {
		response.NoContent(c)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *AnalyticsHandler) bindFilter(c *gin.Context) (models.FilterState, bool) {
	var params dto.FilterQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid filter parameters"))
		return models.FilterState{}, false
	}
	filter, err := params.FilterState(h.loc)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, err.Error()))
		return models.FilterState{}, false
	}
	return filter, true
}
