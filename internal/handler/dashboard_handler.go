package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-admin/internal/dto"
	"github.com/noah-isme/teacher-admin/internal/middleware"
	"github.com/noah-isme/teacher-admin/internal/service"
	"github.com/noah-isme/teacher-admin/pkg/response"
)

type dashboardService interface {
	Stats(ctx context.Context) (*dto.DashboardResponse, error)
	Refresh(ctx context.Context, trigger string) (*service.Snapshot, error)
}

// DashboardHandler exposes the stats cards.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs a dashboard handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Stats godoc
// @Summary Dashboard statistics
// @Description Counters derived from the latest record snapshot, refreshed in the background.
// @Tags Dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetSnapshotSeq(c, stats.SnapshotSeq)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ResponseMeta(c))
}

// Refresh godoc
// @Summary Refresh dashboard
// @Description Fetch the record set now. A slower, older fetch finishing later never replaces this result.
// @Tags Dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /dashboard/refresh [post]
func (h *DashboardHandler) Refresh(c *gin.Context) {
	if _, err := h.service.Refresh(c.Request.Context(), service.TriggerManual); err != nil {
		response.Error(c, err)
		return
	}
	h.Stats(c)
}
