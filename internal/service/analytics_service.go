package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teacher-admin/internal/dto"
	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/internal/roster"
	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
)

// AnalyticsService builds chart series over a fresh fetch of the record set.
type AnalyticsService struct {
	records recordLister
	loc     *time.Location
	logger  *zap.Logger
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(records recordLister, loc *time.Location, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{records: records, loc: loc, logger: logger}
}

// Summary fetches every record, applies filter and summarises the result.
// Dropdown options come from the unfiltered set.
func (s *AnalyticsService) Summary(ctx context.Context, filter models.FilterState) (*dto.AnalyticsResponse, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		s.logger.Warn("analytics fetch failed", zap.Error(err))
		return nil, appErrors.Upstream(err, "Failed to load teachers")
	}

	filtered := roster.Filter(records, filter)
	return &dto.AnalyticsResponse{
		Total:     len(filtered),
		Status:    roster.StatusSummary(filtered),
		Location:  roster.LocationSummary(filtered),
		Trend:     roster.MonthlyTrend(filtered, s.loc),
		Roles:     roster.Roles(records),
		Locations: roster.Locations(records),
		Filter:    filter,
	}, nil
}
