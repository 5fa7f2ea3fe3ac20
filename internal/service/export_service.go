package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-admin/internal/dto"
	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/internal/roster"
	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
	"github.com/noah-isme/teacher-admin/pkg/export"
	"github.com/noah-isme/teacher-admin/pkg/jobs"
	"github.com/noah-isme/teacher-admin/pkg/raster"
	"github.com/noah-isme/teacher-admin/pkg/storage"
)

var (
	errExportLinkInvalid = appErrors.New("EXPORT_LINK_INVALID", http.StatusNotFound, "download link is invalid")
	errExportLinkExpired = appErrors.New("EXPORT_LINK_EXPIRED", http.StatusGone, "download link has expired")
)

var contentTypes = map[models.ExportFormat]string{
	models.FormatPNG:  "image/png",
	models.FormatPDF:  "application/pdf",
	models.FormatCSV:  "text/csv",
	models.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

var chartTitles = map[models.ChartTab]string{
	models.ChartStatus:   "Teachers by Status",
	models.ChartLocation: "Teachers by Location",
	models.ChartTrend:    "Teachers Added per Month",
}

type analyticsProvider interface {
	Summary(ctx context.Context, filter models.FilterState) (*dto.AnalyticsResponse, error)
}

type exportStorage interface {
	Save(relPath string, data []byte) (string, error)
	Read(relPath string) ([]byte, error)
	CleanupOlderThan(ttl time.Duration, now time.Time) ([]string, error)
}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	RenderImage(png []byte) ([]byte, error)
	RenderTable(data export.Dataset) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix    string
	RetentionTTL time.Duration
}

// Download is a stored export ready to stream.
type Download struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders charts and roster tables into stored files reachable
// through signed links.
type ExportService struct {
	analytics analyticsProvider
	records   recordLister
	storage   exportStorage
	signer    *storage.SignedURLSigner
	csv       tableRenderer
	xlsx      tableRenderer
	pdf       pdfRenderer
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService with the default renderers.
func NewExportService(analytics analyticsProvider, records recordLister, store exportStorage, signer *storage.SignedURLSigner, metrics *MetricsService, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RetentionTTL <= 0 {
		cfg.RetentionTTL = 24 * time.Hour
	}
	return &ExportService{
		analytics: analytics,
		records:   records,
		storage:   store,
		signer:    signer,
		csv:       export.NewCSVExporter(),
		xlsx:      export.NewXLSXExporter("Teachers"),
		pdf:       export.NewPDFExporter(),
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// ExportChart rasterises one analytics chart and stores it as analytics.png
// plus a landscape analytics.pdf. An unknown chart yields (nil, nil) and
// writes nothing.
func (s *ExportService) ExportChart(ctx context.Context, chart models.ChartTab, filter models.FilterState) (*models.ExportResult, error) {
	if !chart.Valid() {
		s.logger.Debug("chart export skipped", zap.String("chart", string(chart)))
		return nil, nil
	}
	png, err := s.ChartPNG(ctx, chart, filter)
	if err != nil {
		return nil, err
	}
	pdf, err := s.pdf.RenderImage(png)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render chart document")
	}

	result := s.newResult()
	result.Chart = chart
	for _, f := range []struct {
		format models.ExportFormat
		data   []byte
	}{{models.FormatPNG, png}, {models.FormatPDF, pdf}} {
		file, err := s.store(result.ID, "analytics", f.format, f.data)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, *file)
		s.metrics.RecordExport("chart", f.format)
	}
	s.logger.Info("chart exported", zap.String("export_id", result.ID), zap.String("chart", string(chart)))
	return result, nil
}

// ChartPNG rasterises one analytics chart without storing it. Unknown charts
// yield (nil, nil).
func (s *ExportService) ChartPNG(ctx context.Context, chart models.ChartTab, filter models.FilterState) ([]byte, error) {
	if !chart.Valid() {
		return nil, nil
	}
	summary, err := s.analytics.Summary(ctx, filter)
	if err != nil {
		return nil, err
	}
	series, _ := summary.Series(chart)
	png, err := raster.EncodePNG(renderChart(chart, series))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render chart")
	}
	return png, nil
}

// ExportRoster stores the filtered, sorted roster as a csv, xlsx or pdf table.
func (s *ExportService) ExportRoster(ctx context.Context, format models.ExportFormat, filter models.FilterState, sort models.SortState) (*models.ExportResult, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, appErrors.Upstream(err, "Failed to load teachers")
	}
	dataset := rosterDataset(roster.Ordered(records, filter, sort.Normalize()))

	var data []byte
	switch format {
	case models.FormatCSV:
		data, err = s.csv.Render(dataset)
	case models.FormatXLSX:
		data, err = s.xlsx.Render(dataset)
	case models.FormatPDF:
		data, err = s.pdf.RenderTable(dataset)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}

	result := s.newResult()
	file, err := s.store(result.ID, "teachers", format, data)
	if err != nil {
		return nil, err
	}
	result.Files = append(result.Files, *file)
	s.metrics.RecordExport("roster", format)
	s.logger.Info("roster exported", zap.String("export_id", result.ID), zap.String("format", string(format)), zap.Int("rows", len(dataset.Rows)))
	return result, nil
}

// Open resolves a signed token into the stored file.
func (s *ExportService) Open(token string) (*Download, error) {
	_, relPath, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, errExportLinkExpired
		}
		return nil, errExportLinkInvalid
	}
	data, err := s.storage.Read(relPath)
	if err != nil {
		s.logger.Warn("export file unavailable", zap.String("path", relPath), zap.Error(err))
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	name := path.Base(relPath)
	return &Download{
		FileName:    name,
		ContentType: contentTypes[models.ExportFormat(strings.TrimPrefix(path.Ext(name), "."))],
		Data:        data,
	}, nil
}

// Cleanup removes exports older than the retention window.
func (s *ExportService) Cleanup(ctx context.Context) (int, error) {
	removed, err := s.storage.CleanupOlderThan(s.cfg.RetentionTTL, s.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup exports: %w", err)
	}
	s.metrics.RecordExportCleanup(len(removed))
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
	return len(removed), nil
}

// HandleCleanupJob is the queue handler for periodic cleanup.
func (s *ExportService) HandleCleanupJob(ctx context.Context, _ jobs.Job) error {
	_, err := s.Cleanup(ctx)
	return err
}

func (s *ExportService) newResult() *models.ExportResult {
	return &models.ExportResult{ID: uuid.NewString(), CreatedAt: s.now().UTC()}
}

func (s *ExportService) store(exportID, base string, format models.ExportFormat, data []byte) (*models.ExportFile, error) {
	name := base + "." + string(format)
	relPath, err := s.storage.Save(path.Join(exportID, name), data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}
	return &models.ExportFile{
		Format:      format,
		FileName:    name,
		ContentType: contentTypes[format],
		Token:       token,
		URL:         s.cfg.APIPrefix + "/exports/" + token,
		ExpiresAt:   expiresAt,
	}, nil
}

func renderChart(chart models.ChartTab, series []roster.Bucket) *image.RGBA {
	data := make([]raster.Datum, len(series))
	for i, b := range series {
		data[i] = raster.Datum{Label: b.Label, Value: b.Count}
	}
	if chart == models.ChartTrend {
		return raster.Line(chartTitles[chart], data, raster.Options{})
	}
	return raster.Pie(chartTitles[chart], data, raster.Options{})
}

func rosterDataset(records []models.Teacher) export.Dataset {
	rows := make([][]string, len(records))
	for i, t := range records {
		created := ""
		if t.HasCreatedAt() {
			created = t.CreatedAt.Format("2006-01-02")
		}
		rows[i] = []string{strconv.FormatInt(int64(t.ID), 10), t.Name, t.Role, string(t.Status), t.Location, created}
	}
	return export.Dataset{
		Title:   "Teachers",
		Headers: []string{"ID", "Name", "Role", "Status", "Location", "Created At"},
		Rows:    rows,
	}
}
