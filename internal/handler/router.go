package handler

import (
	"context"
	"html/template"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-admin/internal/middleware"
	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/pkg/config"
	"github.com/noah-isme/teacher-admin/pkg/logger"
	corsmiddleware "github.com/noah-isme/teacher-admin/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/teacher-admin/pkg/middleware/requestid"
)

// Audit actions for roster writes.
const (
	auditCreate = "teacher.create"
	auditUpdate = "teacher.update"
	auditDelete = "teacher.delete"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Templates *template.Template
	Verifier  sessionVerifier
	Metrics   *MetricsHandler
	Auth      *AuthHandler
	Teachers  *TeacherHandler
	Dashboard *DashboardHandler
	Analytics *AnalyticsHandler
	Exports   *ExportHandler
	Web       *WebHandler
	// MetricsObserver times requests; nil disables request metrics.
	MetricsObserver httpObserver
}

type sessionVerifier interface {
	Verify(ctx context.Context, token string) (*models.Session, error)
}

type httpObserver interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

// NewRouter assembles middleware, the JSON API and the HTML views.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS))
	if deps.MetricsObserver != nil {
		r.Use(middleware.Metrics(deps.MetricsObserver))
	}
	r.Use(middleware.WithResponseMeta())

	store := cookie.NewStore([]byte(cfg.Session.CookieSecret))
	store.Options(middleware.CookieOptions(0, cfg.Session.SecureCookie))
	r.Use(sessions.Sessions(cfg.Session.CookieName, store))

	if deps.Templates != nil {
		r.SetHTMLTemplate(deps.Templates)
	}

	r.GET("/health", deps.Metrics.Health)
	r.GET("/ready", deps.Metrics.Ready)
	r.GET("/metrics", deps.Metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerAPI(r.Group(cfg.APIPrefix), deps)
	registerPages(r, deps)
	return r
}

func registerAPI(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/login", deps.Auth.Login)
	// Download tokens are signed and expiring, so the link itself is the credential.
	api.GET("/exports/:token", deps.Exports.Download)

	secured := api.Group("")
	secured.Use(middleware.RequireSession(deps.Verifier))
	secured.POST("/auth/logout", deps.Auth.Logout)
	secured.GET("/auth/session", deps.Auth.Session)

	secured.GET("/teachers", deps.Teachers.List)
	secured.POST("/teachers", middleware.Audit(deps.Logger, auditCreate), deps.Teachers.Create)
	secured.GET("/teachers/export", deps.Teachers.Export)
	secured.GET("/teachers/:id", deps.Teachers.Get)
	secured.PUT("/teachers/:id", middleware.Audit(deps.Logger, auditUpdate), deps.Teachers.Update)
	secured.DELETE("/teachers/:id", middleware.Audit(deps.Logger, auditDelete), deps.Teachers.Delete)

	secured.GET("/dashboard", deps.Dashboard.Stats)
	secured.POST("/dashboard/refresh", deps.Dashboard.Refresh)

	secured.GET("/analytics", deps.Analytics.Summary)
	secured.GET("/analytics/chart.png", deps.Analytics.Chart)
	secured.POST("/analytics/export", deps.Analytics.Export)

	secured.GET("/metrics/summary", deps.Metrics.Summary)
}

func registerPages(r *gin.Engine, deps RouterDeps) {
	w := deps.Web
	r.GET("/", w.Root)
	r.GET(PathLogin, middleware.OptionalSession(deps.Verifier), w.LoginForm)
	r.POST(PathLogin, w.Login)

	pages := r.Group("")
	pages.Use(middleware.RequireSessionPage(deps.Verifier, PathLogin))
	pages.POST("/logout", w.Logout)
	pages.GET(PathDashboard, w.Dashboard)
	pages.POST(PathDashboard+"/refresh", w.RefreshDashboard)
	pages.GET(PathTeachers, w.Teachers)
	pages.GET(PathTeachers+"/export", w.ExportTeachers)
	pages.GET("/teacher", w.NewTeacher)
	pages.POST("/teacher", middleware.Audit(deps.Logger, auditCreate), w.SaveTeacher)
	pages.GET("/teacher/:id", w.EditTeacher)
	pages.POST("/teacher/:id", middleware.Audit(deps.Logger, auditUpdate), w.SaveTeacher)
	pages.POST("/teacher/:id/delete", middleware.Audit(deps.Logger, auditDelete), w.DeleteTeacher)
	pages.GET(PathAnalytics, w.Analytics)
	pages.GET(PathAnalytics+"/chart.png", deps.Analytics.Chart)
	pages.POST(PathAnalytics+"/export", w.ExportChart)
}
