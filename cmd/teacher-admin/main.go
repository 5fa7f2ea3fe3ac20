package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/teacher-admin/api/swagger"
	"github.com/noah-isme/teacher-admin/internal/handler"
	"github.com/noah-isme/teacher-admin/internal/repository"
	"github.com/noah-isme/teacher-admin/internal/service"
	"github.com/noah-isme/teacher-admin/internal/web"
	"github.com/noah-isme/teacher-admin/pkg/cache"
	"github.com/noah-isme/teacher-admin/pkg/config"
	"github.com/noah-isme/teacher-admin/pkg/database"
	"github.com/noah-isme/teacher-admin/pkg/jobs"
	"github.com/noah-isme/teacher-admin/pkg/logger"
	"github.com/noah-isme/teacher-admin/pkg/storage"
)

// @title Teacher Admin API
// @version 1.0.0
// @description Operator dashboard over the teacher records service.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	metrics := service.NewMetricsService()
	validate := validator.New()
	checks := map[string]handler.Pinger{}

	// Session store: Redis when enabled, otherwise process memory with a sweeper.
	var (
		cacheRepo service.CacheRepository
		memory    *repository.MemoryCacheRepository
	)
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close() //nolint:errcheck
		redisRepo := repository.NewCacheRepository(client, logr)
		cacheRepo = redisRepo
		checks["redis"] = redisRepo
	} else {
		memory = repository.NewMemoryCacheRepository()
		cacheRepo = memory
	}
	sessionStore := service.NewCacheService(cacheRepo, metrics, cfg.Session.TTL, logr)

	admins, err := adminStore(ctx, cfg, checks)
	if err != nil {
		return err
	}

	records := repository.NewTeacherRepository(cfg.RecordAPI, metrics, logr)

	signer := service.NewTokenSigner(cfg.JWT.Secret, cfg.JWT.Issuer)
	verifier, err := service.NewTokenVerifier(cfg.Session.Policy, signer, sessionStore, logr)
	if err != nil {
		return err
	}
	authSvc := service.NewAuthService(admins, signer, sessionStore, verifier, metrics, validate, logr, service.AuthConfig{
		SessionTTL:  cfg.Session.TTL,
		RememberTTL: cfg.Session.RememberTTL,
	})
	teacherSvc := service.NewTeacherService(records, validate, logr, cfg.Teachers.Locations)
	dashboardSvc := service.NewDashboardService(records, metrics, loc, logr)
	analyticsSvc := service.NewAnalyticsService(records, loc, logr)

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return fmt.Errorf("init export storage: %w", err)
	}
	exportSvc := service.NewExportService(
		analyticsSvc,
		records,
		files,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		metrics,
		service.ExportConfig{APIPrefix: cfg.APIPrefix, RetentionTTL: cfg.Exports.RetentionTTL},
		logr,
	)

	mux := jobs.NewMux()
	mux.Handle(service.JobDashboardRefresh, dashboardSvc.HandleRefreshJob)
	mux.Handle(service.JobExportCleanup, exportSvc.HandleCleanupJob)
	if memory != nil {
		mux.Handle(service.JobSessionSweep, func(context.Context, jobs.Job) error {
			if removed := memory.Sweep(); removed > 0 {
				logr.Debug("expired sessions swept", zap.Int("removed", removed))
			}
			return nil
		})
	}
	queue := jobs.NewQueue("background", mux.Dispatch, jobs.QueueConfig{
		Workers:    cfg.Dashboard.Workers,
		MaxRetries: -1,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	if err := queue.TryEnqueue(jobs.Job{Type: service.JobDashboardRefresh, Payload: service.TriggerInitial}); err != nil {
		logr.Warn("initial dashboard refresh not queued", zap.Error(err))
	}

	scheduler := jobs.NewScheduler(queue, logr).
		Every(cfg.Dashboard.RefreshInterval, service.JobDashboardRefresh, service.TriggerPoll).
		Every(cfg.Exports.CleanupInterval, service.JobExportCleanup, nil)
	if memory != nil {
		scheduler.Every(time.Minute, service.JobSessionSweep, nil)
	}
	scheduler.Run(ctx)
	defer scheduler.Wait()

	tmpl, err := web.Templates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Config:          cfg,
		Logger:          logr,
		Templates:       tmpl,
		Verifier:        authSvc,
		Metrics:         handler.NewMetricsHandler(metrics, checks),
		Auth:            handler.NewAuthHandler(authSvc, cfg.Session.SecureCookie),
		Teachers:        handler.NewTeacherHandler(teacherSvc, exportSvc, loc),
		Dashboard:       handler.NewDashboardHandler(dashboardSvc),
		Analytics:       handler.NewAnalyticsHandler(analyticsSvc, exportSvc, loc),
		Exports:         handler.NewExportHandler(exportSvc),
		MetricsObserver: metrics,
		Web: handler.NewWebHandler(handler.WebDeps{
			Auth:         authSvc,
			Teachers:     teacherSvc,
			Dashboard:    dashboardSvc,
			Analytics:    analyticsSvc,
			Exports:      exportSvc,
			Location:     loc,
			SecureCookie:    cfg.Session.SecureCookie,
			RefreshInterval: cfg.Dashboard.RefreshInterval,
			Logger:          logr,
		}),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("record_api", cfg.RecordAPI.BaseURL),
			zap.String("session_policy", verifier.Policy()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stop()
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func adminStore(ctx context.Context, cfg *config.Config, checks map[string]handler.Pinger) (service.AdminRepository, error) {
	switch cfg.Admin.Store {
	case config.AdminStorePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		repo := repository.NewAdminRepository(db)
		checks["postgres"] = repo
		return repo, nil
	case "", config.AdminStoreStatic:
		repo, err := repository.NewStaticAdminRepository(cfg.Admin.Users)
		if err != nil {
			return nil, fmt.Errorf("parse admin users: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown admin store %q", cfg.Admin.Store)
	}
}
