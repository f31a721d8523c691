package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"chronos/internal/domain/attendance"
	"chronos/internal/domain/auth"
	"chronos/internal/domain/employee"
	"chronos/internal/domain/face"
	"chronos/internal/domain/reports"
	"chronos/internal/domain/tenant"
	"chronos/internal/platform/cache"
	"chronos/internal/platform/config"
	"chronos/internal/platform/db"
	"chronos/internal/platform/faceapi"
	"chronos/internal/platform/jobs"
	"chronos/internal/platform/logging"
	"chronos/internal/platform/metrics"
	"chronos/internal/platform/storage"
	attendancehandler "chronos/internal/transport/http/handlers/attendance"
	authhandler "chronos/internal/transport/http/handlers/auth"
	devicehandler "chronos/internal/transport/http/handlers/device"
	employeehandler "chronos/internal/transport/http/handlers/employee"
	facehandler "chronos/internal/transport/http/handlers/face"
	reportshandler "chronos/internal/transport/http/handlers/reports"
	"chronos/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Logger  *zap.Logger
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Router  http.Handler
}

// New connects every backing service and assembles the router. The caller
// owns the returned App and must Close it.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	app := &App{Config: cfg, Logger: logger, DB: pool}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir, logger); err != nil {
			app.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	authStore := auth.NewStore(pool, cfg.StoreTimeout)
	if err := authStore.EnsureSuperuser(ctx, cfg.SeedSuperuserUsername, cfg.SeedSuperuserPassword, logger); err != nil {
		app.Close()
		return nil, fmt.Errorf("seed superuser: %w", err)
	}

	app.Redis, err = cache.NewRedis(ctx, cfg)
	if err != nil {
		// the device cache is an optimisation, run without it
		logger.Warn("redis unavailable, device cache disabled", zap.Error(err))
		app.Redis = nil
	}

	if cfg.MetricsEnabled {
		app.Metrics = metrics.New()
	}

	photos, err := storage.NewPhotos(cfg.ImageDir)
	if err != nil {
		app.Close()
		return nil, err
	}

	credential, err := auth.HashPassword(cfg.DeviceDefaultPassword)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("hash device credential: %w", err)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET not set, using an ephemeral secret; tokens will not survive a restart")
	}

	tenants := tenant.NewService(tenant.NewStore(pool, cfg.StoreTimeout), credential, logger.Named("tenant"))
	devices := tenant.NewCachedResolver(tenants, app.Redis, cfg.DeviceCacheTTL, logger.Named("device_cache"))
	employees := employee.NewService(employee.NewStore(pool, cfg.StoreTimeout), devices, logger.Named("employee"))

	attendanceStore := attendance.NewStore(pool, cfg.StoreTimeout)
	attendanceOpts := []attendance.Option{}
	if app.Metrics != nil {
		attendanceOpts = append(attendanceOpts, attendance.WithMetrics(app.Metrics))
	}
	attendanceSvc := attendance.NewService(attendanceStore, employees, photos, loc, logger.Named("attendance"), attendanceOpts...)

	faceSvc := face.NewService(
		face.NewStore(pool, cfg.StoreTimeout),
		devices,
		employees,
		face.NewWriter(cfg.FaceImagesDir, cfg.FaceMaxDimension),
		faceapi.NewClient(cfg.FaceServiceURL, cfg.FaceServiceTimeout, logger.Named("faceapi")),
		logger.Named("face"),
	)
	authSvc := auth.NewService(authStore, secret, cfg.TokenTTL, logger.Named("auth"))
	reportSvc := reports.NewService(attendanceStore, tenants)

	app.Jobs = jobs.New(jobs.NewRunStore(pool, cfg.StoreTimeout), logger.Named("jobs"))
	if cfg.FaceSyncSchedule != "" {
		err := app.Jobs.Schedule(cfg.FaceSyncSchedule, jobs.JobFaceSync, func(ctx context.Context) (any, error) {
			companies, err := faceSvc.SyncAll(ctx)
			return map[string]int{"companies": companies}, err
		})
		if err != nil {
			app.Close()
			return nil, err
		}
	}

	pinLimit := middleware.RateLimit(cfg.PinRateLimitPerMinute, time.Minute,
		middleware.WithKeyFunc(middleware.PinAttemptKey), middleware.WithLogger(logger))
	loginLimit := middleware.RateLimit(cfg.PinRateLimitPerMinute, time.Minute, middleware.WithLogger(logger))

	app.Router = NewRouter(RouterConfig{
		Config:  cfg,
		Logger:  logger,
		Metrics: app.Metrics,
		Tokens:  authSvc,
		Ready:   pool.Ping,
	}, Handlers{
		Attendance: attendancehandler.NewHandler(attendanceSvc, logger, cfg.PublicBaseURL, cfg.MaxUploadBytes),
		Employee:   employeehandler.NewHandler(employees, logger, pinLimit),
		Device:     devicehandler.NewHandler(tenants, logger),
		Face:       facehandler.NewHandler(faceSvc, logger),
		Auth:       authhandler.NewHandler(authSvc, logger, loginLimit),
		Reports:    reportshandler.NewHandler(reportSvc, logger, loc),
	})
	return app, nil
}

func (a *App) Close() {
	if a.Jobs != nil {
		a.Jobs.Stop()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func Run() error {
	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "chronos")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}
	defer app.Close()
	app.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("chronos listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.Environment))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
