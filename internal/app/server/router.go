package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"chronos/internal/platform/config"
	"chronos/internal/platform/metrics"
	"chronos/internal/transport/http/api"
	attendancehandler "chronos/internal/transport/http/handlers/attendance"
	authhandler "chronos/internal/transport/http/handlers/auth"
	devicehandler "chronos/internal/transport/http/handlers/device"
	employeehandler "chronos/internal/transport/http/handlers/employee"
	facehandler "chronos/internal/transport/http/handlers/face"
	reportshandler "chronos/internal/transport/http/handlers/reports"
	"chronos/internal/transport/http/middleware"
)

type RouterConfig struct {
	Config  config.Config
	Logger  *zap.Logger
	Metrics *metrics.Collector
	Tokens  middleware.TokenParser
	// Ready reports whether the database answers.
	Ready func(context.Context) error
}

type Handlers struct {
	Attendance *attendancehandler.Handler
	Employee   *employeehandler.Handler
	Device     *devicehandler.Handler
	Face       *facehandler.Handler
	Auth       *authhandler.Handler
	Reports    *reportshandler.Handler
}

func NewRouter(rc RouterConfig, h Handlers) http.Handler {
	cfg := rc.Config
	router := chi.NewRouter()
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(rc.Logger, rc.Metrics))
	router.Use(middleware.Recoverer(rc.Logger))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes, cfg.MaxUploadBytes))
	router.Use(middleware.Auth(rc.Tokens))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusNotFound, "not_found", "Route not found", middleware.GetRequestID(r.Context()))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", middleware.GetRequestID(r.Context()))
	})

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, api.Payload{"status": "ok"})
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if rc.Ready != nil {
			if err := rc.Ready(ctx); err != nil {
				rc.Logger.Warn("readiness check failed", zap.Error(err))
				api.Fail(w, http.StatusServiceUnavailable, "not_ready", "database not ready", middleware.GetRequestID(r.Context()))
				return
			}
		}
		api.Success(w, api.Payload{"status": "ready"})
	})

	if rc.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.WriteJSON(w, http.StatusOK, rc.Metrics.Snapshot())
		})
	}

	router.Handle("/images/*", photoFiles(cfg.ImageDir))

	router.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.RequestTimeout))

		r.Route("/api", func(r chi.Router) {
			h.Auth.RegisterRoutes(r)
			h.Employee.RegisterRoutes(r)
			h.Attendance.RegisterRoutes(r)
			h.Device.RegisterRoutes(r)
			h.Face.RegisterRoutes(r)
			h.Reports.RegisterRoutes(r)
		})
		h.Face.RegisterSyncRoute(r)
	})

	return router
}

// photoFiles serves stored photos without directory listings.
func photoFiles(dir string) http.Handler {
	files := http.StripPrefix("/images", http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			api.Fail(w, http.StatusNotFound, "not_found", "Photo not found", middleware.GetRequestID(r.Context()))
			return
		}
		files.ServeHTTP(w, r)
	})
}
