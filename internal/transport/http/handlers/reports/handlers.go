package reportshandler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"chronos/internal/domain/reports"
	"chronos/internal/requestctx"
	"chronos/internal/transport/http/api"
	"chronos/internal/transport/http/middleware"
	"chronos/internal/transport/http/shared"
)

type Service interface {
	DailyReport(ctx context.Context, companyID int64, date time.Time) (reports.Report, error)
}

type Handler struct {
	Service  Service
	Logger   *zap.Logger
	Location *time.Location
	Now      func() time.Time
}

func NewHandler(service Service, logger *zap.Logger, loc *time.Location) *Handler {
	return &Handler{Service: service, Logger: logger, Location: loc, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireSuperuser).Get("/company/{id}/attendance", h.handleDaily)
}

func (h *Handler) handleDaily(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	var issues []shared.ValidationIssue
	companyID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || companyID <= 0 {
		issues = append(issues, shared.ValidationIssue{Field: "id", Reason: "must be a positive integer"})
	}
	day, err := shared.ParseDay(r.URL.Query().Get("date"), h.Location, h.Now())
	if err != nil {
		issues = append(issues, shared.ValidationIssue{Field: "date", Reason: "must be YYYY-MM-DD"})
	}
	format := r.URL.Query().Get("format")
	switch format {
	case "", "json", "pdf", "xlsx":
	default:
		issues = append(issues, shared.ValidationIssue{Field: "format", Reason: "must be one of: json pdf xlsx"})
	}
	if len(issues) > 0 {
		shared.FailValidation(w, reqID, issues)
		return
	}

	report, err := h.Service.DailyReport(r.Context(), companyID, day)
	if err != nil {
		shared.WriteError(w, h.Logger, err, reqID)
		return
	}

	var (
		body        []byte
		contentType string
	)
	switch format {
	case "pdf":
		body, err = reports.RenderPDF(report)
		contentType = "application/pdf"
	case "xlsx":
		body, err = reports.RenderXLSX(report)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		api.Success(w, api.Payload{"report": report})
		return
	}
	if err != nil {
		shared.WriteError(w, h.Logger, fmt.Errorf("render %s report: %w", format, err), reqID)
		return
	}

	filename := fmt.Sprintf("attendance_%d_%s.%s", report.CompanyID, report.Date, format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
