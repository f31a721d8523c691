package attendancehandler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"chronos/internal/domain/attendance"
	"chronos/internal/requestctx"
	"chronos/internal/transport/http/api"
	"chronos/internal/transport/http/shared"
)

type Service interface {
	Record(ctx context.Context, in attendance.RecordInput) (attendance.Result, error)
	LastRecord(ctx context.Context, employeeNumber int64, deviceUUID string) (*attendance.ShiftRecord, error)
	AttachPhotos(ctx context.Context, up attendance.PhotoUpload) (attendance.PhotoResult, error)
}

type Handler struct {
	Service        Service
	Logger         *zap.Logger
	PublicBaseURL  string
	MaxUploadBytes int64
}

func NewHandler(service Service, logger *zap.Logger, publicBaseURL string, maxUploadBytes int64) *Handler {
	return &Handler{Service: service, Logger: logger, PublicBaseURL: publicBaseURL, MaxUploadBytes: maxUploadBytes}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/attendance/record", h.handleRecord)
	r.Post("/attendance/last-record", h.handleLastRecord)
	r.Post("/employees/{employeeNumber}/photos", h.handlePhotos)
}

type recordRequest struct {
	EmployeeNumber shared.FlexInt `json:"employeeNumber" validate:"required"`
	Action         string         `json:"action" validate:"required"`
	DeviceUUID     string         `json:"deviceUUID" validate:"required,max=64"`
	Note           string         `json:"note" validate:"max=500"`
}

type lastRecordRequest struct {
	EmployeeNumber shared.FlexInt `json:"employeeNumber" validate:"required"`
	DeviceUUID     string         `json:"deviceUUID" validate:"required,max=64"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload recordRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}

	result, err := h.Service.Record(r.Context(), attendance.RecordInput{
		EmployeeNumber: payload.EmployeeNumber.Value,
		DeviceUUID:     payload.DeviceUUID,
		Action:         payload.Action,
		Note:           payload.Note,
	})
	if err != nil {
		shared.WriteError(w, h.Logger, err, reqID)
		return
	}
	api.Success(w, api.Payload{"message": result.Message})
}

func (h *Handler) handleLastRecord(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload lastRecordRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}

	rec, err := h.Service.LastRecord(r.Context(), payload.EmployeeNumber.Value, payload.DeviceUUID)
	if err != nil {
		shared.WriteError(w, h.Logger, err, reqID)
		return
	}
	api.Success(w, api.Payload{"record": rec})
}

func (h *Handler) handlePhotos(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	number, err := strconv.ParseInt(chi.URLParam(r, "employeeNumber"), 10, 64)
	if err != nil {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "employeeNumber", Reason: "must be an integer"}})
		return
	}

	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Upload too large", reqID)
			return
		}
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "body", Reason: "must be multipart/form-data"}})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	var issues []shared.ValidationIssue
	action := strings.TrimSpace(r.FormValue("action"))
	deviceUUID := strings.TrimSpace(r.FormValue("deviceUUID"))
	if action == "" {
		issues = append(issues, shared.ValidationIssue{Field: "action", Reason: "is required"})
	}
	if deviceUUID == "" {
		issues = append(issues, shared.ValidationIssue{Field: "deviceUUID", Reason: "is required"})
	}
	if len(issues) > 0 {
		shared.FailValidation(w, reqID, issues)
		return
	}

	result, err := h.Service.AttachPhotos(r.Context(), attendance.PhotoUpload{
		EmployeeNumber: number,
		DeviceUUID:     deviceUUID,
		Action:         action,
		BaseURL:        shared.BaseURL(r, h.PublicBaseURL),
		Files:          uploadedFiles(r.MultipartForm),
	})
	if err != nil {
		shared.WriteError(w, h.Logger, err, reqID)
		return
	}

	payload := api.Payload{"message": result.Message, "urls": result.URLs}
	if result.Slot > 0 {
		payload["slot"] = result.Slot
	}
	api.Success(w, payload)
}

// uploadedFiles accepts both the "photos" and the "photo" field.
func uploadedFiles(form *multipart.Form) []attendance.PhotoFile {
	if form == nil {
		return nil
	}
	var files []attendance.PhotoFile
	for _, field := range []string{"photos", "photo"} {
		for _, fh := range form.File[field] {
			files = append(files, attendance.PhotoFile{
				Name: fh.Filename,
				Size: fh.Size,
				Open: func() (io.ReadCloser, error) { return fh.Open() },
			})
		}
	}
	return files
}
