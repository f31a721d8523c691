package facehandler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"chronos/internal/domain/face"
	"chronos/internal/requestctx"
	"chronos/internal/transport/http/api"
	"chronos/internal/transport/http/shared"
)

type Service interface {
	Upload(ctx context.Context, employeeNumber, companyID int64, imageBase64 string) (int64, error)
	TrainingFaces(ctx context.Context, deviceUUID string) ([]face.TrainingFace, error)
	SyncForDevice(ctx context.Context, deviceUUID string) (face.SyncResult, error)
	Embeddings(ctx context.Context, deviceUUID string) (json.RawMessage, error)
}

type Handler struct {
	Service Service
	Logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

// RegisterRoutes mounts the /api routes. The trainer sync endpoint lives
// outside /api, see RegisterSyncRoute.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/face/upload", h.handleUpload)
	r.Post("/face/training-data", h.handleTrainingData)
	r.Get("/face/embeddings", h.handleEmbeddings)
}

func (h *Handler) RegisterSyncRoute(r chi.Router) {
	r.Get("/sync-images/{deviceUUID}", h.handleSync)
}

type uploadRequest struct {
	EmployeeNumber shared.FlexInt `json:"employeeNumber" validate:"required"`
	CompanyID      shared.FlexInt `json:"companyId" validate:"required,gt=0"`
	ImageBase64    string         `json:"imageBase64" validate:"required"`
}

type trainingRequest struct {
	DeviceUUID string `json:"deviceUUID" validate:"required,max=64"`
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload uploadRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}

	id, err := h.Service.Upload(r.Context(), payload.EmployeeNumber.Value, payload.CompanyID.Value, payload.ImageBase64)
	if err != nil {
		shared.WriteError(w, h.Logger, err, reqID)
		return
	}
	api.Success(w, api.Payload{"message": "Face image uploaded", "faceId": id})
}

func (h *Handler) handleTrainingData(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload trainingRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}

	faces, err := h.Service.TrainingFaces(r.Context(), payload.DeviceUUID)
	if err != nil {
		shared.WriteError(w, h.Logger, err, reqID)
		return
	}
	api.Success(w, api.Payload{"trainingData": faces})
}

// handleEmbeddings relays the embedding service's JSON body untouched.
func (h *Handler) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	deviceUUID := strings.TrimSpace(r.URL.Query().Get("deviceUUID"))
	if deviceUUID == "" {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "deviceUUID", Reason: "is required"}})
		return
	}

	body, err := h.Service.Embeddings(r.Context(), deviceUUID)
	if err != nil {
		shared.WriteError(w, h.Logger, err, reqID)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	deviceUUID := strings.TrimSpace(chi.URLParam(r, "deviceUUID"))

	result, err := h.Service.SyncForDevice(r.Context(), deviceUUID)
	if err != nil {
		shared.WriteError(w, h.Logger, err, reqID)
		return
	}
	api.Success(w, api.Payload{
		"count":   result.Count,
		"skipped": result.Skipped,
		"message": fmt.Sprintf("Synced %d face image(s) for company %d", result.Count, result.CompanyID),
	})
}
