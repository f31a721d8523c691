package devicehandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"chronos/internal/domain/tenant"
	"chronos/internal/requestctx"
	"chronos/internal/transport/http/api"
	"chronos/internal/transport/http/shared"
)

type Service interface {
	RegisterDevice(ctx context.Context, in tenant.RegisterInput) (tenant.Registration, error)
	PinRequired(ctx context.Context, deviceUUID string, deviceID int64) (bool, error)
	GetCompany(ctx context.Context, companyID int64) (tenant.Company, error)
}

// Handler serves device bookkeeping and the company lookup kiosks run at setup.
type Handler struct {
	Service Service
	Logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/device/register", h.handleRegister)
	r.Post("/device/pin-required", h.handlePinRequired)
	r.Get("/company/{id}", h.handleCompany)
}

type registerRequest struct {
	CompanyID  shared.FlexInt `json:"companyId" validate:"required,gt=0"`
	OutletID   shared.FlexInt `json:"outletId" validate:"omitempty,gt=0"`
	DeviceUUID string         `json:"deviceUUID" validate:"max=64"`
	DeviceName string         `json:"deviceName" validate:"required,max=120"`
}

type pinRequiredRequest struct {
	DeviceUUID string         `json:"deviceUUID" validate:"required_without=DeviceID,max=64"`
	DeviceID   shared.FlexInt `json:"deviceId" validate:"omitempty,gt=0"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload registerRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}

	reg, err := h.Service.RegisterDevice(r.Context(), tenant.RegisterInput{
		CompanyID:  payload.CompanyID.Value,
		OutletID:   payload.OutletID.Ptr(),
		DeviceUUID: payload.DeviceUUID,
		DeviceName: payload.DeviceName,
	})
	if err != nil {
		shared.WriteError(w, h.Logger, err, reqID)
		return
	}
	api.Success(w, api.Payload{
		"deviceId":   reg.DeviceID,
		"deviceUUID": reg.DeviceUUID,
		"company":    reg.Company,
		"outlet":     reg.Outlet,
	})
}

func (h *Handler) handlePinRequired(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload pinRequiredRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}

	required, err := h.Service.PinRequired(r.Context(), payload.DeviceUUID, payload.DeviceID.Value)
	if err != nil {
		shared.WriteError(w, h.Logger, err, reqID)
		return
	}
	api.Success(w, api.Payload{"pinRequired": required})
}

func (h *Handler) handleCompany(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "id", Reason: "must be a positive integer"}})
		return
	}

	company, err := h.Service.GetCompany(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.Logger, err, reqID)
		return
	}
	api.Success(w, api.Payload{"company": company})
}
