package employeehandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"chronos/internal/domain/employee"
	"chronos/internal/requestctx"
	"chronos/internal/transport/http/api"
	"chronos/internal/transport/http/shared"
)

type Service interface {
	ValidatePin(ctx context.Context, employeeNumber, pinCode int64, deviceUUID string) (employee.Identity, error)
}

type Handler struct {
	Service Service
	Logger  *zap.Logger
	// PinLimit guards PIN guessing; nil disables it.
	PinLimit func(http.Handler) http.Handler
}

func NewHandler(service Service, logger *zap.Logger, pinLimit func(http.Handler) http.Handler) *Handler {
	return &Handler{Service: service, Logger: logger, PinLimit: pinLimit}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	if h.PinLimit != nil {
		r.With(h.PinLimit).Post("/employee/validate", h.handleValidate)
		return
	}
	r.Post("/employee/validate", h.handleValidate)
}

type validateRequest struct {
	EmployeeNumber shared.FlexInt `json:"employeeNumber" validate:"required"`
	PinCode        shared.FlexInt `json:"pinCode" validate:"required"`
	DeviceUUID     string         `json:"deviceUUID" validate:"required,max=64"`
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload validateRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}

	identity, err := h.Service.ValidatePin(r.Context(), payload.EmployeeNumber.Value, payload.PinCode.Value, payload.DeviceUUID)
	if err != nil {
		shared.WriteError(w, h.Logger, err, reqID)
		return
	}
	api.Success(w, api.Payload{"employee": identity})
}
