package authhandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"chronos/internal/domain/auth"
	"chronos/internal/requestctx"
	"chronos/internal/transport/http/api"
	"chronos/internal/transport/http/shared"
)

type Service interface {
	Login(ctx context.Context, password string) (auth.LoginResult, error)
}

type Handler struct {
	Service Service
	Logger  *zap.Logger
	// Limit throttles password guesses; nil disables it.
	Limit func(http.Handler) http.Handler
}

func NewHandler(service Service, logger *zap.Logger, limit func(http.Handler) http.Handler) *Handler {
	return &Handler{Service: service, Logger: logger, Limit: limit}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	if h.Limit != nil {
		r = r.With(h.Limit)
	}
	r.Post("/superuser/login", h.handleLogin)
}

type loginRequest struct {
	Password string `json:"password" validate:"required,max=256"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload loginRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}

	result, err := h.Service.Login(r.Context(), payload.Password)
	if err != nil {
		shared.WriteError(w, h.Logger, err, reqID)
		return
	}
	api.Success(w, api.Payload{"userId": result.UserID, "token": result.Token})
}
