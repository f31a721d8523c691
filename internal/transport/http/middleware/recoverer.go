package middleware

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"chronos/internal/transport/http/api"
)

// Recoverer turns a handler panic into a 500 envelope so one bad request
// never takes the kiosk API down.
func Recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				reqID := GetRequestID(r.Context())
				logger.Error("panic recovered",
					zap.String("request_id", reqID),
					zap.String("path", r.URL.Path),
					zap.String("panic", fmt.Sprint(rec)),
					zap.Stack("stack"),
				)
				api.Fail(w, http.StatusInternalServerError, "internal_error", "Server error", reqID)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
