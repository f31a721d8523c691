package middleware

import (
	"context"
	"net/http"
	"strings"

	"chronos/internal/domain/auth"
	"chronos/internal/transport/http/api"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

type TokenParser interface {
	ParseToken(token string) (*auth.Claims, error)
}

// Auth attaches the bearer token's claims to the context when the token is
// valid. Requests without a usable token pass through anonymously.
func Auth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := parser.ParseToken(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyUser, *claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid token", GetRequestID(r.Context()))
			return
		}
		if user.Role != auth.RoleSuperAdmin {
			api.Fail(w, http.StatusForbidden, "forbidden", "Superuser role required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUser(ctx context.Context) (auth.Claims, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.Claims)
	return user, ok
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
