package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionAuthMiddleware validates Bearer tokens and injects the caller's
// domain.Session into the request context.
func SessionAuthMiddleware(authSvc *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "missing access token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			session, err := authSvc.SessionFromToken(r.Context(), parts[1])
			if err != nil {
				logger.Warn("auth: session rejected",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				handleServiceError(w, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the authenticated session. Outside the auth
// middleware it is the zero Session, which no role check accepts.
func SessionFromContext(ctx context.Context) domain.Session {
	s, _ := ctx.Value(sessionKey).(domain.Session)
	return s
}
