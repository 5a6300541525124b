package handler

import (
	"net/http"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// 1. Auth: POST /v1/auth/login
// ============================================================

func authLoginHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req domain.LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		resp, err := authSvc.Login(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// 1b. Account settings: PUT /v1/auth/profile, PUT /v1/auth/password
// ============================================================

func updateProfileHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/auth/profile")
		defer span.End()

		var req domain.ProfileUpdate
		if !decodeJSON(w, r, &req) {
			return
		}

		profile, err := authSvc.UpdateProfile(ctx, SessionFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func changePasswordHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/auth/password")
		defer span.End()

		var req domain.PasswordChange
		if !decodeJSON(w, r, &req) {
			return
		}

		if err := authSvc.ChangePassword(ctx, SessionFromContext(ctx), &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// 2. Dashboard: GET /v1/dashboard
// ============================================================

func dashboardHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		overview, err := svc.Overview(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, overview)
	}
}
