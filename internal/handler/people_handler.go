package handler

import (
	"net/http"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// 4a. Members
// ============================================================

func listMembersHandler(svc *service.PeopleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/members")
		defer span.End()

		members, err := svc.ListMembers(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, members)
	}
}

func registerMemberHandler(svc *service.PeopleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/members")
		defer span.End()

		var req domain.MemberRegistration
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.RegisterMember(ctx, SessionFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

func deleteMemberHandler(svc *service.PeopleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/members/{id}")
		defer span.End()

		if err := svc.DeleteMember(ctx, SessionFromContext(ctx), chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type broadcastRequest struct {
	Message string `json:"message"`
}

func broadcastHandler(svc *service.PeopleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/members/broadcast")
		defer span.End()

		var req broadcastRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		report, err := svc.BroadcastSMS(ctx, SessionFromContext(ctx), req.Message)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// ============================================================
// 4b. Visitors
// ============================================================

func listVisitorsHandler(svc *service.PeopleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/visitors")
		defer span.End()

		visitors, err := svc.ListVisitors(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, visitors)
	}
}

func registerVisitorHandler(svc *service.PeopleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/visitors")
		defer span.End()

		var req domain.VisitorRegistration
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.RegisterVisitor(ctx, SessionFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

func deleteVisitorHandler(svc *service.PeopleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/visitors/{id}")
		defer span.End()

		if err := svc.DeleteVisitor(ctx, SessionFromContext(ctx), chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// 4c. Public self-registration (no session)
// ============================================================

func publicMemberHandler(svc *service.PeopleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/public/members")
		defer span.End()

		var req domain.MemberRegistration
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.SelfRegisterMember(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

func publicVisitorHandler(svc *service.PeopleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/public/visitors")
		defer span.End()

		var req domain.VisitorRegistration
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.SelfRegisterVisitor(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}
