package handler

import (
	"net/http"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// 5a. Events
// ============================================================

func listEventsHandler(svc *service.MinistryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/events")
		defer span.End()

		events, err := svc.ListEvents(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func createEventHandler(svc *service.MinistryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/events")
		defer span.End()

		var draft domain.EventDraft
		if !decodeJSON(w, r, &draft) {
			return
		}

		event, err := svc.CreateEvent(ctx, SessionFromContext(ctx), &draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, event)
	}
}

func deleteEventHandler(svc *service.MinistryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/events/{id}")
		defer span.End()

		if err := svc.DeleteEvent(ctx, SessionFromContext(ctx), chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// 5b. Leaders
// ============================================================

func listLeadersHandler(svc *service.MinistryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/leaders")
		defer span.End()

		leaders, err := svc.ListLeaders(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, leaders)
	}
}

func createLeaderHandler(svc *service.MinistryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/leaders")
		defer span.End()

		var draft domain.LeaderDraft
		if !decodeJSON(w, r, &draft) {
			return
		}

		leader, err := svc.AddLeader(ctx, SessionFromContext(ctx), &draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, leader)
	}
}

func deleteLeaderHandler(svc *service.MinistryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/leaders/{id}")
		defer span.End()

		if err := svc.DeleteLeader(ctx, SessionFromContext(ctx), chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
