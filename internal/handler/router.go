package handler

import (
	"net/http"
	"time"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/observability"
	"github.com/graceflow/graceflow-api/internal/port"
	"github.com/graceflow/graceflow-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles the use cases served over HTTP.
type Services struct {
	Auth      *service.AuthService
	Ledger    *service.LedgerService
	Approvals *service.ApprovalQueue
	Finance   *service.FinanceService
	People    *service.PeopleService
	Dashboard *service.DashboardService
	Ministry  *service.MinistryService

	// Store is pinged by /healthz.
	Store port.HealthChecker
	// Mode is "supabase" or "simulation".
	Mode string
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc *Services, allowedOrigins []string, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc.Store, svc.Mode, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. Auth & public self-registration
		// =============================================
		r.Post("/auth/login", authLoginHandler(svc.Auth, logger))
		r.Post("/public/members", publicMemberHandler(svc.People, logger))
		r.Post("/public/visitors", publicVisitorHandler(svc.People, logger))

		// Everything below needs a staff session.
		r.Group(func(r chi.Router) {
			r.Use(SessionAuthMiddleware(svc.Auth, logger))

			r.Put("/auth/profile", updateProfileHandler(svc.Auth, logger))
			r.Put("/auth/password", changePasswordHandler(svc.Auth, logger))

			// =============================================
			// 2. Dashboard
			// =============================================
			r.Get("/dashboard", dashboardHandler(svc.Dashboard, logger))
			r.Get("/metrics/finance", financeMetricsHandler(metrics))

			// =============================================
			// 3. Finance: ledger, approvals, assets, pledges, reports
			// =============================================
			r.Route("/finance", func(r chi.Router) {
				r.Get("/transactions", listTransactionsHandler(svc.Ledger, logger))
				r.Post("/transactions", recordTransactionHandler(svc.Ledger, logger))
				r.Delete("/transactions/{id}", deleteTransactionHandler(svc.Ledger, logger))
				r.Get("/totals", totalsHandler(svc.Ledger, logger))

				r.Get("/approvals", pendingApprovalsHandler(svc.Approvals, logger))
				r.Post("/approvals/{id}", resolveApprovalHandler(svc.Approvals, logger))

				r.Get("/assets", listAssetsHandler(svc.Finance, logger))
				r.Post("/assets", createAssetHandler(svc.Finance, logger))
				r.Delete("/assets/{id}", deleteAssetHandler(svc.Finance, logger))

				r.Get("/pledges", listPledgesHandler(svc.Finance, logger))
				r.Post("/pledges", createPledgeHandler(svc.Finance, logger))
				r.Delete("/pledges/{id}", deletePledgeHandler(svc.Finance, logger))

				r.Get("/reports/{scope}", reportHandler(svc.Ledger, logger))
			})

			// =============================================
			// 4. Members & visitors
			// =============================================
			r.Get("/members", listMembersHandler(svc.People, logger))
			r.Post("/members", registerMemberHandler(svc.People, logger))
			r.Delete("/members/{id}", deleteMemberHandler(svc.People, logger))
			r.Post("/members/broadcast", broadcastHandler(svc.People, logger))

			r.Get("/visitors", listVisitorsHandler(svc.People, logger))
			r.Post("/visitors", registerVisitorHandler(svc.People, logger))
			r.Delete("/visitors/{id}", deleteVisitorHandler(svc.People, logger))

			// =============================================
			// 5. Events & leaders
			// =============================================
			r.Get("/events", listEventsHandler(svc.Ministry, logger))
			r.Post("/events", createEventHandler(svc.Ministry, logger))
			r.Delete("/events/{id}", deleteEventHandler(svc.Ministry, logger))

			r.Get("/leaders", listLeadersHandler(svc.Ministry, logger))
			r.Post("/leaders", createLeaderHandler(svc.Ministry, logger))
			r.Delete("/leaders/{id}", deleteLeaderHandler(svc.Ministry, logger))
		})
	})

	return r
}

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler(store port.HealthChecker, mode string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "graceflow-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if store != nil {
			start := time.Now()
			err := store.Ping(ctx)
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				logger.Warn("health: record store ping failed", zap.Error(err))
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "record-store", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Mode:     mode,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func financeMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetFinanceSnapshot())
	}
}
