package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/report"
	"github.com/graceflow/graceflow-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 3a. Ledger
// ============================================================

func listTransactionsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/finance/transactions")
		defer span.End()

		ledger, err := svc.Ledger(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int("transactions.count", len(ledger.Transactions)))
		writeJSON(w, http.StatusOK, ledger)
	}
}

func recordTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/finance/transactions")
		defer span.End()

		var draft domain.TransactionDraft
		if !decodeJSON(w, r, &draft) {
			return
		}

		tx, err := svc.RecordTransaction(ctx, SessionFromContext(ctx), &draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	}
}

func deleteTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/finance/transactions/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("transaction.id", id))

		if err := svc.DeleteTransaction(ctx, SessionFromContext(ctx), id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func totalsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/finance/totals")
		defer span.End()

		totals, err := svc.Totals(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, totals)
	}
}

// ============================================================
// 3b. Approvals
// ============================================================

func pendingApprovalsHandler(queue *service.ApprovalQueue, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/finance/approvals")
		defer span.End()

		pending, err := queue.Pending(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, pending)
	}
}

type resolveRequest struct {
	Decision domain.Decision `json:"decision"`
}

// resolveApprovalHandler answers POST /v1/finance/approvals/{id}.
//
// A pending expense is resolved once: the first decision is stored and a
// later, different decision gets 409 Conflict instead of overwriting it.
// Repeating the stored decision returns 200.
func resolveApprovalHandler(queue *service.ApprovalQueue, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/finance/approvals/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		var req resolveRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		span.SetAttributes(
			attribute.String("transaction.id", id),
			attribute.String("decision", string(req.Decision)),
		)

		if err := queue.Resolve(ctx, SessionFromContext(ctx), id, req.Decision); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(req.Decision)})
	}
}

// ============================================================
// 3c. Assets
// ============================================================

func listAssetsHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/finance/assets")
		defer span.End()

		register, err := svc.AssetRegister(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, register)
	}
}

func createAssetHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/finance/assets")
		defer span.End()

		var draft domain.AssetDraft
		if !decodeJSON(w, r, &draft) {
			return
		}

		asset, err := svc.CreateAsset(ctx, SessionFromContext(ctx), &draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, asset)
	}
}

func deleteAssetHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/finance/assets/{id}")
		defer span.End()

		if err := svc.DeleteAsset(ctx, SessionFromContext(ctx), chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// 3d. Pledges
// ============================================================

func listPledgesHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/finance/pledges")
		defer span.End()

		pledges, err := svc.ListPledges(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, pledges)
	}
}

func createPledgeHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/finance/pledges")
		defer span.End()

		var draft domain.PledgeDraft
		if !decodeJSON(w, r, &draft) {
			return
		}

		pledge, err := svc.CreatePledge(ctx, SessionFromContext(ctx), &draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, pledge)
	}
}

func deletePledgeHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/finance/pledges/{id}")
		defer span.End()

		if err := svc.DeletePledge(ctx, SessionFromContext(ctx), chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// 3e. Reports: GET /v1/finance/reports/{scope}?format=csv|xlsx
// ============================================================

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func reportHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/finance/reports/{scope}")
		defer span.End()

		scope, err := report.ParseScope(chi.URLParam(r, "scope"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		format := r.URL.Query().Get("format")
		if format == "" {
			format = "csv"
		}
		if format != "csv" && format != "xlsx" {
			writeError(w, http.StatusBadRequest, "format must be csv or xlsx")
			return
		}
		span.SetAttributes(
			attribute.String("report.scope", string(scope)),
			attribute.String("report.format", format),
		)

		txs, err := svc.ListTransactions(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		now := time.Now()
		selected := report.Select(scope, txs, now)

		var buf bytes.Buffer
		contentType := "text/csv; charset=utf-8"
		if format == "xlsx" {
			contentType = xlsxContentType
			err = report.WriteXLSX(&buf, selected)
		} else {
			err = report.WriteCSV(&buf, selected)
		}
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(scope, format, now)))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}
