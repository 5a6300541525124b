package service

import (
	"context"
	"fmt"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/observability"
	"github.com/graceflow/graceflow-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var approvalTracer = otel.Tracer("service/approvals")

// ApprovalQueue is a projection of the ledger onto pending expenses.
// It has no state of its own.
type ApprovalQueue struct {
	store   port.LedgerStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewApprovalQueue creates a new approval queue.
func NewApprovalQueue(store port.LedgerStore, metrics *observability.Metrics, logger *zap.Logger) *ApprovalQueue {
	return &ApprovalQueue{store: store, metrics: metrics, logger: logger}
}

// Pending re-reads the ledger and returns the expenses awaiting a decision,
// newest first.
func (q *ApprovalQueue) Pending(ctx context.Context, session domain.Session) ([]domain.Transaction, error) {
	ctx, span := approvalTracer.Start(ctx, "ApprovalQueue.Pending")
	defer span.End()

	if err := authorize(session, "view pending approvals", approvalRoles); err != nil {
		return nil, err
	}

	txs, err := q.store.ListTransactions(ctx)
	if err != nil {
		q.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	pending := ListPending(txs)
	span.SetAttributes(attribute.Int("pending.count", len(pending)))
	return pending, nil
}

// Resolve moves a pending expense to approved or rejected. The update is
// conditional on the stored status still being pending, so the first
// decision wins. Re-applying that same decision succeeds without change;
// a different decision fails with ErrConflict.
func (q *ApprovalQueue) Resolve(ctx context.Context, session domain.Session, id string, decision domain.Decision) error {
	ctx, span := approvalTracer.Start(ctx, "ApprovalQueue.Resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("transaction.id", id),
		attribute.String("decision", string(decision)),
	)

	if err := authorize(session, "resolve approvals", approvalRoles); err != nil {
		return err
	}
	if !domain.ValidDecision(decision) {
		return &domain.ErrValidation{Field: "decision", Message: "must be approved or rejected"}
	}
	if id == "" {
		return &domain.ErrValidation{Field: "id", Message: "is required"}
	}

	updated, err := q.store.CompareAndSetStatus(ctx, id, domain.StatusPending, decision)
	if err != nil {
		q.metrics.IncrExternalError("store")
		return fmt.Errorf("resolve transaction: %w", err)
	}
	if updated {
		q.metrics.IncrResolution(decision)
		q.logger.Info("approval resolved",
			zap.String("id", id),
			zap.String("decision", string(decision)),
			zap.String("user", session.Username),
		)
		return nil
	}

	// Nothing matched: find out why.
	current, err := q.store.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("resolve transaction: %w", err)
	}
	status := current.EffectiveStatus()
	if status == decision {
		q.logger.Debug("approval already applied",
			zap.String("id", id),
			zap.String("decision", string(decision)),
		)
		return nil
	}

	q.logger.Warn("approval conflict",
		zap.String("id", id),
		zap.String("current", string(status)),
		zap.String("requested", string(decision)),
		zap.String("user", session.Username),
	)
	return &domain.ErrConflict{Message: fmt.Sprintf("transaction %s is already %s", id, status)}
}
