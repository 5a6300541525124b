// Package service provides the business logic layer (use cases).
// LedgerService records income and expense entries and derives totals;
// ApprovalQueue resolves expenses held above the approval threshold.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/observability"
	"github.com/graceflow/graceflow-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var ledgerTracer = otel.Tracer("service/ledger")

// LedgerService owns transaction creation and the derived ledger views.
// It keeps no copy of the ledger: every view is computed from a fresh read.
type LedgerService struct {
	store   port.LedgerStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(store port.LedgerStore, metrics *observability.Metrics, logger *zap.Logger) *LedgerService {
	return &LedgerService{store: store, metrics: metrics, logger: logger}
}

// RecordTransaction validates, classifies and persists one transaction.
// Nothing reaches the store when validation fails.
func (s *LedgerService) RecordTransaction(ctx context.Context, session domain.Session, draft *domain.TransactionDraft) (*domain.Transaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.RecordTransaction")
	defer span.End()

	if err := authorize(session, "record transactions", financeRoles); err != nil {
		return nil, err
	}

	tx, err := BuildTransaction(draft)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("transaction.kind", string(tx.Kind)),
		attribute.String("transaction.status", string(tx.Status)),
		attribute.Int64("transaction.amount", tx.Amount),
	)

	start := time.Now()
	created, err := s.store.InsertTransaction(ctx, tx)
	s.metrics.RecordRequestDuration("ledger.insert", time.Since(start))
	if err != nil {
		s.metrics.IncrExternalError("store")
		s.logger.Error("failed to record transaction",
			zap.String("kind", string(tx.Kind)),
			zap.Int64("amount", tx.Amount),
			zap.Error(err),
		)
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	s.metrics.IncrTransaction(created.Kind, created.EffectiveStatus())
	s.logger.Info("transaction recorded",
		zap.String("id", created.ID),
		zap.String("kind", string(created.Kind)),
		zap.String("status", string(created.EffectiveStatus())),
		zap.String("user", session.Username),
	)
	return created, nil
}

// DeleteTransaction removes a transaction whatever its status.
func (s *LedgerService) DeleteTransaction(ctx context.Context, session domain.Session, id string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", id))

	if err := authorize(session, "delete transactions", financeRoles); err != nil {
		return err
	}
	if id == "" {
		return &domain.ErrValidation{Field: "id", Message: "is required"}
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		s.metrics.IncrExternalError("store")
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.logger.Info("transaction deleted",
		zap.String("id", id),
		zap.String("user", session.Username),
	)
	return nil
}

// ListTransactions returns the whole ledger, newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, session domain.Session) ([]domain.Transaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListTransactions")
	defer span.End()

	if err := authorize(session, "view the ledger", financeRoles); err != nil {
		return nil, err
	}
	return s.list(ctx)
}

// Ledger re-reads the transactions and derives totals and the pending queue.
func (s *LedgerService) Ledger(ctx context.Context, session domain.Session) (*domain.Ledger, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.Ledger")
	defer span.End()

	if err := authorize(session, "view the ledger", financeRoles); err != nil {
		return nil, err
	}

	txs, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Ledger{
		Transactions: txs,
		Totals:       ComputeTotals(txs),
		Pending:      ListPending(txs),
	}, nil
}

// Totals re-reads the transactions and sums them.
func (s *LedgerService) Totals(ctx context.Context, session domain.Session) (*domain.Totals, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.Totals")
	defer span.End()

	if err := authorize(session, "view the ledger", financeRoles); err != nil {
		return nil, err
	}

	txs, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(txs)
	return &totals, nil
}

func (s *LedgerService) list(ctx context.Context) ([]domain.Transaction, error) {
	start := time.Now()
	txs, err := s.store.ListTransactions(ctx)
	s.metrics.RecordRequestDuration("ledger.list", time.Since(start))
	if err != nil {
		s.metrics.IncrExternalError("store")
		s.logger.Error("failed to list transactions", zap.Error(err))
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}
