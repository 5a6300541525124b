package service

import (
	"context"
	"fmt"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/observability"
	"github.com/graceflow/graceflow-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var dashboardTracer = otel.Tracer("service/dashboard")

const recentLedgerSize = 5

// DashboardService assembles the staff overview.
type DashboardService struct {
	store   port.Store
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(store port.Store, metrics *observability.Metrics, logger *zap.Logger) *DashboardService {
	return &DashboardService{store: store, metrics: metrics, logger: logger}
}

// Overview reads members, visitors, transactions and assets concurrently.
// Any role may see it.
func (s *DashboardService) Overview(ctx context.Context, session domain.Session) (*domain.Overview, error) {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Overview")
	defer span.End()

	if !session.Role.Valid() {
		return nil, &domain.ErrForbidden{Action: "view the dashboard", Role: session.Role}
	}

	var (
		members      []domain.Member
		visitors     []domain.Visitor
		transactions []domain.Transaction
		assets       []domain.Asset
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		m, err := s.store.ListMembers(gCtx)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		members = m
		return nil
	})

	g.Go(func() error {
		v, err := s.store.ListVisitors(gCtx)
		if err != nil {
			return fmt.Errorf("list visitors: %w", err)
		}
		visitors = v
		return nil
	})

	g.Go(func() error {
		t, err := s.store.ListTransactions(gCtx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		transactions = t
		return nil
	})

	g.Go(func() error {
		a, err := s.store.ListAssets(gCtx)
		if err != nil {
			return fmt.Errorf("list assets: %w", err)
		}
		assets = a
		return nil
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncrExternalError("store")
		s.logger.Error("failed to build dashboard", zap.Error(err))
		return nil, err
	}

	recent := transactions
	if len(recent) > recentLedgerSize {
		recent = recent[:recentLedgerSize]
	}

	return &domain.Overview{
		Members:          len(members),
		Visitors:         len(visitors),
		Totals:           ComputeTotals(transactions),
		AssetValue:       TotalAssetValue(assets),
		PendingApprovals: ListPending(transactions),
		RecentLedger:     recent,
	}, nil
}
