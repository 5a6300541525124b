package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/observability"
	"github.com/graceflow/graceflow-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var financeTracer = otel.Tracer("service/finance")

const defaultAssetCondition = "Good"

// FinanceService manages the asset register and pledges.
type FinanceService struct {
	store   port.FinanceStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewFinanceService creates a new finance service.
func NewFinanceService(store port.FinanceStore, metrics *observability.Metrics, logger *zap.Logger) *FinanceService {
	return &FinanceService{store: store, metrics: metrics, logger: logger}
}

// TotalAssetValue sums the value of every asset, saturating at MaxInt64.
func TotalAssetValue(assets []domain.Asset) int64 {
	var total int64
	for _, a := range assets {
		total = addAmount(total, a.Value)
	}
	return total
}

// ============================================================
// Assets
// ============================================================

func (s *FinanceService) CreateAsset(ctx context.Context, session domain.Session, draft *domain.AssetDraft) (*domain.Asset, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.CreateAsset")
	defer span.End()

	if err := authorize(session, "register assets", financeRoles); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "is required"}
	}
	category := draft.Category
	if category == "" {
		category = domain.AssetOther
	}
	if !category.Valid() {
		return nil, &domain.ErrValidation{Field: "category", Message: "must be Land, Building, Equipment, Vehicle or Other"}
	}
	value, err := ParseAmount("value", draft.Value)
	if err != nil {
		return nil, err
	}
	if err := validateDate("purchased_date", draft.PurchasedDate, false); err != nil {
		return nil, err
	}
	condition := strings.TrimSpace(draft.Condition)
	if condition == "" {
		condition = defaultAssetCondition
	}

	asset, err := s.store.InsertAsset(ctx, &domain.Asset{
		Name:          name,
		Category:      category,
		Value:         value,
		Condition:     condition,
		PurchasedDate: draft.PurchasedDate,
	})
	if err != nil {
		s.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("insert asset: %w", err)
	}

	s.logger.Info("asset registered",
		zap.String("id", asset.ID),
		zap.String("category", string(asset.Category)),
		zap.Int64("value", asset.Value),
	)
	return asset, nil
}

// AssetRegister lists the assets with their total value.
func (s *FinanceService) AssetRegister(ctx context.Context, session domain.Session) (*domain.AssetRegister, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.AssetRegister")
	defer span.End()

	if err := authorize(session, "view assets", financeRoles); err != nil {
		return nil, err
	}

	assets, err := s.store.ListAssets(ctx)
	if err != nil {
		s.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("list assets: %w", err)
	}
	span.SetAttributes(attribute.Int("assets.count", len(assets)))
	return &domain.AssetRegister{Assets: assets, TotalValue: TotalAssetValue(assets)}, nil
}

func (s *FinanceService) DeleteAsset(ctx context.Context, session domain.Session, id string) error {
	ctx, span := financeTracer.Start(ctx, "FinanceService.DeleteAsset")
	defer span.End()

	if err := authorize(session, "delete assets", financeRoles); err != nil {
		return err
	}
	if err := s.store.DeleteAsset(ctx, id); err != nil {
		s.metrics.IncrExternalError("store")
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

// ============================================================
// Pledges
// ============================================================

// CreatePledge records a pledge as pending with nothing paid.
func (s *FinanceService) CreatePledge(ctx context.Context, session domain.Session, draft *domain.PledgeDraft) (*domain.Pledge, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.CreatePledge")
	defer span.End()

	if err := authorize(session, "record pledges", financeRoles); err != nil {
		return nil, err
	}

	memberName := strings.TrimSpace(draft.MemberName)
	purpose := strings.TrimSpace(draft.Purpose)
	switch {
	case memberName == "":
		return nil, &domain.ErrValidation{Field: "member_name", Message: "is required"}
	case purpose == "":
		return nil, &domain.ErrValidation{Field: "purpose", Message: "is required"}
	}
	target, err := ParseAmount("target_amount", draft.TargetAmount)
	if err != nil {
		return nil, err
	}
	if err := validateDate("due_date", draft.DueDate, false); err != nil {
		return nil, err
	}

	pledge, err := s.store.InsertPledge(ctx, &domain.Pledge{
		MemberID:     draft.MemberID,
		MemberName:   memberName,
		Purpose:      purpose,
		TargetAmount: target,
		PaidAmount:   0,
		DueDate:      draft.DueDate,
		Status:       domain.PledgePending,
	})
	if err != nil {
		s.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("insert pledge: %w", err)
	}

	s.logger.Info("pledge recorded",
		zap.String("id", pledge.ID),
		zap.Int64("target_amount", pledge.TargetAmount),
	)
	return pledge, nil
}

func (s *FinanceService) ListPledges(ctx context.Context, session domain.Session) ([]domain.Pledge, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.ListPledges")
	defer span.End()

	if err := authorize(session, "view pledges", financeRoles); err != nil {
		return nil, err
	}

	pledges, err := s.store.ListPledges(ctx)
	if err != nil {
		s.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("list pledges: %w", err)
	}
	return pledges, nil
}

func (s *FinanceService) DeletePledge(ctx context.Context, session domain.Session, id string) error {
	ctx, span := financeTracer.Start(ctx, "FinanceService.DeletePledge")
	defer span.End()

	if err := authorize(session, "delete pledges", financeRoles); err != nil {
		return err
	}
	if err := s.store.DeletePledge(ctx, id); err != nil {
		s.metrics.IncrExternalError("store")
		return fmt.Errorf("delete pledge: %w", err)
	}
	return nil
}
