package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/observability"
	"github.com/graceflow/graceflow-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOverview(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	ledger, _ := newLedger(store)

	for i := 0; i < 6; i++ {
		_, err := ledger.RecordTransaction(ctx, admin, income("Sadaka", "1000", fmt.Sprintf("week %d", i)))
		require.NoError(t, err)
	}
	_, err := ledger.RecordTransaction(ctx, admin, expense("Ujenzi", "600000", "Roofing"))
	require.NoError(t, err)
	_, _ = store.Store.InsertMember(ctx, &domain.Member{FullName: "A", Phone: "1"})
	_, _ = store.Store.InsertVisitor(ctx, &domain.Visitor{FullName: "B"})
	_, _ = store.Store.InsertAsset(ctx, &domain.Asset{Name: "Piano", Value: 3000000})

	svc := service.NewDashboardService(store, observability.NewMetrics(), zap.NewNop())

	for _, s := range []domain.Session{admin, pastor, accountant, reception} {
		ov, err := svc.Overview(ctx, s)
		require.NoError(t, err)

		assert.Equal(t, 1, ov.Members)
		assert.Equal(t, 1, ov.Visitors)
		assert.EqualValues(t, 6000, ov.Totals.Income)
		assert.EqualValues(t, 600000, ov.Totals.Expense)
		assert.EqualValues(t, 3000000, ov.AssetValue)
		assert.Len(t, ov.PendingApprovals, 1)
		require.Len(t, ov.RecentLedger, 5)
		assert.Equal(t, "Roofing", ov.RecentLedger[0].Description)
	}
}

func TestOverview_StoreError(t *testing.T) {
	store := newCountingStore()
	store.err = &domain.ErrCircuitOpen{Service: "supabase"}
	svc := service.NewDashboardService(store, observability.NewMetrics(), zap.NewNop())

	_, err := svc.Overview(context.Background(), admin)

	var open *domain.ErrCircuitOpen
	assert.True(t, errors.As(err, &open))
}
