package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/graceflow/graceflow-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_RejectExcludesFromTotals(t *testing.T) {
	ctx := context.Background()
	ledger, queue := newLedger(newCountingStore())

	tx, err := ledger.RecordTransaction(ctx, accountant, expense("Ujenzi", "600000", "Roofing"))
	require.NoError(t, err)

	require.NoError(t, queue.Resolve(ctx, pastor, tx.ID, domain.StatusRejected))

	view, err := ledger.Ledger(ctx, admin)
	require.NoError(t, err)
	assert.Zero(t, view.Totals.Expense)
	assert.Empty(t, view.Pending)

	pending, err := queue.Pending(ctx, pastor)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestResolve_ApproveKeepsExpense(t *testing.T) {
	ctx := context.Background()
	ledger, queue := newLedger(newCountingStore())

	tx, _ := ledger.RecordTransaction(ctx, accountant, expense("Ujenzi", "600000", "Roofing"))

	require.NoError(t, queue.Resolve(ctx, admin, tx.ID, domain.StatusApproved))

	totals, err := ledger.Totals(ctx, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 600000, totals.Expense)
}

func TestResolve_FirstDecisionWins(t *testing.T) {
	ctx := context.Background()
	ledger, queue := newLedger(newCountingStore())

	tx, _ := ledger.RecordTransaction(ctx, accountant, expense("Ujenzi", "600000", "Roofing"))

	require.NoError(t, queue.Resolve(ctx, pastor, tx.ID, domain.StatusApproved))

	// same decision again is a no-op
	require.NoError(t, queue.Resolve(ctx, pastor, tx.ID, domain.StatusApproved))

	// a different decision fails loudly
	err := queue.Resolve(ctx, pastor, tx.ID, domain.StatusRejected)
	var conflict *domain.ErrConflict
	require.True(t, errors.As(err, &conflict))

	txs, _ := ledger.ListTransactions(ctx, admin)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.StatusApproved, txs[0].Status)
}

func TestResolve_ConcurrentResolversOneWins(t *testing.T) {
	ctx := context.Background()
	ledger, queue := newLedger(newCountingStore())

	tx, _ := ledger.RecordTransaction(ctx, accountant, expense("Ujenzi", "600000", "Roofing"))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, d := range []domain.Decision{domain.StatusApproved, domain.StatusRejected} {
		wg.Add(1)
		go func(i int, d domain.Decision) {
			defer wg.Done()
			errs[i] = queue.Resolve(ctx, pastor, tx.ID, d)
		}(i, d)
	}
	wg.Wait()

	var conflicts int
	for _, err := range errs {
		var conflict *domain.ErrConflict
		if errors.As(err, &conflict) {
			conflicts++
		} else {
			assert.NoError(t, err)
		}
	}
	assert.Equal(t, 1, conflicts)
}

func TestResolve_NotFound(t *testing.T) {
	_, queue := newLedger(newCountingStore())

	err := queue.Resolve(context.Background(), pastor, "missing", domain.StatusApproved)

	var notFound *domain.ErrNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestResolve_InvalidDecision(t *testing.T) {
	_, queue := newLedger(newCountingStore())

	err := queue.Resolve(context.Background(), pastor, "x", domain.StatusPending)

	var verr *domain.ErrValidation
	assert.True(t, errors.As(err, &verr))
}

func TestResolve_AccountantForbidden(t *testing.T) {
	ctx := context.Background()
	ledger, queue := newLedger(newCountingStore())

	tx, _ := ledger.RecordTransaction(ctx, accountant, expense("Ujenzi", "600000", "Roofing"))

	err := queue.Resolve(ctx, accountant, tx.ID, domain.StatusApproved)

	var forbidden *domain.ErrForbidden
	assert.True(t, errors.As(err, &forbidden))
}
