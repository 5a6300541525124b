package service_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/observability"
	"github.com/graceflow/graceflow-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLedger(store *countingStore) (*service.LedgerService, *service.ApprovalQueue) {
	metrics := observability.NewMetrics()
	return service.NewLedgerService(store, metrics, zap.NewNop()),
		service.NewApprovalQueue(store, metrics, zap.NewNop())
}

func expense(category, amount, description string) *domain.TransactionDraft {
	return &domain.TransactionDraft{Kind: domain.KindExpense, Category: category, Amount: amount, Description: description, Date: "2025-03-02"}
}

func income(category, amount, description string) *domain.TransactionDraft {
	return &domain.TransactionDraft{Kind: domain.KindIncome, Category: category, Amount: amount, Description: description, Date: "2025-03-02"}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		kind   domain.TransactionKind
		amount int64
		want   domain.TransactionStatus
	}{
		{domain.KindExpense, 0, domain.StatusApproved},
		{domain.KindExpense, 499999, domain.StatusApproved},
		{domain.KindExpense, 500000, domain.StatusApproved},
		{domain.KindExpense, 500001, domain.StatusPending},
		{domain.KindExpense, 600000, domain.StatusPending},
		{domain.KindIncome, 50000, domain.StatusApproved},
		{domain.KindIncome, 10000000, domain.StatusApproved},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, service.ClassifyStatus(tt.kind, tt.amount), "%s %d", tt.kind, tt.amount)
	}
}

func TestParseAmount(t *testing.T) {
	valid := map[string]int64{"600000": 600000, " 50000 ": 50000, "0": 0, "1500.00": 1500, "9007199254740991": service.MaxAmount}
	for raw, want := range valid {
		got, err := service.ParseAmount("amount", raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "abc", "-5", "10.5", "99999999999999999999", "9007199254740992", "5000000000000000000"} {
		_, err := service.ParseAmount("amount", raw)
		var verr *domain.ErrValidation
		assert.True(t, errors.As(err, &verr), "expected validation error for %q", raw)
	}
}

func TestComputeTotals_OrderIndependent(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "1", Kind: domain.KindIncome, Amount: 50000},
		{ID: "2", Kind: domain.KindExpense, Amount: 600000, Status: domain.StatusPending},
		{ID: "3", Kind: domain.KindExpense, Amount: 100000, Status: domain.StatusApproved},
		{ID: "4", Kind: domain.KindExpense, Amount: 700000, Status: domain.StatusRejected},
		{ID: "5", Kind: domain.KindExpense, Amount: 2000},
		{ID: "6", Kind: domain.KindIncome, Amount: 900000},
	}
	want := domain.Totals{Income: 950000, Expense: 702000, Balance: 248000}
	assert.Equal(t, want, service.ComputeTotals(txs))

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]domain.Transaction(nil), txs...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, service.ComputeTotals(shuffled))
	}
}

func TestComputeTotals_SaturatesInsteadOfWrapping(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "1", Kind: domain.KindIncome, Amount: math.MaxInt64 - 10},
		{ID: "2", Kind: domain.KindIncome, Amount: math.MaxInt64 - 10},
		{ID: "3", Kind: domain.KindExpense, Amount: 100, Status: domain.StatusApproved},
	}

	got := service.ComputeTotals(txs)

	assert.EqualValues(t, int64(math.MaxInt64), got.Income)
	assert.EqualValues(t, 100, got.Expense)
	assert.Positive(t, got.Balance)
}

func TestTotals_LargeIncomesKeepBalance(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	ledger, _ := newLedger(store)

	_, err := ledger.RecordTransaction(ctx, accountant, income("Harambee", "5000000000000000000", "Too large"))
	var verr *domain.ErrValidation
	require.True(t, errors.As(err, &verr))
	assert.Zero(t, store.inserts)

	for i := 0; i < 2; i++ {
		_, err := ledger.RecordTransaction(ctx, accountant, income("Harambee", "9007199254740991", "Ujenzi wa kanisa"))
		require.NoError(t, err)
	}

	totals, err := ledger.Totals(ctx, accountant)
	require.NoError(t, err)
	assert.EqualValues(t, 2*service.MaxAmount, totals.Income)
	assert.EqualValues(t, 2*service.MaxAmount, totals.Balance)
}

func TestListPending_KeepsOrder(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "c", Kind: domain.KindExpense, Status: domain.StatusPending},
		{ID: "b", Kind: domain.KindIncome},
		{ID: "a", Kind: domain.KindExpense, Status: domain.StatusPending},
		{ID: "z", Kind: domain.KindExpense, Status: domain.StatusRejected},
	}

	pending := service.ListPending(txs)

	require.Len(t, pending, 2)
	assert.Equal(t, "c", pending[0].ID)
	assert.Equal(t, "a", pending[1].ID)
}

func TestRecordTransaction_LargeExpenseIsPending(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(newCountingStore())

	tx, err := ledger.RecordTransaction(ctx, accountant, expense("Ujenzi", "600000", "Roofing"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, tx.Status)

	view, err := ledger.Ledger(ctx, accountant)
	require.NoError(t, err)
	require.Len(t, view.Pending, 1)
	assert.Equal(t, tx.ID, view.Pending[0].ID)
	assert.EqualValues(t, 600000, view.Totals.Expense)
	assert.EqualValues(t, -600000, view.Totals.Balance)
}

func TestRecordTransaction_IncomeRaisesBalance(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(newCountingStore())

	before, err := ledger.Totals(ctx, admin)
	require.NoError(t, err)

	tx, err := ledger.RecordTransaction(ctx, admin, income("Sadaka", "50000", "Sunday offering"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, tx.Status)

	after, err := ledger.Totals(ctx, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 50000, after.Income-before.Income)
	assert.EqualValues(t, 50000, after.Balance-before.Balance)
}

func TestRecordTransaction_OnlyLargeExpensePending(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(newCountingStore())

	_, err := ledger.RecordTransaction(ctx, accountant, expense("Umeme", "100000", "Electricity"))
	require.NoError(t, err)
	big, err := ledger.RecordTransaction(ctx, accountant, expense("Ujenzi", "600000", "Roofing"))
	require.NoError(t, err)

	view, err := ledger.Ledger(ctx, accountant)
	require.NoError(t, err)
	require.Len(t, view.Pending, 1)
	assert.Equal(t, big.ID, view.Pending[0].ID)
}

func TestRecordTransaction_ValidationNeverReachesStore(t *testing.T) {
	store := newCountingStore()
	ledger, _ := newLedger(store)

	drafts := []*domain.TransactionDraft{
		expense("Ujenzi", "abc", "Roofing"),
		expense("Ujenzi", "-10", "Roofing"),
		expense("Ujenzi", "10.50", "Roofing"),
		expense("", "100", "Roofing"),
		expense("Ujenzi", "100", ""),
		{Kind: "transfer", Category: "x", Amount: "1", Description: "x", Date: "2025-01-01"},
		{Kind: domain.KindIncome, Category: "x", Amount: "1", Description: "x", Date: ""},
		{Kind: domain.KindIncome, Category: "x", Amount: "1", Description: "x", Date: "02/03/2025"},
	}
	for _, d := range drafts {
		_, err := ledger.RecordTransaction(context.Background(), admin, d)
		var verr *domain.ErrValidation
		assert.True(t, errors.As(err, &verr), "draft %+v", d)
	}
	assert.Zero(t, store.inserts)
}

func TestRecordTransaction_StoreFailure(t *testing.T) {
	store := newCountingStore()
	store.err = &domain.ErrExternalService{Service: "supabase/transactions", Err: errors.New("connection reset")}
	ledger, _ := newLedger(store)

	_, err := ledger.RecordTransaction(context.Background(), admin, income("Sadaka", "50000", "Offering"))

	var ext *domain.ErrExternalService
	require.True(t, errors.As(err, &ext))
	assert.Equal(t, 1, store.inserts, "inserts are not retried")
}

func TestRecordTransaction_Forbidden(t *testing.T) {
	store := newCountingStore()
	ledger, _ := newLedger(store)

	for _, s := range []domain.Session{pastor, reception} {
		_, err := ledger.RecordTransaction(context.Background(), s, income("Sadaka", "1", "x"))
		var forbidden *domain.ErrForbidden
		assert.True(t, errors.As(err, &forbidden), "role %s", s.Role)
	}
	assert.Zero(t, store.inserts)
}

func TestDeleteTransaction_RemovesFromViews(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(newCountingStore())

	tx, err := ledger.RecordTransaction(ctx, admin, expense("Ujenzi", "600000", "Roofing"))
	require.NoError(t, err)

	require.NoError(t, ledger.DeleteTransaction(ctx, admin, tx.ID))

	view, err := ledger.Ledger(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, view.Pending)
	assert.Empty(t, view.Transactions)
	assert.Equal(t, domain.Totals{}, view.Totals)
}

func TestListTransactions_NewestFirst(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(newCountingStore())

	first, _ := ledger.RecordTransaction(ctx, admin, income("Sadaka", "1", "first"))
	second, _ := ledger.RecordTransaction(ctx, admin, income("Sadaka", "2", "second"))

	txs, err := ledger.ListTransactions(ctx, admin)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, second.ID, txs[0].ID)
	assert.Equal(t, first.ID, txs[1].ID)
}
