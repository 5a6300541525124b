package observability_test

import (
	"testing"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/observability"

	"github.com/stretchr/testify/assert"
)

func TestFinanceSnapshot(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrTransaction(domain.KindIncome, domain.StatusApproved)
	m.IncrTransaction(domain.KindExpense, domain.StatusPending)
	m.IncrTransaction(domain.KindExpense, domain.StatusApproved)
	m.IncrResolution(domain.StatusRejected)
	m.IncrSMSOutcome(domain.SMSSimulatedSuccess)
	m.IncrSMSOutcome(domain.SMSSimulatedSuccess)
	m.IncrCacheHit("profile")
	m.IncrCacheMiss("profile")

	snap := m.GetFinanceSnapshot()

	assert.EqualValues(t, 3, snap.TransactionsRecorded)
	assert.EqualValues(t, 1, snap.PendingCreated)
	assert.EqualValues(t, 0, snap.Approved)
	assert.EqualValues(t, 1, snap.Rejected)
	assert.EqualValues(t, 2, snap.SMSOutcomes["simulated_success"])
	assert.InDelta(t, 0.5, snap.CacheHitRate, 0.0001)
}

func TestNewMetrics_Twice(t *testing.T) {
	// private registries: no duplicate collector panic
	assert.NotPanics(t, func() {
		observability.NewMetrics()
		observability.NewMetrics()
	})
}
