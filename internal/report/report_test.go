package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/graceflow/graceflow-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sample = []domain.Transaction{
	{ID: "1", Kind: domain.KindExpense, Category: "Ujenzi", Amount: 600000, Description: "Roofing, phase 1", Date: "2025-03-02", Status: domain.StatusPending},
	{ID: "2", Kind: domain.KindIncome, Category: "Sadaka", Amount: 50000, Description: "Sunday offering", Date: "2025-03-01"},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample))

	want := "Date,Description,Category,Type,Amount,Status\n" +
		"2025-03-02,\"Roofing, phase 1\",Ujenzi,expense,600000,pending\n" +
		"2025-03-01,Sunday offering,Sadaka,income,50000,approved\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Date,Description,Category,Type,Amount,Status\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sample))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Ledger")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"2025-03-01", "Sunday offering", "Sadaka", "income", "50000", "approved"}, rows[2])
}

func TestSelect(t *testing.T) {
	now := time.Date(2025, 3, 8, 15, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		{ID: "a", Date: "2025-03-08"},
		{ID: "b", Date: "2025-03-05"},
		{ID: "c", Date: "2025-03-02"},
		{ID: "d", Date: "2025-03-01"},
		{ID: "e", Date: "2025-02-20"},
		{ID: "f", Date: "2025-02-10"},
	}

	assert.Len(t, Select(ScopeMini, txs, now), 5)
	assert.Len(t, Select(ScopeFull, txs, now), 6)

	weekly := Select(ScopeWeekly, txs, now)
	ids := make([]string, 0, len(weekly))
	for _, tx := range weekly {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("weekly")
	require.NoError(t, err)
	assert.Equal(t, ScopeWeekly, s)

	_, err = ParseScope("yearly")
	var verr *domain.ErrValidation
	assert.True(t, errors.As(err, &verr))
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "graceflow_mini_report_2025-03-08.csv", Filename(ScopeMini, "csv", now))
}
