package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ port.Store = (*Store)(nil)

func TestTransactions_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.InsertTransaction(ctx, &domain.NewTransaction{Kind: domain.KindIncome, Amount: 1})
	require.NoError(t, err)
	second, err := s.InsertTransaction(ctx, &domain.NewTransaction{Kind: domain.KindIncome, Amount: 2})
	require.NoError(t, err)

	txs, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, second.ID, txs[0].ID)
	assert.Equal(t, first.ID, txs[1].ID)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestCompareAndSetStatus(t *testing.T) {
	ctx := context.Background()
	s := New()

	tx, err := s.InsertTransaction(ctx, &domain.NewTransaction{
		Kind: domain.KindExpense, Amount: 600000, Status: domain.StatusPending,
	})
	require.NoError(t, err)

	ok, err := s.CompareAndSetStatus(ctx, tx.ID, domain.StatusPending, domain.StatusApproved)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CompareAndSetStatus(ctx, tx.ID, domain.StatusPending, domain.StatusRejected)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)

	ok, err = s.CompareAndSetStatus(ctx, "missing", domain.StatusPending, domain.StatusApproved)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetTransaction_NotFound(t *testing.T) {
	_, err := New().GetTransaction(context.Background(), "nope")

	var notFound *domain.ErrNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	s := New()

	tx, _ := s.InsertTransaction(ctx, &domain.NewTransaction{Kind: domain.KindIncome, Amount: 5})
	require.NoError(t, s.DeleteTransaction(ctx, tx.ID))

	txs, _ := s.ListTransactions(ctx)
	assert.Empty(t, txs)
}

func TestAssetsPledgesMembersVisitors(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, err := s.InsertAsset(ctx, &domain.Asset{Name: "Piano", Value: 3000000})
	require.NoError(t, err)
	p, err := s.InsertPledge(ctx, &domain.Pledge{MemberName: "Neema", TargetAmount: 100000})
	require.NoError(t, err)
	m, err := s.InsertMember(ctx, &domain.Member{FullName: "Baraka", Phone: "0712000000"})
	require.NoError(t, err)
	v, err := s.InsertVisitor(ctx, &domain.Visitor{FullName: "Amani"})
	require.NoError(t, err)

	assets, _ := s.ListAssets(ctx)
	pledges, _ := s.ListPledges(ctx)
	members, _ := s.ListMembers(ctx)
	visitors, _ := s.ListVisitors(ctx)
	assert.Len(t, assets, 1)
	assert.Len(t, pledges, 1)
	assert.Len(t, members, 1)
	assert.Len(t, visitors, 1)

	require.NoError(t, s.DeleteAsset(ctx, a.ID))
	require.NoError(t, s.DeletePledge(ctx, p.ID))
	require.NoError(t, s.DeleteMember(ctx, m.ID))
	require.NoError(t, s.DeleteVisitor(ctx, v.ID))

	assets, _ = s.ListAssets(ctx)
	members, _ = s.ListMembers(ctx)
	assert.Empty(t, assets)
	assert.Empty(t, members)
}

func TestVerifyCredentials(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.AddProfile("Mchungaji", "Pastor John", "amani123", domain.RolePastor)
	require.NoError(t, err)

	got, err := s.VerifyCredentials(ctx, "mchungaji", "amani123")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = s.VerifyCredentials(ctx, "mchungaji@church.com", "amani123")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = s.VerifyCredentials(ctx, "mchungaji", "wrong")
	var unauthorized *domain.ErrUnauthorized
	assert.True(t, errors.As(err, &unauthorized))

	profile, err := s.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.RolePastor, profile.Role)

	profile, err = s.GetProfile(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestEvents_EarliestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	later, err := s.InsertEvent(ctx, &domain.Event{Title: "Semina ya vijana", Date: "2026-11-14T10:00", Type: domain.EventSeminar})
	require.NoError(t, err)
	sooner, err := s.InsertEvent(ctx, &domain.Event{Title: "Ibada", Date: "2026-11-08T09:00", Type: domain.EventService})
	require.NoError(t, err)

	events, err := s.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, sooner.ID, events[0].ID)
	assert.Equal(t, later.ID, events[1].ID)

	require.NoError(t, s.DeleteEvent(ctx, sooner.ID))
	events, _ = s.ListEvents(ctx)
	assert.Len(t, events, 1)
}

func TestLeaders_ByName(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.InsertLeader(ctx, &domain.Leader{Name: "Yohana Mushi", Title: "Mwenyekiti", Phone: "0713000002"})
	require.NoError(t, err)
	first, err := s.InsertLeader(ctx, &domain.Leader{Name: "Anna Lyimo", Title: "Mchungaji", Phone: "0713000001"})
	require.NoError(t, err)

	leaders, err := s.ListLeaders(ctx)
	require.NoError(t, err)
	require.Len(t, leaders, 2)
	assert.Equal(t, first.ID, leaders[0].ID)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	s := New()
	id, err := s.AddProfile("mhasibu", "Mhasibu", "siri123", domain.RoleAccountant)
	require.NoError(t, err)

	name, password := "Mhasibu Mkuu", "mpya4567"
	require.NoError(t, s.UpdateUser(ctx, id, &domain.UserUpdate{FullName: &name, Password: &password}))

	_, err = s.VerifyCredentials(ctx, "mhasibu", "siri123")
	assert.Error(t, err)
	got, err := s.VerifyCredentials(ctx, "mhasibu", "mpya4567")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	p, err := s.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Mhasibu Mkuu", p.FullName)

	err = s.UpdateUser(ctx, "missing", &domain.UserUpdate{FullName: &name})
	var notFound *domain.ErrNotFound
	assert.True(t, errors.As(err, &notFound))
}
