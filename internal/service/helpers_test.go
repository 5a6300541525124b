package service_test

import (
	"context"
	"sync"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/memstore"
)

// --- Mocks ---

var (
	admin      = domain.Session{UserID: "u-admin", Username: "admin", Role: domain.RoleAdmin}
	accountant = domain.Session{UserID: "u-acc", Username: "mhasibu", Role: domain.RoleAccountant}
	pastor     = domain.Session{UserID: "u-pastor", Username: "mchungaji", Role: domain.RolePastor}
	reception  = domain.Session{UserID: "u-rec", Username: "mapokezi", Role: domain.RoleReception}
)

// countingStore wraps the in-memory store, counting calls and
// optionally failing them.
type countingStore struct {
	*memstore.Store

	mu      sync.Mutex
	inserts int
	err     error
}

func newCountingStore() *countingStore {
	return &countingStore{Store: memstore.New()}
}

func (s *countingStore) InsertTransaction(ctx context.Context, tx *domain.NewTransaction) (*domain.Transaction, error) {
	s.mu.Lock()
	s.inserts++
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Store.InsertTransaction(ctx, tx)
}

func (s *countingStore) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	s.mu.Lock()
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Store.ListTransactions(ctx)
}

func (s *countingStore) InsertMember(ctx context.Context, m *domain.Member) (*domain.Member, error) {
	s.mu.Lock()
	s.inserts++
	s.mu.Unlock()
	return s.Store.InsertMember(ctx, m)
}

// fakeNotifier records messages and answers with a fixed outcome.
type fakeNotifier struct {
	mu      sync.Mutex
	outcome domain.SMSOutcome
	sent    []string
	emails  []string
}

func (n *fakeNotifier) SendSMS(_ context.Context, to, message string) domain.SMSOutcome {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, to+": "+message)
	if n.outcome.Result == "" {
		return domain.SMSOutcome{Result: domain.SMSSimulatedSuccess}
	}
	return n.outcome
}

func (n *fakeNotifier) SendWelcomeEmail(_ context.Context, email, _ string) domain.EmailOutcome {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, email)
	return domain.EmailOutcome{Status: 200, Text: "OK (Simulated)"}
}
