// Package memstore is an in-memory implementation of port.Store. It backs
// simulation mode (no Supabase configured) and the service and handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/graceflow/graceflow-api/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Store keeps every table in maps guarded by a single mutex.
type Store struct {
	mu           sync.RWMutex
	transactions map[string]domain.Transaction
	assets       map[string]domain.Asset
	pledges      map[string]domain.Pledge
	members      map[string]domain.Member
	visitors     map[string]domain.Visitor
	events       map[string]domain.Event
	leaders      map[string]domain.Leader
	profiles     map[string]domain.Profile

	// seq breaks created_at ties so ordering stays stable within one clock tick.
	seq   map[string]int64
	next  int64
	clock func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		transactions: make(map[string]domain.Transaction),
		assets:       make(map[string]domain.Asset),
		pledges:      make(map[string]domain.Pledge),
		members:      make(map[string]domain.Member),
		visitors:     make(map[string]domain.Visitor),
		events:       make(map[string]domain.Event),
		leaders:      make(map[string]domain.Leader),
		profiles:     make(map[string]domain.Profile),
		seq:          make(map[string]int64),
		clock:        time.Now,
	}
}

// stamp assigns a fresh id and creation time. Caller holds mu.
func (s *Store) stamp() (string, time.Time) {
	id := uuid.NewString()
	s.next++
	s.seq[id] = s.next
	return id, s.clock().UTC()
}

// newestFirst sorts by created_at descending, newest insert first on ties.
func newestFirst[T any](s *Store, items []T, id func(T) string, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return s.seq[id(items[i])] > s.seq[id(items[j])]
	})
}

// ============================================================
// Ledger
// ============================================================

func (s *Store) InsertTransaction(_ context.Context, tx *domain.NewTransaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, now := s.stamp()
	t := domain.Transaction{
		ID:          id,
		Kind:        tx.Kind,
		Category:    tx.Category,
		Amount:      tx.Amount,
		Description: tx.Description,
		Date:        tx.Date,
		Status:      tx.Status,
		CreatedAt:   now,
	}
	s.transactions[id] = t
	return &t, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t)
	}
	newestFirst(s, out,
		func(t domain.Transaction) string { return t.ID },
		func(t domain.Transaction) time.Time { return t.CreatedAt },
	)
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: id}
	}
	return &t, nil
}

// CompareAndSetStatus compares against the effective status, so a legacy
// row without a status matches "approved".
func (s *Store) CompareAndSetStatus(_ context.Context, id string, expected, next domain.TransactionStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok || t.EffectiveStatus() != expected {
		return false, nil
	}
	t.Status = next
	s.transactions[id] = t
	return true, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.transactions, id)
	return nil
}

// ============================================================
// Assets & pledges
// ============================================================

func (s *Store) InsertAsset(_ context.Context, a *domain.Asset) (*domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *a
	created.ID, created.CreatedAt = s.stamp()
	s.assets[created.ID] = created
	return &created, nil
}

func (s *Store) ListAssets(_ context.Context) ([]domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		out = append(out, a)
	}
	newestFirst(s, out,
		func(a domain.Asset) string { return a.ID },
		func(a domain.Asset) time.Time { return a.CreatedAt },
	)
	return out, nil
}

func (s *Store) DeleteAsset(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.assets, id)
	return nil
}

func (s *Store) InsertPledge(_ context.Context, p *domain.Pledge) (*domain.Pledge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *p
	created.ID, created.CreatedAt = s.stamp()
	s.pledges[created.ID] = created
	return &created, nil
}

func (s *Store) ListPledges(_ context.Context) ([]domain.Pledge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Pledge, 0, len(s.pledges))
	for _, p := range s.pledges {
		out = append(out, p)
	}
	newestFirst(s, out,
		func(p domain.Pledge) string { return p.ID },
		func(p domain.Pledge) time.Time { return p.CreatedAt },
	)
	return out, nil
}

func (s *Store) DeletePledge(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pledges, id)
	return nil
}

// ============================================================
// Members & visitors
// ============================================================

func (s *Store) InsertMember(_ context.Context, m *domain.Member) (*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *m
	created.ID, created.CreatedAt = s.stamp()
	s.members[created.ID] = created
	return &created, nil
}

func (s *Store) ListMembers(_ context.Context) ([]domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	newestFirst(s, out,
		func(m domain.Member) string { return m.ID },
		func(m domain.Member) time.Time { return m.CreatedAt },
	)
	return out, nil
}

func (s *Store) DeleteMember(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.members, id)
	return nil
}

func (s *Store) InsertVisitor(_ context.Context, v *domain.Visitor) (*domain.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *v
	created.ID, created.CreatedAt = s.stamp()
	s.visitors[created.ID] = created
	return &created, nil
}

func (s *Store) ListVisitors(_ context.Context) ([]domain.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Visitor, 0, len(s.visitors))
	for _, v := range s.visitors {
		out = append(out, v)
	}
	newestFirst(s, out,
		func(v domain.Visitor) string { return v.ID },
		func(v domain.Visitor) time.Time { return v.CreatedAt },
	)
	return out, nil
}

func (s *Store) DeleteVisitor(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.visitors, id)
	return nil
}

// ============================================================
// Events & leaders
// ============================================================

func (s *Store) InsertEvent(_ context.Context, e *domain.Event) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *e
	created.ID, created.CreatedAt = s.stamp()
	s.events[created.ID] = created
	return &created, nil
}

// ListEvents orders by date ascending. Dates share one fixed-width layout,
// so comparing the strings compares the instants.
func (s *Store) ListEvents(_ context.Context) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out, nil
}

func (s *Store) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.events, id)
	return nil
}

func (s *Store) InsertLeader(_ context.Context, l *domain.Leader) (*domain.Leader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *l
	created.ID, created.CreatedAt = s.stamp()
	s.leaders[created.ID] = created
	return &created, nil
}

func (s *Store) ListLeaders(_ context.Context) ([]domain.Leader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Leader, 0, len(s.leaders))
	for _, l := range s.leaders {
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out, nil
}

func (s *Store) DeleteLeader(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.leaders, id)
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// ============================================================
// Staff profiles
// ============================================================

// AddProfile registers a staff account with a bcrypt-hashed password and
// returns its user id.
func (s *Store) AddProfile(username, fullName, password string, role domain.Role) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.profiles[id] = domain.Profile{
		ID:           id,
		Username:     strings.ToLower(username),
		FullName:     fullName,
		Role:         role,
		PasswordHash: string(hash),
	}
	return id, nil
}

// VerifyCredentials accepts a username or a username@domain identifier.
func (s *Store) VerifyCredentials(_ context.Context, identifier, password string) (string, error) {
	username := strings.ToLower(identifier)
	if at := strings.IndexByte(username, '@'); at >= 0 {
		username = username[:at]
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
			break
		}
		return p.ID, nil
	}
	return "", &domain.ErrUnauthorized{Message: "invalid credentials"}
}

func (s *Store) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// UpdateUser re-hashes a new password with bcrypt and renames the profile.
func (s *Store) UpdateUser(_ context.Context, userID string, update *domain.UserUpdate) error {
	var hash []byte
	if update.Password != nil {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	if hash != nil {
		p.PasswordHash = string(hash)
	}
	if update.FullName != nil {
		p.FullName = *update.FullName
	}
	s.profiles[userID] = p
	return nil
}
