// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service
// layer from the Supabase adapter, the in-memory simulation store and
// the SMS provider.
package port

import (
	"context"

	"github.com/graceflow/graceflow-api/internal/domain"
)

// LedgerStore persists transactions. It is the single source of truth
// for the ledger; callers never keep an authoritative copy.
type LedgerStore interface {
	InsertTransaction(ctx context.Context, tx *domain.NewTransaction) (*domain.Transaction, error)
	// ListTransactions returns every transaction, newest created first.
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	// CompareAndSetStatus sets the status to next only when the stored
	// status equals expected. It reports whether a row was updated.
	CompareAndSetStatus(ctx context.Context, id string, expected, next domain.TransactionStatus) (bool, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// FinanceStore persists assets and pledges.
type FinanceStore interface {
	InsertAsset(ctx context.Context, a *domain.Asset) (*domain.Asset, error)
	ListAssets(ctx context.Context) ([]domain.Asset, error)
	DeleteAsset(ctx context.Context, id string) error

	InsertPledge(ctx context.Context, p *domain.Pledge) (*domain.Pledge, error)
	ListPledges(ctx context.Context) ([]domain.Pledge, error)
	DeletePledge(ctx context.Context, id string) error
}

// PeopleStore persists members and visitors.
type PeopleStore interface {
	InsertMember(ctx context.Context, m *domain.Member) (*domain.Member, error)
	ListMembers(ctx context.Context) ([]domain.Member, error)
	DeleteMember(ctx context.Context, id string) error

	InsertVisitor(ctx context.Context, v *domain.Visitor) (*domain.Visitor, error)
	ListVisitors(ctx context.Context) ([]domain.Visitor, error)
	DeleteVisitor(ctx context.Context, id string) error
}

// AuthStore verifies staff credentials and resolves profiles.
type AuthStore interface {
	// VerifyCredentials returns the auth user id for a valid identifier/password pair.
	VerifyCredentials(ctx context.Context, identifier, password string) (string, error)
	// GetProfile returns nil, nil when the user has no profile row.
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	// UpdateUser changes the display name and/or password of an account.
	UpdateUser(ctx context.Context, userID string, update *domain.UserUpdate) error
}

// EventsStore persists the church calendar.
type EventsStore interface {
	InsertEvent(ctx context.Context, e *domain.Event) (*domain.Event, error)
	// ListEvents returns every event, earliest date first.
	ListEvents(ctx context.Context) ([]domain.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// LeadersStore persists the leadership directory.
type LeadersStore interface {
	InsertLeader(ctx context.Context, l *domain.Leader) (*domain.Leader, error)
	// ListLeaders returns every leader ordered by name.
	ListLeaders(ctx context.Context) ([]domain.Leader, error)
	DeleteLeader(ctx context.Context, id string) error
}

// MinistryStore is the calendar plus the leadership directory.
type MinistryStore interface {
	EventsStore
	LeadersStore
}

// HealthChecker is a reachability check of the record store.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Store is everything the services need from persistence.
type Store interface {
	LedgerStore
	FinanceStore
	PeopleStore
	MinistryStore
	AuthStore
	HealthChecker
}

// Notifier dispatches member and visitor messages. Failures are returned
// as tagged outcomes, never as errors.
type Notifier interface {
	SendSMS(ctx context.Context, to, message string) domain.SMSOutcome
	SendWelcomeEmail(ctx context.Context, email, name string) domain.EmailOutcome
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	// GetOrLoad returns the cached value or calls load and stores its result.
	// The bool reports a cache hit.
	GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error)) (T, bool, error)
}
