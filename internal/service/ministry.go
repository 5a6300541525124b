package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/observability"
	"github.com/graceflow/graceflow-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var ministryTracer = otel.Tracer("service/ministry")

// eventLayout is the wall-clock form sent by a datetime-local input.
const eventLayout = "2006-01-02T15:04"

// MinistryService keeps the church calendar and the leadership directory.
// Every staff role may read them.
type MinistryService struct {
	store   port.MinistryStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewMinistryService creates a new ministry service.
func NewMinistryService(store port.MinistryStore, metrics *observability.Metrics, logger *zap.Logger) *MinistryService {
	return &MinistryService{store: store, metrics: metrics, logger: logger}
}

// NormalizeEventDate accepts "2006-01-02T15:04", the same with seconds, or a
// bare date (midnight) and returns the "2006-01-02T15:04" form.
func NormalizeEventDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{eventLayout, "2006-01-02T15:04:05", dateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(eventLayout), nil
		}
	}
	return "", &domain.ErrValidation{Field: "date", Message: "must be a date and time in YYYY-MM-DDTHH:MM format"}
}

func requireStaff(session domain.Session, action string) error {
	if !session.Role.Valid() {
		return &domain.ErrForbidden{Action: action, Role: session.Role}
	}
	return nil
}

// ============================================================
// Events
// ============================================================

// CreateEvent schedules an event. The type defaults to Service.
func (s *MinistryService) CreateEvent(ctx context.Context, session domain.Session, draft *domain.EventDraft) (*domain.Event, error) {
	ctx, span := ministryTracer.Start(ctx, "MinistryService.CreateEvent")
	defer span.End()

	if err := authorize(session, "schedule events", ministryRoles); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, &domain.ErrValidation{Field: "title", Message: "is required"}
	}
	date, err := NormalizeEventDate(draft.Date)
	if err != nil {
		return nil, err
	}
	kind := draft.Type
	if kind == "" {
		kind = domain.EventService
	}
	if !kind.Valid() {
		return nil, &domain.ErrValidation{Field: "type", Message: "must be Service, Meeting or Seminar"}
	}
	span.SetAttributes(attribute.String("event.type", string(kind)))

	event, err := s.store.InsertEvent(ctx, &domain.Event{
		Title:       title,
		Description: strings.TrimSpace(draft.Description),
		Date:        date,
		Type:        kind,
	})
	if err != nil {
		s.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("insert event: %w", err)
	}

	s.logger.Info("event scheduled",
		zap.String("id", event.ID),
		zap.String("date", event.Date),
		zap.String("user", session.Username),
	)
	return event, nil
}

// ListEvents returns the calendar, earliest first.
func (s *MinistryService) ListEvents(ctx context.Context, session domain.Session) ([]domain.Event, error) {
	ctx, span := ministryTracer.Start(ctx, "MinistryService.ListEvents")
	defer span.End()

	if err := requireStaff(session, "view events"); err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		s.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("list events: %w", err)
	}
	span.SetAttributes(attribute.Int("events.count", len(events)))
	return events, nil
}

func (s *MinistryService) DeleteEvent(ctx context.Context, session domain.Session, id string) error {
	ctx, span := ministryTracer.Start(ctx, "MinistryService.DeleteEvent")
	defer span.End()

	if err := authorize(session, "delete events", ministryRoles); err != nil {
		return err
	}
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		s.metrics.IncrExternalError("store")
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ============================================================
// Leaders
// ============================================================

func (s *MinistryService) AddLeader(ctx context.Context, session domain.Session, draft *domain.LeaderDraft) (*domain.Leader, error) {
	ctx, span := ministryTracer.Start(ctx, "MinistryService.AddLeader")
	defer span.End()

	if err := authorize(session, "add leaders", ministryRoles); err != nil {
		return nil, err
	}

	leader := &domain.Leader{
		Name:  strings.TrimSpace(draft.Name),
		Title: strings.TrimSpace(draft.Title),
		Phone: strings.TrimSpace(draft.Phone),
	}
	switch {
	case leader.Name == "":
		return nil, &domain.ErrValidation{Field: "name", Message: "is required"}
	case leader.Title == "":
		return nil, &domain.ErrValidation{Field: "title", Message: "is required"}
	case leader.Phone == "":
		return nil, &domain.ErrValidation{Field: "phone", Message: "is required"}
	}

	created, err := s.store.InsertLeader(ctx, leader)
	if err != nil {
		s.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("insert leader: %w", err)
	}
	return created, nil
}

// ListLeaders returns the directory ordered by name.
func (s *MinistryService) ListLeaders(ctx context.Context, session domain.Session) ([]domain.Leader, error) {
	ctx, span := ministryTracer.Start(ctx, "MinistryService.ListLeaders")
	defer span.End()

	if err := requireStaff(session, "view leaders"); err != nil {
		return nil, err
	}
	leaders, err := s.store.ListLeaders(ctx)
	if err != nil {
		s.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("list leaders: %w", err)
	}
	return leaders, nil
}

func (s *MinistryService) DeleteLeader(ctx context.Context, session domain.Session, id string) error {
	ctx, span := ministryTracer.Start(ctx, "MinistryService.DeleteLeader")
	defer span.End()

	if err := authorize(session, "delete leaders", ministryRoles); err != nil {
		return err
	}
	if err := s.store.DeleteLeader(ctx, id); err != nil {
		s.metrics.IncrExternalError("store")
		return fmt.Errorf("delete leader: %w", err)
	}
	return nil
}
