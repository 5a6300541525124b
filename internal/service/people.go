package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/observability"
	"github.com/graceflow/graceflow-api/internal/infra/resilience"
	"github.com/graceflow/graceflow-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var peopleTracer = otel.Tracer("service/people")

const smsDateLayout = "02/01/2006"

// PeopleService registers members and visitors and sends them messages.
// Messages are best effort: a registration never fails because of one.
type PeopleService struct {
	store    port.PeopleStore
	notifier port.Notifier
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewPeopleService creates a new people service. maxConcurrency bounds
// the parallel SMS dispatches of a broadcast.
func NewPeopleService(store port.PeopleStore, notifier port.Notifier, maxConcurrency int, metrics *observability.Metrics, logger *zap.Logger) *PeopleService {
	return &PeopleService{
		store:    store,
		notifier: notifier,
		bulkhead: resilience.NewBulkhead(maxConcurrency),
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// ============================================================
// Members
// ============================================================

// RegisterMember is the staff path of member registration.
func (s *PeopleService) RegisterMember(ctx context.Context, session domain.Session, reg *domain.MemberRegistration) (*domain.RegistrationResult[domain.Member], error) {
	if err := authorize(session, "register members", peopleRoles); err != nil {
		return nil, err
	}
	return s.registerMember(ctx, reg)
}

// SelfRegisterMember is the public sign-up path. It needs no session.
func (s *PeopleService) SelfRegisterMember(ctx context.Context, reg *domain.MemberRegistration) (*domain.RegistrationResult[domain.Member], error) {
	return s.registerMember(ctx, reg)
}

func (s *PeopleService) registerMember(ctx context.Context, reg *domain.MemberRegistration) (*domain.RegistrationResult[domain.Member], error) {
	ctx, span := peopleTracer.Start(ctx, "PeopleService.RegisterMember")
	defer span.End()

	fullName := strings.TrimSpace(reg.FullName)
	phone := strings.TrimSpace(reg.Phone)
	switch {
	case fullName == "":
		return nil, &domain.ErrValidation{Field: "full_name", Message: "is required"}
	case phone == "":
		return nil, &domain.ErrValidation{Field: "phone", Message: "is required"}
	}
	if err := validateDate("birth_date", reg.BirthDate, false); err != nil {
		return nil, err
	}

	now := s.now()
	member, err := s.store.InsertMember(ctx, &domain.Member{
		FullName:  fullName,
		Phone:     phone,
		Email:     strings.TrimSpace(reg.Email),
		BirthDate: reg.BirthDate,
		Location:  reg.Location,
		GroupName: reg.GroupName,
		Tribe:     reg.Tribe,
		JoinDate:  now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		s.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("insert member: %w", err)
	}
	s.logger.Info("member registered", zap.String("id", member.ID))

	msg := fmt.Sprintf("Bwana Yesu Asifiwe %s! Usajili wako umekamilika tarehe %s. Karibu GraceFlow Church!",
		member.FullName, now.Format(smsDateLayout))
	outcome := s.notify(ctx, member.Phone, msg)

	if member.Email != "" {
		email := s.notifier.SendWelcomeEmail(ctx, member.Email, member.FullName)
		s.logger.Debug("welcome email", zap.Int("status", email.Status), zap.String("text", email.Text))
	}

	return &domain.RegistrationResult[domain.Member]{Record: *member, Notification: outcome}, nil
}

func (s *PeopleService) ListMembers(ctx context.Context, session domain.Session) ([]domain.Member, error) {
	ctx, span := peopleTracer.Start(ctx, "PeopleService.ListMembers")
	defer span.End()

	if err := authorize(session, "view members", peopleRoles); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx)
	if err != nil {
		s.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func (s *PeopleService) DeleteMember(ctx context.Context, session domain.Session, id string) error {
	ctx, span := peopleTracer.Start(ctx, "PeopleService.DeleteMember")
	defer span.End()

	if err := authorize(session, "delete members", peopleRoles); err != nil {
		return err
	}
	if err := s.store.DeleteMember(ctx, id); err != nil {
		s.metrics.IncrExternalError("store")
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

// BroadcastSMS texts every member that has a phone number.
func (s *PeopleService) BroadcastSMS(ctx context.Context, session domain.Session, message string) (*domain.BroadcastReport, error) {
	ctx, span := peopleTracer.Start(ctx, "PeopleService.BroadcastSMS")
	defer span.End()

	if err := authorize(session, "broadcast messages", broadcastRoles); err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, &domain.ErrValidation{Field: "message", Message: "is required"}
	}

	members, err := s.store.ListMembers(ctx)
	if err != nil {
		s.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("list members: %w", err)
	}

	report := &domain.BroadcastReport{Outcomes: make(map[domain.SMSResult]int)}
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	for _, m := range members {
		if strings.TrimSpace(m.Phone) == "" {
			continue
		}
		report.Recipients++
		phone := m.Phone

		g.Go(func() error {
			if err := s.bulkhead.Acquire(gCtx); err != nil {
				return err
			}
			defer s.bulkhead.Release()

			outcome := s.notifier.SendSMS(gCtx, phone, message)

			mu.Lock()
			defer mu.Unlock()
			report.Outcomes[outcome.Result]++
			if outcome.Delivered() {
				report.Delivered++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("broadcast: %w", err)
	}

	span.SetAttributes(
		attribute.Int("broadcast.recipients", report.Recipients),
		attribute.Int("broadcast.delivered", report.Delivered),
	)
	s.logger.Info("broadcast finished",
		zap.Int("recipients", report.Recipients),
		zap.Int("delivered", report.Delivered),
		zap.String("user", session.Username),
	)
	return report, nil
}

// ============================================================
// Visitors
// ============================================================

// RegisterVisitor is the staff intake path. The thank-you text quotes the visit date.
func (s *PeopleService) RegisterVisitor(ctx context.Context, session domain.Session, reg *domain.VisitorRegistration) (*domain.RegistrationResult[domain.Visitor], error) {
	if err := authorize(session, "register visitors", peopleRoles); err != nil {
		return nil, err
	}
	return s.registerVisitor(ctx, reg, func(v *domain.Visitor, visit time.Time) string {
		return fmt.Sprintf("Habari %s, asante kwa kututembelea leo tarehe %s. Tungependa kukuona tena jumapili ijayo. Ubarikiwe!",
			v.FullName, visit.Format(smsDateLayout))
	})
}

// SelfRegisterVisitor is the public intake path. It needs no session.
func (s *PeopleService) SelfRegisterVisitor(ctx context.Context, reg *domain.VisitorRegistration) (*domain.RegistrationResult[domain.Visitor], error) {
	return s.registerVisitor(ctx, reg, func(v *domain.Visitor, _ time.Time) string {
		return fmt.Sprintf("Karibu %s, asante kwa kututembelea GraceFlow leo. Tunakubariki!", v.FullName)
	})
}

func (s *PeopleService) registerVisitor(ctx context.Context, reg *domain.VisitorRegistration, message func(*domain.Visitor, time.Time) string) (*domain.RegistrationResult[domain.Visitor], error) {
	ctx, span := peopleTracer.Start(ctx, "PeopleService.RegisterVisitor")
	defer span.End()

	fullName := strings.TrimSpace(reg.FullName)
	phone := strings.TrimSpace(reg.Phone)
	switch {
	case fullName == "":
		return nil, &domain.ErrValidation{Field: "full_name", Message: "is required"}
	case phone == "":
		return nil, &domain.ErrValidation{Field: "phone", Message: "is required"}
	}

	visitDate := reg.VisitDate
	if visitDate == "" {
		visitDate = s.now().Format(dateLayout)
	}
	visit, err := time.Parse(dateLayout, visitDate)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "visit_date", Message: "must be a date in YYYY-MM-DD format"}
	}

	visitor, err := s.store.InsertVisitor(ctx, &domain.Visitor{
		FullName:  fullName,
		Phone:     phone,
		Origin:    reg.Origin,
		Location:  reg.Location,
		Email:     strings.TrimSpace(reg.Email),
		Reason:    reg.Reason,
		VisitDate: visitDate,
	})
	if err != nil {
		s.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("insert visitor: %w", err)
	}
	s.logger.Info("visitor registered", zap.String("id", visitor.ID))

	outcome := s.notify(ctx, visitor.Phone, message(visitor, visit))
	return &domain.RegistrationResult[domain.Visitor]{Record: *visitor, Notification: outcome}, nil
}

func (s *PeopleService) ListVisitors(ctx context.Context, session domain.Session) ([]domain.Visitor, error) {
	ctx, span := peopleTracer.Start(ctx, "PeopleService.ListVisitors")
	defer span.End()

	if err := authorize(session, "view visitors", peopleRoles); err != nil {
		return nil, err
	}

	visitors, err := s.store.ListVisitors(ctx)
	if err != nil {
		s.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("list visitors: %w", err)
	}
	return visitors, nil
}

func (s *PeopleService) DeleteVisitor(ctx context.Context, session domain.Session, id string) error {
	ctx, span := peopleTracer.Start(ctx, "PeopleService.DeleteVisitor")
	defer span.End()

	if err := authorize(session, "delete visitors", peopleRoles); err != nil {
		return err
	}
	if err := s.store.DeleteVisitor(ctx, id); err != nil {
		s.metrics.IncrExternalError("store")
		return fmt.Errorf("delete visitor: %w", err)
	}
	return nil
}

// notify sends one best-effort SMS and logs failures at warn.
func (s *PeopleService) notify(ctx context.Context, phone, message string) domain.SMSOutcome {
	outcome := s.notifier.SendSMS(ctx, phone, message)
	if !outcome.Delivered() {
		s.logger.Warn("welcome sms not delivered",
			zap.String("result", string(outcome.Result)),
			zap.Int("status", outcome.StatusCode),
			zap.String("details", outcome.Details),
		)
	}
	return outcome
}
