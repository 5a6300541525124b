package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/observability"
	"github.com/graceflow/graceflow-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPeople(store *countingStore, notifier *fakeNotifier) *service.PeopleService {
	return service.NewPeopleService(store, notifier, 3, observability.NewMetrics(), zap.NewNop())
}

func TestRegisterMember_SendsWelcome(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newPeople(newCountingStore(), notifier)

	res, err := svc.RegisterMember(context.Background(), reception, &domain.MemberRegistration{
		FullName: "Baraka Mollel", Phone: "0712000001", Email: "baraka@example.com",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, res.Record.ID)
	assert.NotEmpty(t, res.Record.JoinDate)
	assert.Equal(t, domain.SMSSimulatedSuccess, res.Notification.Result)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "Bwana Yesu Asifiwe Baraka Mollel!")
	assert.Equal(t, []string{"baraka@example.com"}, notifier.emails)
}

func TestRegisterMember_NotificationFailureIsNotAnError(t *testing.T) {
	for _, result := range []domain.SMSResult{domain.SMSProviderError, domain.SMSFetchBlocked} {
		notifier := &fakeNotifier{outcome: domain.SMSOutcome{Result: result}}
		svc := newPeople(newCountingStore(), notifier)

		res, err := svc.SelfRegisterMember(context.Background(), &domain.MemberRegistration{FullName: "Amani", Phone: "0712000002"})

		require.NoError(t, err)
		assert.Equal(t, result, res.Notification.Result)
		assert.Empty(t, notifier.emails)
	}
}

func TestRegisterMember_Validation(t *testing.T) {
	store := newCountingStore()
	svc := newPeople(store, &fakeNotifier{})

	_, err := svc.RegisterMember(context.Background(), admin, &domain.MemberRegistration{FullName: "Amani"})

	var verr *domain.ErrValidation
	assert.True(t, errors.As(err, &verr))
	assert.Zero(t, store.inserts)
}

func TestRegisterMember_AccountantForbidden(t *testing.T) {
	_, err := newPeople(newCountingStore(), &fakeNotifier{}).RegisterMember(context.Background(), accountant,
		&domain.MemberRegistration{FullName: "Amani", Phone: "0712"})

	var forbidden *domain.ErrForbidden
	assert.True(t, errors.As(err, &forbidden))
}

func TestRegisterVisitor_DefaultsVisitDate(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newPeople(newCountingStore(), notifier)

	res, err := svc.RegisterVisitor(context.Background(), reception, &domain.VisitorRegistration{FullName: "Grace", Phone: "0754000000"})

	require.NoError(t, err)
	assert.Len(t, res.Record.VisitDate, len("2006-01-02"))
	require.Len(t, notifier.sent, 1)
	assert.True(t, strings.HasPrefix(notifier.sent[0], "0754000000: Habari Grace"))

	visitors, err := svc.ListVisitors(context.Background(), pastor)
	require.NoError(t, err)
	require.Len(t, visitors, 1)

	require.NoError(t, svc.DeleteVisitor(context.Background(), admin, res.Record.ID))
	visitors, _ = svc.ListVisitors(context.Background(), pastor)
	assert.Empty(t, visitors)
}

func TestSelfRegisterVisitor(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newPeople(newCountingStore(), notifier)

	res, err := svc.SelfRegisterVisitor(context.Background(), &domain.VisitorRegistration{
		FullName: "Grace", Phone: "0754000000", VisitDate: "2025-03-02",
	})

	require.NoError(t, err)
	assert.Equal(t, "2025-03-02", res.Record.VisitDate)
	assert.Contains(t, notifier.sent[0], "Karibu Grace")

	_, err = svc.SelfRegisterVisitor(context.Background(), &domain.VisitorRegistration{
		FullName: "Grace", Phone: "0754000000", VisitDate: "March 2",
	})
	var verr *domain.ErrValidation
	assert.True(t, errors.As(err, &verr))
}

func TestBroadcastSMS_Tally(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	for i := 0; i < 7; i++ {
		_, err := store.Store.InsertMember(ctx, &domain.Member{FullName: fmt.Sprintf("M%d", i), Phone: fmt.Sprintf("07120000%02d", i)})
		require.NoError(t, err)
	}
	_, err := store.Store.InsertMember(ctx, &domain.Member{FullName: "No phone"})
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	svc := newPeople(store, notifier)

	report, err := svc.BroadcastSMS(ctx, pastor, "Ibada ya jioni saa 10")

	require.NoError(t, err)
	assert.Equal(t, 7, report.Recipients)
	assert.Equal(t, 7, report.Delivered)
	assert.Equal(t, 7, report.Outcomes[domain.SMSSimulatedSuccess])
	assert.Len(t, notifier.sent, 7)
}

func TestBroadcastSMS_EmptyMessage(t *testing.T) {
	_, err := newPeople(newCountingStore(), &fakeNotifier{}).BroadcastSMS(context.Background(), admin, "   ")

	var verr *domain.ErrValidation
	assert.True(t, errors.As(err, &verr))
}

func TestBroadcastSMS_ReceptionForbidden(t *testing.T) {
	_, err := newPeople(newCountingStore(), &fakeNotifier{}).BroadcastSMS(context.Background(), reception, "hi")

	var forbidden *domain.ErrForbidden
	assert.True(t, errors.As(err, &forbidden))
}
