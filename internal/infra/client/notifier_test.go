package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/observability"
	"github.com/graceflow/graceflow-api/internal/infra/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newNotifier(url, key string) *Notifier {
	return NewNotifier(http.DefaultClient, url, key, "GRACEFLOW",
		resilience.NewCircuitBreaker("sms-test", zap.NewNop()), observability.NewMetrics(), zap.NewNop())
}

func TestSendSMS_SimulatedWithoutKey(t *testing.T) {
	for _, key := range []string{"", "placeholder-key"} {
		n := newNotifier("http://unused.invalid", key)

		out := n.SendSMS(context.Background(), "0712345678", "Karibu")

		assert.Equal(t, domain.SMSSimulatedSuccess, out.Result)
		assert.True(t, out.Delivered())
	}
}

func TestSendSMS_Sent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer live-key", r.Header.Get("Authorization"))

		var req smsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "GRACEFLOW", req.From)
		assert.Equal(t, "0712345678", req.To)
		assert.Equal(t, "Karibu", req.Text)

		io.WriteString(w, `{"messages":[{"status":"queued"}]}`)
	}))
	defer srv.Close()

	n := newNotifier(srv.URL, "live-key")
	out := n.SendSMS(context.Background(), "0712345678", "Karibu")

	assert.Equal(t, domain.SMSSent, out.Result)
	assert.JSONEq(t, `{"messages":[{"status":"queued"}]}`, string(out.Payload))
	assert.EqualValues(t, 1, n.metrics.GetFinanceSnapshot().SMSOutcomes["sent"])
}

func TestSendSMS_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	out := newNotifier(srv.URL, "live-key").SendSMS(context.Background(), "0712345678", "Karibu")

	assert.Equal(t, domain.SMSProviderError, out.Result)
	assert.Equal(t, http.StatusPaymentRequired, out.StatusCode)
	assert.False(t, out.Delivered())
}

func TestSendSMS_FetchBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	out := newNotifier(url, "live-key").SendSMS(context.Background(), "0712345678", "Karibu")

	assert.Equal(t, domain.SMSFetchBlocked, out.Result)
	assert.NotEmpty(t, out.Details)
}

func TestSendWelcomeEmail(t *testing.T) {
	out := newNotifier("", "").SendWelcomeEmail(context.Background(), "neema@example.com", "Neema")

	assert.Equal(t, http.StatusOK, out.Status)
	assert.Equal(t, "OK (Simulated)", out.Text)
}
