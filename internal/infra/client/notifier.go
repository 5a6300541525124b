// Package client holds the outbound clients of third-party services.
// Notifier sends member and visitor messages through NextSMS.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/observability"
	"github.com/graceflow/graceflow-api/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

// placeholderKey is the value shipped in sample env files. It counts as "no key".
const placeholderKey = "placeholder-key"

// Notifier implements port.Notifier against the NextSMS HTTP API.
// Without an API key it only logs and reports simulated_success.
type Notifier struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	sender     string
	cb         *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewNotifier creates a new Notifier.
func NewNotifier(httpClient *http.Client, apiURL, apiKey, sender string, cb *gobreaker.CircuitBreaker, metrics *observability.Metrics, logger *zap.Logger) *Notifier {
	return &Notifier{
		httpClient: httpClient,
		apiURL:     apiURL,
		apiKey:     apiKey,
		sender:     sender,
		cb:         cb,
		metrics:    metrics,
		logger:     logger,
	}
}

// Simulated reports whether messages are only logged.
func (n *Notifier) Simulated() bool {
	return n.apiKey == "" || n.apiKey == placeholderKey
}

type smsRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// providerStatus is a non-2xx answer from the provider.
type providerStatus struct {
	code int
	body string
}

func (e *providerStatus) Error() string {
	return fmt.Sprintf("sms provider returned %d", e.code)
}

// SendSMS dispatches one message. It never fails: every outcome is tagged.
// Sends are not retried, a retry after a lost response would text the
// recipient twice.
func (n *Notifier) SendSMS(ctx context.Context, to, message string) domain.SMSOutcome {
	ctx, span := tracer.Start(ctx, "Notifier.SendSMS")
	defer span.End()

	outcome := n.send(ctx, to, message)
	span.SetAttributes(attribute.String("sms.result", string(outcome.Result)))
	if n.metrics != nil {
		n.metrics.IncrSMSOutcome(outcome.Result)
	}
	return outcome
}

func (n *Notifier) send(ctx context.Context, to, message string) domain.SMSOutcome {
	if n.Simulated() {
		n.logger.Info("sms simulated",
			zap.String("to", to),
			zap.String("message", message),
		)
		return domain.SMSOutcome{Result: domain.SMSSimulatedSuccess, Details: "SMS logged in console"}
	}

	result, err := n.cb.Execute(func() (any, error) {
		body, err := json.Marshal(smsRequest{From: n.sender, To: to, Text: message})
		if err != nil {
			return nil, resilience.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL, bytes.NewReader(body))
		if err != nil {
			return nil, resilience.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+n.apiKey)

		resp, err := n.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			perr := &providerStatus{code: resp.StatusCode, body: string(payload)}
			// 4xx (bad number, no credit) says nothing about provider health
			if resp.StatusCode < 500 {
				return nil, resilience.Permanent(perr)
			}
			return nil, perr
		}
		return payload, nil
	})

	if err != nil {
		var perr *providerStatus
		if errors.As(err, &perr) {
			n.logger.Warn("sms provider error",
				zap.String("to", to),
				zap.Int("status", perr.code),
				zap.String("body", perr.body),
			)
			return domain.SMSOutcome{Result: domain.SMSProviderError, StatusCode: perr.code}
		}
		details := "possible network failure or no connection"
		if resilience.IsCircuitOpen(err) {
			details = "sms provider circuit open"
		}
		n.logger.Warn("sms dispatch blocked",
			zap.String("to", to),
			zap.Error(err),
		)
		return domain.SMSOutcome{Result: domain.SMSFetchBlocked, Details: details}
	}

	payload := result.([]byte)
	outcome := domain.SMSOutcome{Result: domain.SMSSent}
	if json.Valid(payload) {
		outcome.Payload = json.RawMessage(payload)
	}
	n.logger.Info("sms sent", zap.String("to", to))
	return outcome
}

// SendWelcomeEmail is simulated: no mail provider is configured.
func (n *Notifier) SendWelcomeEmail(ctx context.Context, email, name string) domain.EmailOutcome {
	_, span := tracer.Start(ctx, "Notifier.SendWelcomeEmail")
	defer span.End()

	n.logger.Info("welcome email queued",
		zap.String("email", email),
		zap.String("name", name),
	)
	return domain.EmailOutcome{Status: http.StatusOK, Text: "OK (Simulated)"}
}
