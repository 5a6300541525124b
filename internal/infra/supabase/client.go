// Package supabase provides a client for Supabase (PostgREST + GoTrue).
// It is the durable record store for the ledger, the finance registry,
// members, visitors and staff profiles.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// Client wraps HTTP calls to the Supabase REST and auth APIs.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	emailDomain    string
	cb             *gobreaker.CircuitBreaker
	cfg            resilience.Config
	logger         *zap.Logger
}

// NewClient creates a Supabase client. emailDomain completes login
// identifiers that are plain usernames.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey, emailDomain string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		emailDomain:    emailDomain,
		cb:             cb,
		cfg:            cfg,
		logger:         logger,
	}
}

// read runs an idempotent call through the breaker with retries.
func (c *Client) read(ctx context.Context, service string, fn func() error) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, fn)
	})
	return c.wrapErr(service, err)
}

// write runs a mutating call through the breaker exactly once.
// Inserts are never retried: a lost response would duplicate the row.
func (c *Client) write(ctx context.Context, service string, fn func() error) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	return c.wrapErr(service, err)
}

func (c *Client) wrapErr(service string, err error) error {
	if err == nil {
		return nil
	}
	if resilience.IsCircuitOpen(err) {
		return &domain.ErrCircuitOpen{Service: "supabase"}
	}
	// domain errors raised inside the call pass through untouched
	var notFound *domain.ErrNotFound
	var unauthorized *domain.ErrUnauthorized
	var validation *domain.ErrValidation
	if errors.As(err, &notFound) || errors.As(err, &unauthorized) || errors.As(err, &validation) {
		return err
	}
	return &domain.ErrExternalService{Service: "supabase/" + service, Err: err}
}

// doRequest executes an authenticated request to Supabase PostgREST.
// A nil body sends no payload. prefer sets the Prefer header when non-empty.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, prefer string) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, resilience.Permanent(fmt.Errorf("encode %s body: %w", path, err))
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		c.logger.Error("supabase: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, resilience.Permanent(err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := readBody(resp)
	if err != nil {
		c.logger.Error("supabase: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return nil, classifyStatus(&statusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(respBody)})
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return respBody, nil
}
