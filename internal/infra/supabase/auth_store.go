package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/resilience"

	"go.uber.org/zap"
)

// ============================================================
// Auth: GoTrue password grant + profiles table (implements port.AuthStore)
// ============================================================

type gotrueTokenResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// VerifyCredentials signs in with the GoTrue password grant and returns
// the auth user id. A bare username is completed with the configured
// email domain.
func (c *Client) VerifyCredentials(ctx context.Context, identifier, password string) (string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.VerifyCredentials")
	defer span.End()

	email := identifier
	if !strings.Contains(email, "@") {
		email = fmt.Sprintf("%s@%s", identifier, c.emailDomain)
	}

	var userID string
	err := c.write(ctx, "auth", func() error {
		payload, err := json.Marshal(map[string]string{"email": email, "password": password})
		if err != nil {
			return resilience.Permanent(err)
		}

		url := fmt.Sprintf("%s/auth/v1/token?grant_type=password", c.baseURL)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return resilience.Permanent(err)
		}
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("supabase: auth request failed", zap.Error(err))
			return err
		}
		defer resp.Body.Close()

		body, err := readBody(resp)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return resilience.Permanent(&domain.ErrUnauthorized{Message: "invalid credentials"})
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return classifyStatus(&statusError{Method: http.MethodPost, Path: "auth/v1/token", Code: resp.StatusCode, Body: string(body)})
		}

		var tok gotrueTokenResponse
		if err := json.Unmarshal(body, &tok); err != nil {
			return resilience.Permanent(fmt.Errorf("decode auth token: %w", err))
		}
		if tok.User.ID == "" {
			return resilience.Permanent(fmt.Errorf("auth token response without user id"))
		}
		userID = tok.User.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}

type supabaseProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// GetProfile fetches a staff profile. A missing row is not an error.
func (c *Client) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfile")
	defer span.End()

	var profile *domain.Profile
	err := c.read(ctx, "profiles", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("profiles?%s&limit=1", eq("id", userID)), nil, "")
		if err != nil {
			return err
		}
		rows, err := decodeRows[supabaseProfile](body, "profiles")
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		p := rows[0]
		profile = &domain.Profile{
			ID:       p.ID,
			Username: p.Username,
			FullName: p.FullName,
			Role:     domain.Role(p.Role),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

type gotrueError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

func (e gotrueError) text() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Message != "":
		return e.Message
	}
	return e.ErrorDescription
}

// UpdateUser changes an account through the GoTrue admin API
// (PUT /auth/v1/admin/users/{id}) with the service role key. A new display
// name is written to user_metadata and mirrored into the profiles row.
func (c *Client) UpdateUser(ctx context.Context, userID string, update *domain.UserUpdate) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateUser")
	defer span.End()

	attrs := map[string]any{}
	if update.Password != nil {
		attrs["password"] = *update.Password
	}
	if update.FullName != nil {
		attrs["user_metadata"] = map[string]string{"full_name": *update.FullName}
	}
	if len(attrs) == 0 {
		return nil
	}

	err := c.write(ctx, "auth", func() error {
		payload, err := json.Marshal(attrs)
		if err != nil {
			return resilience.Permanent(err)
		}

		url := fmt.Sprintf("%s/auth/v1/admin/users/%s", c.baseURL, userID)
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
		if err != nil {
			return resilience.Permanent(err)
		}
		req.Header.Set("apikey", c.serviceRoleKey)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("supabase: auth admin request failed", zap.Error(err))
			return err
		}
		defer resp.Body.Close()

		body, err := readBody(resp)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return resilience.Permanent(&domain.ErrNotFound{Resource: "user", ID: userID})
		case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
			var ge gotrueError
			_ = json.Unmarshal(body, &ge)
			msg := ge.text()
			if msg == "" {
				msg = "was rejected"
			}
			return resilience.Permanent(&domain.ErrValidation{Field: "new_password", Message: msg})
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return classifyStatus(&statusError{Method: http.MethodPut, Path: "auth/v1/admin/users", Code: resp.StatusCode, Body: string(body)})
		}
		return nil
	})
	if err != nil || update.FullName == nil {
		return err
	}

	return c.write(ctx, "profiles", func() error {
		_, err := c.doRequest(ctx, http.MethodPatch, "profiles?"+eq("id", userID),
			map[string]string{"full_name": *update.FullName}, preferMinimal)
		return err
	})
}
