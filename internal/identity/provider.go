// Package identity wraps the external identity issuer used at registration.
// The backend issues its own JWTs; the issuer only mirrors user accounts, so
// its entire contract here is "ensure this email exists upstream".
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrEmailExists is returned when the issuer already has an account for the email.
var ErrEmailExists = errors.New("identity: email already exists")

// Provider creates users with the external identity issuer.
type Provider interface {
	EnsureUser(ctx context.Context, email, password, name string) error
}

// HTTPProvider talks to the issuer's REST API.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPProvider creates a provider against baseURL.
func NewHTTPProvider(baseURL, apiKey string, logger *zap.Logger) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type createUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// EnsureUser creates the account upstream. A 409 from the issuer maps to
// ErrEmailExists; any other non-2xx status is an upstream failure.
func (p *HTTPProvider) EnsureUser(ctx context.Context, email, password, name string) error {
	body, err := json.Marshal(createUserRequest{Email: email, Password: password, DisplayName: name})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/users", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return ErrEmailExists
	default:
		p.logger.Warn("identity provider error", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("identity provider returned %d", resp.StatusCode)
	}
}
