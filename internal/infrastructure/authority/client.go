// Package authority implements the outbound HTTP client for the remote
// identity authority.
package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"docgate/internal/domain/identity"
	"docgate/pkg/logger"
)

var tracer = otel.Tracer("docgate/authority")

// Compile-time check that Client implements identity.Client.
var _ identity.Client = (*Client)(nil)

// defaultTimeout bounds every outbound call. A timeout is indistinguishable
// from any other transport failure to callers.
const defaultTimeout = 5 * time.Second

// Config configures the authority client.
type Config struct {
	// BaseURL is the authority's root URL, without a trailing slash.
	BaseURL string

	// APIKey authenticates privileged user-management calls. Sent as
	// X-API-Key only on those endpoints, never on token validation.
	APIKey string

	// Timeout overrides the default per-call timeout when positive.
	Timeout time.Duration
}

// Client talks to the identity authority over HTTP. It holds no cache and
// makes no authorization decisions; contract rejections come back as result
// values, transport failures as errors.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient creates an authority client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// apiError is the authority's error body shape. Both fields are seen in the
// wild depending on the endpoint.
type apiError struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// ValidateToken implements identity.Client. The authority answers the
// validation contract on both 2xx and auth-failure statuses, so any
// decodable body is a result, not an error.
func (c *Client) ValidateToken(ctx context.Context, token string) (identity.Validation, error) {
	var out identity.Validation
	status, body, err := c.do(ctx, http.MethodPost, "/api/auth-gateway/validate-token", map[string]string{"token": token}, false)
	if err != nil {
		return identity.Validation{}, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return identity.Validation{}, fmt.Errorf("decode validate-token response (status %d): %w", status, err)
	}
	if status >= http.StatusInternalServerError {
		return identity.Validation{}, fmt.Errorf("authority validate-token failed: status %d", status)
	}
	return out, nil
}

// RefreshToken implements identity.Client.
func (c *Client) RefreshToken(ctx context.Context, token string) (identity.RefreshResult, error) {
	var out identity.RefreshResult
	status, body, err := c.do(ctx, http.MethodPost, "/api/auth-gateway/refresh-token", map[string]string{"token": token}, false)
	if err != nil {
		return identity.RefreshResult{}, err
	}
	if status >= http.StatusInternalServerError {
		return identity.RefreshResult{}, fmt.Errorf("authority refresh-token failed: status %d", status)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return identity.RefreshResult{}, fmt.Errorf("decode refresh-token response (status %d): %w", status, err)
	}
	return out, nil
}

// Login implements identity.Client. A 401 is a credential rejection inside
// the contract; anything else non-2xx is a transport-level failure.
func (c *Client) Login(ctx context.Context, username, password string) (identity.LoginResult, error) {
	payload := map[string]string{"username": username, "password": password}
	status, body, err := c.do(ctx, http.MethodPost, "/api/auth/user-login", payload, false)
	if err != nil {
		return identity.LoginResult{}, err
	}

	switch {
	case status == http.StatusUnauthorized:
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		return identity.LoginResult{Status: "error", Message: apiErr.text()}, nil
	case status < http.StatusOK || status >= http.StatusMultipleChoices:
		return identity.LoginResult{}, fmt.Errorf("authority login failed: status %d", status)
	}

	var out identity.LoginResult
	if err := json.Unmarshal(body, &out); err != nil {
		return identity.LoginResult{}, fmt.Errorf("decode login response: %w", err)
	}
	return out, nil
}

// CreateUser implements identity.Client.
func (c *Client) CreateUser(ctx context.Context, user identity.NewUser) (*identity.UserRecord, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/api/auth-gateway/create-user", user, true)
	if err != nil {
		return nil, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("authority create-user failed: status %d: %s", status, errorText(body))
	}

	var out identity.UserRecord
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode create-user response: %w", err)
	}
	return &out, nil
}

// GetUser implements identity.Client. An unknown ID is not an error; the
// caller decides what absence means.
func (c *Client) GetUser(ctx context.Context, userID string) (*identity.UserRecord, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/auth-gateway/user/"+userID, nil, true)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("authority get-user failed: status %d: %s", status, errorText(body))
	}

	var out identity.UserRecord
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode get-user response: %w", err)
	}
	return &out, nil
}

// UpdateUser implements identity.Client.
func (c *Client) UpdateUser(ctx context.Context, userID string, update identity.UserUpdate) (*identity.UserRecord, error) {
	status, body, err := c.do(ctx, http.MethodPut, "/api/auth-gateway/user/"+userID, update, true)
	if err != nil {
		return nil, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("authority update-user failed: status %d: %s", status, errorText(body))
	}

	var out identity.UserRecord
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode update-user response: %w", err)
	}
	return &out, nil
}

// DeleteUser implements identity.Client.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	status, body, err := c.do(ctx, http.MethodDelete, "/api/auth-gateway/user/"+userID, nil, true)
	if err != nil {
		return err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("authority delete-user failed: status %d: %s", status, errorText(body))
	}
	return nil
}

// ListUsers implements identity.Client.
func (c *Client) ListUsers(ctx context.Context) ([]identity.UserRecord, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/auth-gateway/users", nil, true)
	if err != nil {
		return nil, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("authority list-users failed: status %d: %s", status, errorText(body))
	}

	var out struct {
		Users []identity.UserRecord `json:"users"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode list-users response: %w", err)
	}
	return out.Users, nil
}

// do performs one call and returns the status code and raw body. Any failure
// to reach the authority or read its answer is an error; status handling is
// the caller's concern.
func (c *Client) do(ctx context.Context, method, path string, payload any, privileged bool) (int, []byte, error) {
	ctx, span := tracer.Start(ctx, "authority"+path,
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		),
	)
	defer span.End()

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if privileged {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		span.RecordError(err)
		logger.Warn(ctx, "identity authority call failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return 0, nil, fmt.Errorf("call authority: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read authority response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func errorText(body []byte) string {
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.text() != "" {
		return apiErr.text()
	}
	return string(body)
}
