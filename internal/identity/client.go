// Package identity verifies user session tokens against the Supabase Auth API.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/errors"
)

const (
	defaultTimeout      = 10 * time.Second
	userPath            = "/auth/v1/user"
	headerAPIKey        = "apikey"
	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "
	maxResponseBodySize = 1 << 20
)

// User is the subset of the auth user the alert service needs.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Client resolves session tokens to users.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client. apiKey is sent as the project key on every call.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetUser returns the user owning token. Rejected tokens map to ErrUnauthorized;
// transport and upstream failures are returned wrapped.
func (c *Client) GetUser(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, apperrors.ErrUnauthorized
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+userPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create user request: %w", err)
	}

	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerAuthorization, bearerPrefix+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", apperrors.ErrUnexpectedStatus, resp.StatusCode)
	}

	var u User
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}

	if u.Email == "" {
		return nil, apperrors.ErrUnauthorized
	}

	return &u, nil
}

// HasEmailDomain reports whether email belongs to the domain in suffix, case-insensitively.
// The match always starts at the '@', whether or not suffix carries it.
func HasEmailDomain(email, suffix string) bool {
	suffix = strings.ToLower(strings.TrimSpace(suffix))
	if suffix == "" || suffix == "@" {
		return false
	}

	if !strings.HasPrefix(suffix, "@") {
		suffix = "@" + suffix
	}

	return strings.HasSuffix(strings.ToLower(email), suffix)
}
