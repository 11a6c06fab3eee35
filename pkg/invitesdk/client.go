package invitesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the invitation service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// AccessToken is sent as a bearer credential when set. Issue, accept and
	// revoke require it; validate works without it.
	AccessToken string

	// Origin is sent as the Origin header when set, for callers acting on
	// behalf of a browser application.
	Origin string

	// MaxRetries bounds how often a temporarily_unavailable answer is
	// retried. Accept retries are safe: redemption is idempotent per
	// principal.
	MaxRetries int

	// RetryBackoff is the wait before the first retry; it doubles after
	// each attempt.
	RetryBackoff time.Duration
}

// NewClient creates a client with a bounded retry policy.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		MaxRetries:   2,
		RetryBackoff: 250 * time.Millisecond,
	}
}

// WithAccessToken returns a copy of c authenticating as accessToken.
func (c *Client) WithAccessToken(accessToken string) *Client {
	cp := *c
	cp.AccessToken = accessToken
	return &cp
}

// IssueInvite creates an invite for a property the caller owns. Requires the
// invites:write scope.
func (c *Client) IssueInvite(ctx context.Context, req IssueInviteRequest) (*IssueInviteResponse, error) {
	var out IssueInviteResponse
	if err := c.do(ctx, http.MethodPost, "/v1/invites", req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateInvite returns the property preview for a usable token. Any
// unusable token yields an APIError with code "invalid".
func (c *Client) ValidateInvite(ctx context.Context, token string) (*ValidateInviteResponse, error) {
	var out ValidateInviteResponse
	if err := c.do(ctx, http.MethodPost, "/v1/invites/validate", TokenRequest{Token: token}, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcceptInvite redeems token for the authenticated caller.
func (c *Client) AcceptInvite(ctx context.Context, token string) (*AcceptInviteResponse, error) {
	var out AcceptInviteResponse
	if err := c.do(ctx, http.MethodPost, "/v1/invites/accept", TokenRequest{Token: token}, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeInvite disables a token issued for a property the caller owns.
// Requires the invites:write scope.
func (c *Client) RevokeInvite(ctx context.Context, tokenID string) error {
	var out RevokeInviteResponse
	path := "/v1/invites/" + url.PathEscape(tokenID) + "/revoke"
	return c.do(ctx, http.MethodPost, path, nil, http.StatusOK, &out)
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", nil, http.StatusOK, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness checks if the service is ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", nil, http.StatusOK, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// do sends one logical request, retrying temporarily_unavailable answers
// up to MaxRetries times.
func (c *Client) do(ctx context.Context, method, path string, in any, expected int, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	backoff := c.RetryBackoff
	for attempt := 0; ; attempt++ {
		resp, err := c.send(ctx, method, path, body)
		if err != nil {
			return err
		}

		err = decodeJSON(resp, out, expected)
		if !IsCode(err, ErrorCodeTemporarilyUnavailable) || attempt >= c.MaxRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}
	if c.Origin != "" {
		req.Header.Set("Origin", c.Origin)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// decodeJSON reads the body once and either decodes it into target or
// returns an APIError.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
