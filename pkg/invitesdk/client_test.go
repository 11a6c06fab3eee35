package invitesdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL + "/")
	c.RetryBackoff = time.Millisecond
	return c
}

func TestIssueInviteSendsBearerAndBody(t *testing.T) {
	t.Parallel()

	expires := time.Date(2026, 5, 8, 10, 0, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/invites", r.URL.Path)
		require.Equal(t, "Bearer owner-jwt", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req IssueInviteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, IssueInviteRequest{PropertyID: "prop-4b", MaxUses: 2, TTLDays: 7}, req)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(IssueInviteResponse{
			Token: "sel.secret", TokenID: "tok-1", PropertyID: "prop-4b", MaxUses: 2, ExpiresAt: expires,
		})
	})

	out, err := c.WithAccessToken("owner-jwt").IssueInvite(context.Background(), IssueInviteRequest{
		PropertyID: "prop-4b", MaxUses: 2, TTLDays: 7,
	})
	require.NoError(t, err)
	require.Equal(t, "tok-1", out.TokenID)
	require.True(t, out.ExpiresAt.Equal(expires))
	require.Empty(t, c.AccessToken, "WithAccessToken must not mutate the original")
}

func TestValidateInviteInvalidIsAPIError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		require.Equal(t, "https://app.example.com", r.Header.Get("Origin"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"valid":false,"error":"invalid"}`))
	})
	c.Origin = "https://app.example.com"

	_, err := c.ValidateInvite(context.Background(), "whatever")
	require.Error(t, err)
	require.True(t, IsCode(err, ErrorCodeInvalid))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.False(t, apiErr.Temporary())
}

func TestAcceptInviteErrorCodes(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		ErrorCodeExpired:        http.StatusGone,
		ErrorCodeRevoked:        http.StatusGone,
		ErrorCodeMaxUsesReached: http.StatusConflict,
		ErrorCodeOwnerConflict:  http.StatusConflict,
	}
	for code, status := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(AcceptInviteResponse{Success: false, Error: code})
		})
		_, err := c.WithAccessToken("jwt").AcceptInvite(context.Background(), "tok")
		require.True(t, IsCode(err, code), code)
	}
}

func TestRetriesTemporarilyUnavailable(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"temporarily_unavailable"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(AcceptInviteResponse{Success: true, PropertyID: "prop-4b"})
	})

	out, err := c.WithAccessToken("jwt").AcceptInvite(context.Background(), "tok")
	require.NoError(t, err)
	require.True(t, out.Success)
	require.Equal(t, int32(3), calls.Load())
}

func TestRetriesAreBounded(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"temporarily_unavailable"}`))
	})
	c.MaxRetries = 1

	_, err := c.ValidateInvite(context.Background(), "tok")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.True(t, apiErr.Temporary())
	require.Equal(t, time.Second, apiErr.RetryAfter)
	require.Equal(t, int32(2), calls.Load())
}

func TestRateLimitedIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(RateLimitedResponse{Error: ErrorCodeRateLimited, RetryAfter: 30})
	})

	_, err := c.ValidateInvite(context.Background(), "tok")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, ErrorCodeRateLimited, apiErr.Code)
	require.Equal(t, 30*time.Second, apiErr.RetryAfter)
	require.Equal(t, int32(1), calls.Load())
}

func TestRevokeInviteEscapesID(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/invites/tok%2F1/revoke", r.URL.EscapedPath())
		_ = json.NewEncoder(w).Encode(RevokeInviteResponse{Success: true})
	})
	require.NoError(t, c.WithAccessToken("jwt").RevokeInvite(context.Background(), "tok/1"))
}

func TestNonJSONErrorFallsBack(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	_, err := c.GetLiveness(context.Background())
	require.True(t, IsCode(err, ErrorCodeServerError))
}
