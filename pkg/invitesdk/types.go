package invitesdk

import "time"

// ============================================================================
// Error Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse is the JSON body of every error answer.
type ErrorResponse struct {
	// Error is the machine readable code (e.g., "invalid_request", "permission_denied")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description,omitempty"`
}

// RateLimitedResponse is returned with 429 Too Many Requests.
type RateLimitedResponse struct {
	Error string `json:"error"`

	// RetryAfter is the number of seconds to wait before retrying
	RetryAfter int `json:"retry_after"`
}

// ============================================================================
// Invite Types
// ============================================================================

// IssueInviteRequest is the body of POST /v1/invites.
type IssueInviteRequest struct {
	PropertyID string `json:"property_id"`

	// MaxUses is clamped to [1, 50]; 0 means a single use
	MaxUses int `json:"max_uses"`

	// TTLDays is clamped to 30; 0 means the default of 7 days
	TTLDays int `json:"ttl_days"`
}

// IssueInviteResponse carries the plaintext token. It is shown exactly once
// and cannot be recovered later.
type IssueInviteResponse struct {
	Token      string    `json:"token"`
	TokenID    string    `json:"token_id"`
	PropertyID string    `json:"property_id"`
	MaxUses    int       `json:"max_uses"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// TokenRequest is the body of the validate and accept endpoints.
type TokenRequest struct {
	Token string `json:"token"`
}

// PropertyPreview is the limited property view shown for a valid token.
type PropertyPreview struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	IssuerName string `json:"issuer_name"`
}

// ValidateInviteResponse is the answer of POST /v1/invites/validate.
type ValidateInviteResponse struct {
	Valid           bool             `json:"valid"`
	PropertyPreview *PropertyPreview `json:"property_preview,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// AcceptInviteResponse is the answer of POST /v1/invites/accept.
type AcceptInviteResponse struct {
	Success    bool   `json:"success"`
	PropertyID string `json:"property_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RevokeInviteResponse is the answer of POST /v1/invites/{id}/revoke.
type RevokeInviteResponse struct {
	Success bool `json:"success"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains the status of individual components (readyz only)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// JWKS indicates whether verification keys for bearer tokens are loaded
	JWKS string `json:"jwks"`
}
