package invitesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Error codes returned by the invitation service.
const (
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeUnauthorized           = "unauthorized"
	ErrorCodeInsufficientScope      = "insufficient_scope"
	ErrorCodePermissionDenied       = "permission_denied"
	ErrorCodeOriginRequired         = "origin_required"
	ErrorCodeOriginNotAllowed       = "origin_not_allowed"
	ErrorCodeInvalid                = "invalid"
	ErrorCodeExpired                = "expired"
	ErrorCodeRevoked                = "revoked"
	ErrorCodeMaxUsesReached         = "max_uses_reached"
	ErrorCodeOwnerConflict          = "owner_conflict"
	ErrorCodeRateLimited            = "rate_limited"
	ErrorCodeTemporarilyUnavailable = "temporarily_unavailable"
	ErrorCodeServerError            = "server_error"
)

// APIError is a non-2xx answer from the service.
type APIError struct {
	// StatusCode is the HTTP status code
	StatusCode int

	// Code is the service error code (e.g., "expired", "max_uses_reached")
	Code string

	// Description is a human-readable description, often empty
	Description string

	// RetryAfter is set for rate limited and unavailable answers
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("invitesdk: %d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("invitesdk: %d %s: %s", e.StatusCode, e.Code, e.Description)
}

// Temporary reports whether the request may succeed if retried.
func (e *APIError) Temporary() bool {
	return e.Code == ErrorCodeTemporarilyUnavailable || e.Code == ErrorCodeRateLimited
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns a non-2xx answer into an APIError. Every error
// body the service writes carries an "error" field.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}

	var errResp struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Error
		apiErr.Description = errResp.ErrorDescription
	} else {
		apiErr.Code = ErrorCodeServerError
		apiErr.Description = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		apiErr.RetryAfter = time.Duration(secs) * time.Second
	}
	return apiErr
}
