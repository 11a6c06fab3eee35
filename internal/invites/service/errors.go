package service

import (
	"errors"
	"fmt"

	"github.com/dougsimpsoncodes/myailandlord/pkg/ratelimit"
)

var (
	// ErrValidation reports malformed input on an authenticated call.
	ErrValidation = errors.New("invalid request")

	// ErrPermissionDenied reports a failed ownership check. Missing and
	// foreign resources are indistinguishable.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFoundOrInvalid is the only failure the public validate path
	// ever reports, whatever the underlying cause.
	ErrNotFoundOrInvalid = errors.New("invite not found or invalid")

	ErrInvalid           = errors.New("invite invalid")
	ErrExpired           = errors.New("invite expired")
	ErrRevoked           = errors.New("invite revoked")
	ErrCapacityExhausted = errors.New("invite has no uses left")
	ErrOwnerConflict     = errors.New("property owner cannot accept own invite")

	// ErrTransientStorage wraps storage failures. Callers may retry; accept
	// retries are safe because redemption is idempotent per principal.
	ErrTransientStorage = errors.New("temporarily unavailable")
)

func transient(err error) error {
	if err == nil || errors.Is(err, ErrTransientStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransientStorage, err)
}

// isTokenError reports whether err is one of the token state reasons that
// the accept path reports to the caller as is.
func isTokenError(err error) bool {
	return errors.Is(err, ErrInvalid) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrRevoked) ||
		errors.Is(err, ErrCapacityExhausted) ||
		errors.Is(err, ErrOwnerConflict)
}

// Kind returns a stable short name for err, used in logs and metrics labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "invalid_request"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrNotFoundOrInvalid), errors.Is(err, ErrInvalid):
		return "invalid"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrRevoked):
		return "revoked"
	case errors.Is(err, ErrCapacityExhausted):
		return "max_uses_reached"
	case errors.Is(err, ErrOwnerConflict):
		return "owner_conflict"
	case errors.Is(err, ratelimit.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrTransientStorage):
		return "temporarily_unavailable"
	default:
		return "server_error"
	}
}
