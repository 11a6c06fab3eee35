package domain

import "time"

// Redemption records that a principal consumed one use of a token. The
// (TokenID, PrincipalID) pair is unique, which makes accept idempotent.
type Redemption struct {
	TokenID     string
	PrincipalID string
	PropertyID  string
	CreatedAt   time.Time
}

// Acceptance is the outcome of a successful accept.
type Acceptance struct {
	TokenID         string
	PropertyID      string
	AlreadyRedeemed bool // true when this principal had redeemed before
}
