package domain

import "time"

// InviteToken is the persisted side of an invitation. The plaintext token is
// never stored; only the public selector, the salt and the keyed hash of the
// secret part.
type InviteToken struct {
	ID         string
	Selector   string
	TokenHash  string
	Salt       string
	PropertyID string
	IssuerID   string
	MaxUses    int
	UseCount   int
	ExpiresAt  time.Time
	RevokedAt  *time.Time // nil while the token is live
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsRevoked reports whether the token was revoked. Revocation is permanent.
func (t *InviteToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsExpired reports whether now is past expires_at plus grace.
func (t *InviteToken) IsExpired(now time.Time, grace time.Duration) bool {
	return now.After(t.ExpiresAt.Add(grace))
}

// IsExhausted reports whether every use has been consumed.
func (t *InviteToken) IsExhausted() bool {
	return t.UseCount >= t.MaxUses
}

// RemainingUses returns how many redemptions are left.
func (t *InviteToken) RemainingUses() int {
	return max(t.MaxUses-t.UseCount, 0)
}

// IssuedInvite is returned once by the issuer. Token is the only place the
// plaintext ever exists.
type IssuedInvite struct {
	Token      string
	TokenID    string
	PropertyID string
	MaxUses    int
	ExpiresAt  time.Time
}
