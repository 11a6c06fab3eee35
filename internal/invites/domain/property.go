package domain

import "time"

// Property is read from the tenancy collaborator for ownership checks and the
// validate preview.
type Property struct {
	ID        string
	OwnerID   string
	Name      string
	Address   string
	OwnerName string
	CreatedAt time.Time
}

// Preview is the limited property view shown to an anonymous holder of a
// valid token.
type Preview struct {
	PropertyID string
	Name       string
	Address    string
	IssuerName string
}

// LinkStatusActive is the only status the invitation flow writes.
const LinkStatusActive = "active"

// TenantLink associates a tenant with a property.
type TenantLink struct {
	ID            string
	PropertyID    string
	TenantID      string
	InviteTokenID *string // nil once the originating token is garbage collected
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
