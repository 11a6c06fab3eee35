package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store"
	"github.com/dougsimpsoncodes/myailandlord/pkg/idx"
	"github.com/dougsimpsoncodes/myailandlord/pkg/slogx"
)

// Issuance defaults.
const (
	DefaultMaxUsesLimit = 50
	DefaultInviteTTL    = 7 * 24 * time.Hour
	DefaultMaxInviteTTL = 30 * 24 * time.Hour
)

// selector collisions are astronomically unlikely; retry a couple of times
// rather than surfacing a constraint error.
const maxIssueAttempts = 3

// IssuePolicy bounds what an issuer may request.
type IssuePolicy struct {
	MaxUsesLimit int
	DefaultTTL   time.Duration
	MaxTTL       time.Duration
}

// DefaultIssuePolicy returns the stock issuance bounds.
func DefaultIssuePolicy() IssuePolicy {
	return IssuePolicy{
		MaxUsesLimit: DefaultMaxUsesLimit,
		DefaultTTL:   DefaultInviteTTL,
		MaxTTL:       DefaultMaxInviteTTL,
	}
}

func (p IssuePolicy) withDefaults() IssuePolicy {
	d := DefaultIssuePolicy()
	if p.MaxUsesLimit <= 0 {
		p.MaxUsesLimit = d.MaxUsesLimit
	}
	if p.DefaultTTL <= 0 {
		p.DefaultTTL = d.DefaultTTL
	}
	if p.MaxTTL <= 0 {
		p.MaxTTL = d.MaxTTL
	}
	p.DefaultTTL = min(p.DefaultTTL, p.MaxTTL)
	return p
}

// clamp maps requested uses and days onto the policy bounds.
func (p IssuePolicy) clamp(maxUses, ttlDays int) (int, time.Duration) {
	p = p.withDefaults()

	uses := min(max(maxUses, 1), p.MaxUsesLimit)

	ttl := p.DefaultTTL
	if ttlDays > 0 {
		// Compare in days first so huge inputs cannot overflow Duration.
		if maxDays := int(p.MaxTTL / (24 * time.Hour)); ttlDays > maxDays {
			ttl = p.MaxTTL
		} else {
			ttl = min(time.Duration(ttlDays)*24*time.Hour, p.MaxTTL)
		}
	}
	return uses, ttl
}

type IssueService struct {
	Store  store.Store
	Codec  *TokenCodec
	Policy IssuePolicy
	Now    func() time.Time
}

// Issue creates an invite for propertyID on behalf of issuerID and returns
// the plaintext token. The plaintext exists only in the returned value.
func (s *IssueService) Issue(
	ctx context.Context,
	propertyID string,
	issuerID string,
	maxUses int,
	ttlDays int,
) (domain.IssuedInvite, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	if propertyID == "" || issuerID == "" || maxUses < 0 || ttlDays < 0 {
		log.Warn("invite issue rejected: invalid input",
			slog.String("property_id", propertyID),
			slog.Int("max_uses", maxUses),
			slog.Int("ttl_days", ttlDays),
		)
		return domain.IssuedInvite{}, ErrValidation
	}

	// 2. Ownership check. Missing and foreign properties look the same.
	prop, err := s.Store.Properties().GetProperty(ctx, propertyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invite issue denied: unknown property",
				slog.String("property_id", propertyID),
				slog.String("principal_id", issuerID),
			)
			return domain.IssuedInvite{}, ErrPermissionDenied
		}
		log.Error("failed to fetch property", slog.Any("error", err))
		return domain.IssuedInvite{}, transient(err)
	}
	if prop.OwnerID != issuerID {
		log.Warn("invite issue denied: not the property owner",
			slog.String("property_id", propertyID),
			slog.String("principal_id", issuerID),
		)
		return domain.IssuedInvite{}, ErrPermissionDenied
	}

	// 3. Clamp to policy.
	uses, ttl := s.Policy.clamp(maxUses, ttlDays)
	now := clock(s.Now)

	// 4. Generate, seal and store.
	var tok domain.InviteToken
	var plaintext string
	for attempt := 1; ; attempt++ {
		sealed, err := s.Codec.Generate()
		if err != nil {
			log.Error("failed to generate invite token", slog.Any("error", err))
			return domain.IssuedInvite{}, err
		}

		tok = domain.InviteToken{
			ID:         idx.NewAt(now).String(),
			Selector:   sealed.Selector,
			TokenHash:  sealed.Hash,
			Salt:       sealed.Salt,
			PropertyID: prop.ID,
			IssuerID:   issuerID,
			MaxUses:    uses,
			ExpiresAt:  now.Add(ttl),
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		err = s.Store.Tokens().CreateToken(ctx, tok)
		if err == nil {
			plaintext = sealed.Plaintext
			break
		}
		if errors.Is(err, store.ErrAlreadyExists) && attempt < maxIssueAttempts {
			log.Warn("invite selector collision, regenerating", slog.Int("attempt", attempt))
			continue
		}
		log.Error("failed to store invite token",
			slog.String("token_id", tok.ID),
			slog.Any("error", err),
		)
		return domain.IssuedInvite{}, transient(err)
	}

	log.Info("invite issued",
		slog.String("token_id", tok.ID),
		slog.String("property_id", tok.PropertyID),
		slog.String("principal_id", issuerID),
		slog.Int("max_uses", tok.MaxUses),
		slog.Time("expires_at", tok.ExpiresAt),
	)

	return domain.IssuedInvite{
		Token:      plaintext,
		TokenID:    tok.ID,
		PropertyID: tok.PropertyID,
		MaxUses:    tok.MaxUses,
		ExpiresAt:  tok.ExpiresAt,
	}, nil
}
