package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/metrics"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/service"
	"github.com/dougsimpsoncodes/myailandlord/pkg/httpx"
	"github.com/dougsimpsoncodes/myailandlord/pkg/invitesdk"
	"github.com/dougsimpsoncodes/myailandlord/pkg/slogx"
)

type InviteIssueHandler struct {
	IssueService *service.IssueService
}

// ServeHTTP godoc
//
//	@Summary		Issue Invitation Endpoint
//	@Description	Create an invitation token for a property the caller owns. The token is returned once and never again.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		invitesdk.IssueInviteRequest	true	"property_id, max_uses, ttl_days"
//	@Success		201		{object}	invitesdk.IssueInviteResponse	"token, token_id, property_id, max_uses, expires_at"
//	@Failure		400		{object}	invitesdk.ErrorResponse			"invalid_request"
//	@Failure		401		{object}	invitesdk.ErrorResponse			"unauthorized"
//	@Failure		403		{object}	invitesdk.ErrorResponse			"permission_denied, insufficient_scope"
//	@Failure		429		{object}	invitesdk.RateLimitedResponse	"rate_limited"
//	@Failure		503		{object}	invitesdk.ErrorResponse			"temporarily_unavailable"
//	@Router			/v1/invites [post].
func (h *InviteIssueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	start := time.Now()

	var req invitesdk.IssueInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		metrics.ObserveOperation(service.OpIssue, service.Kind(service.ErrValidation), start)
		httpx.WriteError(w, http.StatusBadRequest, invitesdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.PropertyID == "" {
		metrics.ObserveOperation(service.OpIssue, service.Kind(service.ErrValidation), start)
		httpx.WriteError(w, http.StatusBadRequest, invitesdk.ErrorCodeInvalidRequest, "property_id is required")
		return
	}

	principal := httpx.UserIDFromContext(ctx)
	inv, err := h.IssueService.Issue(ctx, req.PropertyID, principal, req.MaxUses, req.TTLDays)
	metrics.ObserveOperation(service.OpIssue, service.Kind(err), start)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			httpx.WriteError(w, http.StatusBadRequest, invitesdk.ErrorCodeInvalidRequest,
				"max_uses and ttl_days must not be negative")
		case errors.Is(err, service.ErrPermissionDenied):
			httpx.WriteError(w, http.StatusForbidden, invitesdk.ErrorCodePermissionDenied, "")
		case errors.Is(err, service.ErrTransientStorage):
			httpx.WriteUnavailable(w)
		default:
			log.Error("failed to issue invite", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, invitesdk.ErrorCodeServerError, "Failed to issue invite")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, invitesdk.IssueInviteResponse{
		Token:      inv.Token,
		TokenID:    inv.TokenID,
		PropertyID: inv.PropertyID,
		MaxUses:    inv.MaxUses,
		ExpiresAt:  inv.ExpiresAt,
	})
}
