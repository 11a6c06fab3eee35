package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/metrics"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/service"
	"github.com/dougsimpsoncodes/myailandlord/pkg/httpx"
	"github.com/dougsimpsoncodes/myailandlord/pkg/idx"
	"github.com/dougsimpsoncodes/myailandlord/pkg/invitesdk"
	"github.com/dougsimpsoncodes/myailandlord/pkg/slogx"
)

type InviteRevokeHandler struct {
	RevokeService *service.RevokeService
}

// ServeHTTP godoc
//
//	@Summary		Revoke Invitation Endpoint
//	@Description	Permanently disable an invitation. Revoking twice succeeds.
//	@Tags			Invitations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string							true	"Invite token id"
//	@Success		200	{object}	invitesdk.RevokeInviteResponse	"success"
//	@Failure		401	{object}	invitesdk.ErrorResponse			"unauthorized"
//	@Failure		403	{object}	invitesdk.ErrorResponse			"permission_denied, insufficient_scope"
//	@Failure		429	{object}	invitesdk.RateLimitedResponse	"rate_limited"
//	@Failure		503	{object}	invitesdk.ErrorResponse			"temporarily_unavailable"
//	@Router			/v1/invites/{id}/revoke [post].
func (h *InviteRevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	start := time.Now()

	// A malformed id cannot name a token, so it is refused like an unknown one.
	var err error
	if id, perr := idx.Parse(r.PathValue("id")); perr != nil {
		err = service.ErrPermissionDenied
	} else {
		err = h.RevokeService.Revoke(ctx, id.String(), httpx.UserIDFromContext(ctx))
	}
	metrics.ObserveOperation(service.OpRevoke, service.Kind(err), start)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			httpx.WriteError(w, http.StatusForbidden, invitesdk.ErrorCodePermissionDenied, "")
		case errors.Is(err, service.ErrTransientStorage):
			httpx.WriteUnavailable(w)
		default:
			log.Error("failed to revoke invite", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, invitesdk.ErrorCodeServerError, "")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, invitesdk.RevokeInviteResponse{Success: true})
}
