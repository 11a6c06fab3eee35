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

type InviteAcceptHandler struct {
	AcceptService *service.AcceptService
}

// ServeHTTP godoc
//
//	@Summary		Accept Invitation Endpoint
//	@Description	Redeem an invitation for the authenticated caller and link them to the property.
//	@Description	Repeating a successful accept returns the same success without using another slot.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		invitesdk.TokenRequest			true	"token"
//	@Success		200		{object}	invitesdk.AcceptInviteResponse	"success, property_id"
//	@Failure		400		{object}	invitesdk.ErrorResponse			"invalid_request"
//	@Failure		401		{object}	invitesdk.ErrorResponse			"unauthorized"
//	@Failure		404		{object}	invitesdk.AcceptInviteResponse	"invalid"
//	@Failure		409		{object}	invitesdk.AcceptInviteResponse	"max_uses_reached, owner_conflict"
//	@Failure		410		{object}	invitesdk.AcceptInviteResponse	"expired, revoked"
//	@Failure		429		{object}	invitesdk.RateLimitedResponse	"rate_limited"
//	@Failure		503		{object}	invitesdk.ErrorResponse			"temporarily_unavailable"
//	@Router			/v1/invites/accept [post].
func (h *InviteAcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	start := time.Now()

	var req invitesdk.TokenRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		metrics.ObserveOperation(service.OpAccept, service.Kind(service.ErrValidation), start)
		httpx.WriteError(w, http.StatusBadRequest, invitesdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}

	res, err := h.AcceptService.Accept(ctx, req.Token, httpx.UserIDFromContext(ctx))
	metrics.ObserveOperation(service.OpAccept, service.Kind(err), start)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalid):
			writeAcceptFailure(w, http.StatusNotFound, invitesdk.ErrorCodeInvalid)
		case errors.Is(err, service.ErrExpired):
			writeAcceptFailure(w, http.StatusGone, invitesdk.ErrorCodeExpired)
		case errors.Is(err, service.ErrRevoked):
			writeAcceptFailure(w, http.StatusGone, invitesdk.ErrorCodeRevoked)
		case errors.Is(err, service.ErrCapacityExhausted):
			writeAcceptFailure(w, http.StatusConflict, invitesdk.ErrorCodeMaxUsesReached)
		case errors.Is(err, service.ErrOwnerConflict):
			writeAcceptFailure(w, http.StatusConflict, invitesdk.ErrorCodeOwnerConflict)
		case errors.Is(err, service.ErrValidation):
			httpx.WriteError(w, http.StatusBadRequest, invitesdk.ErrorCodeInvalidRequest, "")
		case errors.Is(err, service.ErrTransientStorage):
			httpx.WriteUnavailable(w)
		default:
			log.Error("failed to accept invite", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, invitesdk.ErrorCodeServerError, "")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, invitesdk.AcceptInviteResponse{
		Success:    true,
		PropertyID: res.PropertyID,
	})
}

func writeAcceptFailure(w http.ResponseWriter, code int, errCode string) {
	httpx.WriteJSON(w, code, invitesdk.AcceptInviteResponse{Success: false, Error: errCode})
}
