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

// invalidInviteBody is written for every validate failure, whatever the
// cause, so unknown, expired, revoked and used-up tokens are
// indistinguishable on the wire.
var invalidInviteBody = []byte(`{"valid":false,"error":"invalid"}`)

type InviteValidateHandler struct {
	ValidateService *service.ValidateService
}

// ServeHTTP godoc
//
//	@Summary		Validate Invitation Endpoint
//	@Description	Preview the property behind an invitation token. Every failure returns the same body.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		invitesdk.TokenRequest				true	"token"
//	@Success		200		{object}	invitesdk.ValidateInviteResponse	"valid, property_preview"
//	@Failure		404		{object}	invitesdk.ValidateInviteResponse	"valid=false, error=invalid"
//	@Failure		429		{object}	invitesdk.RateLimitedResponse		"rate_limited"
//	@Failure		503		{object}	invitesdk.ErrorResponse				"temporarily_unavailable"
//	@Router			/v1/invites/validate [post].
func (h *InviteValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	start := time.Now()

	var req invitesdk.TokenRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		metrics.ObserveOperation(service.OpValidate, service.Kind(service.ErrNotFoundOrInvalid), start)
		httpx.WriteRaw(w, http.StatusNotFound, invalidInviteBody)
		return
	}

	preview, err := h.ValidateService.Validate(ctx, req.Token)
	metrics.ObserveOperation(service.OpValidate, service.Kind(err), start)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFoundOrInvalid):
			httpx.WriteRaw(w, http.StatusNotFound, invalidInviteBody)
		case errors.Is(err, service.ErrTransientStorage):
			httpx.WriteUnavailable(w)
		default:
			log.Error("failed to validate invite", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, invitesdk.ErrorCodeServerError, "")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, invitesdk.ValidateInviteResponse{
		Valid: true,
		PropertyPreview: &invitesdk.PropertyPreview{
			Name:       preview.Name,
			Address:    preview.Address,
			IssuerName: preview.IssuerName,
		},
	})
}
