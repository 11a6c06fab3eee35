/*
Package invitesdk is a client for the property invitation service.

	client := invitesdk.NewClient("https://invites.example.com")

	// Owners issue invites with a bearer token carrying invites:write.
	owner := client.WithAccessToken(ownerJWT)
	inv, err := owner.IssueInvite(ctx, invitesdk.IssueInviteRequest{
		PropertyID: "prop-4b",
		MaxUses:    1,
		TTLDays:    7,
	})

	// Anyone holding the token may preview the property.
	preview, err := client.ValidateInvite(ctx, inv.Token)

	// Tenants accept with their own bearer token.
	res, err := client.WithAccessToken(tenantJWT).AcceptInvite(ctx, inv.Token)
	if invitesdk.IsCode(err, invitesdk.ErrorCodeMaxUsesReached) {
		// the invite has been used up
	}

# Errors

Non-2xx answers are returned as *APIError. Validation failures always carry
the code "invalid" whatever the cause; accept distinguishes "expired",
"revoked", "max_uses_reached" and "owner_conflict".

# Retries

Answers with code temporarily_unavailable are retried up to MaxRetries times
with exponential backoff. Rate limited answers are not retried; inspect
APIError.RetryAfter instead. Retrying accept is safe because a principal that
already redeemed a token gets the same success again without consuming
another use.
*/
package invitesdk
