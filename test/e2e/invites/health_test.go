package invites_test

import (
	"context"
	"testing"

	"github.com/dougsimpsoncodes/myailandlord/pkg/invitesdk"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	b := setupBackends(t)
	baseURL, _ := startService(t, b.config())
	ctx := context.Background()
	client := invitesdk.NewClient(baseURL)

	live, err := client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, &invitesdk.HealthChecks{Database: "ok", JWKS: "ok"}, ready.Checks)
}
