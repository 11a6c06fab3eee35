package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/metrics"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/service"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store"
	"github.com/dougsimpsoncodes/myailandlord/pkg/httpx"
	"github.com/dougsimpsoncodes/myailandlord/pkg/jwtx"
	"github.com/dougsimpsoncodes/myailandlord/pkg/ratelimit"
	"github.com/dougsimpsoncodes/myailandlord/pkg/slogx"

	_ "github.com/dougsimpsoncodes/myailandlord/api/invites" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// ScopeInvitesWrite is required to issue and revoke invites.
const ScopeInvitesWrite = "invites:write"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	limiter      ratelimit.Limiter
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	// AllowedOrigins is the exact-match browser origin allowlist.
	AllowedOrigins []string
	// TrustProxyHeaders makes the IP key honour X-Forwarded-For.
	TrustProxyHeaders bool
	// RequestTimeout bounds every request; zero disables the deadline.
	RequestTimeout time.Duration

	IssueService    *service.IssueService
	ValidateService *service.ValidateService
	AcceptService   *service.AcceptService
	RevokeService   *service.RevokeService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	limiter ratelimit.Limiter,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		limiter:      limiter,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}
}

func (r *Router) ApplyRoutes() {
	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.TimeoutMiddleware(r.RequestTimeout),
	}

	r.registerInvites()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Property Invitation Service API
//	@version		0.1.0
//	@description	Issue, preview, accept and revoke single or multi-use property invitations.
//	@description
//	@description				Bearer tokens are minted by the external auth service and verified against its JWKS.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerInvites() {
	guard := httpx.GuardMiddleware(r.AllowedOrigins)
	byIP := httpx.ClientIPExtractor(r.TrustProxyHeaders)

	issueHandler := &InviteIssueHandler{IssueService: r.IssueService}
	validateHandler := &InviteValidateHandler{ValidateService: r.ValidateService}
	acceptHandler := &InviteAcceptHandler{AcceptService: r.AcceptService}
	revokeHandler := &InviteRevokeHandler{RevokeService: r.RevokeService}

	// POST /v1/invites - owners only, limited per principal
	r.Mux.Handle("POST /v1/invites",
		httpx.Chain(issueHandler,
			guard,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeInvitesWrite),
			httpx.RateLimitMiddleware(r.limiter, service.OpIssue, httpx.UserIDKeyExtractor),
		),
	)

	// POST /v1/invites/validate - public, limited per client IP
	r.Mux.Handle("POST /v1/invites/validate",
		httpx.Chain(validateHandler,
			guard,
			httpx.RateLimitMiddleware(r.limiter, service.OpValidate, byIP),
		),
	)

	// POST /v1/invites/accept - any authenticated principal
	r.Mux.Handle("POST /v1/invites/accept",
		httpx.Chain(acceptHandler,
			guard,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitMiddleware(r.limiter, service.OpAccept, httpx.UserIDKeyExtractor),
		),
	)

	// POST /v1/invites/{id}/revoke - owners only
	r.Mux.Handle("POST /v1/invites/{id}/revoke",
		httpx.Chain(revokeHandler,
			guard,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeInvitesWrite),
			httpx.RateLimitMiddleware(r.limiter, service.OpRevoke, httpx.UserIDKeyExtractor),
		),
	)

	// CORS preflights are answered by the guard.
	preflight := httpx.Chain(http.NotFoundHandler(), guard)
	for _, path := range []string{
		"/v1/invites",
		"/v1/invites/validate",
		"/v1/invites/accept",
		"/v1/invites/{id}/revoke",
	} {
		r.Mux.Handle("OPTIONS "+path, preflight)
	}
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys))
	r.Mux.Handle("GET /metrics", metrics.MetricsHandler())
}
