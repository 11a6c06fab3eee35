package httpx

import (
	"net/http"
	"strings"

	"github.com/dougsimpsoncodes/myailandlord/pkg/slogx"
)

// GuardMiddleware admits a request only when it carries an allowlisted
// Origin or, for non-browser callers, a bearer credential. Allowed browser
// origins receive CORS headers and preflights are answered here.
//
// The bearer check is presence only; verification is AuthnMiddleware's job.
func GuardMiddleware(allowedOrigins []string) Middleware {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin == "" {
				if _, ok := BearerToken(r); ok {
					next.ServeHTTP(w, r)
					return
				}
				WriteError(w, http.StatusForbidden, "origin_required", "")
				return
			}

			if _, ok := allowed[origin]; !ok {
				slogx.FromContext(r.Context()).Warn("origin rejected", "origin", origin)
				WriteError(w, http.StatusForbidden, "origin_not_allowed", "")
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
