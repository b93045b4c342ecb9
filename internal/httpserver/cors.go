package httpserver

import (
	"net/http"
	"strings"

	"github.com/fdg312/health-planner/internal/config"
)

const (
	corsAllowMethods  = "GET,POST,PATCH,DELETE,OPTIONS"
	corsAllowHeaders  = "Authorization,Content-Type"
	corsExposeHeaders = "Content-Disposition,Retry-After"
	corsMaxAge        = "600"
)

type corsPolicy struct {
	allowed     map[string]bool
	any         bool // "*" в CORS_ALLOWED_ORIGINS
	credentials bool
}

func newCORSPolicy(cfg *config.Config) corsPolicy {
	p := corsPolicy{
		allowed:     make(map[string]bool, len(cfg.CORSAllowedOrigins)),
		credentials: cfg.CORSAllowCredentials,
	}
	for _, o := range cfg.CORSAllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			p.any = true
			continue
		}
		if o != "" {
			p.allowed[o] = true
		}
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	return origin != "" && (p.any || p.allowed[origin])
}

// CORSMiddleware returns an http.Handler that adds CORS headers.
// Preflight requests never reach the router.
func CORSMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	policy := newCORSPolicy(cfg)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := policy.allows(origin)

		if allowed {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			if policy.credentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method == http.MethodOptions && origin != "" {
			if allowed {
				w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				w.Header().Set("Access-Control-Max-Age", corsMaxAge)
			}
			// Без CORS заголовков браузер сам заблокирует запрос
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
