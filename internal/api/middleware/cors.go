package middleware

import (
	"net/http"
	"os"
	"strings"
)

// corsPolicy holds the origin allow-list, resolved once at startup.
type corsPolicy struct {
	origins  []string
	wildcard bool
}

func loadCORSPolicy() corsPolicy {
	raw := os.Getenv("ALLOWED_ORIGINS")
	if raw == "" {
		// Wildcard default is for development; deployments set ALLOWED_ORIGINS.
		return corsPolicy{wildcard: true}
	}

	policy := corsPolicy{}
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			policy.wildcard = true
			continue
		}
		if origin != "" {
			policy.origins = append(policy.origins, origin)
		}
	}
	return policy
}

func (p corsPolicy) allows(origin string) bool {
	if p.wildcard {
		return true
	}
	for _, allowed := range p.origins {
		if allowed == origin {
			return true
		}
	}
	return false
}

// CORSMiddleware adds CORS headers to HTTP responses.
func CORSMiddleware(next http.Handler) http.Handler {
	policy := loadCORSPolicy()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && policy.allows(origin) {
			if policy.wildcard {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
