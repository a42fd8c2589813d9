// Package middleware provides HTTP middleware for the match engine API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/faqdesk-ai/match-engine/internal/observability"
	"github.com/faqdesk-ai/match-engine/internal/storage"
)

// Context keys for request-scoped values.
type contextKey string

// tenantKey is the context key for the authenticated tenant.
const tenantKey contextKey = "tenant"

// APIKeyHeader carries the tenant's secret key on admin requests.
const APIKeyHeader = "X-API-Key"

// TenantLookup resolves an API key to its tenant.
type TenantLookup interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*storage.Tenant, error)
}

// Auth returns middleware that authenticates admin requests by API key
// and injects the owning tenant into the request context. Widget routes
// do not use this; they resolve the tenant from the public widget key.
func Auth(tenants TenantLookup, logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)
			if apiKey == "" {
				// Accept "Authorization: Bearer sk_..." as an alias.
				auth := r.Header.Get("Authorization")
				if parts := strings.SplitN(auth, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
					apiKey = parts[1]
				}
			}
			if apiKey == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			tenant, err := tenants.GetByAPIKey(r.Context(), apiKey)
			if err != nil {
				if err != storage.ErrNotFound {
					logger.Error().Err(err).Msg("API key lookup failed")
					writeAuthError(w, http.StatusInternalServerError, "authentication unavailable")
					return
				}
				writeAuthError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), tenantKey, tenant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TenantFromContext extracts the authenticated tenant from context.
// Returns nil outside of an Auth-wrapped route.
func TenantFromContext(ctx context.Context) *storage.Tenant {
	if v := ctx.Value(tenantKey); v != nil {
		if tenant, ok := v.(*storage.Tenant); ok {
			return tenant
		}
	}
	return nil
}

// CORS returns CORS middleware for browser widget clients. The widget
// script runs on customer sites, so widget routes are typically served
// with a wildcard origin while admin routes stay locked down.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					allowed = true
					break
				}
			}

			if allowed && origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key")
				w.Header().Set("Access-Control-Max-Age", "86400")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
