package auth

import (
	"log/slog"
	"net/http"
)

// RequireAdmin returns a middleware that rejects requests without a valid
// admin bearer token with 401 Unauthorized.
//
// Usage:
//
//	mux.Handle("GET /api/admin/quotes", auth.RequireAdmin(issuer)(handler))
func RequireAdmin(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ExtractBearerToken(r.Header.Get("Authorization"))
			if err != nil {
				slog.Warn("admin authentication required but not provided",
					"method", r.Method,
					"path", r.URL.Path,
				)
				writeUnauthorized(w)
				return
			}

			claims, err := issuer.Validate(token)
			if err != nil {
				slog.Warn("rejected admin token",
					"method", r.Method,
					"path", r.URL.Path,
					"error", err,
				)
				writeUnauthorized(w)
				return
			}

			ac := &AdminContext{Subject: claims.Subject}
			if claims.ExpiresAt != nil {
				ac.ExpiresAt = claims.ExpiresAt.Time
			}
			next.ServeHTTP(w, r.WithContext(WithAdminContext(r.Context(), ac)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"admin authentication required"}`))
}
