// Package middleware holds the HTTP middleware chain of the API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"paldeck_server/models"
	"paldeck_server/services"
	"paldeck_server/utils"
)

type contextKey string

const (
	claimsKey    contextKey = "claims"
	requestIDKey contextKey = "requestId"
)

// TokenVerifier checks a bearer token
type TokenVerifier interface {
	Verify(token string) (*services.Claims, error)
}

// Auth rejects requests without a valid bearer token and stores the claims in the request context
func Auth(verifier TokenVerifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				utils.WriteJSONResponse(w, http.StatusUnauthorized, models.ErrorResponse{
					Error:   "unauthorized",
					Message: "missing bearer token",
				})
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				log.Debug("🔒 token rejected", zap.String("path", r.URL.Path), zap.Error(err))
				utils.WriteJSONResponse(w, http.StatusUnauthorized, models.ErrorResponse{
					Error:   "unauthorized",
					Message: "invalid or expired token",
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// BearerToken extracts the token from the Authorization header
func BearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// WithClaims stores verified claims in ctx
func WithClaims(ctx context.Context, claims *services.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the verified claims, or nil on unauthenticated routes
func ClaimsFromContext(ctx context.Context) *services.Claims {
	claims, _ := ctx.Value(claimsKey).(*services.Claims)
	return claims
}

// UserID returns the authenticated account id, or "" if there is none
func UserID(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}
