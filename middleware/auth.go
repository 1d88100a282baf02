package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"coedit/internal/auth/model"
	"coedit/pkg/apperror"
	"coedit/pkg/logger"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// TokenVerifier is satisfied by the auth service.
type TokenVerifier interface {
	VerifyToken(token string) (*model.Claims, error)
}

// AuthMiddleware rejects requests without a valid bearer token. A missing
// token is answered with 401 and an invalid or expired one with 403.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifier.VerifyToken(tokenFromRequest(r))
			if err != nil {
				if errors.Is(err, apperror.ErrUnauthenticated) {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				logger.Sugar.Debugf("Invalid token: %v", err)
				http.Error(w, "Forbidden", apperror.StatusCode(err))
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the verified claims stored by AuthMiddleware, or
// nil when the request did not pass through it.
func ClaimsFromContext(ctx context.Context) *model.Claims {
	claims, _ := ctx.Value(ClaimsKey).(*model.Claims)
	return claims
}

func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(strings.TrimSpace(authHeader), " ", 2)
		if len(parts) == 2 {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	// For WebSockets, tokens are often passed in the query string
	// because the browser's WebSocket API doesn't support custom headers.
	return r.URL.Query().Get("token")
}
