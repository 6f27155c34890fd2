package httpx

import (
	"context"
	"net/http"
	"strings"

	"libraryapi/internal/platform/crypto"

	"github.com/rs/zerolog/log"
)

// BlacklistChecker reports whether a token ID has been revoked.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware accepts only unexpired, non-revoked access tokens.
func AuthMiddleware(secret string, blacklist BlacklistChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w, r, "Authentication credentials were not provided")
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			claims, err := crypto.ParseTokenOfType(secret, token, crypto.TokenTypeAccess)
			if err != nil {
				unauthorized(w, r, "Token is invalid or expired")
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				unauthorized(w, r, "Token is invalid or expired")
				return
			}

			if blacklist != nil {
				revoked, err := blacklist.IsBlacklisted(r.Context(), claims.ID)
				if err != nil {
					log.Error().Err(err).Str("request_id", RequestIDFrom(r)).Msg("blacklist lookup failed")
					unauthorized(w, r, "Token is invalid or expired")
					return
				}
				if revoked {
					unauthorized(w, r, "Token has been revoked")
					return
				}
			}

			recordUserForAccessLog(r.Context(), userID)
			ctx := ContextWithUser(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}
