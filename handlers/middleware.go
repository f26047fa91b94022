package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pandyaved98/dotkonekt/auth"
	"github.com/pandyaved98/dotkonekt/store"
)

type contextKey string

const userContextKey contextKey = "current_user"

// CurrentUser returns the authenticated user attached by TokenRequired.
func CurrentUser(r *http.Request) *store.User {
	user, _ := r.Context().Value(userContextKey).(*store.User)
	return user
}

// AuthMiddleware verifies bearer tokens, rejects revoked ones and loads
// the current user for downstream handlers.
type AuthMiddleware struct {
	tokens  *auth.TokenService
	revoked *store.RevokedTokenStore
	users   *store.UserStore
	logger  *slog.Logger
}

func NewAuthMiddleware(tokens *auth.TokenService, revoked *store.RevokedTokenStore, users *store.UserStore, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:  tokens,
		revoked: revoked,
		users:   users,
		logger:  logger,
	}
}

// TokenRequired wraps a handler with bearer authentication. The raw
// token is also stashed in the request context so logout can revoke it.
func (m *AuthMiddleware) TokenRequired(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSONError(w, "Authorization header is missing", http.StatusUnauthorized)
			return
		}

		token := authHeader
		if scheme, rest, found := strings.Cut(authHeader, " "); found {
			if !strings.EqualFold(scheme, "bearer") {
				writeJSONError(w, "Invalid token scheme. Use Bearer", http.StatusUnauthorized)
				return
			}
			token = rest
		}
		if token == "" {
			writeJSONError(w, "Token is missing", http.StatusUnauthorized)
			return
		}

		revoked, err := m.revoked.IsRevoked(r.Context(), auth.TokenDigest(token))
		if err != nil {
			m.logger.Error("Failed to check token revocation", slog.String("error", err.Error()))
			writeJSONError(w, "Authentication unavailable", http.StatusInternalServerError)
			return
		}
		if revoked {
			writeJSONError(w, "Token has been revoked", http.StatusUnauthorized)
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			writeJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		user, err := m.users.FindByID(r.Context(), claims.UserID)
		if err != nil {
			writeJSONError(w, "User not found", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, rawTokenContextKey, token)
		next(w, r.WithContext(ctx))
	}
}

const rawTokenContextKey contextKey = "raw_token"

func rawToken(r *http.Request) string {
	token, _ := r.Context().Value(rawTokenContextKey).(string)
	return token
}
