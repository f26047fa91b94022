package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pandyaved98/dotkonekt/auth"
	"github.com/pandyaved98/dotkonekt/store"
)

type AuthHandler struct {
	users   *store.UserStore
	revoked *store.RevokedTokenStore
	tokens  *auth.TokenService
	logger  *slog.Logger
}

func NewAuthHandler(users *store.UserStore, revoked *store.RevokedTokenStore, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:   users,
		revoked: revoked,
		tokens:  tokens,
		logger:  logger,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Missing JSON in request", http.StatusBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeJSONError(w, "Missing required fields: username, email, password", http.StatusBadRequest)
		return
	}

	if _, err := h.users.FindByEmail(r.Context(), req.Email); err == nil {
		writeJSONError(w, "Email already registered", http.StatusBadRequest)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.logger.Error("Failed to look up email", slog.String("error", err.Error()))
		writeJSONError(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Failed to hash password", slog.String("error", err.Error()))
		writeJSONError(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	user, err := h.users.Create(r.Context(), req.Username, req.Email, hash)
	if err != nil {
		h.logger.Error("Failed to create user", slog.String("error", err.Error()))
		writeJSONError(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
		"user_id": user.ID,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Missing JSON in request", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSONError(w, "Missing email or password", http.StatusBadRequest)
		return
	}

	user, err := h.users.FindByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeJSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, _, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.logger.Error("Failed to issue token", slog.String("error", err.Error()))
		writeJSONError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	if err := h.users.TouchLogin(r.Context(), user.ID); err != nil {
		h.logger.Warn("Failed to record login time", slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"token_type": "Bearer",
		"expires_in": int(h.tokens.TTL().Seconds()),
		"user": map[string]string{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	token := rawToken(r)

	if err := h.revoked.Revoke(r.Context(), auth.TokenDigest(token), h.tokens.TTL()); err != nil {
		h.logger.Error("Failed to revoke token", slog.String("error", err.Error()))
		writeJSONError(w, "Logout failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully logged out",
		"user_id": user.ID,
	})
}
