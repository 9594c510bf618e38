package handlers

import (
	"net/http"
	"time"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/services"
)

const refreshCookieName = "boone_refresh_token"

// AuthHandler handles login, registration and token refresh
type AuthHandler struct {
	authService *services.AuthService
	refreshTTL  time.Duration
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		refreshTTL:  refreshTTL,
	}
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api/auth",
		MaxAge:   int(h.refreshTTL / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, pair *services.TokenPair) {
	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, models.NewAccessTokenResponse(pair.AccessToken))
}

// Login exchanges email and password for tokens
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	pair, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respondWithTokens(w, pair)
}

// Register creates an account from an invite
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	_, pair, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respondWithTokens(w, pair)
}

// Refresh rotates the refresh cookie and returns a new access token
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		token = cookie.Value
	}

	pair, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respondWithTokens(w, pair)
}

// Logout clears the refresh cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	writeJSON(w, http.StatusOK, user)
}
