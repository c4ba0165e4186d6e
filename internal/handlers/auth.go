package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fleetdesk/apiserver/internal/auth"
	"github.com/fleetdesk/apiserver/internal/services"
	"github.com/fleetdesk/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
)

// AuthHandler provides the login and session endpoints.
type AuthHandler struct {
	authService *auth.Service
	users       *store.UserRepository
}

func NewAuthHandler(authService *auth.Service, users *store.UserRepository) *AuthHandler {
	return &AuthHandler{authService: authService, users: users}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/login", handler.Login)
	r.With(authMiddleware).Get("/protected", handler.Protected)
	r.With(authMiddleware).Get("/usernames", handler.Usernames)
}

// Login verifies credentials and returns a signed token. The body is
// accepted with either capitalized or lowercase field names.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	body := services.NewSubmission(raw)

	token, user, err := h.authService.Login(r.Context(), body.Get("username"), body.Get("password"))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials):
			writeError(w, http.StatusBadRequest, "username and password are required")
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid username or password")
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]string{
			"username":  user.Username,
			"role":      user.Role,
			"full_name": user.FullName,
		},
	})
}

// Protected echoes the verified session, used by clients to validate a
// stored token.
func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"user": map[string]string{
			"username":  claims.Username,
			"role":      claims.Role,
			"full_name": claims.FullName,
		},
	})
}

// Usernames returns the password-safe projection of the user resource.
func (h *AuthHandler) Usernames(w http.ResponseWriter, r *http.Request) {
	listings, err := h.users.Listings(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load users")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"users": listings})
}
