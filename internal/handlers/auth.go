package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gatherly/gatherly/internal/logging"
	"github.com/gatherly/gatherly/internal/models"
	"github.com/gatherly/gatherly/internal/services"
)

const sessionCookieName = "session_token"

type AuthHandler struct {
	userService services.UserServiceInterface
	authService services.AuthServiceInterface
	secure      bool
}

func NewAuthHandler(userService services.UserServiceInterface, authService services.AuthServiceInterface, secure bool) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		secure:      secure,
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OnboardRequest struct {
	FullName   string `json:"full_name"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profile_pic"`
}

type UserResponse struct {
	User *models.User `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email address")
		return
	}
	if req.FullName == "" {
		writeError(w, http.StatusBadRequest, "Full name is required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		logging.Error("Hashing password", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.userService.Create(r.Context(), models.CreateUserParams{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
	})
	if errors.Is(err, services.ErrEmailAlreadyExists) {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		logging.Error("Creating user", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := h.authService.CreateSession(r.Context(), user.ID)
	if err != nil {
		logging.Error("Creating session", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, UserResponse{User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := h.userService.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		logging.Error("Looking up user", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !h.authService.VerifyPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.authService.CreateSession(r.Context(), user.ID)
	if err != nil {
		logging.Error("Creating session", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, UserResponse{User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.authService.DeleteSession(r.Context(), cookie.Value); err != nil {
			logging.Warn("Deleting session", map[string]interface{}{"error": err.Error()})
		}
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{User: user})
}

// Onboard completes the profile; onboarded users become visible in
// friend recommendations.
func (h *AuthHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req OnboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		writeError(w, http.StatusBadRequest, "Full name is required")
		return
	}

	updated, err := h.userService.CompleteOnboarding(r.Context(), user.ID, models.OnboardingParams{
		FullName:   req.FullName,
		Bio:        strings.TrimSpace(req.Bio),
		ProfilePic: strings.TrimSpace(req.ProfilePic),
	})
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		logging.Error("Completing onboarding", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{User: updated})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
