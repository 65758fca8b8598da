package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/teamboard/teamboard/internal/api/middleware"
	"github.com/teamboard/teamboard/internal/api/response"
	"github.com/teamboard/teamboard/internal/api/validation"
	"github.com/teamboard/teamboard/internal/auth"
	"github.com/teamboard/teamboard/internal/user"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// AuthHandler handles registration, token issuance and the profile endpoint.
type AuthHandler struct {
	authService *auth.Service
	userRepo    user.Repository
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service, userRepo user.Repository) *AuthHandler {
	return &AuthHandler{authService: authService, userRepo: userRepo}
}

// Register handles POST /api/register/.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateRegisterRequest(validation.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register user", requestID)
		return
	}

	u := &user.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
	}

	if err := h.userRepo.Create(r.Context(), u); err != nil {
		if errors.Is(err, user.ErrDuplicateUsername) {
			response.Err(w, http.StatusConflict, "DUPLICATE_USER", "Username or email is already taken", requestID)
			return
		}
		slog.Error("failed to create user", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register user", requestID)
		return
	}

	response.Success(w, http.StatusCreated, user.Summarize(u), requestID)
}

// Token handles POST /api/token/.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.Username == "" || req.Password == "" {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "username and password are required", requestID)
		return
	}

	pair, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password", requestID)
			return
		}
		slog.Error("failed to issue tokens", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue tokens", requestID)
		return
	}

	response.Success(w, http.StatusOK, pair, requestID)
}

// Refresh handles POST /api/token/refresh/.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.Refresh == "" {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "refresh is required", requestID)
		return
	}

	access, err := h.authService.Refresh(req.Refresh)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token is invalid or expired", requestID)
			return
		}
		slog.Error("failed to refresh token", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to refresh token", requestID)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"access": access}, requestID)
}

// Profile handles GET /api/profile/.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication credentials were not provided", requestID)
		return
	}

	response.Success(w, http.StatusOK, user.Summary{
		ID:       identity.UserID,
		Username: identity.Username,
		Email:    identity.Email,
	}, requestID)
}
