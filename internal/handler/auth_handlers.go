package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/tonynouhra/taskmanager/internal/domain"
	"github.com/tonynouhra/taskmanager/internal/handler/dto"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// handleRegister creates a user account and issues the first token pair.
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.RegisterResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Username) == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "username is required")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	user, err := h.userRepo.Create(r.Context(), &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Age:          req.Age,
		PhoneNumber:  req.PhoneNumber,
		Bio:          req.Bio,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	tokens, err := h.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		slog.Error("failed to issue token pair", "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)

	respondJSON(w, http.StatusCreated, dto.RegisterResponse{
		User: dto.NewUserResponse(user),
		Tokens: dto.TokenPairResponse{
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
		},
	})
}

// handleLogin verifies credentials and issues a token pair. The identifier
// may be a username or an email address. Unknown account and wrong password
// are indistinguishable to the caller.
// @Summary Log in
// @Description Log in with a username or email address and password.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.TokenPairResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userRepo.GetByUsername(r.Context(), req.Username)
	if domain.IsNotFound(err) && strings.Contains(req.Username, "@") {
		user, err = h.userRepo.GetByEmail(r.Context(), req.Username)
	}
	if err != nil {
		respondDomainError(w, domain.ErrInvalidCredentials)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondDomainError(w, domain.ErrInvalidCredentials)
		return
	}

	tokens, err := h.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		slog.Error("failed to issue token pair", "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	slog.Info("user logged in", "user_id", user.ID)

	respondJSON(w, http.StatusOK, dto.TokenPairResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// handleRefresh exchanges a refresh token for a fresh pair.
// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest true "Refresh request"
// @Success 200 {object} dto.TokenPairResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	claims, err := h.tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	// The account may have been removed since the token was issued.
	user, err := h.userRepo.GetByID(r.Context(), claims.UserID)
	if err != nil {
		respondDomainError(w, domain.ErrInvalidToken)
		return
	}

	tokens, err := h.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		slog.Error("failed to issue token pair", "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, dto.TokenPairResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// handleGetProfile returns the authenticated user's profile.
// @Summary Get own profile
// @Tags auth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Security BearerAuth
// @Router /auth/profile [get]
func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := authClaims(w, r)
	if !ok {
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), claims.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

// handleUpdateProfile applies a partial update to the authenticated
// user's profile fields.
// @Summary Update own profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Profile update request"
// @Success 200 {object} dto.UserResponse
// @Security BearerAuth
// @Router /auth/profile [patch]
func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := authClaims(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), claims.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Age != nil {
		user.Age = req.Age
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := h.userRepo.UpdateProfile(r.Context(), user); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewUserResponse(user))
}
