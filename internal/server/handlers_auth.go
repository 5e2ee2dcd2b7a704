package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stocksim/stocksim/internal/models"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  models.SafeUser `json:"user"`
}

// handleAuthRegister handles POST /api/auth/register.
func (s *Server) handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		WriteError(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if len(req.Password) < 6 {
		WriteError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	users := s.app.Storage.Users()

	if _, err := users.GetUserByEmail(r.Context(), req.Email); err == nil {
		WriteError(w, http.StatusBadRequest, "Email already registered")
		return
	} else {
		var nf *models.NotFoundError
		if !errors.As(err, &nf) {
			WriteServiceError(w, s.logger, err)
			return
		}
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	// The first account becomes the admin so a fresh install can be
	// managed without seeding.
	role := models.RoleUser
	if count, err := users.CountByRole(r.Context(), models.RoleAdmin); err == nil && count == 0 {
		role = models.RoleAdmin
	}

	now := time.Now().UTC()
	user := &models.User{
		UserID:       uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		CreatedAt:    now,
		ModifiedAt:   now,
	}

	if err := users.SaveUser(r.Context(), user); err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	token, err := signJWT(user, &s.app.Config.Auth)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	s.notify("Welcome", func(ctx context.Context) error {
		return s.app.Mailer.SendWelcome(ctx, user.Email, user.FirstName)
	})

	s.logger.Info().Str("email", user.Email).Str("role", user.Role).Msg("User registered")
	WriteSuccess(w, http.StatusCreated, authResponse{Token: token, User: user.Safe()})
}

// handleAuthLogin handles POST /api/auth/login.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if !s.loginLimiter.allow(r.RemoteAddr) {
		WriteError(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		return
	}

	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := s.app.Storage.Users().GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !checkPassword(user.PasswordHash, req.Password) {
		WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := signJWT(user, &s.app.Config.Auth)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, authResponse{Token: token, User: user.Safe()})
}

// handleAuthMe handles GET /api/auth/me.
func (s *Server) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	uc, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	user, err := s.app.Storage.Users().GetUser(r.Context(), uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, user.Safe())
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// handleUpdatePassword handles PUT /api/auth/update-password.
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	uc, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req updatePasswordRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.NewPassword) < 6 {
		WriteError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	users := s.app.Storage.Users()
	user, err := users.GetUser(r.Context(), uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	if !checkPassword(user.PasswordHash, req.CurrentPassword) {
		WriteError(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	user.PasswordHash = hash
	user.ModifiedAt = time.Now().UTC()
	if err := users.SaveUser(r.Context(), user); err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	s.logger.Info().Str("user_id", user.UserID).Msg("Password updated")
	WriteSuccess(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// handleForgotPassword handles POST /api/auth/forgot-password. The
// response is identical whether or not the account exists.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req forgotPasswordRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	users := s.app.Storage.Users()

	if user, err := users.GetUserByEmail(r.Context(), email); err == nil {
		token, tokenHash, err := newResetToken()
		if err == nil {
			user.ResetTokenHash = tokenHash
			user.ResetTokenExpires = time.Now().UTC().Add(10 * time.Minute)
			user.ModifiedAt = time.Now().UTC()
			if err := users.SaveUser(r.Context(), user); err == nil {
				s.notify("Password reset", func(ctx context.Context) error {
					return s.app.Mailer.SendPasswordReset(ctx, user.Email, token)
				})
			}
		}
	}

	WriteSuccess(w, http.StatusOK, map[string]string{
		"message": "If that email is registered, a reset link has been sent",
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// handleResetPassword handles POST /api/auth/reset-password.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req resetPasswordRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.NewPassword) < 6 {
		WriteError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	users := s.app.Storage.Users()
	user, err := users.GetUserByResetToken(r.Context(), hashResetToken(req.Token))
	if err != nil || user.ResetTokenExpires.Before(time.Now().UTC()) {
		WriteError(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	user.PasswordHash = hash
	user.ResetTokenHash = ""
	user.ResetTokenExpires = time.Time{}
	user.ModifiedAt = time.Now().UTC()
	if err := users.SaveUser(r.Context(), user); err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	s.logger.Info().Str("user_id", user.UserID).Msg("Password reset completed")
	WriteSuccess(w, http.StatusOK, map[string]string{"message": "Password has been reset"})
}
