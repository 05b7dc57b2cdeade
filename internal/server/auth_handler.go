package server

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/cv-admin/internal/types"
	"go.uber.org/zap"
)

// handleLogin verifies the admin password and sets the session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, r, extractValidationErrors(err))
		return
	}

	if s.adminHash == "" {
		s.errorResponse(w, r, &ErrUnauthorized{Message: "admin login is not configured"})
		return
	}
	if !s.cfg.Password.VerifyPassword(req.Password, s.adminHash) {
		s.logger.Warn("admin login failed",
			zap.String("request_id", RequestID(r)),
			zap.String("client", extractClientID(r)))
		s.errorResponse(w, r, &ErrUnauthorized{Message: "invalid password"})
		return
	}

	token, expiresAt, err := s.sessions.GenerateToken()
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(s.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info("admin logged in", zap.String("request_id", RequestID(r)))
	s.jsonResponse(w, r, http.StatusOK, map[string]any{
		"success":   true,
		"expiresAt": expiresAt,
	})
}

// handleLogout clears the session cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	s.jsonResponse(w, r, http.StatusOK, map[string]bool{"success": true})
}

// extractValidationErrors converts the first validator error into an ErrValidation.
func extractValidationErrors(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: fmt.Sprintf("failed %q check", ve.Tag())}
	}
	return &ErrValidation{Field: "body", Message: "invalid request"}
}
