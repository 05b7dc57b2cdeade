package server

import (
	"net/http"

	"github.com/jonathan/cv-admin/internal/enhance"
	"github.com/jonathan/cv-admin/internal/server/middleware"
	"go.uber.org/zap"
)

// handleEnhance proxies one field's text to the completion service.
func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	var req enhance.Request
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	method, _ := middleware.GetAuthMethod(r)
	s.logger.Debug("enhance requested",
		zap.String("request_id", RequestID(r)),
		zap.String("auth_method", string(method)),
		zap.String("field_type", req.FieldType))

	result, err := s.enhancer.Enhance(r.Context(), req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, result)
}
