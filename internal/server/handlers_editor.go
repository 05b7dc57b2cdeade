package server

import (
	"net/http"

	"github.com/jonathan/cv-admin/internal/store"
	"github.com/jonathan/cv-admin/internal/types"
	"github.com/jonathan/cv-admin/internal/workspace"
)

type editorResponse struct {
	Resource types.Resource `json:"resource"`
	JSON     string         `json:"json"`
	Version  string         `json:"version"`
}

type profileFieldRequest struct {
	Value *string `json:"value" validate:"required"`
}

// handleEditorLoad returns one resource as indented JSON for the raw editor.
func (s *Server) handleEditorLoad(w http.ResponseWriter, r *http.Request) {
	resource, err := store.ResolveTarget(r.PathValue("resource"))
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	snap, err := s.store.Load(r.Context())
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	ws := workspace.New(snap.Bundle, snap.Versions)
	text, err := ws.JSON(resource)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, editorResponse{
		Resource: resource,
		JSON:     text,
		Version:  ws.Version(resource),
	})
}

// handleEditorApply replaces one resource with the raw editor text. Text that
// does not parse leaves the stored file untouched.
func (s *Server) handleEditorApply(w http.ResponseWriter, r *http.Request) {
	resource, err := store.ResolveTarget(r.PathValue("resource"))
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	raw, err := s.readBody(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	ws, err := s.mutate(r.Context(), resource, func(ws workspace.Workspace) (workspace.Workspace, error) {
		return ws.ApplyJSON(resource, string(raw))
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	text, err := ws.JSON(resource)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.savedResponse(w, r, resource, ws.Version(resource), text)
}

// handleProfileField sets one scalar profile field.
func (s *Server) handleProfileField(w http.ResponseWriter, r *http.Request) {
	var req profileFieldRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, r, extractValidationErrors(err))
		return
	}

	field := r.PathValue("field")
	ws, err := s.mutate(r.Context(), types.ResourceProfile, func(ws workspace.Workspace) (workspace.Workspace, error) {
		return ws.SetProfileField(field, *req.Value)
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.savedResponse(w, r, types.ResourceProfile, ws.Version(types.ResourceProfile), ws.Profile())
}
