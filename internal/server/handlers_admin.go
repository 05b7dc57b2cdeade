package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/jonathan/cv-admin/internal/skills"
	"github.com/jonathan/cv-admin/internal/store"
	"github.com/jonathan/cv-admin/internal/types"
)

// handleLoad returns the resource bundle, or the generated top skills when
// action=generateTopSkills.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get("action"); action {
	case "":
	case "generateTopSkills":
		exps, _, err := s.store.LoadExperiences(r.Context())
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		s.jsonResponse(w, r, http.StatusOK, types.TopSkillsResponse{
			TopSkills: skills.TopSkills(exps, skills.DefaultTopN),
		})
		return
	default:
		s.errorResponse(w, r, &ErrValidation{Field: "action", Message: "unknown action " + action})
		return
	}

	snap, err := s.store.Load(r.Context())
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, types.LoadResponse{
		Bundle:   snap.Bundle,
		Versions: snap.Versions,
	})
}

// handleSave overwrites one resource with the request payload.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req types.SaveRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	target, err := store.ResolveTarget(req.TargetName())
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	version, err := s.store.SaveRequest(r.Context(), req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.savedResponse(w, r, target, version, nil)
}

// handleAutoSkills summarizes the posted experiences, or the stored ones when none are posted.
func (s *Server) handleAutoSkills(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	var req types.TopSkillsRequest
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			s.errorResponse(w, r, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
			return
		}
	}

	exps := req.Experiences
	if exps == nil {
		stored, _, err := s.store.LoadExperiences(r.Context())
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		exps = stored
	}

	s.jsonResponse(w, r, http.StatusOK, types.TopSkillsResponse{
		TopSkills: skills.TopSkills(exps, skills.DefaultTopN),
	})
}

// savedResponse reports the version written and, when given, the resource's new contents.
func (s *Server) savedResponse(w http.ResponseWriter, r *http.Request, target types.Resource, version string, items any) {
	body := map[string]any{
		"success": true,
		"target":  target,
		"version": version,
	}
	if items != nil {
		body["items"] = items
	}
	s.jsonResponse(w, r, http.StatusOK, body)
}
