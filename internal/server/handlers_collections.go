package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/cv-admin/internal/listedit"
	"github.com/jonathan/cv-admin/internal/types"
	"github.com/jonathan/cv-admin/internal/workspace"
)

// collectionOps adapts one workspace collection to the REST surface
type collectionOps struct {
	resource types.Resource
	add      func(ws workspace.Workspace, raw []byte) (workspace.Workspace, error)
	edit     func(ws workspace.Workspace, index int, raw []byte) (workspace.Workspace, error)
	remove   func(ws workspace.Workspace, index int) workspace.Workspace
	move     func(ws workspace.Workspace, index int, dir listedit.Direction) workspace.Workspace
	items    func(ws workspace.Workspace) any
}

// editorOps builds collectionOps over a listedit.Editor exposed by the workspace
func editorOps[T any](
	resource types.Resource,
	get func(workspace.Workspace) listedit.Editor[T],
	apply func(workspace.Workspace, func(listedit.Editor[T]) listedit.Editor[T]) workspace.Workspace,
	fill func(*T),
) collectionOps {
	decode := func(raw []byte) (T, error) {
		var record T
		if err := decodeRecord(raw, &record); err != nil {
			return record, err
		}
		if fill != nil {
			fill(&record)
		}
		return record, nil
	}

	return collectionOps{
		resource: resource,
		add: func(ws workspace.Workspace, raw []byte) (workspace.Workspace, error) {
			record, err := decode(raw)
			if err != nil {
				return ws, err
			}
			return apply(ws, func(e listedit.Editor[T]) listedit.Editor[T] {
				return e.Add(record).Save()
			}), nil
		},
		edit: func(ws workspace.Workspace, index int, raw []byte) (workspace.Workspace, error) {
			record, err := decode(raw)
			if err != nil {
				return ws, err
			}
			return apply(ws, func(e listedit.Editor[T]) listedit.Editor[T] {
				return e.EditWith(record, index).Save()
			}), nil
		},
		remove: func(ws workspace.Workspace, index int) workspace.Workspace {
			return apply(ws, func(e listedit.Editor[T]) listedit.Editor[T] {
				return e.Delete(index)
			})
		},
		move: func(ws workspace.Workspace, index int, dir listedit.Direction) workspace.Workspace {
			return apply(ws, func(e listedit.Editor[T]) listedit.Editor[T] {
				return e.Move(index, dir)
			})
		},
		items: func(ws workspace.Workspace) any {
			items := get(ws).Items()
			if items == nil {
				items = []T{}
			}
			return items
		},
	}
}

var topSkillOps = collectionOps{
	resource: types.ResourceTopSkills,
	add: func(ws workspace.Workspace, raw []byte) (workspace.Workspace, error) {
		var skill string
		if err := decodeRecord(raw, &skill); err != nil {
			return ws, err
		}
		draft := listedit.Add(skill)
		return ws.SetTopSkills(listedit.Save(draft, ws.TopSkills())), nil
	},
	edit: func(ws workspace.Workspace, index int, raw []byte) (workspace.Workspace, error) {
		var skill string
		if err := decodeRecord(raw, &skill); err != nil {
			return ws, err
		}
		draft := listedit.Edit(skill, index)
		return ws.SetTopSkills(listedit.Save(draft, ws.TopSkills())), nil
	},
	remove: func(ws workspace.Workspace, index int) workspace.Workspace {
		return ws.SetTopSkills(listedit.Delete(index, ws.TopSkills()))
	},
	move: workspace.Workspace.MoveTopSkill,
	items: func(ws workspace.Workspace) any {
		return ws.TopSkills()
	},
}

var collections = map[string]collectionOps{
	"experiences": editorOps(types.ResourceExperiences,
		workspace.Workspace.Experiences, workspace.Workspace.EditExperiences,
		func(e *types.ExperienceEntry) {
			if e.Tags == nil {
				e.Tags = []string{}
			}
		}),
	"languages": editorOps(types.ResourceProfile,
		workspace.Workspace.Languages, workspace.Workspace.EditLanguages, nil),
	"education": editorOps(types.ResourceProfile,
		workspace.Workspace.Education, workspace.Workspace.EditEducation, nil),
	"certifications": editorOps(types.ResourceProfile,
		workspace.Workspace.Certifications, workspace.Workspace.EditCertifications, nil),
	"topskills": topSkillOps,
}

func decodeRecord(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid record: " + err.Error()}
	}
	return nil
}

func lookupCollection(r *http.Request) (collectionOps, error) {
	name := r.PathValue("collection")
	ops, ok := collections[name]
	if !ok {
		return collectionOps{}, &ErrValidation{Field: "collection", Message: fmt.Sprintf("unknown collection %q", name)}
	}
	return ops, nil
}

// mutate loads the stored data, applies fn and writes the affected resource
// back, guarded by the version it was loaded at. The returned workspace
// carries the version of the bytes written.
func (s *Server) mutate(ctx context.Context, resource types.Resource, fn func(workspace.Workspace) (workspace.Workspace, error)) (workspace.Workspace, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return workspace.Workspace{}, err
	}
	ws, err := fn(workspace.New(snap.Bundle, snap.Versions))
	if err != nil {
		return workspace.Workspace{}, err
	}

	var version string
	switch resource {
	case types.ResourceExperiences:
		version, err = s.store.SaveExperiences(ctx, ws.Bundle().Experiences, ws.Version(resource))
	case types.ResourceTopSkills:
		version, err = s.store.SaveTopSkills(ctx, ws.TopSkills(), ws.Version(resource))
	case types.ResourceProfile:
		version, err = s.store.SaveProfile(ctx, ws.Profile(), ws.Version(resource))
	}
	if err != nil {
		return workspace.Workspace{}, err
	}
	return ws.WithVersion(resource, version), nil
}

func (s *Server) handleCollectionAdd(w http.ResponseWriter, r *http.Request) {
	ops, err := lookupCollection(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	raw, err := s.readBody(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	ws, err := s.mutate(r.Context(), ops.resource, func(ws workspace.Workspace) (workspace.Workspace, error) {
		return ops.add(ws, raw)
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.savedResponse(w, r, ops.resource, ws.Version(ops.resource), ops.items(ws))
}

func (s *Server) handleCollectionEdit(w http.ResponseWriter, r *http.Request) {
	ops, err := lookupCollection(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	raw, err := s.readBody(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	ws, err := s.mutate(r.Context(), ops.resource, func(ws workspace.Workspace) (workspace.Workspace, error) {
		return ops.edit(ws, index, raw)
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.savedResponse(w, r, ops.resource, ws.Version(ops.resource), ops.items(ws))
}

func (s *Server) handleCollectionDelete(w http.ResponseWriter, r *http.Request) {
	ops, err := lookupCollection(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	ws, err := s.mutate(r.Context(), ops.resource, func(ws workspace.Workspace) (workspace.Workspace, error) {
		return ops.remove(ws, index), nil
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.savedResponse(w, r, ops.resource, ws.Version(ops.resource), ops.items(ws))
}

func (s *Server) handleCollectionMove(w http.ResponseWriter, r *http.Request) {
	ops, err := lookupCollection(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	dir, err := listedit.ParseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "direction", Message: err.Error()})
		return
	}

	ws, err := s.mutate(r.Context(), ops.resource, func(ws workspace.Workspace) (workspace.Workspace, error) {
		return ops.move(ws, index, dir), nil
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.savedResponse(w, r, ops.resource, ws.Version(ops.resource), ops.items(ws))
}

type tagRequest struct {
	Tag string `json:"tag" validate:"required"`
}

type skillRequest struct {
	Skill string `json:"skill" validate:"required"`
}

// editExperienceTags opens a draft on the experience at index, applies fn and saves it
func (s *Server) editExperienceTags(w http.ResponseWriter, r *http.Request, fn func(workspace.Workspace) workspace.Workspace) {
	index, err := pathIndex(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	ws, err := s.mutate(r.Context(), types.ResourceExperiences, func(ws workspace.Workspace) (workspace.Workspace, error) {
		if index >= ws.Experiences().Len() {
			return ws, &ErrValidation{Field: "index", Message: fmt.Sprintf("no experience at index %d", index)}
		}
		ws = ws.EditExperiences(func(e listedit.Editor[types.ExperienceEntry]) listedit.Editor[types.ExperienceEntry] {
			return e.Edit(index)
		})
		ws = fn(ws)
		return ws.EditExperiences(func(e listedit.Editor[types.ExperienceEntry]) listedit.Editor[types.ExperienceEntry] {
			return e.Save()
		}), nil
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.savedResponse(w, r, types.ResourceExperiences, ws.Version(types.ResourceExperiences), ws.Experiences().Items()[index])
}

func (s *Server) handleAddExperienceTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, r, extractValidationErrors(err))
		return
	}
	s.editExperienceTags(w, r, func(ws workspace.Workspace) workspace.Workspace {
		return ws.AddDraftTag(req.Tag)
	})
}

func (s *Server) handleRemoveExperienceTag(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	if tag == "" {
		s.errorResponse(w, r, &ErrValidation{Field: "tag", Message: "query parameter is required"})
		return
	}
	s.editExperienceTags(w, r, func(ws workspace.Workspace) workspace.Workspace {
		return ws.RemoveDraftTag(tag)
	})
}

func (s *Server) handleAddTopSkill(w http.ResponseWriter, r *http.Request) {
	var req skillRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := s.validator.Struct(req); err != nil || strings.TrimSpace(req.Skill) == "" {
		s.errorResponse(w, r, &ErrValidation{Field: "skill", Message: "must not be blank"})
		return
	}

	ws, err := s.mutate(r.Context(), types.ResourceTopSkills, func(ws workspace.Workspace) (workspace.Workspace, error) {
		return ws.AddTopSkill(req.Skill), nil
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.savedResponse(w, r, types.ResourceTopSkills, ws.Version(types.ResourceTopSkills), ws.TopSkills())
}

func (s *Server) handleRemoveTopSkill(w http.ResponseWriter, r *http.Request) {
	skill := r.URL.Query().Get("skill")
	if skill == "" {
		s.errorResponse(w, r, &ErrValidation{Field: "skill", Message: "query parameter is required"})
		return
	}

	ws, err := s.mutate(r.Context(), types.ResourceTopSkills, func(ws workspace.Workspace) (workspace.Workspace, error) {
		return ws.RemoveTopSkill(skill), nil
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.savedResponse(w, r, types.ResourceTopSkills, ws.Version(types.ResourceTopSkills), ws.TopSkills())
}
