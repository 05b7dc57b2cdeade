package workspace

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/jonathan/cv-admin/internal/listedit"
	"github.com/jonathan/cv-admin/internal/skills"
	"github.com/jonathan/cv-admin/internal/types"
)

// Workspace is a session-scoped working copy. It is a value: every mutator
// returns a new Workspace and leaves the receiver untouched.
type Workspace struct {
	experiences    listedit.Editor[types.ExperienceEntry]
	languages      listedit.Editor[types.Language]
	education      listedit.Editor[types.Education]
	certifications listedit.Editor[types.Certification]
	topSkills      []string
	// profile holds the scalar fields; its lists live in the editors above
	profile  types.UserProfile
	versions map[types.Resource]string
}

// New creates a workspace from a loaded bundle and its version stamps
func New(b types.Bundle, versions map[types.Resource]string) Workspace {
	w := Workspace{
		experiences:    listedit.NewEditor(b.Experiences, types.ExperienceEntry.Clone),
		languages:      listedit.NewEditor(b.ProfileData.Languages, nil),
		education:      listedit.NewEditor(b.ProfileData.Education, nil),
		certifications: listedit.NewEditor(b.ProfileData.Certifications, nil),
		topSkills:      append([]string{}, b.TopSkills...),
		profile:        scalars(b.ProfileData),
		versions:       make(map[types.Resource]string, len(versions)),
	}
	for k, v := range versions {
		w.versions[k] = v
	}
	return w
}

// Bundle assembles the current state
func (w Workspace) Bundle() types.Bundle {
	return types.Bundle{
		Experiences: nonNil(w.experiences.Items()),
		TopSkills:   append([]string{}, w.topSkills...),
		ProfileData: w.Profile(),
	}
}

// Profile returns the full profile including its lists
func (w Workspace) Profile() types.UserProfile {
	p := w.profile
	p.Languages = nonNil(w.languages.Items())
	p.Education = nonNil(w.education.Items())
	p.Certifications = nonNil(w.certifications.Items())
	return p
}

// TopSkills returns a copy of the top-skills list
func (w Workspace) TopSkills() []string {
	return append([]string{}, w.topSkills...)
}

// Version returns the stamp r had when it was loaded or last saved
func (w Workspace) Version(r types.Resource) string {
	return w.versions[r]
}

// WithVersion records a new stamp for r, typically after a successful save
func (w Workspace) WithVersion(r types.Resource, version string) Workspace {
	next := make(map[types.Resource]string, len(w.versions)+1)
	for k, v := range w.versions {
		next[k] = v
	}
	next[r] = version
	w.versions = next
	return w
}

// Experiences returns the experiences editor
func (w Workspace) Experiences() listedit.Editor[types.ExperienceEntry] {
	return w.experiences
}

// Languages returns the languages editor
func (w Workspace) Languages() listedit.Editor[types.Language] {
	return w.languages
}

// Education returns the education editor
func (w Workspace) Education() listedit.Editor[types.Education] {
	return w.education
}

// Certifications returns the certifications editor
func (w Workspace) Certifications() listedit.Editor[types.Certification] {
	return w.certifications
}

// EditExperiences applies fn to the experiences editor
func (w Workspace) EditExperiences(fn func(listedit.Editor[types.ExperienceEntry]) listedit.Editor[types.ExperienceEntry]) Workspace {
	w.experiences = fn(w.experiences)
	return w
}

// EditLanguages applies fn to the languages editor
func (w Workspace) EditLanguages(fn func(listedit.Editor[types.Language]) listedit.Editor[types.Language]) Workspace {
	w.languages = fn(w.languages)
	return w
}

// EditEducation applies fn to the education editor
func (w Workspace) EditEducation(fn func(listedit.Editor[types.Education]) listedit.Editor[types.Education]) Workspace {
	w.education = fn(w.education)
	return w
}

// EditCertifications applies fn to the certifications editor
func (w Workspace) EditCertifications(fn func(listedit.Editor[types.Certification]) listedit.Editor[types.Certification]) Workspace {
	w.certifications = fn(w.certifications)
	return w
}

// AddDraftTag adds tag to the open experience draft
func (w Workspace) AddDraftTag(tag string) Workspace {
	w.experiences = w.experiences.Update(func(e *types.ExperienceEntry) {
		e.Tags = listedit.AddTag(e.Tags, tag)
	})
	return w
}

// RemoveDraftTag removes tag from the open experience draft
func (w Workspace) RemoveDraftTag(tag string) Workspace {
	w.experiences = w.experiences.Update(func(e *types.ExperienceEntry) {
		e.Tags = listedit.RemoveTag(e.Tags, tag)
	})
	return w
}

// AddTopSkill appends skill unless it is blank or already listed
func (w Workspace) AddTopSkill(skill string) Workspace {
	w.topSkills = listedit.AddTag(w.topSkills, skill)
	return w
}

// RemoveTopSkill removes every occurrence of skill
func (w Workspace) RemoveTopSkill(skill string) Workspace {
	w.topSkills = listedit.RemoveTag(w.topSkills, skill)
	return w
}

// MoveTopSkill swaps the skill at index with its neighbour
func (w Workspace) MoveTopSkill(index int, dir listedit.Direction) Workspace {
	w.topSkills = listedit.Move(index, dir, w.topSkills)
	return w
}

// SetTopSkills replaces the top-skills list
func (w Workspace) SetTopSkills(list []string) Workspace {
	w.topSkills = append([]string{}, list...)
	return w
}

// GenerateTopSkills overwrites the top-skills list with the n most frequent experience tags
func (w Workspace) GenerateTopSkills(n int) Workspace {
	return w.SetTopSkills(skills.TopSkills(w.experiences.Items(), n))
}

// profileFields lists the scalar profile fields accepted by SetProfileField
func profileFields() []string {
	return []string{
		"name", "title", "location", "email", "phone", "linkedin",
		"profileImageUrl", "profileImageWebUrl", "profileImagePdfUrl", "summary",
	}
}

// SetProfileField sets one scalar profile field by its JSON name
func (w Workspace) SetProfileField(field, value string) (Workspace, error) {
	p := w.profile
	switch field {
	case "name":
		p.Name = value
	case "title":
		p.Title = value
	case "location":
		p.Location = value
	case "email":
		p.Email = value
	case "phone":
		p.Phone = value
	case "linkedin":
		p.LinkedIn = value
	case "profileImageUrl":
		p.ProfileImageURL = value
	case "profileImageWebUrl":
		p.ProfileImageWebURL = value
	case "profileImagePdfUrl":
		p.ProfileImagePDFURL = value
	case "summary":
		p.Summary = value
	default:
		return w, &UnknownFieldError{Field: field}
	}
	w.profile = p
	return w, nil
}

// SetProfileImages records the two derivative locators of an upload.
// The web derivative also becomes the generic profile image.
func (w Workspace) SetProfileImages(webURL, pdfURL string) Workspace {
	w.profile.ProfileImageURL = types.FormatImageURLForStorage(webURL)
	w.profile.ProfileImageWebURL = types.FormatImageURLForStorage(webURL)
	w.profile.ProfileImagePDFURL = types.FormatImageURLForStorage(pdfURL)
	return w
}

// JSON renders r the way the JSON editor shows it
func (w Workspace) JSON(r types.Resource) (string, error) {
	var v any
	switch r {
	case types.ResourceExperiences:
		v = w.Bundle().Experiences
	case types.ResourceTopSkills:
		v = w.TopSkills()
	case types.ResourceProfile:
		v = w.Profile()
	default:
		return "", &ParseError{Resource: string(r), Message: "unknown resource"}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// ApplyJSON replaces r with the value parsed from text. On any error the
// receiver is returned unchanged together with a ParseError. Open drafts on
// the replaced collections are discarded.
func (w Workspace) ApplyJSON(r types.Resource, text string) (Workspace, error) {
	switch r {
	case types.ResourceExperiences:
		var exps []types.ExperienceEntry
		if err := decode(r, text, &exps); err != nil {
			return w, err
		}
		for i := range exps {
			if exps[i].Tags == nil {
				exps[i].Tags = []string{}
			}
		}
		w.experiences = w.experiences.Replace(exps)
	case types.ResourceTopSkills:
		var list []string
		if err := decode(r, text, &list); err != nil {
			return w, err
		}
		w.topSkills = nonNil(list)
	case types.ResourceProfile:
		var p types.UserProfile
		if err := decode(r, text, &p); err != nil {
			return w, err
		}
		if err := p.NormalizeProficiencies(); err != nil {
			return w, &ParseError{Resource: string(r), Message: "invalid language proficiency", Cause: err}
		}
		w.profile = scalars(p)
		w.languages = w.languages.Replace(p.Languages)
		w.education = w.education.Replace(p.Education)
		w.certifications = w.certifications.Replace(p.Certifications)
	default:
		return w, &ParseError{Resource: string(r), Message: "unknown resource"}
	}
	return w, nil
}

func decode(r types.Resource, text string, v any) error {
	if strings.TrimSpace(text) == "" {
		return &ParseError{Resource: string(r), Message: "empty input"}
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &ParseError{Resource: string(r), Message: "could not parse", Cause: err}
	}
	if dec.More() {
		return &ParseError{Resource: string(r), Message: "unexpected data after JSON value"}
	}
	return nil
}

func scalars(p types.UserProfile) types.UserProfile {
	p.Languages = nil
	p.Education = nil
	p.Certifications = nil
	return p
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
