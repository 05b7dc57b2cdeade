package types

import (
	"fmt"
	"strings"
)

// LanguageProficiency is the closed set of proficiency levels shown on the CV
type LanguageProficiency string

// Proficiency levels, strongest first
const (
	ProficiencyNative       LanguageProficiency = "Native"
	ProficiencyFluent       LanguageProficiency = "Fluent"
	ProficiencyProfessional LanguageProficiency = "Professional"
	ProficiencyIntermediate LanguageProficiency = "Intermediate"
	ProficiencyElementary   LanguageProficiency = "Elementary"
	ProficiencyBeginner     LanguageProficiency = "Beginner"
)

// Proficiencies lists every valid proficiency in display order
func Proficiencies() []LanguageProficiency {
	return []LanguageProficiency{
		ProficiencyNative,
		ProficiencyFluent,
		ProficiencyProfessional,
		ProficiencyIntermediate,
		ProficiencyElementary,
		ProficiencyBeginner,
	}
}

// ParseProficiency maps a user-supplied value onto the canonical proficiency.
// Matching ignores case and surrounding whitespace.
func ParseProficiency(s string) (LanguageProficiency, error) {
	needle := strings.TrimSpace(s)
	for _, p := range Proficiencies() {
		if strings.EqualFold(needle, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown language proficiency %q", s)
}

// Language is a spoken language with its proficiency
type Language struct {
	Name        string              `json:"name"`
	Proficiency LanguageProficiency `json:"proficiency" validate:"oneof=Native Fluent Professional Intermediate Elementary Beginner"`
}

// NewLanguage returns the empty record used when a new language is added
func NewLanguage() Language {
	return Language{Proficiency: ProficiencyProfessional}
}

// Education is one degree or course of study
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	DateRange   string `json:"dateRange"`
}

// Certification is a professional certificate
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
}

// UserProfile holds the personal details and the short lists shown beside the experience timeline
type UserProfile struct {
	Name               string          `json:"name"`
	Title              string          `json:"title"`
	Location           string          `json:"location"`
	Email              string          `json:"email" validate:"omitempty,email"`
	Phone              string          `json:"phone,omitempty"`
	LinkedIn           string          `json:"linkedin,omitempty" validate:"omitempty,url"`
	ProfileImageURL    string          `json:"profileImageUrl"`
	ProfileImageWebURL string          `json:"profileImageWebUrl,omitempty"`
	ProfileImagePDFURL string          `json:"profileImagePdfUrl,omitempty"`
	Summary            string          `json:"summary"`
	Languages          []Language      `json:"languages" validate:"dive"`
	Education          []Education     `json:"education"`
	Certifications     []Certification `json:"certifications"`
}

// NewUserProfile returns an empty profile whose lists encode as [] rather than null
func NewUserProfile() UserProfile {
	return UserProfile{
		Languages:      []Language{},
		Education:      []Education{},
		Certifications: []Certification{},
	}
}

// NormalizeProficiencies rewrites every language proficiency to its canonical spelling.
func (p *UserProfile) NormalizeProficiencies() error {
	for i := range p.Languages {
		canonical, err := ParseProficiency(string(p.Languages[i].Proficiency))
		if err != nil {
			return fmt.Errorf("languages[%d]: %w", i, err)
		}
		p.Languages[i].Proficiency = canonical
	}
	return nil
}

// Clone returns a copy that shares no slices with p
func (p UserProfile) Clone() UserProfile {
	out := p
	out.Languages = append([]Language{}, p.Languages...)
	out.Education = append([]Education{}, p.Education...)
	out.Certifications = append([]Certification{}, p.Certifications...)
	return out
}
