package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProficiency(t *testing.T) {
	tests := []struct {
		in      string
		want    LanguageProficiency
		wantErr bool
	}{
		{in: "Native", want: ProficiencyNative},
		{in: "native", want: ProficiencyNative},
		{in: "  PROFESSIONAL ", want: ProficiencyProfessional},
		{in: "Beginner", want: ProficiencyBeginner},
		{in: "Expert", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProficiency(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeProficiencies(t *testing.T) {
	p := UserProfile{Languages: []Language{
		{Name: "Bulgarian", Proficiency: "native"},
		{Name: "English", Proficiency: "Professional"},
	}}
	require.NoError(t, p.NormalizeProficiencies())
	assert.Equal(t, ProficiencyNative, p.Languages[0].Proficiency)
	assert.Equal(t, ProficiencyProfessional, p.Languages[1].Proficiency)

	p.Languages = append(p.Languages, Language{Name: "Klingon", Proficiency: "Expert"})
	err := p.NormalizeProficiencies()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "languages[2]")
}

func TestValidateProfile(t *testing.T) {
	p := &UserProfile{
		Name:      "Test User",
		Email:     "test@example.com",
		LinkedIn:  "https://www.linkedin.com/in/test/",
		Languages: []Language{{Name: "English", Proficiency: ProficiencyFluent}},
	}
	assert.NoError(t, ValidateProfile(p))

	p.Languages[0].Proficiency = "Expert"
	assert.Error(t, ValidateProfile(p))

	p.Languages[0].Proficiency = ProficiencyFluent
	p.Email = "not-an-email"
	assert.Error(t, ValidateProfile(p))
}

func TestUserProfile_JSONFieldNames(t *testing.T) {
	p := UserProfile{
		Name:               "Test User",
		ProfileImageURL:    "/uploads/a-web.jpg",
		ProfileImageWebURL: "/uploads/a-web.jpg",
		ProfileImagePDFURL: "/uploads/a-pdf.jpg",
		Languages:          []Language{},
		Education:          []Education{},
		Certifications:     []Certification{{Name: "CKA"}},
	}
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "profileImageUrl")
	assert.Contains(t, raw, "profileImageWebUrl")
	assert.Contains(t, raw, "profileImagePdfUrl")
	assert.NotContains(t, raw, "phone")
	assert.Equal(t, []any{map[string]any{"name": "CKA"}}, raw["certifications"])
}

func TestBundleClone_Independent(t *testing.T) {
	b := Bundle{
		Experiences: []ExperienceEntry{{Title: "Dev", Tags: []string{"Go"}}},
		TopSkills:   []string{"Go"},
		ProfileData: UserProfile{Languages: []Language{{Name: "English"}}},
	}
	c := b.Clone()
	c.Experiences[0].Tags[0] = "Rust"
	c.TopSkills[0] = "Rust"
	c.ProfileData.Languages[0].Name = "German"

	assert.Equal(t, "Go", b.Experiences[0].Tags[0])
	assert.Equal(t, "Go", b.TopSkills[0])
	assert.Equal(t, "English", b.ProfileData.Languages[0].Name)
}
