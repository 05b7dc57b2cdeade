package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jonathan/cv-admin/internal/listedit"
	"github.com/jonathan/cv-admin/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T) (*Gateway, *memFS) {
	t.Helper()
	mem := newMemFS()
	return NewGateway(Options{DataDir: "data", Development: true, FS: mem}), mem
}

func sampleExperiences() []types.ExperienceEntry {
	return []types.ExperienceEntry{
		{Title: "Backend Developer", Company: "Delasport", DateRange: "2024 - 2025", Location: "Sofia", Description: "<p>R&amp;D team</p>", Tags: []string{"PHP", "Laravel"}},
		{Title: "Backend Developer", Company: "CredoWeb", DateRange: "2022 - 2024", Description: "<p>APIs</p>", Tags: []string{"PHP", "MySQL"}},
		{Title: "Developer", Company: "Acme", DateRange: "2019 - 2022", Description: "plain text", Tags: []string{"Go"}},
		{Title: "Intern", Company: "Initech", DateRange: "2018", Description: "", Tags: []string{}},
	}
}

func sampleProfile() types.UserProfile {
	p := types.NewUserProfile()
	p.Name = "Test User"
	p.Title = "Engineer"
	p.Location = "Sofia"
	p.Email = "test@example.com"
	p.Languages = []types.Language{{Name: "English", Proficiency: types.ProficiencyFluent}}
	return p
}

func TestLoad_MissingFilesAreEmpty(t *testing.T) {
	g, _ := newTestGateway(t)

	snap, err := g.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snap.Bundle.Experiences)
	assert.Empty(t, snap.Bundle.Experiences)
	assert.NotNil(t, snap.Bundle.TopSkills)
	assert.NotNil(t, snap.Bundle.ProfileData.Languages)
	for _, r := range types.Resources() {
		assert.Equal(t, "", snap.Versions[r])
	}
}

func TestModeRestricted_NoIO(t *testing.T) {
	mem := newMemFS()
	g := NewGateway(Options{DataDir: "data", Development: false, Mode: "production", FS: mem})

	_, err := g.Load(context.Background())
	var restricted *ModeRestrictedError
	require.ErrorAs(t, err, &restricted)
	assert.Contains(t, err.Error(), "production")

	_, err = g.Save(context.Background(), "topskills-file", []byte(`["Go"]`), "")
	require.ErrorAs(t, err, &restricted)

	assert.Equal(t, 0, mem.reads)
	assert.Equal(t, 0, mem.writes)
}

func TestSave_InvalidTargetPerformsNoWrites(t *testing.T) {
	g, mem := newTestGateway(t)

	for _, target := range []string{"../../etc/passwd", "secrets.ts", ""} {
		_, err := g.Save(context.Background(), target, []byte(`["Go"]`), "")
		var invalid *InvalidTargetError
		require.ErrorAs(t, err, &invalid)
	}
	assert.Equal(t, 0, mem.writes)
	assert.Equal(t, 0, mem.reads)
	assert.Empty(t, mem.files)
}

func TestSave_PayloadErrors(t *testing.T) {
	g, mem := newTestGateway(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		target  string
		payload string
	}{
		{"missing", "topskills-file", ""},
		{"wrong shape", "topskills-file", `{"a":1}`},
		{"unknown experience field", "experiences-file", `[{"title":"a","company":"b","dateRange":"c","description":"","tags":[],"editIndex":2}]`},
		{"unknown proficiency", "profile-file", `{"name":"n","title":"t","location":"l","email":"","profileImageUrl":"","summary":"","languages":[{"name":"x","proficiency":"Superb"}],"education":[],"certifications":[]}`},
		{"bad email", "profile-file", `{"name":"n","title":"t","location":"l","email":"nope","profileImageUrl":"","summary":"","languages":[],"education":[],"certifications":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Save(ctx, tt.target, []byte(tt.payload), "")
			var payloadErr *PayloadError
			assert.ErrorAs(t, err, &payloadErr)
		})
	}
	assert.Equal(t, 0, mem.writes)
}

func TestSave_NormalizesProficiency(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	payload := `{"name":"n","title":"t","location":"l","email":"n@example.com","profileImageUrl":"/uploads/a.jpg","summary":"","languages":[{"name":"Bulgarian","proficiency":"native"},{"name":"English","proficiency":"PROFESSIONAL"}],"education":[],"certifications":[]}`
	_, err := g.Save(ctx, "user-profile.ts", []byte(payload), "")
	require.NoError(t, err)

	profile, _, err := g.LoadProfile(ctx)
	require.NoError(t, err)
	require.Len(t, profile.Languages, 2)
	assert.Equal(t, types.ProficiencyNative, profile.Languages[0].Proficiency)
	assert.Equal(t, types.ProficiencyProfessional, profile.Languages[1].Proficiency)
}

func TestSave_WriteFailure(t *testing.T) {
	g, mem := newTestGateway(t)
	mem.err = errors.New("disk full")

	_, err := g.SaveTopSkills(context.Background(), []string{"Go"}, "")
	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSave_Conflict(t *testing.T) {
	g, mem := newTestGateway(t)
	ctx := context.Background()

	_, err := g.SaveTopSkills(ctx, []string{"Go"}, "")
	require.NoError(t, err)
	_, version, err := g.LoadTopSkills(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, version)

	// someone else edits the file
	_, err = g.SaveTopSkills(ctx, []string{"Rust"}, "")
	require.NoError(t, err)
	writes := mem.writes

	_, err = g.SaveTopSkills(ctx, []string{"Go", "SQL"}, version)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, writes, mem.writes)

	_, current, err := g.LoadTopSkills(ctx)
	require.NoError(t, err)
	_, err = g.SaveTopSkills(ctx, []string{"Go", "SQL"}, current)
	assert.NoError(t, err)
}

func TestSave_ConflictWhenFileMissing(t *testing.T) {
	g, _ := newTestGateway(t)
	_, err := g.SaveTopSkills(context.Background(), []string{"Go"}, "abc")
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestSave_ReturnsVersionOfWrittenBytes(t *testing.T) {
	g, mem := newTestGateway(t)
	ctx := context.Background()

	first, err := g.SaveTopSkills(ctx, []string{"Go"}, "")
	require.NoError(t, err)
	assert.Equal(t, Version(mem.files[g.Path(types.ResourceTopSkills)]), first)

	// a later writer must not leak into the version reported for this save
	second, err := g.SaveTopSkills(ctx, []string{"Go", "SQL"}, first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	_, err = g.SaveTopSkills(ctx, []string{"Rust"}, "")
	require.NoError(t, err)

	want, err := Encode(types.ResourceTopSkills, []string{"Go", "SQL"})
	require.NoError(t, err)
	assert.Equal(t, Version(want), second)

	_, loaded, err := g.LoadTopSkills(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, second, loaded)
}

func TestSaveRequest_LegacyFields(t *testing.T) {
	g, mem := newTestGateway(t)
	req := types.SaveRequest{File: "topSkills.ts", Data: []byte(`["Go","SQL"]`)}

	_, err := g.SaveRequest(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "export const topSkills = [\n  \"Go\",\n  \"SQL\"\n];\n", string(mem.files[g.Path(types.ResourceTopSkills)]))
}

func TestLoad_CorruptFile(t *testing.T) {
	g, mem := newTestGateway(t)
	mem.files[g.Path(types.ResourceTopSkills)] = []byte("export const topSkills = [oops];\n")

	_, err := g.Load(context.Background())
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestEndToEnd_EditExperienceAtIndex2(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	_, err := g.SaveExperiences(ctx, sampleExperiences(), "")
	require.NoError(t, err)
	_, err = g.SaveTopSkills(ctx, []string{"PHP"}, "")
	require.NoError(t, err)
	_, err = g.SaveProfile(ctx, sampleProfile(), "")
	require.NoError(t, err)

	snap, err := g.Load(ctx)
	require.NoError(t, err)
	before := snap.Bundle.Clone()

	draft := listedit.Edit(snap.Bundle.Experiences[2].Clone(), 2)
	draft.Record.Title = "Senior Developer"
	edited := listedit.Save(draft, snap.Bundle.Experiences)

	payload, err := json.Marshal(edited)
	require.NoError(t, err)
	_, err = g.Save(ctx, "experiences-file", payload, snap.Versions[types.ResourceExperiences])
	require.NoError(t, err)

	after, err := g.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Senior Developer", after.Bundle.Experiences[2].Title)

	want := before.Experiences
	want[2].Title = "Senior Developer"
	if diff := cmp.Diff(want, after.Bundle.Experiences); diff != "" {
		t.Errorf("experiences mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, before.TopSkills, after.Bundle.TopSkills)
	assert.Equal(t, before.ProfileData, after.Bundle.ProfileData)
	assert.NotEqual(t, snap.Versions[types.ResourceExperiences], after.Versions[types.ResourceExperiences])
	assert.Equal(t, snap.Versions[types.ResourceProfile], after.Versions[types.ResourceProfile])
}
