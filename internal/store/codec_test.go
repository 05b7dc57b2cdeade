package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/cv-admin/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_TopSkills(t *testing.T) {
	got, err := Encode(types.ResourceTopSkills, []string{"Go", "SQL"})
	require.NoError(t, err)
	assert.Equal(t, "export const topSkills = [\n  \"Go\",\n  \"SQL\"\n];\n", string(got))
}

func TestEncode_ExperiencesHeaderAndNoHTMLEscape(t *testing.T) {
	exps := []types.ExperienceEntry{{
		Title:       "Dev",
		Company:     "R&D",
		DateRange:   "2020",
		Description: "<p>x</p>",
		Tags:        []string{},
	}}
	got, err := Encode(types.ResourceExperiences, exps)
	require.NoError(t, err)

	s := string(got)
	assert.True(t, len(s) > 0)
	assert.Contains(t, s, "import { ExperienceEntry } from \"@/types\";\n\nexport const experiences: ExperienceEntry[] = [")
	assert.Contains(t, s, `"company": "R&D"`)
	assert.Contains(t, s, `"description": "<p>x</p>"`)
	assert.Contains(t, s, "\n];\n")
}

func TestEncode_UnknownResource(t *testing.T) {
	_, err := Encode(types.Resource("secrets"), []string{})
	var target *InvalidTargetError
	assert.ErrorAs(t, err, &target)
}

func TestExtractJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		content, err := Encode(types.ResourceTopSkills, []string{"a = b"})
		require.NoError(t, err)
		literal, err := ExtractJSON(content)
		require.NoError(t, err)
		assert.JSONEq(t, `["a = b"]`, string(literal))
	})

	t.Run("hand written file", func(t *testing.T) {
		content := []byte("import { X } from \"y\";\n\nexport const topSkills = [\"Go\"]\n")
		literal, err := ExtractJSON(content)
		require.NoError(t, err)
		assert.Equal(t, `["Go"]`, string(literal))
	})

	tests := []struct {
		name    string
		content string
	}{
		{"no export", `const x = [];`},
		{"no initializer", `export const x;`},
		{"empty initializer", `export const x = ;`},
		{"not json", `export const x = [foo, bar];`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractJSON([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestVersion(t *testing.T) {
	a := Version([]byte("one"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Version([]byte("one")))
	assert.NotEqual(t, a, Version([]byte("two")))
}

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name string
		want types.Resource
	}{
		{"experiences-file", types.ResourceExperiences},
		{"topskills-file", types.ResourceTopSkills},
		{"profile-file", types.ResourceProfile},
		{"cv-data.ts", types.ResourceExperiences},
		{"topSkills.ts", types.ResourceTopSkills},
		{"user-profile.ts", types.ResourceProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTarget(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "../etc/passwd", "Experiences-File", "data/cv-data.ts", " cv-data.ts"} {
		_, err := ResolveTarget(bad)
		var target *InvalidTargetError
		assert.ErrorAs(t, err, &target, "target %q", bad)
	}
}

func TestOSFileSystem_WriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "topSkills.ts")

	fsys := OSFileSystem{}
	require.NoError(t, fsys.WriteFileAtomic(path, []byte("first"), 0o644))
	require.NoError(t, fsys.WriteFileAtomic(path, []byte("second"), 0o644))

	got, err := fsys.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}
