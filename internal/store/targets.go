package store

import (
	"github.com/jonathan/cv-admin/internal/schemas"
	"github.com/jonathan/cv-admin/internal/types"
)

type target struct {
	file   string
	schema string
	header string
}

var targets = map[types.Resource]target{
	types.ResourceExperiences: {
		file:   "cv-data.ts",
		schema: schemas.Experiences,
		header: "import { ExperienceEntry } from \"@/types\";\n\nexport const experiences: ExperienceEntry[] = ",
	},
	types.ResourceTopSkills: {
		file:   "topSkills.ts",
		schema: schemas.TopSkills,
		header: "export const topSkills = ",
	},
	types.ResourceProfile: {
		file:   "user-profile.ts",
		schema: schemas.Profile,
		header: "import { LanguageProficiency, UserProfile } from \"@/types/profile\";\n\nexport const userProfile: UserProfile = ",
	},
}

// aliases maps the on-disk file names the admin UI historically sent
var aliases = map[string]types.Resource{
	"cv-data.ts":      types.ResourceExperiences,
	"topSkills.ts":    types.ResourceTopSkills,
	"user-profile.ts": types.ResourceProfile,
}

// ResolveTarget maps a save target name to its resource. Matching is exact.
func ResolveTarget(name string) (types.Resource, error) {
	if _, ok := targets[types.Resource(name)]; ok {
		return types.Resource(name), nil
	}
	if r, ok := aliases[name]; ok {
		return r, nil
	}
	return "", &InvalidTargetError{Target: name}
}

// FileName returns the data file name backing r
func FileName(r types.Resource) string {
	return targets[r].file
}
