package types

// Resource names one of the three backing data files
type Resource string

// Allow-listed resources
const (
	ResourceExperiences Resource = "experiences-file"
	ResourceTopSkills   Resource = "topskills-file"
	ResourceProfile     Resource = "profile-file"
)

// Resources returns the allow-listed resources in a fixed order
func Resources() []Resource {
	return []Resource{ResourceExperiences, ResourceTopSkills, ResourceProfile}
}

// Bundle is everything the admin surface loads in one call
type Bundle struct {
	Experiences []ExperienceEntry `json:"experiences"`
	TopSkills   []string          `json:"topSkills"`
	ProfileData UserProfile       `json:"profileData"`
}

// Clone returns a deep copy of b
func (b Bundle) Clone() Bundle {
	out := Bundle{
		Experiences: make([]ExperienceEntry, len(b.Experiences)),
		TopSkills:   append([]string{}, b.TopSkills...),
		ProfileData: b.ProfileData.Clone(),
	}
	for i, e := range b.Experiences {
		out.Experiences[i] = e.Clone()
	}
	return out
}
