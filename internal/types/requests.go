package types

import "encoding/json"

// LoginRequest is the admin login body
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// SaveRequest is the body of a resource save. The admin UI has always sent
// "file" and "data"; "target" and "payload" are accepted as well.
type SaveRequest struct {
	Target          string          `json:"target,omitempty"`
	File            string          `json:"file,omitempty"`
	Payload         json.RawMessage `json:"payload,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
	ExpectedVersion string          `json:"expectedVersion,omitempty"`
}

// TargetName returns whichever target field was supplied
func (r SaveRequest) TargetName() string {
	if r.Target != "" {
		return r.Target
	}
	return r.File
}

// Body returns whichever payload field was supplied
func (r SaveRequest) Body() json.RawMessage {
	if len(r.Payload) > 0 {
		return r.Payload
	}
	return r.Data
}

// LoadResponse is the body returned by the resource load endpoint
type LoadResponse struct {
	Bundle
	Versions map[Resource]string `json:"versions"`
}

// TopSkillsRequest optionally overrides the experiences to summarize
type TopSkillsRequest struct {
	Experiences []ExperienceEntry `json:"experiences,omitempty"`
}

// TopSkillsResponse carries a generated top-skills list
type TopSkillsResponse struct {
	TopSkills []string `json:"topSkills"`
}
