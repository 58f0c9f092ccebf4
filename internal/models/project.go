// internal/models/project.go
package models

import "time"

// ProjectStatus is a coarse progress marker. Advisory only: no transition is
// validated anywhere.
type ProjectStatus string

const (
	StatusDraft           ProjectStatus = "draft"
	StatusScriptGenerated ProjectStatus = "script_generated"
	StatusImagesGenerated ProjectStatus = "images_generated"
	StatusAudioGenerated  ProjectStatus = "audio_generated"
	StatusVideoReady      ProjectStatus = "video_ready"
)

// Project defaults
const (
	DefaultVoiceVolume = 100.0
	DefaultMusicVolume = 30.0
)

// Valid reports whether s is one of the known statuses
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusScriptGenerated, StatusImagesGenerated, StatusAudioGenerated, StatusVideoReady:
		return true
	}
	return false
}

// Project aggregates everything about one video being built
type Project struct {
	ID           string        `json:"id"`
	Topic        string        `json:"topic"`
	Scenes       []Scene       `json:"scenes"`
	VoiceoverURL string        `json:"voiceoverUrl,omitempty"`
	MusicTrackID string        `json:"musicTrackId,omitempty"`
	VoiceVolume  float64       `json:"voiceVolume"`
	MusicVolume  float64       `json:"musicVolume"`
	VideoURL     string        `json:"videoUrl,omitempty"`
	Status       ProjectStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Clone returns a deep copy so callers never share the scene slice
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Scenes = make([]Scene, len(p.Scenes))
	copy(cp.Scenes, p.Scenes)
	return &cp
}

// ProjectInput holds the fields of a project at creation time.
// Zero values pick up the defaults.
type ProjectInput struct {
	Topic        string
	Scenes       []SceneInput
	VoiceoverURL string
	MusicTrackID string
	VoiceVolume  *float64
	MusicVolume  *float64
	VideoURL     string
	Status       ProjectStatus
}

// ProjectUpdate is a partial update. Nil fields are left untouched; a non-nil
// Scenes replaces the scene list using the merge rules of the store.
type ProjectUpdate struct {
	Topic        *string
	Scenes       []SceneInput
	VoiceoverURL *string
	MusicTrackID *string
	VoiceVolume  *float64
	MusicVolume  *float64
	VideoURL     *string
	Status       *ProjectStatus
}

// ScenesAsInput converts stored scenes to inputs carrying every field
func ScenesAsInput(scenes []Scene) []SceneInput {
	out := make([]SceneInput, len(scenes))
	for i, s := range scenes {
		in := SceneInput{ID: s.ID, Text: s.Text, Duration: FloatPtr(s.Duration)}
		if s.ImageURL != "" {
			in.ImageURL = StringPtr(s.ImageURL)
		}
		out[i] = in
	}
	return out
}
