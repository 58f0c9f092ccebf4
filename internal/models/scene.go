// internal/models/scene.go
package models

// DefaultSceneDuration 场景默认时长（秒）
const DefaultSceneDuration = 4.0

// Duration bounds enforced by editors. The store accepts any value.
const (
	MinSceneDuration  = 1.0
	MaxSceneDuration  = 10.0
	SceneDurationStep = 0.5
)

// Scene is one narrated unit of the video
type Scene struct {
	ID       int     `json:"id"`
	Text     string  `json:"text"`
	ImageURL string  `json:"imageUrl,omitempty"`
	Duration float64 `json:"duration"` // seconds
}

// SceneInput carries an incoming scene. Nil pointer fields mean "not provided"
// and fall back to whatever the store already holds for the same id.
type SceneInput struct {
	ID       int      `json:"id"`
	Text     string   `json:"text"`
	ImageURL *string  `json:"imageUrl,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
}

// ClampDuration keeps an edited duration inside the editor bounds
func ClampDuration(d float64) float64 {
	if d < MinSceneDuration {
		return MinSceneDuration
	}
	if d > MaxSceneDuration {
		return MaxSceneDuration
	}
	return d
}

// FindScene returns the scene with the given id
func FindScene(scenes []Scene, id int) (Scene, bool) {
	for _, s := range scenes {
		if s.ID == id {
			return s, true
		}
	}
	return Scene{}, false
}

// TotalDuration sums the declared durations in seconds
func TotalDuration(scenes []Scene) float64 {
	total := 0.0
	for _, s := range scenes {
		total += s.Duration
	}
	return total
}

// Durations lists scene durations in playback order
func Durations(scenes []Scene) []float64 {
	out := make([]float64, len(scenes))
	for i, s := range scenes {
		out[i] = s.Duration
	}
	return out
}

// DuplicateSceneID reports the first id that appears twice, if any
func DuplicateSceneID(ids []int) (int, bool) {
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return 0, false
}

// StringPtr and FloatPtr help build partial updates.
func StringPtr(s string) *string { return &s }

func FloatPtr(f float64) *float64 { return &f }
