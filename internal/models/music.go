// internal/models/music.go
package models

// MusicTrack is an entry of the background music catalog
type MusicTrack struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// DefaultMusicTrackID is preselected by the audio step
const DefaultMusicTrackID = "upbeat1"

var musicCatalog = []MusicTrack{
	{ID: "upbeat1", Name: "Uplifting Morning", Category: "Inspirational"},
	{ID: "chill1", Name: "Calm Focus", Category: "Ambient"},
	{ID: "energetic1", Name: "High Energy", Category: "Upbeat"},
	{ID: "minimal1", Name: "Minimal Piano", Category: "Classical"},
}

// MusicCatalog returns a copy of the built-in tracks
func MusicCatalog() []MusicTrack {
	out := make([]MusicTrack, len(musicCatalog))
	copy(out, musicCatalog)
	return out
}

// FindMusicTrack looks a track up by id
func FindMusicTrack(id string) (MusicTrack, bool) {
	for _, t := range musicCatalog {
		if t.ID == id {
			return t, true
		}
	}
	return MusicTrack{}, false
}
