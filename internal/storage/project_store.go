// internal/storage/project_store.go
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Corphon/ReelBoard/internal/errors"
	"github.com/Corphon/ReelBoard/internal/models"
)

// ProjectStore keeps projects keyed by id
type ProjectStore interface {
	Create(ctx context.Context, input models.ProjectInput) (*models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Update(ctx context.Context, id string, update models.ProjectUpdate) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
}

// MemoryProjectStore 进程内项目存储，进程退出即丢失
type MemoryProjectStore struct {
	projects map[string]*models.Project
	mutex    sync.RWMutex
	now      func() time.Time
	newID    func() string
}

// StoreOption configures a MemoryProjectStore
type StoreOption func(*MemoryProjectStore)

// WithClock overrides the creation timestamp source
func WithClock(now func() time.Time) StoreOption {
	return func(s *MemoryProjectStore) { s.now = now }
}

// WithIDGenerator overrides uuid generation
func WithIDGenerator(gen func() string) StoreOption {
	return func(s *MemoryProjectStore) { s.newID = gen }
}

// NewMemoryProjectStore 创建内存存储
func NewMemoryProjectStore(opts ...StoreOption) *MemoryProjectStore {
	s := &MemoryProjectStore{
		projects: make(map[string]*models.Project),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new project with defaults applied
func (s *MemoryProjectStore) Create(ctx context.Context, input models.ProjectInput) (*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scenes, err := mergeScenes(nil, input.Scenes)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		Topic:        input.Topic,
		Scenes:       scenes,
		VoiceoverURL: input.VoiceoverURL,
		MusicTrackID: input.MusicTrackID,
		VoiceVolume:  models.DefaultVoiceVolume,
		MusicVolume:  models.DefaultMusicVolume,
		VideoURL:     input.VideoURL,
		Status:       models.StatusDraft,
	}
	if input.VoiceVolume != nil {
		project.VoiceVolume = *input.VoiceVolume
	}
	if input.MusicVolume != nil {
		project.MusicVolume = *input.MusicVolume
	}
	if input.Status != "" {
		if !input.Status.Valid() {
			return nil, invalidStatus(input.Status)
		}
		project.Status = input.Status
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	project.ID = s.newID()
	project.CreatedAt = s.now()
	s.projects[project.ID] = project

	return project.Clone(), nil
}

// Get returns a copy of the project
func (s *MemoryProjectStore) Get(ctx context.Context, id string) (*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	project, exists := s.projects[id]
	if !exists {
		return nil, projectNotFound(id)
	}
	return project.Clone(), nil
}

// Update applies a partial update. id and createdAt never change.
func (s *MemoryProjectStore) Update(ctx context.Context, id string, update models.ProjectUpdate) (*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing, exists := s.projects[id]
	if !exists {
		return nil, projectNotFound(id)
	}

	next := existing.Clone()
	if update.Scenes != nil {
		scenes, err := mergeScenes(existing.Scenes, update.Scenes)
		if err != nil {
			return nil, err
		}
		next.Scenes = scenes
	}
	if update.Topic != nil {
		next.Topic = *update.Topic
	}
	if update.VoiceoverURL != nil {
		next.VoiceoverURL = *update.VoiceoverURL
	}
	if update.MusicTrackID != nil {
		next.MusicTrackID = *update.MusicTrackID
	}
	if update.VoiceVolume != nil {
		next.VoiceVolume = *update.VoiceVolume
	}
	if update.MusicVolume != nil {
		next.MusicVolume = *update.MusicVolume
	}
	if update.VideoURL != nil {
		next.VideoURL = *update.VideoURL
	}
	if update.Status != nil {
		if !update.Status.Valid() {
			return nil, invalidStatus(*update.Status)
		}
		next.Status = *update.Status
	}

	s.projects[id] = next
	return next.Clone(), nil
}

// List returns every project, newest first
func (s *MemoryProjectStore) List(ctx context.Context) ([]*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mutex.RLock()
	out := make([]*models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p.Clone())
	}
	s.mutex.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// mergeScenes 用新场景列表替换旧列表，缺省字段回退到同 id 的旧场景
func mergeScenes(previous []models.Scene, incoming []models.SceneInput) ([]models.Scene, error) {
	ids := make([]int, len(incoming))
	for i, in := range incoming {
		ids[i] = in.ID
	}
	if dup, found := models.DuplicateSceneID(ids); found {
		return nil, apperrors.NewValidationError("Invalid request data",
			fmt.Errorf("duplicate scene id %d", dup))
	}

	byID := make(map[int]models.Scene, len(previous))
	for _, s := range previous {
		byID[s.ID] = s
	}

	scenes := make([]models.Scene, 0, len(incoming))
	for _, in := range incoming {
		prev, hadPrev := byID[in.ID]
		scene := models.Scene{ID: in.ID, Text: in.Text, Duration: models.DefaultSceneDuration}

		switch {
		case in.ImageURL != nil:
			scene.ImageURL = *in.ImageURL
		case hadPrev:
			scene.ImageURL = prev.ImageURL
		}

		switch {
		case in.Duration != nil:
			scene.Duration = *in.Duration
		case hadPrev:
			scene.Duration = prev.Duration
		}

		scenes = append(scenes, scene)
	}
	return scenes, nil
}

func invalidStatus(status models.ProjectStatus) error {
	return apperrors.NewValidationError("Invalid request data", fmt.Errorf("unknown status %q", status))
}

func projectNotFound(id string) error {
	return apperrors.NewNotFoundError("Project not found", fmt.Errorf("project %s", id))
}
