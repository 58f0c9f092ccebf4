// internal/services/project_service.go
package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	apperrors "github.com/Corphon/ReelBoard/internal/errors"
	"github.com/Corphon/ReelBoard/internal/models"
	"github.com/Corphon/ReelBoard/internal/storage"
	"github.com/Corphon/ReelBoard/internal/utils"
)

// MinTopicLength is the shortest topic accepted, in characters
const MinTopicLength = 10

// Client-facing messages
const (
	MsgTopicTooShort    = "Invalid request: Topic must be at least 10 characters"
	MsgInvalidRequest   = "Invalid request data"
	MsgProjectNotFound  = "Project not found"
	MsgSceneNotFound    = "Scene not found"
	MsgNoScenes         = "AI did not generate any scenes. Please try a different topic."
	MsgImagesFailed     = "Failed to generate images"
	MsgRegenerateFailed = "Failed to regenerate image"
	MsgDurationFailed   = "Failed to update duration"
	MsgScriptFailed     = "Failed to update script"
)

// ScriptGenerator produces the initial scene list for a topic
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, topic string) ([]models.SceneInput, error)
}

// ProjectNotifier is told about every successfully stored project change
type ProjectNotifier interface {
	ProjectUpdated(project *models.Project)
}

// SceneText is the {id, text} pair image assignment works from
type SceneText struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// ProjectService orchestrates generation and edits over the store.
// Read-modify-write sequences on one project are serialized.
type ProjectService struct {
	store    storage.ProjectStore
	scripts  ScriptGenerator
	images   ImageSource
	locks    *LockManager
	notifier ProjectNotifier
	metrics  *utils.APIMetrics
}

// NewProjectService creates the service. notifier and metrics may be nil.
func NewProjectService(store storage.ProjectStore, scripts ScriptGenerator, images ImageSource,
	notifier ProjectNotifier, metrics *utils.APIMetrics) *ProjectService {
	return &ProjectService{
		store:    store,
		scripts:  scripts,
		images:   images,
		locks:    NewLockManager(),
		notifier: notifier,
		metrics:  metrics,
	}
}

// ValidateTopic enforces the minimum topic length
func ValidateTopic(topic string) error {
	if utf8.RuneCountInString(topic) < MinTopicLength {
		return apperrors.NewValidationError(MsgTopicTooShort, nil)
	}
	return nil
}

// GenerateScript validates topic, asks for a script and stores a new project.
// The provider is never called for an invalid topic.
func (s *ProjectService) GenerateScript(ctx context.Context, topic string) (*models.Project, error) {
	if err := ValidateTopic(topic); err != nil {
		return nil, err
	}

	scenes, err := s.scripts.GenerateScript(ctx, topic)
	if err != nil {
		return nil, err
	}
	if len(scenes) == 0 {
		return nil, apperrors.NewGenerationError(MsgNoScenes, nil)
	}

	input := models.ProjectInput{
		Topic:  topic,
		Scenes: make([]models.SceneInput, len(scenes)),
		Status: models.StatusScriptGenerated,
	}
	for i, sc := range scenes {
		input.Scenes[i] = models.SceneInput{ID: sc.ID, Text: sc.Text, Duration: models.FloatPtr(models.DefaultSceneDuration)}
	}

	project, err := s.store.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	utils.GetLogger().Info("Project created", map[string]interface{}{
		"project_id": project.ID,
		"scenes":     len(project.Scenes),
	})
	s.changed("generate_script", project)
	return project, nil
}

// GenerateImages replaces the scene list with the given scenes, each with a
// fresh image and the duration previously stored for its id (4 if new).
func (s *ProjectService) GenerateImages(ctx context.Context, projectID string, scenes []SceneText) (*models.Project, error) {
	var updated *models.Project
	err := s.locks.ExecuteWithProjectLock(projectID, func() error {
		project, err := s.store.Get(ctx, projectID)
		if err != nil {
			return err
		}

		next := make([]models.SceneInput, 0, len(scenes))
		for _, sc := range scenes {
			url, err := s.images.ImageFor(ctx, sc.Text)
			if err != nil {
				return apperrors.NewProcessingError(MsgImagesFailed, err)
			}
			duration := models.DefaultSceneDuration
			if prev, ok := models.FindScene(project.Scenes, sc.ID); ok && prev.Duration != 0 {
				duration = prev.Duration
			}
			next = append(next, models.SceneInput{
				ID:       sc.ID,
				Text:     sc.Text,
				ImageURL: models.StringPtr(url),
				Duration: models.FloatPtr(duration),
			})
		}

		status := models.StatusImagesGenerated
		updated, err = s.store.Update(ctx, projectID, models.ProjectUpdate{Scenes: next, Status: &status})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.changed("generate_images", updated)
	return updated, nil
}

// RegenerateImage replaces one scene's image; nothing else changes
func (s *ProjectService) RegenerateImage(ctx context.Context, projectID string, sceneID int) (*models.Project, error) {
	var updated *models.Project
	err := s.locks.ExecuteWithProjectLock(projectID, func() error {
		project, err := s.store.Get(ctx, projectID)
		if err != nil {
			return err
		}
		scene, ok := models.FindScene(project.Scenes, sceneID)
		if !ok {
			return sceneNotFound(projectID, sceneID)
		}

		url, err := s.images.ImageFor(ctx, scene.Text)
		if err != nil {
			return apperrors.NewProcessingError(MsgRegenerateFailed, err)
		}

		next := models.ScenesAsInput(project.Scenes)
		for i := range next {
			if next[i].ID == sceneID {
				next[i].ImageURL = models.StringPtr(url)
			}
		}
		updated, err = s.store.Update(ctx, projectID, models.ProjectUpdate{Scenes: next})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.changed("regenerate_image", updated)
	return updated, nil
}

// UpdateSceneDuration sets one scene's duration. A nil duration leaves the
// stored value unchanged.
func (s *ProjectService) UpdateSceneDuration(ctx context.Context, projectID string, sceneID int, duration *float64) (*models.Project, error) {
	var updated *models.Project
	err := s.locks.ExecuteWithProjectLock(projectID, func() error {
		project, err := s.store.Get(ctx, projectID)
		if err != nil {
			return err
		}
		if _, ok := models.FindScene(project.Scenes, sceneID); !ok {
			return sceneNotFound(projectID, sceneID)
		}

		next := models.ScenesAsInput(project.Scenes)
		for i := range next {
			if next[i].ID == sceneID && duration != nil {
				next[i].Duration = models.FloatPtr(*duration)
			}
		}
		updated, err = s.store.Update(ctx, projectID, models.ProjectUpdate{Scenes: next})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.changed("update_duration", updated)
	return updated, nil
}

// UpdateScript replaces the scene list, merging omitted fields by id
func (s *ProjectService) UpdateScript(ctx context.Context, projectID string, scenes []models.SceneInput) (*models.Project, error) {
	if scenes == nil {
		scenes = []models.SceneInput{}
	}

	var updated *models.Project
	err := s.locks.ExecuteWithProjectLock(projectID, func() error {
		var err error
		updated, err = s.store.Update(ctx, projectID, models.ProjectUpdate{Scenes: scenes})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.changed("update_script", updated)
	return updated, nil
}

// GetProject 获取项目
func (s *ProjectService) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	return s.store.Get(ctx, projectID)
}

// ListProjects returns every project, newest first
func (s *ProjectService) ListProjects(ctx context.Context) ([]*models.Project, error) {
	return s.store.List(ctx)
}

func (s *ProjectService) changed(operation string, project *models.Project) {
	s.metrics.RecordProjectMutation(operation)
	if s.notifier != nil {
		s.notifier.ProjectUpdated(project.Clone())
	}
}

func sceneNotFound(projectID string, sceneID int) error {
	return apperrors.NewNotFoundError(MsgSceneNotFound, fmt.Errorf("scene %d in project %s", sceneID, projectID))
}
