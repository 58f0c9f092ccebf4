package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	apperrors "github.com/Corphon/ReelBoard/internal/errors"
	"github.com/Corphon/ReelBoard/internal/models"
	"github.com/Corphon/ReelBoard/internal/storage"
)

type stubScripts struct {
	scenes []models.SceneInput
	err    error
	calls  int
}

func (s *stubScripts) GenerateScript(ctx context.Context, topic string) ([]models.SceneInput, error) {
	s.calls++
	return s.scenes, s.err
}

type countingImages struct {
	mu  sync.Mutex
	n   int
	err error
}

func (c *countingImages) ImageFor(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	c.n++
	return fmt.Sprintf("https://img.test/%s/%d", Keywords(text), c.n), nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	updates []*models.Project
}

func (r *recordingNotifier) ProjectUpdated(p *models.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, p)
}

type ProjectServiceSuite struct {
	suite.Suite
	scripts  *stubScripts
	images   *countingImages
	notifier *recordingNotifier
	svc      *ProjectService
	ctx      context.Context
}

func (s *ProjectServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.scripts = &stubScripts{scenes: []models.SceneInput{
		{ID: 1, Text: "Wake up early every day"},
		{ID: 2, Text: "Drink water before coffee"},
		{ID: 3, Text: "Stretch for five minutes"},
		{ID: 4, Text: "Plan your three priorities"},
	}}
	s.images = &countingImages{}
	s.notifier = &recordingNotifier{}
	s.svc = NewProjectService(storage.NewMemoryProjectStore(), s.scripts, s.images, s.notifier, nil)
}

func (s *ProjectServiceSuite) newProjectWithImages() *models.Project {
	p, err := s.svc.GenerateScript(s.ctx, "healthy morning routine")
	s.Require().NoError(err)

	texts := make([]SceneText, len(p.Scenes))
	for i, sc := range p.Scenes {
		texts[i] = SceneText{ID: sc.ID, Text: sc.Text}
	}
	p, err = s.svc.GenerateImages(s.ctx, p.ID, texts)
	s.Require().NoError(err)
	return p
}

func (s *ProjectServiceSuite) TestGenerateScriptCreatesProject() {
	p, err := s.svc.GenerateScript(s.ctx, "healthy morning routine")
	s.Require().NoError(err)

	s.Equal(models.StatusScriptGenerated, p.Status)
	s.Equal("healthy morning routine", p.Topic)
	s.Len(p.Scenes, 4)
	for _, sc := range p.Scenes {
		s.Equal(4.0, sc.Duration)
		s.NotEmpty(sc.Text)
		s.Empty(sc.ImageURL)
	}
	s.Len(s.notifier.updates, 1)
}

func (s *ProjectServiceSuite) TestShortTopicNeverCallsProvider() {
	_, err := s.svc.GenerateScript(s.ctx, "too short")
	s.Require().Error(err)
	s.True(apperrors.IsValidationError(err))
	s.Equal(MsgTopicTooShort, apperrors.UserMessage(err))
	s.Equal(0, s.scripts.calls)
}

func (s *ProjectServiceSuite) TestTopicLengthCountsCharacters() {
	// ten runes, more than ten bytes
	_, err := s.svc.GenerateScript(s.ctx, "ééééééééé!")
	s.NoError(err)
	s.Equal(1, s.scripts.calls)
}

func (s *ProjectServiceSuite) TestGenerateScriptPassesProviderError() {
	s.scripts.err = apperrors.NewThrottledError("API quota exceeded. Please try again later or check your Gemini API quota.", nil)
	_, err := s.svc.GenerateScript(s.ctx, "a perfectly fine topic")
	s.Equal(apperrors.ErrorTypeThrottled, apperrors.TypeOf(err))
}

func (s *ProjectServiceSuite) TestGenerateScriptEmptyResult() {
	s.scripts.scenes = nil
	_, err := s.svc.GenerateScript(s.ctx, "a perfectly fine topic")
	s.Require().Error(err)
	s.Equal(MsgNoScenes, apperrors.UserMessage(err))
}

func (s *ProjectServiceSuite) TestGenerateImagesKeepsDurations() {
	p, err := s.svc.GenerateScript(s.ctx, "healthy morning routine")
	s.Require().NoError(err)
	_, err = s.svc.UpdateSceneDuration(s.ctx, p.ID, 2, models.FloatPtr(7.5))
	s.Require().NoError(err)

	updated, err := s.svc.GenerateImages(s.ctx, p.ID, []SceneText{
		{ID: 2, Text: "Drink water before coffee"},
		{ID: 9, Text: "Brand new scene"},
	})
	s.Require().NoError(err)

	s.Equal(models.StatusImagesGenerated, updated.Status)
	s.Require().Len(updated.Scenes, 2)
	s.Equal(7.5, updated.Scenes[0].Duration)
	s.Equal(4.0, updated.Scenes[1].Duration)
	s.Contains(updated.Scenes[0].ImageURL, "drink,water")
	s.NotEmpty(updated.Scenes[1].ImageURL)
}

func (s *ProjectServiceSuite) TestGenerateImagesFailures() {
	_, err := s.svc.GenerateImages(s.ctx, "nope", nil)
	s.True(apperrors.IsNotFoundError(err))

	p, err := s.svc.GenerateScript(s.ctx, "healthy morning routine")
	s.Require().NoError(err)
	s.images.err = errors.New("boom")
	_, err = s.svc.GenerateImages(s.ctx, p.ID, []SceneText{{ID: 1, Text: "x"}})
	s.Require().Error(err)
	s.Equal(MsgImagesFailed, apperrors.UserMessage(err))
}

func (s *ProjectServiceSuite) TestRegenerateImageOnlyTouchesImage() {
	before := s.newProjectWithImages()

	after, err := s.svc.RegenerateImage(s.ctx, before.ID, 3)
	s.Require().NoError(err)

	s.Require().Len(after.Scenes, len(before.Scenes))
	for i := range before.Scenes {
		if before.Scenes[i].ID == 3 {
			s.NotEqual(before.Scenes[i].ImageURL, after.Scenes[i].ImageURL)
			s.Equal(before.Scenes[i].Text, after.Scenes[i].Text)
			s.Equal(before.Scenes[i].Duration, after.Scenes[i].Duration)
			continue
		}
		s.Equal(before.Scenes[i], after.Scenes[i])
	}
	s.Equal(before.Status, after.Status)
}

func (s *ProjectServiceSuite) TestRegenerateImageNotFound() {
	p := s.newProjectWithImages()

	_, err := s.svc.RegenerateImage(s.ctx, p.ID, 42)
	s.Equal(MsgSceneNotFound, apperrors.UserMessage(err))
	s.True(apperrors.IsNotFoundError(err))

	_, err = s.svc.RegenerateImage(s.ctx, "missing", 1)
	s.Equal(MsgProjectNotFound, apperrors.UserMessage(err))
}

func (s *ProjectServiceSuite) TestUpdateDurationOnlyTouchesDuration() {
	before := s.newProjectWithImages()

	after, err := s.svc.UpdateSceneDuration(s.ctx, before.ID, 1, models.FloatPtr(6.5))
	s.Require().NoError(err)

	for i := range before.Scenes {
		if before.Scenes[i].ID == 1 {
			s.Equal(6.5, after.Scenes[i].Duration)
			s.Equal(before.Scenes[i].ImageURL, after.Scenes[i].ImageURL)
			s.Equal(before.Scenes[i].Text, after.Scenes[i].Text)
			continue
		}
		s.Equal(before.Scenes[i], after.Scenes[i])
	}
}

func (s *ProjectServiceSuite) TestUpdateDurationNilKeepsValue() {
	before := s.newProjectWithImages()
	after, err := s.svc.UpdateSceneDuration(s.ctx, before.ID, 1, nil)
	s.Require().NoError(err)
	s.Equal(before.Scenes, after.Scenes)

	_, err = s.svc.UpdateSceneDuration(s.ctx, before.ID, 99, models.FloatPtr(3))
	s.True(apperrors.IsNotFoundError(err))
}

func (s *ProjectServiceSuite) TestUpdateScriptPreservesImages() {
	before := s.newProjectWithImages()

	after, err := s.svc.UpdateScript(s.ctx, before.ID, []models.SceneInput{
		{ID: 1, Text: "Rewritten first scene"},
		{ID: 2, Text: before.Scenes[1].Text, Duration: models.FloatPtr(2)},
	})
	s.Require().NoError(err)

	s.Require().Len(after.Scenes, 2)
	s.Equal("Rewritten first scene", after.Scenes[0].Text)
	s.Equal(before.Scenes[0].ImageURL, after.Scenes[0].ImageURL)
	s.Equal(before.Scenes[0].Duration, after.Scenes[0].Duration)
	s.Equal(before.Scenes[1].ImageURL, after.Scenes[1].ImageURL)
	s.Equal(2.0, after.Scenes[1].Duration)
}

func (s *ProjectServiceSuite) TestUpdateScriptUnknownProject() {
	_, err := s.svc.UpdateScript(s.ctx, "missing", []models.SceneInput{{ID: 1, Text: "a"}})
	s.True(apperrors.IsNotFoundError(err))
}

func (s *ProjectServiceSuite) TestNotifierSeesEveryMutation() {
	p := s.newProjectWithImages()
	_, err := s.svc.RegenerateImage(s.ctx, p.ID, 1)
	s.Require().NoError(err)

	s.Len(s.notifier.updates, 3)
	last := s.notifier.updates[2]
	s.Equal(p.ID, last.ID)
}

func TestProjectServiceSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceSuite))
}

func TestConcurrentDurationEditsAreSerialized(t *testing.T) {
	scripts := &stubScripts{scenes: []models.SceneInput{}}
	for i := 1; i <= 10; i++ {
		scripts.scenes = append(scripts.scenes, models.SceneInput{ID: i, Text: fmt.Sprintf("scene %d", i)})
	}
	svc := NewProjectService(storage.NewMemoryProjectStore(), scripts, &countingImages{}, nil, nil)
	ctx := context.Background()

	p, err := svc.GenerateScript(ctx, "concurrency in practice")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := svc.UpdateSceneDuration(ctx, p.ID, id, models.FloatPtr(float64(id)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	final, err := svc.GetProject(ctx, p.ID)
	require.NoError(t, err)
	for _, sc := range final.Scenes {
		assert.Equal(t, float64(sc.ID), sc.Duration)
	}
}

func TestValidateTopicCountsRawRunes(t *testing.T) {
	assert.NoError(t, ValidateTopic("  morning  "))
	assert.NoError(t, ValidateTopic("早上好世界早上好世界"))
	assert.True(t, apperrors.IsValidationError(ValidateTopic("早上好世界早上好世")))
	assert.True(t, apperrors.IsValidationError(ValidateTopic(" short ")))
}
