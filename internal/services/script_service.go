// internal/services/script_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	apperrors "github.com/Corphon/ReelBoard/internal/errors"
	"github.com/Corphon/ReelBoard/internal/models"
	"github.com/Corphon/ReelBoard/internal/utils"
)

// Messages returned to the client for provider failures
const (
	msgInvalidAPIKey     = "Invalid API key. Please check your Gemini API key configuration."
	msgQuotaExceeded     = "API quota exceeded. Please try again later or check your Gemini API quota."
	msgMalformedResponse = "AI returned an invalid response format. Please try again with a different topic."
	msgGenerationFailed  = "Failed to generate script. Please try again."
	msgInvalidScript     = "Invalid script format: expected an array of scenes"
	msgInvalidScene      = "Invalid scene format: each scene must have an id (number) and text (string)"
)

const scriptPromptTemplate = `Create a short video script for social media (Instagram Reels/TikTok) about: "%s"

Requirements:
- Create 4-5 scenes (each 15-25 words)
- Each scene should be engaging and visual
- Write in a conversational, energetic style
- Keep total length under 60 seconds when spoken
- Focus on practical, actionable content

Format your response as a JSON array:
[
  {"id": 1, "text": "Scene 1 text here..."},
  {"id": 2, "text": "Scene 2 text here..."},
  ...
]

Only return the JSON array, no additional text.`

const imagePromptTemplate = `Create a detailed image description for this video scene: "%s"

Requirements:
- Describe a realistic, high-quality photo
- Be specific about composition, lighting, and mood
- Keep it under 100 words
- Make it suitable for stock image search

Only return the image description, no additional text.`

// Completer is the slice of LLMService the script generator needs
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ScriptService 调用生成模型把主题变成分镜脚本
type ScriptService struct {
	llm Completer
}

// NewScriptService creates a ScriptService
func NewScriptService(llm Completer) *ScriptService {
	return &ScriptService{llm: llm}
}

// GenerateScript asks the provider for a scene list about topic. The reply is
// parsed strictly; any deviation becomes a classified AppError.
func (s *ScriptService) GenerateScript(ctx context.Context, topic string) ([]models.SceneInput, error) {
	reply, err := s.llm.Complete(ctx, fmt.Sprintf(scriptPromptTemplate, topic))
	if err != nil {
		return nil, classifyProviderError(err)
	}

	scenes, err := ParseScript(reply)
	if err != nil {
		utils.GetLogger().Warn("Rejected script reply", map[string]interface{}{
			"topic": topic,
			"error": err.Error(),
		})
		return nil, err
	}

	utils.GetLogger().Info("Script generated", map[string]interface{}{
		"topic":  topic,
		"scenes": len(scenes),
	})
	return scenes, nil
}

// GenerateImagePrompt asks the provider for a stock-photo description of one scene
func (s *ScriptService) GenerateImagePrompt(ctx context.Context, sceneText string) (string, error) {
	reply, err := s.llm.Complete(ctx, fmt.Sprintf(imagePromptTemplate, sceneText))
	if err != nil {
		return "", classifyProviderError(err)
	}
	return strings.TrimSpace(reply), nil
}

// ParseScript turns a raw reply into scenes: fences stripped, strict JSON,
// non-empty array of {id: non-zero integer, text: non-empty string}, unique ids.
func ParseScript(reply string) ([]models.SceneInput, error) {
	var decoded any
	if err := json.Unmarshal([]byte(StripCodeFences(reply)), &decoded); err != nil {
		return nil, apperrors.NewMalformedResponseError(msgMalformedResponse, err)
	}

	items, ok := decoded.([]any)
	if !ok || len(items) == 0 {
		return nil, apperrors.NewInvalidScriptError(msgInvalidScript, nil)
	}

	scenes := make([]models.SceneInput, 0, len(items))
	ids := make([]int, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, apperrors.NewInvalidScriptError(msgInvalidScene, fmt.Errorf("element %d is not an object", i))
		}

		id, ok := sceneID(obj["id"])
		if !ok {
			return nil, apperrors.NewInvalidScriptError(msgInvalidScene, fmt.Errorf("element %d has a bad id", i))
		}
		text, ok := obj["text"].(string)
		if !ok || text == "" {
			return nil, apperrors.NewInvalidScriptError(msgInvalidScene, fmt.Errorf("element %d has a bad text", i))
		}

		scenes = append(scenes, models.SceneInput{ID: id, Text: text})
		ids = append(ids, id)
	}

	if dup, found := models.DuplicateSceneID(ids); found {
		return nil, apperrors.NewInvalidScriptError(
			fmt.Sprintf("Invalid script format: duplicate scene id %d", dup), nil)
	}
	return scenes, nil
}

func sceneID(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f == 0 || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// classifyProviderError maps a provider failure onto the public taxonomy by
// sniffing its message.
func classifyProviderError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "API key"):
		return apperrors.NewConfigurationError(msgInvalidAPIKey, err)
	case strings.Contains(msg, "quota") || strings.Contains(msg, "limit"):
		return apperrors.NewThrottledError(msgQuotaExceeded, err)
	case msg == "":
		return apperrors.NewGenerationError(msgGenerationFailed, err)
	default:
		return apperrors.NewGenerationError(msg, err)
	}
}
