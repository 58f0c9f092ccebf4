// internal/api/handlers.go
package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/ReelBoard/internal/models"
	"github.com/Corphon/ReelBoard/internal/services"
)

// Handler 处理API请求
type Handler struct {
	Projects *services.ProjectService
	Hub      *ProjectHub
	Response *ResponseHelper

	// reported by the health endpoint
	ProviderName string
	Model        string
}

// NewHandler 创建API处理器
func NewHandler(projects *services.ProjectService, hub *ProjectHub, response *ResponseHelper, providerName, model string) *Handler {
	return &Handler{
		Projects:     projects,
		Hub:          hub,
		Response:     response,
		ProviderName: providerName,
		Model:        model,
	}
}

type generateScriptRequest struct {
	Topic *string `json:"topic"`
}

type sceneTextBody struct {
	ID   *int    `json:"id"`
	Text *string `json:"text"`
}

type generateImagesRequest struct {
	ProjectID *string          `json:"projectId"`
	Scenes    *[]sceneTextBody `json:"scenes"`
}

type updateDurationRequest struct {
	Duration *float64 `json:"duration"`
}

type updateScriptRequest struct {
	Scenes *[]models.SceneInput `json:"scenes"`
}

// GenerateScript POST /api/generate-script
func (h *Handler) GenerateScript(c *gin.Context) {
	var req generateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Topic == nil {
		h.Response.BadRequest(c, "Invalid request: Topic is required")
		return
	}

	project, err := h.Projects.GenerateScript(c.Request.Context(), *req.Topic)
	if err != nil {
		h.Response.FromError(c, err, ErrorScriptGeneration)
		return
	}
	h.Response.Project(c, project)
}

// GenerateImages POST /api/generate-images
func (h *Handler) GenerateImages(c *gin.Context) {
	var req generateImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProjectID == nil || req.Scenes == nil {
		h.Response.BadRequest(c, ErrorInvalidRequest)
		return
	}

	scenes := make([]services.SceneText, 0, len(*req.Scenes))
	for _, sc := range *req.Scenes {
		if sc.ID == nil || sc.Text == nil {
			h.Response.BadRequest(c, ErrorInvalidRequest)
			return
		}
		scenes = append(scenes, services.SceneText{ID: *sc.ID, Text: *sc.Text})
	}

	project, err := h.Projects.GenerateImages(c.Request.Context(), *req.ProjectID, scenes)
	if err != nil {
		h.Response.FromError(c, err, ErrorImagesFailed)
		return
	}
	h.Response.Project(c, project)
}

// RegenerateImage POST /api/regenerate-image/:projectId/:sceneId
func (h *Handler) RegenerateImage(c *gin.Context) {
	projectID := c.Param("projectId")
	sceneID, ok := h.sceneIDParam(c, projectID)
	if !ok {
		return
	}

	project, err := h.Projects.RegenerateImage(c.Request.Context(), projectID, sceneID)
	if err != nil {
		h.Response.FromError(c, err, ErrorRegenerateFailed)
		return
	}
	h.Response.Project(c, project)
}

// UpdateSceneDuration PATCH /api/projects/:projectId/scenes/:sceneId/duration
func (h *Handler) UpdateSceneDuration(c *gin.Context) {
	projectID := c.Param("projectId")
	sceneID, ok := h.sceneIDParam(c, projectID)
	if !ok {
		return
	}

	var req updateDurationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.Response.BadRequest(c, ErrorInvalidRequest)
		return
	}

	project, err := h.Projects.UpdateSceneDuration(c.Request.Context(), projectID, sceneID, req.Duration)
	if err != nil {
		h.Response.FromError(c, err, ErrorDurationFailed)
		return
	}
	h.Response.Project(c, project)
}

// GetProject GET /api/projects/:projectId
func (h *Handler) GetProject(c *gin.Context) {
	project, err := h.Projects.GetProject(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		h.Response.FromError(c, err, ErrorGetProjectFailed)
		return
	}
	h.Response.Project(c, project)
}

// UpdateScript PATCH /api/projects/:projectId/script
func (h *Handler) UpdateScript(c *gin.Context) {
	var req updateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Scenes == nil {
		h.Response.BadRequest(c, ErrorInvalidRequest)
		return
	}

	project, err := h.Projects.UpdateScript(c.Request.Context(), c.Param("projectId"), *req.Scenes)
	if err != nil {
		h.Response.FromError(c, err, ErrorScriptFailed)
		return
	}
	h.Response.Project(c, project)
}

// ListProjects GET /api/projects
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.Projects.ListProjects(c.Request.Context())
	if err != nil {
		h.Response.FromError(c, err, ErrorListFailed)
		return
	}
	c.JSON(http.StatusOK, &ProjectListResponse{Success: true, Projects: projects})
}

// ListMusicTracks GET /api/music-tracks
func (h *Handler) ListMusicTracks(c *gin.Context) {
	c.JSON(http.StatusOK, &MusicTrackListResponse{Success: true, Tracks: models.MusicCatalog()})
}

// Health GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"provider": h.ProviderName,
		"model":    h.Model,
	})
}

// sceneIDParam parses :sceneId. An unparsable id answers like an unknown
// scene, after the project itself has been looked up.
func (h *Handler) sceneIDParam(c *gin.Context, projectID string) (int, bool) {
	sceneID, err := strconv.Atoi(c.Param("sceneId"))
	if err == nil {
		return sceneID, true
	}

	if _, err := h.Projects.GetProject(c.Request.Context(), projectID); err != nil {
		h.Response.FromError(c, err, ErrorGetProjectFailed)
		return 0, false
	}
	h.Response.NotFound(c, ErrorSceneNotFound)
	return 0, false
}
