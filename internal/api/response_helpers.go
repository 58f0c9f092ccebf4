// internal/api/response_helpers.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Corphon/ReelBoard/internal/errors"
	"github.com/Corphon/ReelBoard/internal/models"
	"github.com/Corphon/ReelBoard/internal/utils"
)

// ProjectResponse is the envelope every project endpoint answers with
type ProjectResponse struct {
	Success bool            `json:"success"`
	Project *models.Project `json:"project,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ProjectListResponse 项目列表响应
type ProjectListResponse struct {
	Success  bool              `json:"success"`
	Projects []*models.Project `json:"projects"`
}

// MusicTrackListResponse 音乐曲目列表响应
type MusicTrackListResponse struct {
	Success bool                `json:"success"`
	Tracks  []models.MusicTrack `json:"tracks"`
}

// ResponseHelper 响应助手类
type ResponseHelper struct {
	metrics *utils.APIMetrics
}

// NewResponseHelper 创建响应助手
func NewResponseHelper(metrics *utils.APIMetrics) *ResponseHelper {
	return &ResponseHelper{metrics: metrics}
}

// Project 成功响应
func (rh *ResponseHelper) Project(c *gin.Context, project *models.Project) {
	c.JSON(http.StatusOK, &ProjectResponse{Success: true, Project: project})
}

// Error writes {success:false, error} with the given status
func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, &ProjectResponse{Success: false, Error: message})
}

// BadRequest 400错误响应
func (rh *ResponseHelper) BadRequest(c *gin.Context, message string) {
	rh.Error(c, http.StatusBadRequest, message)
}

// NotFound 404错误响应
func (rh *ResponseHelper) NotFound(c *gin.Context, message string) {
	rh.Error(c, http.StatusNotFound, message)
}

// FromError maps err onto status and message. Unclassified errors answer 500
// with fallback, never with internal error text.
func (rh *ResponseHelper) FromError(c *gin.Context, err error, fallback string) {
	status := apperrors.StatusCode(err)
	errType := apperrors.TypeOf(err)

	message := fallback
	if errType != "" {
		message = apperrors.UserMessage(err)
	}
	if message == "" {
		message = fallback
	}

	fields := map[string]interface{}{
		"request_id": requestID(c),
		"path":       c.FullPath(),
		"status":     status,
		"error":      err.Error(),
	}
	if status >= http.StatusInternalServerError {
		utils.GetLogger().Error("Request failed", fields)
	} else {
		utils.GetLogger().Warn("Request rejected", fields)
	}

	if errType == "" {
		errType = apperrors.ErrorTypeError
	}
	rh.metrics.RecordError(string(errType), "api")
	rh.Error(c, status, message)
}
