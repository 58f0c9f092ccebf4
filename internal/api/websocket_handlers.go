// internal/api/websocket_handlers.go
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Corphon/ReelBoard/internal/utils"
)

// ProjectWebSocket GET /ws/projects/:projectId
// Unknown projects are rejected before the upgrade.
func (h *Handler) ProjectWebSocket(c *gin.Context) {
	project, err := h.Projects.GetProject(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		h.Response.FromError(c, err, ErrorGetProjectFailed)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.GetLogger().Warn("WebSocket upgrade failed", map[string]interface{}{
			"project_id": project.ID,
			"error":      err.Error(),
		})
		return
	}

	h.Hub.serve(conn, project)
}
