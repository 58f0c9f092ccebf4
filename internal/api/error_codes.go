// internal/api/error_codes.go
package api

import "github.com/Corphon/ReelBoard/internal/services"

// Client-facing error messages, kept stable for existing clients
const (
	ErrorTopicTooShort    = services.MsgTopicTooShort
	ErrorInvalidRequest   = services.MsgInvalidRequest
	ErrorProjectNotFound  = services.MsgProjectNotFound
	ErrorSceneNotFound    = services.MsgSceneNotFound
	ErrorScriptGeneration = "Failed to generate script. Please try again."
	ErrorImagesFailed     = services.MsgImagesFailed
	ErrorRegenerateFailed = services.MsgRegenerateFailed
	ErrorDurationFailed   = services.MsgDurationFailed
	ErrorScriptFailed     = services.MsgScriptFailed
	ErrorGetProjectFailed = "Failed to get project"
	ErrorListFailed       = "Failed to list projects"
)
