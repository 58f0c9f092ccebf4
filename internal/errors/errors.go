// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an AppError
type ErrorType string

const (
	// request side
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeNotFound   ErrorType = "not_found"

	// upstream provider side
	ErrorTypeConfiguration     ErrorType = "configuration_error"
	ErrorTypeThrottled         ErrorType = "throttled"
	ErrorTypeMalformedResponse ErrorType = "malformed_response"
	ErrorTypeInvalidScript     ErrorType = "invalid_script"
	ErrorTypeGeneration        ErrorType = "generation_error"

	// internal / storage
	ErrorTypeError ErrorType = "processing_error"
)

// AppError 应用程序错误结构
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 实现错误链接
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// NewValidationError 创建验证错误
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

// NewProcessingError 创建处理错误
func NewProcessingError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeError, message, originalError)
}

func NewConfigurationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeConfiguration, message, originalError)
}

func NewThrottledError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeThrottled, message, originalError)
}

func NewMalformedResponseError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeMalformedResponse, message, originalError)
}

func NewInvalidScriptError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeInvalidScript, message, originalError)
}

func NewGenerationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeGeneration, message, originalError)
}

// TypeOf returns the ErrorType carried by err, or "" for plain errors
func TypeOf(err error) ErrorType {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type
	}
	return ""
}

// IsValidationError 检查是否为验证错误
func IsValidationError(err error) bool {
	return TypeOf(err) == ErrorTypeValidation
}

// IsNotFoundError 检查是否为未找到错误
func IsNotFoundError(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}

// IsUpstreamError reports whether err came from the generative provider
func IsUpstreamError(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeConfiguration, ErrorTypeThrottled, ErrorTypeMalformedResponse,
		ErrorTypeInvalidScript, ErrorTypeGeneration:
		return true
	}
	return false
}

// StatusCode maps an error onto the HTTP status the API layer answers with.
func StatusCode(err error) int {
	switch TypeOf(err) {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the message meant for the client: the AppError message
// without the wrapped cause, or the plain error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Message
	}
	return err.Error()
}

// generateErrorCode 根据错误类型生成错误代码
func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeConfiguration:
		return "PROVIDER_CONFIGURATION"
	case ErrorTypeThrottled:
		return "PROVIDER_THROTTLED"
	case ErrorTypeMalformedResponse:
		return "PROVIDER_MALFORMED_RESPONSE"
	case ErrorTypeInvalidScript:
		return "INVALID_SCRIPT"
	case ErrorTypeGeneration:
		return "GENERATION_FAILED"
	case ErrorTypeError:
		return "PROCESSING_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError 包装现有错误
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		// keep the original classification
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError,
			Code:    appError.Code,
		}
	}

	return NewAppError(errType, message, err)
}
