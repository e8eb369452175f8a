package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/logger"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	errCodeBadRequest       ErrorCode = "bad_request"
	errCodeValidationFailed ErrorCode = "validation_failed"
	errCodeInvalidInput     ErrorCode = "invalid_input"
	errCodeConversionFailed ErrorCode = "conversion_failed"
	errCodeTooLarge         ErrorCode = "payload_too_large"

	// Server errors (5xx)
	errCodeInternalError   ErrorCode = "internal_error"
	errCodeToolUnavailable ErrorCode = "tool_unavailable"
	errCodeUploadFailed    ErrorCode = "upload_failed"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail contains error information
type errorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...string) {
	response := errorResponse{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	}

	if len(details) > 0 {
		response.Error.Details = details[0]
	}

	c.AbortWithStatusJSON(statusCode, response)
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, errCodeBadRequest, message, details...)
}

// respondValidationError sends a 422 Unprocessable Entity with validation error
func respondValidationError(c *gin.Context, details string) {
	respondWithError(c, http.StatusUnprocessableEntity, errCodeValidationFailed, "Validation failed", details)
}

// respondPipelineError maps pipeline error kinds to HTTP responses
func respondPipelineError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		respondWithError(c, http.StatusRequestEntityTooLarge, errCodeTooLarge, "Upload too large", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		respondWithError(c, http.StatusUnprocessableEntity, errCodeInvalidInput, "Upload rejected", err.Error())
	case errors.Is(err, domain.ErrToolUnavailable):
		respondWithError(c, http.StatusServiceUnavailable, errCodeToolUnavailable, "Media processing is temporarily unavailable")
	case errors.Is(err, domain.ErrConversionFailed):
		respondWithError(c, http.StatusUnprocessableEntity, errCodeConversionFailed, "Could not process media, please try again", err.Error())
	case errors.Is(err, domain.ErrUploadFailed):
		respondWithError(c, http.StatusBadGateway, errCodeUploadFailed, "Failed to store media")
	default:
		respondInternalError(c, err, "Failed to process media")
	}
}

// respondInternalError sends a 500 Internal Server Error response and logs the error
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.ErrorCtx(c.Request.Context(), err, fields...)
	respondWithError(c, http.StatusInternalServerError, errCodeInternalError, message)
}
