package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/logger"
	"github.com/amora-app/media-pipeline/internal/media/cleanup"
	"github.com/amora-app/media-pipeline/internal/media/processor"
	"github.com/amora-app/media-pipeline/internal/media/transcoder"
)

// maxDeleteKeys bounds a single deletion request
const maxDeleteKeys = 100

// multipartOverhead is allowed on top of the largest media cap for form fields and boundaries
const multipartOverhead = 1 << 20

// Handler defines the interface for REST API handlers
type Handler interface {
	// UploadMedia processes a multipart upload
	// POST /api/v1/media (multipart: file, context, owner_id, is_voice_message, duration_hint)
	UploadMedia(c *gin.Context)

	// DeleteMedia removes stored media by key or public URL
	// DELETE /api/v1/media {"keys": [...], "urls": [...]}
	DeleteMedia(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	processor     processor.Processor
	cleaner       cleanup.Cleaner
	transcoder    transcoder.Transcoder
	storage       string
	maxUploadSize int64
}

// NewHandler creates a new REST API handler.
// maxUploadSize is the largest accepted media payload; the request body may exceed it by the multipart overhead.
func NewHandler(proc processor.Processor, cleaner cleanup.Cleaner, tc transcoder.Transcoder, storageBackend string, maxUploadSize int64) Handler {
	return &handler{
		processor:     proc,
		cleaner:       cleaner,
		transcoder:    tc,
		storage:       storageBackend,
		maxUploadSize: maxUploadSize,
	}
}

// UploadMedia processes one uploaded file
func (h *handler) UploadMedia(c *gin.Context) {
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+multipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondPipelineError(c, maxBytesErr)
			return
		}
		respondBadRequest(c, "Missing file", err.Error())
		return
	}

	ownerID, err := strconv.ParseInt(strings.TrimSpace(c.PostForm("owner_id")), 10, 64)
	if err != nil || ownerID <= 0 {
		respondValidationError(c, "owner_id must be a positive integer")
		return
	}

	options := domain.Options{}
	if v, ok := c.GetPostForm(domain.OptionIsVoiceMessage); ok {
		options[domain.OptionIsVoiceMessage] = v
	}
	if v, ok := c.GetPostForm(domain.OptionDurationHint); ok {
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			respondValidationError(c, "duration_hint must be a number of seconds")
			return
		}
		options[domain.OptionDurationHint] = v
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, fmt.Errorf("failed to open upload: %w", err), "Failed to read upload")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	req := &domain.UploadRequest{
		OwnerID:  ownerID,
		Context:  c.PostForm("context"),
		Body:     file,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
		Filename: fileHeader.Filename,
		Options:  options,
	}

	result, err := h.processor.Process(c.Request.Context(), req)
	if err != nil {
		respondPipelineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// DeleteMedia removes every listed key and reports the ones that could not be deleted
func (h *handler) DeleteMedia(c *gin.Context) {
	var body DeleteMediaRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	targets := make([]string, 0, len(body.Keys)+len(body.URLs))
	targets = append(targets, body.Keys...)
	for _, rawURL := range body.URLs {
		targets = append(targets, h.cleaner.KeyFromURL(rawURL))
	}

	if len(targets) == 0 {
		respondValidationError(c, "keys or urls must not be empty")
		return
	}
	if len(targets) > maxDeleteKeys {
		respondValidationError(c, fmt.Sprintf("at most %d keys per request", maxDeleteKeys))
		return
	}

	result := h.cleaner.DeleteMany(c.Request.Context(), targets)
	if !result.Success {
		logger.WarnCtx(c.Request.Context(), "Deletion partially failed", zap.Strings("failedKeys", result.FailedKeys))
	}

	c.JSON(http.StatusOK, DeleteMediaResponse{
		Success:    result.Success,
		Deleted:    result.Deleted,
		Missing:    result.Missing,
		FailedKeys: result.FailedKeys,
	})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	status := "available"
	if _, err := h.transcoder.Tools(); err != nil {
		status = "unavailable"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:     "ok",
		Service:    "media-api",
		Storage:    h.storage,
		Transcoder: status,
	})
}
