package domain

import "errors"

var (
	// ErrInvalidInput is returned when an upload fails validation (type, size or empty payload)
	ErrInvalidInput = errors.New("invalid input")

	// ErrToolUnavailable is returned when the external transcoding tool cannot be located
	ErrToolUnavailable = errors.New("transcoding tool unavailable")

	// ErrConversionFailed is returned when decoding, transcoding or encoding fails or times out
	ErrConversionFailed = errors.New("conversion failed")

	// ErrUploadFailed is returned when the object store rejects a write
	ErrUploadFailed = errors.New("upload failed")

	// ErrPartialCleanupFailure is returned when at least one key of a delete batch could not be removed
	ErrPartialCleanupFailure = errors.New("partial cleanup failure")
)
