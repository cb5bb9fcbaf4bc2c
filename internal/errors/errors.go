package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a detection failure
type ErrorType string

const (
	ErrorTypeInput     ErrorType = "input"
	ErrorTypeNoRegions ErrorType = "no_regions"
	ErrorTypeRegion    ErrorType = "region"
	ErrorTypeNoMarkers ErrorType = "no_markers"
	ErrorTypeRender    ErrorType = "render"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeInternal  ErrorType = "internal"
)

// AppError represents a structured detection error
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewInputError reports a missing, unreadable or undecodable input image
func NewInputError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeInput, Message: message, Cause: cause}
}

// NewNoRegionsError reports that segmentation found no foot-like region
func NewNoRegionsError(message string) *AppError {
	return &AppError{Type: ErrorTypeNoRegions, Message: message}
}

// NewRegionError reports a failure while processing a single region
func NewRegionError(index int, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeRegion,
		Message: fmt.Sprintf("region %d failed", index),
		Cause:   cause,
	}
}

// NewNoMarkersError reports that no region produced markers
func NewNoMarkersError(message string) *AppError {
	return &AppError{Type: ErrorTypeNoMarkers, Message: message}
}

// NewRenderError reports a failure writing an output artifact
func NewRenderError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeRender, Message: message, Cause: cause}
}

// NewConfigError reports an invalid configuration
func NewConfigError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeConfig, Message: message, Cause: cause}
}

// NewInternalError reports an unexpected failure outside the per-region path
func NewInternalError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Cause: cause}
}

// IsType checks if the error chain contains an AppError of the given type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// TypeOf returns the ErrorType of err, or "" when err is not an AppError
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
