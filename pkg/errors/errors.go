package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrDuplicateRating = errors.New("duplicate rating")
	ErrImageProcessing = errors.New("image processing failed")
	ErrAssetRelease    = errors.New("asset release failed")
	ErrInternal        = errors.New("internal error")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// DuplicateRating creates a 400 error for a user rating the same book twice.
func DuplicateRating(bookID, userID string) *AppError {
	return &AppError{
		Code:    "DUPLICATE_RATING",
		Message: fmt.Sprintf("user %s has already rated book %s", userID, bookID),
		Status:  http.StatusBadRequest,
		Err:     ErrDuplicateRating,
	}
}

// ImageProcessing creates a 500 error for a failed image transform.
func ImageProcessing(err error) *AppError {
	return &AppError{
		Code:    "IMAGE_PROCESSING_ERROR",
		Message: "failed to process uploaded image",
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %w", ErrImageProcessing, err),
	}
}

// AssetRelease creates a 500 error for a failed asset cleanup.
func AssetRelease(key string, err error) *AppError {
	return &AppError{
		Code:    "ASSET_RELEASE_ERROR",
		Message: fmt.Sprintf("failed to release asset %s", key),
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %w", ErrAssetRelease, err),
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrDuplicateRating):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
