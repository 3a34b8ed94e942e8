package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrDuplicateRating,
		ErrImageProcessing, ErrAssetRelease, ErrInternal,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("db connection lost")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "db connection lost")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "book not found"}
	assert.Equal(t, "NOT_FOUND: book not found", appErr.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "nope", Err: ErrNotFound}
	assert.True(t, errors.Is(appErr, ErrNotFound))
}

func TestNotFound(t *testing.T) {
	err := NotFound("book", "abc-123")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "abc-123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnauthorized(t *testing.T) {
	err := Unauthorized("not the owner")
	require.NotNil(t, err)
	assert.Equal(t, "UNAUTHORIZED", err.Code)
	assert.Equal(t, http.StatusUnauthorized, err.Status)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDuplicateRating(t *testing.T) {
	err := DuplicateRating("book-1", "user-1")
	require.NotNil(t, err)
	assert.Equal(t, "DUPLICATE_RATING", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Contains(t, err.Message, "book-1")
	assert.Contains(t, err.Message, "user-1")
	assert.ErrorIs(t, err, ErrDuplicateRating)
}

func TestImageProcessing_WrapsCause(t *testing.T) {
	cause := errors.New("corrupt jpeg")
	err := ImageProcessing(cause)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.ErrorIs(t, err, ErrImageProcessing)
	assert.ErrorIs(t, err, cause)
}

func TestAssetRelease_WrapsCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := AssetRelease("covers/xyz.jpg", cause)
	assert.Equal(t, "ASSET_RELEASE_ERROR", err.Code)
	assert.ErrorIs(t, err, ErrAssetRelease)
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", NotFound("book", "x"), http.StatusNotFound},
		{"wrapped sentinel", fmt.Errorf("load: %w", ErrNotFound), http.StatusNotFound},
		{"invalid input", fmt.Errorf("rate: %w", ErrInvalidInput), http.StatusBadRequest},
		{"duplicate rating", fmt.Errorf("rate: %w", ErrDuplicateRating), http.StatusBadRequest},
		{"unauthorized", fmt.Errorf("update: %w", ErrUnauthorized), http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
