package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		errType    ErrorType
		httpStatus int
		check      func(error) bool
	}{
		{
			name:       "invalid input",
			err:        NewInvalidInputError("empty content"),
			errType:    ErrorTypeInvalidInput,
			httpStatus: http.StatusBadRequest,
			check:      IsInvalidInput,
		},
		{
			name:       "invalid schedule",
			err:        NewInvalidScheduleError("unlock time must be future"),
			errType:    ErrorTypeInvalidSchedule,
			httpStatus: http.StatusBadRequest,
			check:      IsInvalidSchedule,
		},
		{
			name:       "not found",
			err:        NewNotFoundError("memory"),
			errType:    ErrorTypeNotFound,
			httpStatus: http.StatusNotFound,
			check:      IsNotFound,
		},
		{
			name:       "access denied",
			err:        NewAccessDeniedError("locked"),
			errType:    ErrorTypeAccessDenied,
			httpStatus: http.StatusForbidden,
			check:      IsAccessDenied,
		},
		{
			name:       "invalid operation",
			err:        NewInvalidOperationError("cannot like own memory"),
			errType:    ErrorTypeInvalidOperation,
			httpStatus: http.StatusConflict,
			check:      IsInvalidOperation,
		},
		{
			name:       "internal",
			err:        NewInternalError("boom"),
			errType:    ErrorTypeInternal,
			httpStatus: http.StatusInternalServerError,
			check:      IsInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.Type)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.True(t, tt.check(tt.err))

			// Each kind matches only itself
			for _, other := range tests {
				if other.name != tt.name {
					assert.False(t, other.check(tt.err),
						"%s should not match %s", tt.name, other.name)
				}
			}
		})
	}
}

func TestGetAppError_ThroughWrapping(t *testing.T) {
	inner := NewNotFoundError("memory")
	wrapped := fmt.Errorf("loading record: %w", inner)

	appErr := GetAppError(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrorTypeNotFound, appErr.Type)
	assert.True(t, IsNotFound(wrapped))
}

func TestGetAppError_PlainError(t *testing.T) {
	assert.Nil(t, GetAppError(errors.New("plain")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestWrap(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "context"))
	})

	t.Run("app error keeps its type", func(t *testing.T) {
		err := Wrap(NewAccessDeniedError("locked"), "retrieving memory")
		assert.True(t, IsAccessDenied(err))
		assert.Contains(t, err.Error(), "retrieving memory")
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(cause, "saving record")
		assert.True(t, IsInternal(err))
		assert.ErrorIs(t, err, cause)
	})
}

func TestAppError_WithDetails(t *testing.T) {
	err := NewInvalidInputError("bad radius").
		WithCode("RADIUS_RANGE").
		WithDetails(map[string]interface{}{"max_km": 20000})

	assert.Equal(t, "RADIUS_RANGE", err.Code)
	assert.Equal(t, 20000, err.Details["max_km"])
}

func TestAppError_ErrorString(t *testing.T) {
	err := NewDatabaseError("put_item", errors.New("throttled"))
	assert.Contains(t, err.Error(), "DATABASE")
	assert.Contains(t, err.Error(), "throttled")
}
