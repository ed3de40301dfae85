package errors_test

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pomodoro/timer/internal/errors"
)

func TestKindsMapToStatus(t *testing.T) {
	assert.Equal(t, http.StatusConflict, apperrors.InvalidTransition("pause", "idle").Status())
	assert.Equal(t, http.StatusBadRequest, apperrors.Validation(apperrors.FieldError{Field: "work_minutes"}).Status())
	assert.Equal(t, http.StatusInternalServerError, apperrors.Persistence("save", io.EOF).Status())
	assert.Equal(t, http.StatusInternalServerError, apperrors.Internal("").Status())
	assert.Equal(t, http.StatusBadRequest, apperrors.BadRequest("invalid_days", "days must be positive").Status())
	assert.Equal(t, http.StatusUnauthorized, apperrors.Unauthorized("missing token").Status())
}

func TestIsKindFollowsWrapping(t *testing.T) {
	base := apperrors.Persistence("write statistics", io.ErrShortWrite)
	wrapped := fmt.Errorf("record completion: %w", base)

	assert.True(t, apperrors.IsKind(wrapped, apperrors.KindPersistence))
	assert.False(t, apperrors.IsKind(wrapped, apperrors.KindValidation))
	assert.ErrorIs(t, wrapped, io.ErrShortWrite)
}

func TestValidationListsFields(t *testing.T) {
	err := apperrors.Validation(
		apperrors.FieldError{Field: "work_minutes", Message: "must be between 1 and 180"},
		apperrors.FieldError{Field: "cycles_before_long_break", Message: "must be between 1 and 12"},
	)

	require.Len(t, err.Fields(), 2)
	assert.Contains(t, err.Error(), "work_minutes")
	assert.Contains(t, err.Error(), "cycles_before_long_break")
}
