package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := Wrap(stdErrors.New("boom"), ErrCapacityReached.Code, ErrCapacityReached.Status, "activity full")

	got := FromError(wrapped)

	assert.Same(t, wrapped, got)
	assert.Equal(t, http.StatusConflict, got.Status)
	assert.Equal(t, "activity full: boom", got.Error())
}

func TestFromErrorWrapsPlainErrorsAsInternal(t *testing.T) {
	cause := stdErrors.New("db down")

	got := FromError(cause)

	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrNotFound, "activity not found")

	assert.Equal(t, "activity not found", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.Equal(t, ErrNotFound.Code, Clone(ErrNotFound, "").Code)
}
