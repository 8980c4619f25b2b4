package errors_test

import (
	"testing"

	goerrors "errors"

	"github.com/kart-io/rtmq/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueErrorIs(t *testing.T) {
	err := errors.Wrap(errors.CodeWouldBlock, "pool exhausted", nil)
	assert.True(t, goerrors.Is(err, errors.ErrWouldBlock))
	assert.False(t, goerrors.Is(err, errors.ErrTimedOut))
}

func TestQueueErrorUnwrap(t *testing.T) {
	cause := goerrors.New("boom")
	err := errors.Wrap(errors.CodeNoMemory, "arena allocation failed", cause)
	require.ErrorIs(t, err, cause)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, errors.IsTransient(errors.ErrWouldBlock))
	assert.True(t, errors.IsTransient(errors.ErrTimedOut))
	assert.True(t, errors.IsTransient(errors.ErrInterrupted))
	assert.False(t, errors.IsTransient(errors.ErrInvalidArgument))
	assert.False(t, errors.IsTransient(goerrors.New("plain")))
}

func TestCategoryAssignedOnNew(t *testing.T) {
	err := errors.New(errors.CodeBusy, "notify already registered")
	assert.Equal(t, errors.CategoryPrecondition, err.Category)
}
