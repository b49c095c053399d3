package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidCategoryIsConstraintViolation(t *testing.T) {
	assert.True(t, errors.Is(ErrInvalidCategory, ErrConstraintViolation))
	assert.False(t, errors.Is(ErrInvalidCategory, ErrNotFound))
}

func TestFieldErrorUnwrap(t *testing.T) {
	err := NewFieldError("profile", int64(42), "timezone", ErrNotFound)
	assert.True(t, errors.Is(err, ErrNotFound))

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "profile", fe.Entity)
	assert.Equal(t, "42", fe.Key)
	assert.Equal(t, "timezone", fe.Column)

	// Sentinels survive another layer of wrapping.
	wrapped := fmt.Errorf("while handling request: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	require.True(t, errors.As(wrapped, &fe))
}

func TestFieldErrorMessage(t *testing.T) {
	err := NewFieldError("starboard", int64(7), "threshold", ErrConstraintViolation)
	assert.Contains(t, err.Error(), "starboard 7")
	assert.Contains(t, err.Error(), `"threshold"`)

	bare := NewFieldError("tag", "greet", "", ErrAlreadyExists)
	assert.Equal(t, "tag greet: already exists", bare.Error())
}
