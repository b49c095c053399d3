package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrConflictRetry       = errors.New("write conflict, retry")
	ErrUnknownSetting      = errors.New("unknown setting")
	ErrMalformedTemplate   = errors.New("malformed setting template")
)

// ErrInvalidCategory matches both itself and ErrConstraintViolation under
// errors.Is, since a bad todo category is one flavor of constraint failure.
var ErrInvalidCategory = fmt.Errorf("todo category not registered: %w", ErrConstraintViolation)

// FieldError decorates a sentinel with the entity, key and column that
// triggered it, so callers can build a user-facing message without parsing
// error strings.
type FieldError struct {
	Entity string
	Key    string
	Column string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s %s: column %q: %v", e.Entity, e.Key, e.Column, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Entity, e.Key, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// NewFieldError wraps err with entity/key/column context. key is formatted
// with %v so integer and composite keys read naturally.
func NewFieldError(entity string, key any, column string, err error) *FieldError {
	return &FieldError{Entity: entity, Key: fmt.Sprintf("%v", key), Column: column, Err: err}
}
