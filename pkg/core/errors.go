package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrIndex      = errors.New("marker index out of range")
	ErrValidation = errors.New("invalid marker")
	ErrIO         = errors.New("project file unavailable")
	ErrFormat     = errors.New("malformed project manifest")
	ErrNoProject  = errors.New("no project loaded")
)

// IndexError reports an index outside the valid range of a model operation.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0, %d)", e.Op, e.Index, e.Len)
}

// Is lets errors.Is(err, ErrIndex) match.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndex
}

// ValidationError reports a marker field that violates the model invariants.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid marker %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
