package assets

import (
	"errors"
	"fmt"
	"strings"
)

// Declaration errors. They are returned wrapped with the offending path.
var (
	ErrDuplicatePath = errors.New("path is already declared")
	ErrTypeMismatch  = errors.New("type mismatch")
	ErrEmptyBundle   = errors.New("bundle has no contents")
	ErrFrozen        = errors.New("catalog is frozen: the repository has already been built")
	ErrUndeclared    = errors.New("entity is not declared in this catalog")
)

// ErrNotFound is returned by loaders for content that does not exist.
var ErrNotFound = errors.New("content not found")

// CycleError reports a circular dependency. Cycle starts and ends with the
// same path.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return "circular dependency detected: " + strings.Join(e.Cycle, "->")
}

// LoadError reports content that could not be loaded during the build pass.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
