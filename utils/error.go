package utils

import (
	"errors"
	"fmt"
	"strings"
)

var ErrorRecordNotFound = errors.New("record not found")

// Fulfillment-specific failures. A missing recipe and a recipe with no
// configured ingredients are distinct outcomes: the latter exists but
// cannot be fulfilled.
var (
	ErrorRecipeNotFound    = errors.New("no matching recipe")
	ErrorNoIngredients     = errors.New("recipe has no ingredients configured")
	ErrorInsufficientStock = errors.New("insufficient stock")
)

// ValidationError reports user-correctable input problems, listing every
// offending field rather than stopping at the first.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps backend transport/permission/timeout failures.
// Backend-specific errors must never escape a storage adapter undisguised;
// handlers log the wrapped cause and return a generic message.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
