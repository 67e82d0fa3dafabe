package services

import (
	"errors"
	"fmt"

	"quizforge-backend/internal/logger"
	"quizforge-backend/internal/repository"
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// PersistenceError wraps a store failure. Callers may retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// storeError maps repository.ErrNotFound to a NotFoundError carrying notFoundMsg
// and logs and wraps everything else as a PersistenceError.
func storeError(log *logger.Logger, op, notFoundMsg string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Message: notFoundMsg}
	}
	log.Error("store operation failed", "op", op, "error", err)
	return &PersistenceError{Op: op, Err: err}
}
