package models

import (
	"errors"
	"fmt"
)

// Domain specific errors shared across services.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("action forbidden")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrAlreadyReviewed = errors.New("suggestion already reviewed")
	ErrProvider        = errors.New("backend provider failure")
)

// ItemFailure records a single failed item inside a best-effort batch.
type ItemFailure struct {
	Item string
	Err  error
}

// PartialFailure reports a batch operation that completed its primary write
// but lost some items along the way. Callers inspect Failed to see exactly
// what was dropped.
type PartialFailure struct {
	Op        string
	Succeeded int
	Failed    []ItemFailure
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("%s: %d item(s) failed, %d succeeded", e.Op, len(e.Failed), e.Succeeded)
}

// ApplyError signals that a suggestion's approved status was recorded but the
// directory mutation did not apply. The apply step can be retried without
// re-approving.
type ApplyError struct {
	SuggestionID string
	Err          error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("suggestion %s approved but apply failed: %v", e.SuggestionID, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }
