package apperr

import (
	"errors"
	"fmt"
)

// ErrAlreadyExists signals the idempotency guard found a committed day.
var ErrAlreadyExists = errors.New("day document already exists")

// ErrNoQuestions signals a run produced zero questions across all passes.
var ErrNoQuestions = errors.New("no questions generated")

// FetchError marks a listing source as unreachable for the current run.
type FetchError struct {
	SourceID string
	URL      string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch listing %s (%s): status %d", e.SourceID, e.URL, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch listing %s (%s): %v", e.SourceID, e.URL, e.Err)
	}
	return fmt.Sprintf("fetch listing %s (%s) failed", e.SourceID, e.URL)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetch builds a FetchError for a transport failure.
func NewFetch(sourceID, url string, err error) *FetchError {
	return &FetchError{SourceID: sourceID, URL: url, Err: err}
}

// NewFetchStatus builds a FetchError for a non-success HTTP status.
func NewFetchStatus(sourceID, url string, status int) *FetchError {
	return &FetchError{SourceID: sourceID, URL: url, Status: status}
}

// GenerationError covers empty or unparsable model responses. Retryable
// within the attempt cap.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func NewGeneration(msg string) *GenerationError {
	return &GenerationError{Message: msg}
}

func NewGenerationWrap(msg string, err error) *GenerationError {
	return &GenerationError{Message: msg, Err: err}
}

// ValidationError covers payloads missing required question or options.
// Treated the same as a generation failure by the retry controller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// CommitError wraps a failed atomic batch write. The batch is all-or-nothing,
// so no partial day is ever visible behind this error.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return "commit day batch: " + e.Err.Error()
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

func NewCommit(err error) *CommitError {
	return &CommitError{Err: err}
}
