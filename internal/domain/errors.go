package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrUnknownSection, ErrItemNotFound and ErrTemplateNotFound all match ErrNotFound.
	ErrUnknownSection   = fmt.Errorf("%w: unknown section", ErrNotFound)
	ErrItemNotFound     = fmt.Errorf("%w: item index out of range", ErrNotFound)
	ErrTemplateNotFound = fmt.Errorf("%w: template", ErrNotFound)

	ErrValidation    = errors.New("validation failed")
	ErrLimitExceeded = errors.New("section item limit reached")
	ErrStorage       = errors.New("storage failure")
	ErrMalformedJSON = errors.New("malformed json")
	ErrInvalidFormat = errors.New("invalid format")
	ErrPDFGeneration = errors.New("pdf generation failed")
)

// ValidationError carries every failed check, never just the first one.
type ValidationError struct {
	Messages []string
}

func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
