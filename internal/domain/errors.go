package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateRead signals that a (title, author) pair is already logged.
	ErrDuplicateRead = errors.New("read already logged")
	// ErrInvalidRating signals a rating outside the 1-5 range.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrNotConfigured signals a missing credential required for the operation.
	ErrNotConfigured = errors.New("not configured")
	// ErrVectorDimMismatch signals a vector dimension mismatch in the review index.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrGenerationProvider signals a recommendation generation failure.
	ErrGenerationProvider = errors.New("generation provider error")
)

// DuplicateReadError wraps ErrDuplicateRead with the offending title and author.
type DuplicateReadError struct {
	Title  string
	Author string
}

func (e *DuplicateReadError) Error() string {
	return fmt.Sprintf("%q by %s is already logged", e.Title, e.Author)
}

func (e *DuplicateReadError) Unwrap() error { return ErrDuplicateRead }

// NewDuplicateRead creates a duplicate read error for the given book.
func NewDuplicateRead(title, author string) error {
	return &DuplicateReadError{Title: title, Author: author}
}
