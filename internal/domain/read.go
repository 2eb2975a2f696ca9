package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status describes where a logged book sits in the reader's life.
type Status string

const (
	StatusReading   Status = "reading"
	StatusFinished  Status = "finished"
	StatusAbandoned Status = "abandoned"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusReading, StatusFinished, StatusAbandoned:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q (want reading, finished, or abandoned)", s)
}

const (
	// DefaultRating is used when a reader skips the rating prompt.
	DefaultRating = 3
	// MinRating and MaxRating bound the 1-5 rating scale.
	MinRating = 1
	MaxRating = 5
)

// Read is one logged book. Immutable once stored: the record store is
// append-only and offers no update or delete.
type Read struct {
	ID         string
	Title      string
	Author     string
	ISBN       string
	Status     Status
	Rating     int
	Review     string
	StartedAt  *time.Time
	FinishedAt *time.Time
	CreatedAt  time.Time
}

// ReadParams carries the caller-supplied fields of a new Read.
// Zero-valued optional fields get named defaults: status finished, rating 3.
type ReadParams struct {
	Title      string
	Author     string
	ISBN       string
	Status     Status
	Rating     int
	Review     string
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// NewRead validates params and creates a Read with a fresh ID and UTC
// creation timestamp.
func NewRead(p ReadParams) (Read, error) {
	if strings.TrimSpace(p.Title) == "" {
		return Read{}, fmt.Errorf("title is required")
	}
	if strings.TrimSpace(p.Author) == "" {
		return Read{}, fmt.Errorf("author is required")
	}

	status := p.Status
	if status == "" {
		status = StatusFinished
	} else if _, err := ParseStatus(string(status)); err != nil {
		return Read{}, err
	}

	rating := p.Rating
	if rating == 0 {
		rating = DefaultRating
	}
	if rating < MinRating || rating > MaxRating {
		return Read{}, fmt.Errorf("rating %d: %w", rating, ErrInvalidRating)
	}

	return Read{
		ID:         NewID(),
		Title:      p.Title,
		Author:     p.Author,
		ISBN:       p.ISBN,
		Status:     status,
		Rating:     rating,
		Review:     p.Review,
		StartedAt:  p.StartedAt,
		FinishedAt: p.FinishedAt,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// EmbeddingText renders the text a review vector is derived from.
func (r Read) EmbeddingText() string {
	return fmt.Sprintf("Book: %s by %s\nRating: %d/5\nReview: %s",
		r.Title, r.Author, r.Rating, r.Review)
}

// ReadFilter narrows read listings. Zero values mean no filtering.
type ReadFilter struct {
	Status    Status
	MinRating int
}

// NormalizeTitle lowercases and trims a title for identity comparison.
// Blocklist membership and duplicate detection both use this form.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
