package domain

import "context"

// GenerationInput is everything the generation provider needs to propose
// candidate books.
type GenerationInput struct {
	HistorySummary   string
	RetrievalContext string
	Mood             string
	Direction        Direction
}

// Generator produces candidate recommendations. Implementations may return
// between 1 and 10 candidates per call and may fail outright.
type Generator interface {
	Generate(ctx context.Context, in GenerationInput) ([]BookRecommendation, error)
}
