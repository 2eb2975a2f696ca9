package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// ReviewMetadata is the display payload stored alongside a review vector, so
// nearest-neighbor hits can be rendered without re-fetching the read.
type ReviewMetadata struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Rating int    `json:"rating"`
	Status Status `json:"status"`
}

// ReviewHit is one nearest-neighbor result from the review index,
// ranked by ascending cosine distance.
type ReviewHit struct {
	ReadID   string
	Text     string
	Metadata ReviewMetadata
	Distance float64
}
