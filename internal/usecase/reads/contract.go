package reads

import (
	"context"

	"github.com/shelfmate/shelfmate/internal/domain"
)

// Repository defines the storage contract for read records.
type Repository interface {
	Insert(ctx context.Context, read domain.Read) error
	Get(ctx context.Context, id string) (domain.Read, error)
	List(ctx context.Context, f domain.ReadFilter) ([]domain.Read, error)
}

// VectorIndex accepts review embeddings keyed by read ID.
type VectorIndex interface {
	Upsert(ctx context.Context, readID string, vector []float32, text string, meta domain.ReviewMetadata) error
}

// ISBNResolver fills in a missing ISBN from external catalogs. A failed
// resolution yields "", never an error.
type ISBNResolver interface {
	ResolveISBN(ctx context.Context, title, author string) string
}
