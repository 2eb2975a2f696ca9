package recommend

import (
	"context"

	"github.com/shelfmate/shelfmate/internal/domain"
)

// ReadStore lists logged reads, most recent first.
type ReadStore interface {
	List(ctx context.Context, f domain.ReadFilter) ([]domain.Read, error)
}

// SessionStore persists and lists recommendation sessions.
type SessionStore interface {
	Insert(ctx context.Context, s domain.RecommendationSession) error
	Get(ctx context.Context, id string) (domain.RecommendationSession, error)
	List(ctx context.Context) ([]domain.RecommendationSession, error)
}

// VectorIndex runs nearest-neighbor queries over stored review embeddings.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, k int) ([]domain.ReviewHit, error)
}
