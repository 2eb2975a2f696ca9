// Package reviews is the durable similarity index over review embeddings.
// Nearest-neighbor ranking is in-process cosine over a full scan, which is
// comfortable at personal-library scale.
package reviews

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shelfmate/shelfmate/internal/db/sqlite"
	"github.com/shelfmate/shelfmate/internal/domain"
)

// Repo implements the vector index contract for review embeddings.
type Repo struct {
	db *sql.DB
}

// New creates a review index over an open database handle.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Upsert stores a review vector by read ID, replacing any previous vector for
// the same key. The index is constant-dimension: a vector whose length
// disagrees with the rest of the index is rejected.
func (r *Repo) Upsert(ctx context.Context, readID string, vector []float32, text string, meta domain.ReviewMetadata) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty vector for read %s", readID)
	}

	var dim int
	err := r.db.QueryRowContext(ctx, `
		SELECT dim FROM review_embeddings WHERE read_id != ? LIMIT 1
	`, readID).Scan(&dim)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check index dimension: %w", err)
	}
	if err == nil && dim != len(vector) {
		return fmt.Errorf("index has dim %d, got %d: %w", dim, len(vector), domain.ErrVectorDimMismatch)
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO review_embeddings (read_id, vector, dim, text, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(read_id) DO UPDATE SET
			vector = excluded.vector,
			dim = excluded.dim,
			text = excluded.text,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`, readID, sqlite.EncodeVector(vector), len(vector), text, string(metaJSON),
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert embedding %s: %w", readID, err)
	}
	return nil
}

// Query returns up to k nearest records by cosine distance, ascending.
// An empty index yields an empty result set; k larger than the stored count
// is clamped, never an error.
func (r *Repo) Query(ctx context.Context, vector []float32, k int) ([]domain.ReviewHit, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT read_id, vector, text, metadata FROM review_embeddings
	`)
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	var hits []domain.ReviewHit
	for rows.Next() {
		var (
			hit      domain.ReviewHit
			blob     []byte
			metaJSON string
		)
		if err := rows.Scan(&hit.ReadID, &blob, &hit.Text, &metaJSON); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		if err := json.Unmarshal([]byte(metaJSON), &hit.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata %s: %w", hit.ReadID, err)
		}
		hit.Distance = sqlite.CosineDistance(vector, sqlite.DecodeVector(blob))
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embeddings: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of stored embeddings.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_embeddings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return n, nil
}
