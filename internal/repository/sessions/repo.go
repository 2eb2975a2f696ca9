// Package sessions persists recommendation sessions in the sessions table.
package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shelfmate/shelfmate/internal/domain"
)

const timeLayout = time.RFC3339Nano

// recDoc is the stored JSON shape of one recommendation.
type recDoc struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Reason string `json:"reason"`
	Match  string `json:"match"`
}

// Repo implements the record store contract for recommendation sessions.
type Repo struct {
	db *sql.DB
}

// New creates a sessions repository over an open database handle.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Insert persists a session unconditionally.
func (r *Repo) Insert(ctx context.Context, s domain.RecommendationSession) error {
	docs := make([]recDoc, len(s.Recommendations))
	for i, rec := range s.Recommendations {
		docs[i] = recDoc{Title: rec.Title, Author: rec.Author, Reason: rec.Reason, Match: string(rec.Match)}
	}
	recsJSON, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, mood, direction, recommendations, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, s.Mood, string(s.Direction), string(recsJSON), s.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get returns a session by ID, or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domain.RecommendationSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, mood, direction, recommendations, created_at
		FROM sessions WHERE id = ?
	`, id)

	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RecommendationSession{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.RecommendationSession{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return s, nil
}

// List returns all sessions, most recently created first.
func (r *Repo) List(ctx context.Context) ([]domain.RecommendationSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, mood, direction, recommendations, created_at
		FROM sessions ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.RecommendationSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (domain.RecommendationSession, error) {
	var (
		s         domain.RecommendationSession
		direction string
		recsJSON  string
		createdAt string
	)
	if err := sc.Scan(&s.ID, &s.Mood, &direction, &recsJSON, &createdAt); err != nil {
		return domain.RecommendationSession{}, err
	}

	s.Direction = domain.Direction(direction)

	var docs []recDoc
	if err := json.Unmarshal([]byte(recsJSON), &docs); err != nil {
		return domain.RecommendationSession{}, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	s.Recommendations = make([]domain.BookRecommendation, len(docs))
	for i, d := range docs {
		s.Recommendations[i] = domain.BookRecommendation{
			Title:  d.Title,
			Author: d.Author,
			Reason: d.Reason,
			Match:  domain.ParseMatch(d.Match),
		}
	}

	created, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.RecommendationSession{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	s.CreatedAt = created
	return s, nil
}
