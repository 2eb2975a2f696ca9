// Package reads persists logged books in the reads table.
package reads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shelfmate/shelfmate/internal/domain"
)

const (
	timeLayout = time.RFC3339Nano
	dateLayout = "2006-01-02"
)

// Repo implements the record store contract for reads.
type Repo struct {
	db *sql.DB
}

// New creates a reads repository over an open database handle.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Insert persists a read. Fails with a domain.ErrDuplicateRead-wrapping error
// when the same (title, author) is already logged, case-insensitively.
func (r *Repo) Insert(ctx context.Context, read domain.Read) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `
		SELECT 1 FROM reads WHERE LOWER(title) = LOWER(?) AND LOWER(author) = LOWER(?)
	`, read.Title, read.Author).Scan(&exists)
	if err == nil {
		return domain.NewDuplicateRead(read.Title, read.Author)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check duplicate: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reads (id, title, author, isbn, status, rating, review, started_at, finished_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, read.ID, read.Title, read.Author, read.ISBN, string(read.Status), read.Rating, read.Review,
		formatDate(read.StartedAt), formatDate(read.FinishedAt), read.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert read: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Exists reports whether a read with the same (title, author) is logged,
// case-insensitively.
func (r *Repo) Exists(ctx context.Context, title, author string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM reads WHERE LOWER(title) = LOWER(?) AND LOWER(author) = LOWER(?)
	`, title, author).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check exists: %w", err)
	}
	return true, nil
}

// Get returns a read by ID, or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domain.Read, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, author, isbn, status, rating, review, started_at, finished_at, created_at
		FROM reads WHERE id = ?
	`, id)

	read, err := scanRead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Read{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Read{}, fmt.Errorf("get read %s: %w", id, err)
	}
	return read, nil
}

// List returns reads matching the filter, most recently created first.
func (r *Repo) List(ctx context.Context, f domain.ReadFilter) ([]domain.Read, error) {
	query := `
		SELECT id, title, author, isbn, status, rating, review, started_at, finished_at, created_at
		FROM reads WHERE 1=1`
	var args []any
	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, string(f.Status))
	}
	if f.MinRating > 0 {
		query += " AND rating >= ?"
		args = append(args, f.MinRating)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reads: %w", err)
	}
	defer rows.Close()

	var out []domain.Read
	for rows.Next() {
		read, err := scanRead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan read: %w", err)
		}
		out = append(out, read)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reads: %w", err)
	}
	return out, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRead(s scanner) (domain.Read, error) {
	var (
		read                  domain.Read
		status                string
		startedAt, finishedAt sql.NullString
		createdAt             string
	)
	if err := s.Scan(&read.ID, &read.Title, &read.Author, &read.ISBN, &status,
		&read.Rating, &read.Review, &startedAt, &finishedAt, &createdAt); err != nil {
		return domain.Read{}, err
	}

	read.Status = domain.Status(status)
	read.StartedAt = parseDate(startedAt)
	read.FinishedAt = parseDate(finishedAt)

	created, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.Read{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	read.CreatedAt = created
	return read, nil
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func parseDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}
