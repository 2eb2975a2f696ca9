package reads

import (
	"context"
	"errors"
	"testing"

	"github.com/shelfmate/shelfmate/internal/domain"
)

// --- Mocks ---

type mockRepo struct {
	insertErr error
	inserted  []domain.Read
	getRead   domain.Read
	getErr    error
	listReads []domain.Read
	listErr   error
}

func (m *mockRepo) Insert(_ context.Context, read domain.Read) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, read)
	return nil
}

func (m *mockRepo) Get(_ context.Context, _ string) (domain.Read, error) {
	return m.getRead, m.getErr
}

func (m *mockRepo) List(_ context.Context, _ domain.ReadFilter) ([]domain.Read, error) {
	return m.listReads, m.listErr
}

type mockIndex struct {
	upsertErr   error
	upsertCalls int
	lastReadID  string
	lastVector  []float32
	lastText    string
	lastMeta    domain.ReviewMetadata
}

func (m *mockIndex) Upsert(_ context.Context, readID string, vector []float32, text string, meta domain.ReviewMetadata) error {
	m.upsertCalls++
	m.lastReadID = readID
	m.lastVector = vector
	m.lastText = text
	m.lastMeta = meta
	return m.upsertErr
}

type mockResolver struct {
	isbn  string
	calls int
}

func (m *mockResolver) ResolveISBN(_ context.Context, _, _ string) string {
	m.calls++
	return m.isbn
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return m.result, nil
}

func TestLog_PersistsAndEmbeds(t *testing.T) {
	repo := &mockRepo{}
	index := &mockIndex{}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}}
	svc := New(repo, index, nil, embed, nil)

	read, err := svc.Log(context.Background(), domain.ReadParams{
		Title:  "Dune",
		Author: "Frank Herbert",
		Rating: 5,
		Review: "Sandworms and spice.",
	})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("inserted %d reads, want 1", len(repo.inserted))
	}
	if index.upsertCalls != 1 {
		t.Fatalf("index upserts = %d, want 1", index.upsertCalls)
	}
	if index.lastReadID != read.ID {
		t.Errorf("indexed read ID = %q, want %q", index.lastReadID, read.ID)
	}
	if index.lastMeta.Title != "Dune" || index.lastMeta.Rating != 5 {
		t.Errorf("index metadata = %+v", index.lastMeta)
	}
	if index.lastText != read.EmbeddingText() {
		t.Errorf("indexed text = %q, want %q", index.lastText, read.EmbeddingText())
	}
}

func TestLog_NoReviewSkipsEmbedding(t *testing.T) {
	repo := &mockRepo{}
	index := &mockIndex{}
	svc := New(repo, index, nil, &mockEmbedder{}, nil)

	if _, err := svc.Log(context.Background(), domain.ReadParams{Title: "Dune", Author: "Frank Herbert"}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if index.upsertCalls != 0 {
		t.Errorf("index upserts = %d, want 0", index.upsertCalls)
	}
}

func TestLog_EmbedFailureIsNotFatal(t *testing.T) {
	repo := &mockRepo{}
	index := &mockIndex{}
	embed := &mockEmbedder{err: domain.ErrEmbeddingProvider}
	svc := New(repo, index, nil, embed, nil)

	if _, err := svc.Log(context.Background(), domain.ReadParams{
		Title: "Dune", Author: "Frank Herbert", Review: "Great.",
	}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("inserted %d reads, want 1", len(repo.inserted))
	}
	if index.upsertCalls != 0 {
		t.Errorf("index upserts = %d, want 0", index.upsertCalls)
	}
}

func TestLog_ResolvesMissingISBN(t *testing.T) {
	repo := &mockRepo{}
	resolver := &mockResolver{isbn: "9780441013593"}
	svc := New(repo, nil, resolver, nil, nil)

	read, err := svc.Log(context.Background(), domain.ReadParams{Title: "Dune", Author: "Frank Herbert"})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if read.ISBN != "9780441013593" {
		t.Errorf("ISBN = %q, want resolved value", read.ISBN)
	}
	if resolver.calls != 1 {
		t.Errorf("resolver calls = %d, want 1", resolver.calls)
	}
}

func TestLog_KeepsProvidedISBN(t *testing.T) {
	repo := &mockRepo{}
	resolver := &mockResolver{isbn: "other"}
	svc := New(repo, nil, resolver, nil, nil)

	read, err := svc.Log(context.Background(), domain.ReadParams{
		Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593",
	})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if read.ISBN != "9780441013593" {
		t.Errorf("ISBN = %q, want provided value", read.ISBN)
	}
	if resolver.calls != 0 {
		t.Errorf("resolver calls = %d, want 0", resolver.calls)
	}
}

func TestLog_ValidationError(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, nil, nil, nil, nil)

	if _, err := svc.Log(context.Background(), domain.ReadParams{Title: "", Author: "x"}); err == nil {
		t.Fatal("Log with empty title succeeded")
	}
	if len(repo.inserted) != 0 {
		t.Errorf("inserted %d reads, want 0", len(repo.inserted))
	}
}

func TestLog_DuplicatePropagates(t *testing.T) {
	repo := &mockRepo{insertErr: domain.NewDuplicateRead("Dune", "Frank Herbert")}
	svc := New(repo, nil, nil, nil, nil)

	_, err := svc.Log(context.Background(), domain.ReadParams{Title: "Dune", Author: "Frank Herbert"})
	if !errors.Is(err, domain.ErrDuplicateRead) {
		t.Fatalf("err = %v, want ErrDuplicateRead", err)
	}
}
