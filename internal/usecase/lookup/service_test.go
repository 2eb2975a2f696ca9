package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/shelfmate/shelfmate/internal/domain"
)

// --- Mocks ---

type mockCatalog struct {
	searchResults []domain.BookSearchResult
	searchErr     error
	isbn          string
	isbnErr       error
	searchCalls   int
	isbnCalls     int
}

func (m *mockCatalog) Search(_ context.Context, _ string, _ int) ([]domain.BookSearchResult, error) {
	m.searchCalls++
	return m.searchResults, m.searchErr
}

func (m *mockCatalog) LookupISBN(_ context.Context, _, _ string) (string, error) {
	m.isbnCalls++
	return m.isbn, m.isbnErr
}

func TestSearch_PrimaryWins(t *testing.T) {
	primary := &mockCatalog{searchResults: []domain.BookSearchResult{{Title: "Dune", Source: "googlebooks"}}}
	fallback := &mockCatalog{searchResults: []domain.BookSearchResult{{Title: "Dune", Source: "openlibrary"}}}
	svc := New(primary, fallback, nil)

	got := svc.Search(context.Background(), "dune", 5)
	if len(got) != 1 || got[0].Source != "googlebooks" {
		t.Fatalf("Search = %+v, want primary result", got)
	}
	if fallback.searchCalls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.searchCalls)
	}
}

func TestSearch_FallbackOnError(t *testing.T) {
	primary := &mockCatalog{searchErr: errors.New("boom")}
	fallback := &mockCatalog{searchResults: []domain.BookSearchResult{{Title: "Dune", Source: "openlibrary"}}}
	svc := New(primary, fallback, nil)

	got := svc.Search(context.Background(), "dune", 5)
	if len(got) != 1 || got[0].Source != "openlibrary" {
		t.Fatalf("Search = %+v, want fallback result", got)
	}
}

func TestSearch_FallbackOnEmpty(t *testing.T) {
	primary := &mockCatalog{}
	fallback := &mockCatalog{searchResults: []domain.BookSearchResult{{Title: "Dune"}}}
	svc := New(primary, fallback, nil)

	if got := svc.Search(context.Background(), "dune", 5); len(got) != 1 {
		t.Fatalf("Search = %+v, want fallback result", got)
	}
}

func TestSearch_AllFail(t *testing.T) {
	primary := &mockCatalog{searchErr: errors.New("down")}
	fallback := &mockCatalog{searchErr: errors.New("also down")}
	svc := New(primary, fallback, nil)

	if got := svc.Search(context.Background(), "dune", 5); got != nil {
		t.Fatalf("Search = %+v, want nil", got)
	}
}

func TestResolveISBN_Fallback(t *testing.T) {
	primary := &mockCatalog{isbnErr: errors.New("down")}
	fallback := &mockCatalog{isbn: "9780441013593"}
	svc := New(primary, fallback, nil)

	if got := svc.ResolveISBN(context.Background(), "Dune", "Frank Herbert"); got != "9780441013593" {
		t.Fatalf("ResolveISBN = %q, want fallback ISBN", got)
	}
}

func TestResolveISBN_NoneFound(t *testing.T) {
	svc := New(&mockCatalog{}, &mockCatalog{}, nil)
	if got := svc.ResolveISBN(context.Background(), "Dune", "Frank Herbert"); got != "" {
		t.Fatalf("ResolveISBN = %q, want empty", got)
	}
}

func TestNilCatalogs(t *testing.T) {
	svc := New(nil, nil, nil)
	if got := svc.Search(context.Background(), "dune", 0); got != nil {
		t.Fatalf("Search = %+v, want nil", got)
	}
	if got := svc.ResolveISBN(context.Background(), "Dune", "Frank Herbert"); got != "" {
		t.Fatalf("ResolveISBN = %q, want empty", got)
	}
}
