package lookup

import (
	"context"

	"go.uber.org/zap"

	"github.com/shelfmate/shelfmate/internal/domain"
)

// defaultMaxResults matches what the catalogs are asked for when the caller
// does not care.
const defaultMaxResults = 5

// Service searches external catalogs with graceful fallback: the primary
// catalog is tried first, the fallback only when the primary errors or comes
// back empty. Catalog failures never surface to callers.
type Service struct {
	primary  Catalog
	fallback Catalog
	log      *zap.Logger
}

// New creates a lookup service. Either catalog may be nil.
func New(primary, fallback Catalog, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{primary: primary, fallback: fallback, log: log}
}

// Search returns candidate books for a free-text query. An empty result is
// normal; catalog errors are logged and swallowed.
func (s *Service) Search(ctx context.Context, query string, maxResults int) []domain.BookSearchResult {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	for _, c := range []Catalog{s.primary, s.fallback} {
		if c == nil {
			continue
		}
		results, err := c.Search(ctx, query, maxResults)
		if err != nil {
			s.log.Debug("catalog search failed", zap.Error(err))
			continue
		}
		if len(results) > 0 {
			return results
		}
	}
	return nil
}

// ResolveISBN tries each catalog in turn for an ISBN matching title and
// author. Returns "" when neither catalog can produce one.
func (s *Service) ResolveISBN(ctx context.Context, title, author string) string {
	for _, c := range []Catalog{s.primary, s.fallback} {
		if c == nil {
			continue
		}
		isbn, err := c.LookupISBN(ctx, title, author)
		if err != nil {
			s.log.Debug("isbn lookup failed", zap.Error(err))
			continue
		}
		if isbn != "" {
			return isbn
		}
	}
	return ""
}
