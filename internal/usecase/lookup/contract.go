package lookup

import (
	"context"

	"github.com/shelfmate/shelfmate/internal/domain"
)

// Catalog is one external book catalog. Implementations may fail or return
// nothing; the service tolerates both.
type Catalog interface {
	Search(ctx context.Context, query string, maxResults int) ([]domain.BookSearchResult, error)
	LookupISBN(ctx context.Context, title, author string) (string, error)
}
