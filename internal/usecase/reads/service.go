package reads

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shelfmate/shelfmate/internal/domain"
)

// Service handles logging and browsing of read records. Review embedding is
// best-effort: a record is never lost because the embedding provider is down.
type Service struct {
	repo     Repository
	index    VectorIndex
	resolver ISBNResolver
	embed    domain.Embedder
	log      *zap.Logger
}

// New creates a read service. resolver and embed may be nil, which disables
// ISBN resolution and review embedding respectively.
func New(repo Repository, index VectorIndex, resolver ISBNResolver, embed domain.Embedder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, index: index, resolver: resolver, embed: embed, log: log}
}

// Log validates and persists a new read. A missing ISBN is resolved from
// external catalogs when possible, and a non-empty review is embedded into
// the vector index so future recommendations can retrieve it.
func (s *Service) Log(ctx context.Context, p domain.ReadParams) (domain.Read, error) {
	read, err := domain.NewRead(p)
	if err != nil {
		return domain.Read{}, err
	}

	if read.ISBN == "" && s.resolver != nil {
		read.ISBN = s.resolver.ResolveISBN(ctx, read.Title, read.Author)
	}

	if err := s.repo.Insert(ctx, read); err != nil {
		return domain.Read{}, fmt.Errorf("insert read: %w", err)
	}

	if read.Review != "" {
		s.embedReview(ctx, read)
	}

	return read, nil
}

// List returns reads matching the filter, most recent first.
func (s *Service) List(ctx context.Context, f domain.ReadFilter) ([]domain.Read, error) {
	return s.repo.List(ctx, f)
}

// Get returns one read by ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Read, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) embedReview(ctx context.Context, read domain.Read) {
	if s.embed == nil || s.index == nil {
		return
	}

	text := read.EmbeddingText()
	result, err := s.embed.Embed(ctx, text)
	if err != nil {
		s.log.Warn("review embedding skipped", zap.String("read_id", read.ID), zap.Error(err))
		return
	}

	meta := domain.ReviewMetadata{
		Title:  read.Title,
		Author: read.Author,
		Rating: read.Rating,
		Status: read.Status,
	}
	if err := s.index.Upsert(ctx, read.ID, result.Embedding, text, meta); err != nil {
		s.log.Warn("review index upsert failed", zap.String("read_id", read.ID), zap.Error(err))
	}
}
