package recommend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shelfmate/shelfmate/internal/domain"
)

const (
	// historyLimit caps how many recent reads go into the history summary.
	historyLimit = 20

	// reviewExcerptLimit caps each review excerpt inside the summary.
	reviewExcerptLimit = 150

	// maxAttempts bounds the generation loop: one initial call plus one
	// retry when duplicates leave the batch short.
	maxAttempts = 2

	noHistorySummary = "No reading history yet."
)

// Service orchestrates recommendations: reading-history summary plus
// retrieval context plus blocklist in, a persisted session out.
type Service struct {
	reads    ReadStore
	sessions SessionStore
	index    VectorIndex
	embed    domain.Embedder
	gen      domain.Generator
	log      *zap.Logger
}

// New creates a recommendation service. embed and gen are nil when no
// provider credential is configured; Recommend then fails fast.
func New(reads ReadStore, sessions SessionStore, index VectorIndex, embed domain.Embedder, gen domain.Generator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{reads: reads, sessions: sessions, index: index, embed: embed, gen: gen, log: log}
}

// Recommend produces and persists a recommendation session for the given
// mood and direction. The session may hold fewer than five entries when the
// provider cannot come up with enough non-blocked candidates within the
// two attempts; that is a thin result, not an error.
func (s *Service) Recommend(ctx context.Context, mood string, direction domain.Direction) (domain.RecommendationSession, error) {
	if s.embed == nil || s.gen == nil {
		return domain.RecommendationSession{}, fmt.Errorf("recommendations need an OpenAI API key: %w", domain.ErrNotConfigured)
	}
	if strings.TrimSpace(mood) == "" {
		return domain.RecommendationSession{}, fmt.Errorf("mood is required")
	}
	if _, err := domain.ParseDirection(string(direction)); err != nil {
		return domain.RecommendationSession{}, err
	}

	allReads, err := s.reads.List(ctx, domain.ReadFilter{})
	if err != nil {
		return domain.RecommendationSession{}, fmt.Errorf("list reads: %w", err)
	}
	allSessions, err := s.sessions.List(ctx)
	if err != nil {
		return domain.RecommendationSession{}, fmt.Errorf("list sessions: %w", err)
	}

	history := historySummary(allReads)
	rc := s.buildContext(ctx, mood)
	block := buildBlocklist(allReads, allSessions)

	accepted, err := s.generate(ctx, domain.GenerationInput{
		HistorySummary:   history,
		RetrievalContext: rc.Digest,
		Mood:             mood,
		Direction:        direction,
	}, block)
	if err != nil {
		return domain.RecommendationSession{}, err
	}

	session, err := domain.NewSession(mood, direction, accepted)
	if err != nil {
		return domain.RecommendationSession{}, err
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		return domain.RecommendationSession{}, fmt.Errorf("insert session: %w", err)
	}

	s.log.Info("recommendation session persisted",
		zap.String("session_id", session.ID),
		zap.Int("recommendations", len(session.Recommendations)),
		zap.Bool("degraded_context", rc.Degraded))
	return session, nil
}

// generate runs the bounded retry loop, filtering each batch against the
// blocklist. Accepted titles join the blocklist immediately so duplicates
// within and across attempts are both rejected. A provider failure on any
// attempt is terminal: partial batches cannot be retried mid-batch.
func (s *Service) generate(ctx context.Context, in domain.GenerationInput, block blocklist) ([]domain.BookRecommendation, error) {
	var accepted []domain.BookRecommendation
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		batch, err := s.gen.Generate(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("generate recommendations (attempt %d): %w", attempt, err)
		}

		for _, rec := range batch {
			if block.blocked(rec.Title) {
				continue
			}
			accepted = append(accepted, rec)
			block.add(rec.Title)
		}

		if len(accepted) >= domain.MaxRecommendations {
			break
		}
	}

	if len(accepted) > domain.MaxRecommendations {
		accepted = accepted[:domain.MaxRecommendations]
	}
	return accepted, nil
}

// Sessions returns all past sessions, most recent first.
func (s *Service) Sessions(ctx context.Context) ([]domain.RecommendationSession, error) {
	return s.sessions.List(ctx)
}

// Session returns one past session by ID.
func (s *Service) Session(ctx context.Context, id string) (domain.RecommendationSession, error) {
	return s.sessions.Get(ctx, id)
}

// historySummary renders the most recent reads as prompt-ready lines. reads
// must already be ordered most recent first.
func historySummary(reads []domain.Read) string {
	recent := reads
	if len(recent) > historyLimit {
		recent = recent[:historyLimit]
	}
	if len(recent) == 0 {
		return noHistorySummary
	}

	lines := make([]string, 0, len(recent))
	for _, r := range recent {
		line := fmt.Sprintf("- %s by %s | Rating: %d/5 | Status: %s", r.Title, r.Author, r.Rating, r.Status)
		if r.Review != "" {
			line += fmt.Sprintf("\n  Review: %q", excerpt(r.Review, reviewExcerptLimit))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func excerpt(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
