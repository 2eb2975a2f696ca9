package recommend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	// contextTopK is how many nearest reviews feed the retrieval digest.
	contextTopK = 5

	// noContextSentinel stands in for the digest when the embedding provider
	// or the index is unavailable. The pipeline proceeds degraded instead of
	// failing the whole request.
	noContextSentinel = "No context available."

	// noHistorySentinel stands in for the digest when the index has nothing
	// relevant to offer. Not a degraded state, just an empty shelf.
	noHistorySentinel = "No relevant past reviews found."
)

// retrievalContext is the outcome of retrieval-context building. Degraded
// marks digests produced by a provider or index failure rather than by an
// actual similarity search.
type retrievalContext struct {
	Digest   string
	Degraded bool
}

// buildContext turns the mood into a digest of the most semantically
// relevant past reviews. Failures never propagate: the caller always gets a
// usable digest string.
func (s *Service) buildContext(ctx context.Context, mood string) retrievalContext {
	result, err := s.embed.Embed(ctx, mood)
	if err != nil {
		s.log.Warn("mood embedding failed, proceeding without context", zap.Error(err))
		return retrievalContext{Digest: noContextSentinel, Degraded: true}
	}

	hits, err := s.index.Query(ctx, result.Embedding, contextTopK)
	if err != nil {
		s.log.Warn("review index query failed, proceeding without context", zap.Error(err))
		return retrievalContext{Digest: noContextSentinel, Degraded: true}
	}
	if len(hits) == 0 {
		return retrievalContext{Digest: noHistorySentinel}
	}

	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		parts = append(parts, fmt.Sprintf("[%s, rated %d/5]\n%s", h.Metadata.Title, h.Metadata.Rating, h.Text))
	}
	return retrievalContext{Digest: strings.Join(parts, "\n\n")}
}
