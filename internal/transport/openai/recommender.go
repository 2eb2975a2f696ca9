package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/shelfmate/shelfmate/internal/domain"
	"github.com/shelfmate/shelfmate/internal/metrics"
)

const systemPrompt = `You are a deeply thoughtful book recommendation engine. You know the reader's history, their reviews, and what they are in the mood for right now.

Recommend books that feel personally right, not generic bestseller lists. Consider the reader's taste patterns (what they rate highly, what themes recur in their reviews), their current mood, and their direction preference.

Rules:
- Recommend 5 books
- Mix well-known and lesser-known titles
- For "explore-new": actively diverge from recent genres and topics
- For "go-deeper": find books that share the DNA of their favorites
- For "balance": blend familiar comfort with fresh territory
- Each recommendation needs a specific, personal reason tied to their history and mood
- Do NOT recommend any book that appears in the reading history
- Label each recommendation with a match:
  - "closely-aligned": closely aligns with the reader's demonstrated taste
  - "boundary-pushing": related to their interests but pushes into new territory
  - "surprising": a left-field pick they would never find on their own
- Include a mix of match labels, not all closely-aligned

Respond with a JSON object of the form:
{"recommendations": [{"title": "...", "author": "...", "reason": "...", "match": "closely-aligned"}]}`

// maxCandidates caps how many candidates a single response may carry.
const maxCandidates = 10

// Recommender generates candidate recommendations via chat completions with a
// JSON response format.
type Recommender struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewRecommender creates a generation provider.
func NewRecommender(cfg Config) *Recommender {
	return &Recommender{
		client: newClient(cfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// candidateDoc is the wire shape of one candidate.
type candidateDoc struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Reason string `json:"reason"`
	Match  string `json:"match"`
}

// Generate implements domain.Generator.
func (r *Recommender) Generate(ctx context.Context, in domain.GenerationInput) ([]domain.BookRecommendation, error) {
	req := openai.ChatCompletionRequest{
		Model: r.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(in)},
		},
	}

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(r.model, "error").Inc()
		return nil, wrapAPIError("generation", err, domain.ErrGenerationProvider)
	}
	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(r.model, "error").Inc()
		return nil, fmt.Errorf("empty completion response: %w", domain.ErrGenerationProvider)
	}

	candidates, err := parseCandidates(resp.Choices[0].Message.Content)
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(r.model, "error").Inc()
		return nil, err
	}

	metrics.GenerationRequestsTotal.WithLabelValues(r.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(r.model).Observe(duration.Seconds())

	r.logger.Debug("generation complete",
		zap.Int("candidates", len(candidates)),
		zap.Duration("latency", duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return candidates, nil
}

// userPrompt assembles the user message from history, retrieval digest, mood,
// and direction.
func userPrompt(in domain.GenerationInput) string {
	var b strings.Builder
	b.WriteString("## My Reading History (recent, with my reviews)\n")
	b.WriteString(in.HistorySummary)
	b.WriteString("\n\n## Reviews Most Relevant to My Current Mood\n")
	b.WriteString(in.RetrievalContext)
	b.WriteString("\n\n## What I'm Looking For Right Now\n")
	fmt.Fprintf(&b, "Mood: %s\nDirection: %s\n\n", in.Mood, in.Direction)
	b.WriteString("Give me 5 book recommendations.")
	return b.String()
}

// parseCandidates decodes the JSON payload. Candidates without a title are
// dropped at the boundary; unknown match labels default to closely-aligned.
func parseCandidates(content string) ([]domain.BookRecommendation, error) {
	var parsed struct {
		Recommendations []candidateDoc `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("decode completion payload: %v: %w", err, domain.ErrGenerationProvider)
	}
	if len(parsed.Recommendations) == 0 {
		return nil, fmt.Errorf("completion carried no recommendations: %w", domain.ErrGenerationProvider)
	}

	docs := parsed.Recommendations
	if len(docs) > maxCandidates {
		docs = docs[:maxCandidates]
	}

	out := make([]domain.BookRecommendation, 0, len(docs))
	for _, d := range docs {
		if strings.TrimSpace(d.Title) == "" {
			continue
		}
		out = append(out, domain.BookRecommendation{
			Title:  d.Title,
			Author: d.Author,
			Reason: d.Reason,
			Match:  domain.ParseMatch(d.Match),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("completion carried no usable recommendations: %w", domain.ErrGenerationProvider)
	}
	return out, nil
}
