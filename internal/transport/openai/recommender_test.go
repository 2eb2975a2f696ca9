package openai

import (
	"errors"
	"strings"
	"testing"

	"github.com/shelfmate/shelfmate/internal/domain"
)

func TestParseCandidates(t *testing.T) {
	content := `{"recommendations": [
		{"title": "Piranesi", "author": "Susanna Clarke", "reason": "labyrinthine and gentle", "match": "boundary-pushing"},
		{"title": "", "author": "Nobody", "reason": "blank title", "match": "surprising"},
		{"title": "The Dispossessed", "author": "Ursula K. Le Guin", "reason": "ideas with heart", "match": "utterly unknown label"}
	]}`

	got, err := parseCandidates(content)
	if err != nil {
		t.Fatalf("parseCandidates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (blank title dropped)", len(got))
	}
	if got[0].Match != domain.MatchBoundary {
		t.Errorf("match = %q", got[0].Match)
	}
	if got[1].Match != domain.MatchClose {
		t.Errorf("unknown label should default to closely-aligned, got %q", got[1].Match)
	}
}

func TestParseCandidates_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "I would suggest Piranesi."},
		{"no recommendations", `{"recommendations": []}`},
		{"all blank titles", `{"recommendations": [{"title": "  "}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCandidates(tt.content)
			if !errors.Is(err, domain.ErrGenerationProvider) {
				t.Errorf("error = %v, want ErrGenerationProvider", err)
			}
		})
	}
}

func TestParseCandidates_CapsAtTen(t *testing.T) {
	var docs []string
	for i := 0; i < 15; i++ {
		docs = append(docs, `{"title": "Book `+string(rune('A'+i))+`", "author": "X", "reason": "r", "match": "surprising"}`)
	}
	content := `{"recommendations": [` + strings.Join(docs, ",") + `]}`

	got, err := parseCandidates(content)
	if err != nil {
		t.Fatalf("parseCandidates: %v", err)
	}
	if len(got) != maxCandidates {
		t.Errorf("len = %d, want %d", len(got), maxCandidates)
	}
}

func TestUserPrompt(t *testing.T) {
	p := userPrompt(domain.GenerationInput{
		HistorySummary:   "- Dune by Frank Herbert | Rating: 5/5",
		RetrievalContext: "No relevant past reviews found.",
		Mood:             "cozy mystery",
		Direction:        domain.DirectionGoDeeper,
	})
	for _, want := range []string{"Dune", "cozy mystery", "go-deeper", "No relevant past reviews found."} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
