package domain

import (
	"fmt"
	"strings"
	"time"
)

// Direction steers how far a recommendation batch strays from known taste.
type Direction string

const (
	DirectionExploreNew Direction = "explore-new"
	DirectionGoDeeper   Direction = "go-deeper"
	DirectionBalance    Direction = "balance"
)

// ParseDirection validates a direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionExploreNew, DirectionGoDeeper, DirectionBalance:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown direction %q (want explore-new, go-deeper, or balance)", s)
}

// Match classifies how a recommendation relates to demonstrated taste.
type Match string

const (
	// MatchClose closely aligns with what the reader already loves.
	MatchClose Match = "closely-aligned"
	// MatchBoundary is related to their interests but pushes into new territory.
	MatchBoundary Match = "boundary-pushing"
	// MatchSurprising is a left-field pick they would not find on their own.
	MatchSurprising Match = "surprising"
)

// ParseMatch maps a provider label to a Match, defaulting unknown or missing
// labels to MatchClose.
func ParseMatch(s string) Match {
	switch Match(strings.ToLower(strings.TrimSpace(s))) {
	case MatchClose, MatchBoundary, MatchSurprising:
		return Match(strings.ToLower(strings.TrimSpace(s)))
	}
	return MatchClose
}

// BookRecommendation is a single recommended book. Ephemeral: it only exists
// inside a RecommendationSession.
type BookRecommendation struct {
	Title  string
	Author string
	Reason string
	Match  Match
}

// MaxRecommendations caps the recommendation list stored per session.
const MaxRecommendations = 5

// RecommendationSession is one recommendation request and its accepted
// results, stored for history. Immutable once persisted.
type RecommendationSession struct {
	ID              string
	Mood            string
	Direction       Direction
	Recommendations []BookRecommendation
	CreatedAt       time.Time
}

// NewSession creates a session with a fresh ID and UTC creation timestamp.
// The recommendation list must already be final and within the cap.
func NewSession(mood string, direction Direction, recs []BookRecommendation) (RecommendationSession, error) {
	if strings.TrimSpace(mood) == "" {
		return RecommendationSession{}, fmt.Errorf("mood is required")
	}
	if _, err := ParseDirection(string(direction)); err != nil {
		return RecommendationSession{}, err
	}
	if len(recs) > MaxRecommendations {
		return RecommendationSession{}, fmt.Errorf("at most %d recommendations per session, got %d",
			MaxRecommendations, len(recs))
	}

	return RecommendationSession{
		ID:              NewID(),
		Mood:            mood,
		Direction:       direction,
		Recommendations: recs,
		CreatedAt:       time.Now().UTC(),
	}, nil
}
