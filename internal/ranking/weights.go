package ranking

import (
	"sort"
	"strings"
)

// Candidate holds the text fields the scorer reads from an article.
// A nil field is treated as an empty string.
type Candidate struct {
	Title       *string
	Description *string
	Content     *string

	// RelevanceScore is set by Rank.
	RelevanceScore int
}

// Ranked pairs an arbitrary record with its computed relevance score.
type Ranked[T any] struct {
	Item  T
	Score int
}

// Scorer computes keyword relevance scores with a fixed set of field weights.
type Scorer struct {
	weights FieldWeights
}

// NewScorer creates a Scorer. A nil weights value uses DefaultWeights.
func NewScorer(weights *FieldWeights) *Scorer {
	if weights == nil {
		weights = DefaultWeights()
	}
	return &Scorer{weights: *weights}
}

// Weights returns a copy of the scorer's field weights.
func (s *Scorer) Weights() FieldWeights {
	return s.weights
}

var defaultScorer = NewScorer(nil)

// Score computes the relevance of a candidate using the default weights.
func Score(c Candidate, terms []string) int {
	return defaultScorer.Score(c, terms)
}

// Rank scores and sorts candidates using the default weights.
func Rank(candidates []Candidate, terms []string) []Candidate {
	return defaultScorer.Rank(candidates, terms)
}

// Score returns the sum of field weights for every (term, field) pair where
// the lowercased term is a substring of the lowercased field.
// Empty terms are ignored.
func (s *Scorer) Score(c Candidate, terms []string) int {
	if len(terms) == 0 {
		return 0
	}

	title := lowerOrEmpty(c.Title)
	description := lowerOrEmpty(c.Description)
	content := lowerOrEmpty(c.Content)

	score := 0
	for _, term := range terms {
		term = strings.ToLower(term)
		if term == "" {
			continue
		}
		if strings.Contains(title, term) {
			score += s.weights.Title
		}
		if strings.Contains(description, term) {
			score += s.weights.Description
		}
		if strings.Contains(content, term) {
			score += s.weights.Content
		}
	}
	return score
}

// Rank returns a new slice of candidates with RelevanceScore set, sorted by
// score descending. Candidates with equal scores keep their input order.
func (s *Scorer) Rank(candidates []Candidate, terms []string) []Candidate {
	ranked := RankItems(s, candidates, terms, func(c Candidate) Candidate { return c })
	out := make([]Candidate, len(ranked))
	for i, r := range ranked {
		out[i] = r.Item
		out[i].RelevanceScore = r.Score
	}
	return out
}

// RankItems scores arbitrary records and returns them sorted by score
// descending, preserving input order among equal scores. fields extracts
// the text fields of a record. The input slice is not modified.
func RankItems[T any](s *Scorer, items []T, terms []string, fields func(T) Candidate) []Ranked[T] {
	if s == nil {
		s = defaultScorer
	}
	ranked := make([]Ranked[T], len(items))
	for i, item := range items {
		ranked[i] = Ranked[T]{Item: item, Score: s.Score(fields(item), terms)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// lowerOrEmpty lowercases an optional field.
func lowerOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ToLower(*s)
}

// StringPtr returns a pointer to s. Convenience for building candidates.
func StringPtr(s string) *string {
	return &s
}
