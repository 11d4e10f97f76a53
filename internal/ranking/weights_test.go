package ranking

import (
	"math/rand"
	"testing"
)

func candidate(title, description, content string) Candidate {
	return Candidate{
		Title:       StringPtr(title),
		Description: StringPtr(description),
		Content:     StringPtr(content),
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		c     Candidate
		terms []string
		want  int
	}{
		{
			name:  "no terms",
			c:     candidate("AI breakthrough", "new AI model", "the AI works"),
			terms: nil,
			want:  0,
		},
		{
			name:  "title only",
			c:     candidate("AI breakthrough", "", ""),
			terms: []string{"ai"},
			want:  5,
		},
		{
			name:  "all three fields",
			c:     candidate("AI breakthrough", "new AI model", "the AI works"),
			terms: []string{"ai"},
			want:  8,
		},
		{
			name:  "term case ignored",
			c:     candidate("ai breakthrough", "", ""),
			terms: []string{"AI"},
			want:  5,
		},
		{
			name:  "repeated occurrences count once",
			c:     candidate("AI AI AI", "ai and ai", "AI"),
			terms: []string{"ai"},
			want:  8,
		},
		{
			name:  "multiple terms accumulate",
			c:     candidate("Tech giants report", "technology story", "digital news"),
			terms: []string{"tech", "news", "digital"},
			want:  5 + 2 + 1 + 1,
		},
		{
			name:  "substring false positive is kept",
			c:     candidate("Police raid warehouse", "", ""),
			terms: []string{"ai"},
			want:  5,
		},
		{
			name:  "nil fields treated as empty",
			c:     Candidate{Title: StringPtr("Markets")},
			terms: []string{"markets"},
			want:  5,
		},
		{
			name:  "all fields nil",
			c:     Candidate{},
			terms: []string{"markets"},
			want:  0,
		},
		{
			name:  "empty term ignored",
			c:     candidate("anything", "anything", "anything"),
			terms: []string{""},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.c, tt.terms); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScore_CustomWeights(t *testing.T) {
	s := NewScorer(&FieldWeights{Title: 10, Description: 0, Content: 3})
	c := candidate("AI breakthrough", "new AI model", "the AI works")

	if got := s.Score(c, []string{"ai"}); got != 13 {
		t.Errorf("expected 13, got %d", got)
	}
}

func TestScore_Monotonic(t *testing.T) {
	terms := []string{"climate", "green"}
	base := candidate("Climate summit", "", "")
	before := Score(base, terms)

	additions := []Candidate{
		candidate("Climate summit", "green deal", ""),
		candidate("Climate summit green", "", ""),
		candidate("Climate summit", "", "the climate is changing"),
		candidate("Climate summit", "climate green", "green climate"),
	}
	for _, c := range additions {
		if after := Score(c, terms); after < before {
			t.Errorf("score decreased after adding a match: %d -> %d (%+v)", before, after, c)
		}
	}
}

func TestRank_SortsDescending(t *testing.T) {
	candidates := []Candidate{
		candidate("weather", "", ""),
		candidate("AI breakthrough", "new AI model", "the AI works"),
		candidate("", "AI in schools", ""),
		candidate("AI rules", "", ""),
	}

	ranked := Rank(candidates, []string{"ai"})

	wantScores := []int{8, 5, 2, 0}
	for i, want := range wantScores {
		if ranked[i].RelevanceScore != want {
			t.Errorf("position %d: score %d, want %d", i, ranked[i].RelevanceScore, want)
		}
	}
	if *ranked[0].Title != "AI breakthrough" {
		t.Errorf("unexpected top result %q", *ranked[0].Title)
	}

	// Input is untouched
	if candidates[0].RelevanceScore != 0 || *candidates[0].Title != "weather" {
		t.Error("Rank modified its input")
	}
}

func TestRank_StableOnTies(t *testing.T) {
	terms := []string{"ai"}
	candidates := []Candidate{
		candidate("AI one", "", ""),
		candidate("nothing", "", ""),
		candidate("AI two", "", ""),
		candidate("AI three", "", ""),
		candidate("still nothing", "", ""),
	}

	for run := 0; run < 20; run++ {
		ranked := Rank(candidates, terms)
		want := []string{"AI one", "AI two", "AI three", "nothing", "still nothing"}
		for i, title := range want {
			if *ranked[i].Title != title {
				t.Fatalf("run %d: position %d = %q, want %q", run, i, *ranked[i].Title, title)
			}
		}
	}
}

func TestRank_StableAfterShuffleAndRestore(t *testing.T) {
	terms := []string{"market"}
	original := make([]Candidate, 0, 12)
	for i := 0; i < 12; i++ {
		title := "Market report " + string(rune('a'+i))
		if i%3 == 0 {
			title = "Weather " + string(rune('a'+i))
		}
		original = append(original, candidate(title, "", ""))
	}
	want := Rank(original, terms)

	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 10; run++ {
		perm := rng.Perm(len(original))
		shuffled := make([]Candidate, len(original))
		for i, p := range perm {
			shuffled[i] = original[p]
		}
		restored := make([]Candidate, len(original))
		for i, p := range perm {
			restored[p] = shuffled[i]
		}

		got := Rank(restored, terms)
		for i := range want {
			if *got[i].Title != *want[i].Title {
				t.Fatalf("run %d: position %d = %q, want %q", run, i, *got[i].Title, *want[i].Title)
			}
		}
	}
}

func TestRank_Idempotent(t *testing.T) {
	terms := []string{"tech", "news"}
	candidates := []Candidate{
		candidate("Tech news today", "tech", "news"),
		candidate("news", "tech", ""),
		candidate("Tech", "", ""),
		candidate("other", "", "news"),
	}

	once := Rank(candidates, terms)
	twice := Rank(once, terms)

	for i := range once {
		if *once[i].Title != *twice[i].Title || once[i].RelevanceScore != twice[i].RelevanceScore {
			t.Errorf("position %d changed on re-rank: %q -> %q", i, *once[i].Title, *twice[i].Title)
		}
	}
}

func TestRank_Empty(t *testing.T) {
	if got := Rank(nil, []string{"ai"}); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

func TestRankItems_CarriesRecords(t *testing.T) {
	type record struct {
		id    int
		title string
	}
	records := []record{{1, "sports"}, {2, "AI news"}, {3, "AI"}}

	ranked := RankItems(nil, records, []string{"ai", "news"}, func(r record) Candidate {
		return Candidate{Title: StringPtr(r.title)}
	})

	wantIDs := []int{2, 3, 1}
	for i, id := range wantIDs {
		if ranked[i].Item.id != id {
			t.Errorf("position %d: id %d, want %d", i, ranked[i].Item.id, id)
		}
	}
	if ranked[0].Score != 10 {
		t.Errorf("expected top score 10, got %d", ranked[0].Score)
	}
}
