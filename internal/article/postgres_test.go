package article

import (
	"strings"
	"testing"
)

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name      string
		filter    Filter
		wantParts []string
		wantArgs  []any
	}{
		{
			name:      "no filter",
			filter:    Filter{},
			wantParts: []string{"FROM articles ORDER BY published_at DESC, id DESC LIMIT $1"},
			wantArgs:  []any{DefaultSearchLimit},
		},
		{
			name:      "category only",
			filter:    Filter{Category: "Business", Limit: 10},
			wantParts: []string{"WHERE category = $1", "LIMIT $2"},
			wantArgs:  []any{"Business", 10},
		},
		{
			name:   "category and terms",
			filter: Filter{Category: "Tech", Terms: []string{"ai", "100%_real"}},
			wantParts: []string{
				"category = $1 AND (",
				"title ILIKE $2 OR description ILIKE $2 OR tags ILIKE $2",
				"title ILIKE $3 OR description ILIKE $3 OR tags ILIKE $3",
				"LIMIT $4",
			},
			wantArgs: []any{"Tech", "%ai%", `%100\%\_real%`, DefaultSearchLimit},
		},
		{
			name:      "All category ignored and term cap applied",
			filter:    Filter{Category: AllCategories, Terms: []string{"a", "b", "c", "d", "e", "f"}},
			wantParts: []string{"ILIKE $5", "LIMIT $6"},
			wantArgs:  []any{"%a%", "%b%", "%c%", "%d%", "%e%", DefaultSearchLimit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildSearchQuery(tt.filter.normalized())
			for _, part := range tt.wantParts {
				if !strings.Contains(query, part) {
					t.Errorf("query missing %q:\n%s", part, query)
				}
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("expected %d args, got %d: %v", len(tt.wantArgs), len(args), args)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("arg %d = %v, want %v", i, args[i], tt.wantArgs[i])
				}
			}
			if strings.Contains(query, "category = ") && tt.filter.Category == AllCategories {
				t.Error("All category should not filter")
			}
		})
	}
}
