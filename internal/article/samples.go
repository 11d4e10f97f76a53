package article

import (
	"context"
	"fmt"
	"log/slog"
)

// SampleArticles returns the starter catalog used to seed development databases.
func SampleArticles() []Article {
	return []Article{
		{
			Title:       "AI Revolution in Healthcare",
			Description: "Artificial intelligence is transforming medical diagnosis and treatment.",
			Content:     "Hospitals are adopting machine learning tools to read scans and flag risks earlier.",
			Category:    "Technology",
			Tags:        "AI, Healthcare, Technology",
			Source:      "TechNews",
			Author:      "John Doe",
			ImageURL:    "https://via.placeholder.com/400x200?text=AI+Healthcare",
		},
		{
			Title:       "Climate Change Solutions",
			Description: "New renewable energy technologies offering hope for the future.",
			Content:     "Solar, wind and storage projects are scaling faster than forecast.",
			Category:    "Environment",
			Tags:        "Climate, Environment, Energy",
			Source:      "EcoDaily",
			Author:      "Jane Smith",
			ImageURL:    "https://via.placeholder.com/400x200?text=Climate+Solutions",
		},
		{
			Title:       "Stock Market Trends 2025",
			Description: "Analysis of current market conditions and future predictions.",
			Content:     "Analysts expect volatility as rate decisions and earnings season overlap.",
			Category:    "Business",
			Tags:        "Finance, Business, Markets",
			Source:      "FinanceToday",
			Author:      "Mike Johnson",
			ImageURL:    "https://via.placeholder.com/400x200?text=Stock+Market",
		},
	}
}

// Seed inserts the sample articles when the catalog is empty.
// Returns the number of articles inserted.
func Seed(ctx context.Context, repo Repository) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	if n > 0 {
		slog.DebugContext(ctx, "article catalog not empty, skipping seed", "count", n)
		return 0, nil
	}

	inserted := 0
	for _, a := range SampleArticles() {
		if err := repo.Create(ctx, &a); err != nil {
			return inserted, fmt.Errorf("failed to seed article %q: %w", a.Title, err)
		}
		inserted++
	}
	slog.InfoContext(ctx, "seeded sample articles", "count", inserted)
	return inserted, nil
}
