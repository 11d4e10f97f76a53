// Package ranking provides query expansion and keyword relevance ranking
// for article search.
//
// Basic Usage:
//
//	// Build the synonym table and weights once at startup
//	synonyms, err := ranking.LoadSynonyms(cfg.SynonymsFile)
//	weights, err := ranking.LoadCalibration(cfg.RankingCalibrationFile)
//	expander := ranking.NewExpander(synonyms)
//	scorer := ranking.NewScorer(weights)
//
//	// Per request
//	expanded := expander.Expand("tech news") // "article digital it news story tech technology"
//	terms := ranking.Terms(expanded)
//	ranked := scorer.Rank(candidates, terms)
//
// Expansion:
//
// A query is lowercased, split into word tokens (runs of letters, digits and
// underscores) and widened with at most MaxSynonymsPerTerm synonyms for every
// token found in the synonym table. Terms are sorted before joining so the
// expanded string is reproducible.
//
// Scoring:
//
// Each term adds the title, description and content weights (5, 2 and 1 by
// default) for every field that contains it as a substring. Matching is
// presence-based: a term repeated within a field counts once. Substring
// matching means short terms can match inside longer words ("ai" in "raid").
//
// Ranking sorts by score descending with a stable sort, so candidates with
// equal scores keep their input order.
//
// Everything in this package is safe for concurrent use. Synonym tables and
// weights are immutable after construction.
package ranking
