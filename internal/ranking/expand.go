package ranking

import (
	"regexp"
	"sort"
	"strings"
)

// MaxSynonymsPerTerm is the number of leading synonyms added for each recognized token.
const MaxSynonymsPerTerm = 3

// wordPattern matches a maximal run of letters, digits and underscores.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Expander widens search queries with related terms from a synonym table.
type Expander struct {
	synonyms *SynonymTable
}

// NewExpander creates an Expander backed by the given table.
// A nil table falls back to the built-in dictionary.
func NewExpander(synonyms *SynonymTable) *Expander {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	return &Expander{synonyms: synonyms}
}

// Tokenize lowercases and trims the query and splits it into word tokens.
// Separators (anything that is not a letter, digit or underscore) are discarded.
func Tokenize(query string) []string {
	return wordPattern.FindAllString(strings.ToLower(strings.TrimSpace(query)), -1)
}

// Expand returns the query widened with synonyms.
//
// An empty query is returned unchanged. Otherwise the result is the set of
// distinct tokens plus up to MaxSynonymsPerTerm synonyms per recognized token,
// sorted and joined with single spaces. A query with no word tokens yields "".
func (e *Expander) Expand(query string) string {
	if query == "" {
		return query
	}
	return strings.Join(e.termSet(query), " ")
}

// ExpandPtr is Expand for optional queries. A nil query is returned as nil.
func (e *Expander) ExpandPtr(query *string) *string {
	if query == nil {
		return nil
	}
	expanded := e.Expand(*query)
	return &expanded
}

// ExpandTerms expands query and returns its scoring terms.
// Equivalent to Terms(e.Expand(query)).
func (e *Expander) ExpandTerms(query string) []string {
	return Terms(e.Expand(query))
}

// termSet builds the sorted, de-duplicated expansion of query.
func (e *Expander) termSet(query string) []string {
	tokens := Tokenize(query)
	set := make(map[string]struct{}, len(tokens)*(MaxSynonymsPerTerm+1))
	for _, tok := range tokens {
		set[tok] = struct{}{}
		syns, ok := e.synonyms.Lookup(tok)
		if !ok {
			continue
		}
		if len(syns) > MaxSynonymsPerTerm {
			syns = syns[:MaxSynonymsPerTerm]
		}
		for _, s := range syns {
			set[s] = struct{}{}
		}
	}

	terms := make([]string, 0, len(set))
	for term := range set {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Terms splits an expanded query into the whitespace-separated terms used for scoring.
// Multi-word synonyms such as "machine learning" become separate terms.
func Terms(expanded string) []string {
	return strings.Fields(expanded)
}
