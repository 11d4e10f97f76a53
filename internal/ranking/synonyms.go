package ranking

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// defaultSynonyms is the built-in synonym dictionary.
var defaultSynonyms = map[string][]string{
	"tech":                    {"technology", "digital", "IT", "technical", "computing"},
	"technology":              {"tech", "digital", "IT", "computing", "innovation"},
	"phone":                   {"mobile", "smartphone", "cellphone", "device", "iPhone", "Android"},
	"mobile":                  {"phone", "smartphone", "cellphone", "device"},
	"ai":                      {"artificial intelligence", "machine learning", "ML", "deep learning", "neural network"},
	"artificial intelligence": {"AI", "machine learning", "ML", "deep learning"},
	"ml":                      {"machine learning", "AI", "artificial intelligence"},
	"car":                     {"automobile", "vehicle", "auto", "motor"},
	"vehicle":                 {"car", "automobile", "auto", "motor", "transport"},
	"computer":                {"PC", "laptop", "desktop", "machine", "system"},
	"laptop":                  {"notebook", "computer", "portable computer"},
	"news":                    {"article", "story", "report", "update", "information"},
	"business":                {"economy", "finance", "trade", "commerce", "market"},
	"health":                  {"medical", "healthcare", "wellness", "medicine", "fitness"},
	"sport":                   {"sports", "athletic", "game", "match", "tournament"},
	"sports":                  {"sport", "athletic", "game", "match", "tournament"},
	"politics":                {"political", "government", "policy", "election", "parliament"},
	"environment":             {"environmental", "climate", "nature", "ecology", "green"},
	"science":                 {"scientific", "research", "study", "experiment", "discovery"},
}

// SynonymTable maps a lowercase canonical term to an ordered list of related terms.
// A table is immutable once constructed and safe for concurrent reads.
type SynonymTable struct {
	entries map[string][]string
}

// NewSynonymTable builds a table from the given mapping.
// Keys and synonyms are lowercased and trimmed; empty synonyms are dropped.
// The input map is copied, so later changes to it do not affect the table.
func NewSynonymTable(entries map[string][]string) *SynonymTable {
	t := &SynonymTable{entries: make(map[string][]string, len(entries))}
	for key, syns := range entries {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		cleaned := make([]string, 0, len(syns))
		for _, s := range syns {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				cleaned = append(cleaned, s)
			}
		}
		t.entries[key] = cleaned
	}
	return t
}

// DefaultSynonyms returns the built-in synonym table.
func DefaultSynonyms() *SynonymTable {
	return NewSynonymTable(defaultSynonyms)
}

// Lookup returns the synonyms for an already-lowercased term.
// The returned slice is a copy.
func (t *SynonymTable) Lookup(term string) ([]string, bool) {
	if t == nil {
		return nil, false
	}
	syns, ok := t.entries[term]
	if !ok {
		return nil, false
	}
	out := make([]string, len(syns))
	copy(out, syns)
	return out, true
}

// Len returns the number of canonical terms in the table.
func (t *SynonymTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// LoadSynonyms loads a synonym table from a YAML file and merges it over the
// built-in dictionary. Entries in the file replace built-in entries with the same key.
//
// Expected format:
//
//	synonyms:
//	  crypto: [cryptocurrency, bitcoin, blockchain]
//
// An empty path returns the built-in table. On error the built-in table is
// returned together with the error so callers can degrade gracefully.
func LoadSynonyms(filePath string) (*SynonymTable, error) {
	if filePath == "" {
		return DefaultSynonyms(), nil
	}

	k := koanf.New("/")
	if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
		slog.Warn("failed to read synonyms file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultSynonyms(), fmt.Errorf("failed to read synonyms file: %w", err)
	}

	var overrides map[string][]string
	if err := k.Unmarshal("synonyms", &overrides); err != nil {
		slog.Warn("failed to parse synonyms file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultSynonyms(), fmt.Errorf("failed to parse synonyms file: %w", err)
	}

	merged := make(map[string][]string, len(defaultSynonyms)+len(overrides))
	for key, syns := range defaultSynonyms {
		merged[key] = syns
	}
	for key, syns := range overrides {
		merged[strings.ToLower(strings.TrimSpace(key))] = syns
	}

	slog.Info("loaded synonym table",
		"path", filePath,
		"overrides", len(overrides),
		"entries", len(merged))

	return NewSynonymTable(merged), nil
}
