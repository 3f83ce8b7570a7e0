package library

import (
	"strings"

	"go-wallhaven-rotator/internal/models"

	"github.com/sahilm/fuzzy"
)

// Match is a saved entry that matched a filter, with its 1-based position
// in the saved list.
type Match struct {
	Entry    models.SavedEntry
	Position int
	Score    int
}

// FuzzyFilter returns the entries whose full URL or local path fuzzily
// matches pattern, best match first. An empty pattern matches everything
// in list order.
func FuzzyFilter(entries []models.SavedEntry, pattern string) []Match {
	if strings.TrimSpace(pattern) == "" {
		out := make([]Match, len(entries))
		for i, e := range entries {
			out[i] = Match{Entry: e, Position: i + 1}
		}
		return out
	}

	targets := make([]string, len(entries))
	for i, e := range entries {
		targets[i] = strings.ToLower(e.FullURL + " " + e.LocalPath)
	}
	found := fuzzy.Find(strings.ToLower(pattern), targets)

	out := make([]Match, 0, len(found))
	for _, m := range found {
		out = append(out, Match{Entry: entries[m.Index], Position: m.Index + 1, Score: m.Score})
	}
	return out
}
