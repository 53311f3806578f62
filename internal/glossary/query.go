package glossary

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/glossary/api/internal/model"
)

// InteractiveMinQuery is the shortest query the search-as-you-type
// endpoint answers; shorter queries return nothing.
const InteractiveMinQuery = 2

// GroupByLetter buckets records by letter, each bucket sorted by term.
func GroupByLetter(records []model.Record) map[string][]model.Record {
	groups := make(map[string][]model.Record)
	for _, r := range records {
		letter := r.Letter
		if !model.IsValidLetter(letter) {
			letter = model.LetterFor(r.Term)
		}
		groups[letter] = append(groups[letter], r)
	}
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool {
			return model.CompareTerms(g[i].Term, g[j].Term) < 0
		})
	}
	return groups
}

// Letters returns the group keys present in groups, "0" first then A-Z.
func Letters(groups map[string][]model.Record) []string {
	letters := make([]string, 0, len(groups))
	for l := range groups {
		letters = append(letters, l)
	}
	sort.Strings(letters)
	return letters
}

// Search returns records whose term, definition or acronym contains query,
// ignoring case. Queries shorter than minLen runes (after trimming) match
// nothing; pass 0 for an unrestricted search.
func Search(records []model.Record, query string, minLen int) []model.Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || utf8.RuneCountInString(q) < minLen {
		return []model.Record{}
	}

	results := []model.Record{}
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Term), q) ||
			strings.Contains(strings.ToLower(r.Definition), q) ||
			strings.Contains(strings.ToLower(r.Acronym), q) {
			results = append(results, r)
		}
	}
	return results
}

// Stats summarizes a record set for the admin dashboard.
type Stats struct {
	Total       int            `json:"total"`
	WithAcronym int            `json:"withAcronym"`
	WithSeeAlso int            `json:"withSeeAlso"`
	ByLetter    map[string]int `json:"byLetter"`
}

func ComputeStats(records []model.Record) Stats {
	s := Stats{Total: len(records), ByLetter: map[string]int{}}
	for _, r := range records {
		s.ByLetter[r.Letter]++
		if r.Acronym != "" {
			s.WithAcronym++
		}
		if r.SeeAlso != "" {
			s.WithSeeAlso++
		}
	}
	return s
}
