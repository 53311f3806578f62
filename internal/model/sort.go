package model

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.English)
)

// CompareTerms orders two terms the way a browser's localeCompare does for
// English: case and accents only break ties.
func CompareTerms(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// SortRecords returns a copy of records ordered by letter, then term.
// The digit group "0" sorts before A.
func SortRecords(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Letter != out[j].Letter {
			return out[i].Letter < out[j].Letter
		}
		return CompareTerms(out[i].Term, out[j].Term) < 0
	})
	return out
}
