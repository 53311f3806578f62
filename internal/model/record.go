package model

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DigitLetter is the group key for terms that do not start with A-Z.
const DigitLetter = "0"

// Record is one glossary entry.
type Record struct {
	Letter     string `json:"letter"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Acronym    string `json:"acronym,omitempty"`
	SeeAlso    string `json:"seeAlso,omitempty"`
}

// Key returns the case-insensitive identity of the record.
func (r Record) Key() string {
	return TermKey(r.Term)
}

// TermKey normalizes a term for uniqueness checks.
func TermKey(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// LetterFor derives the group letter from the first character of term.
// Anything that is not an ASCII letter maps to DigitLetter.
func LetterFor(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return DigitLetter
	}
	r, _ := utf8.DecodeRuneInString(term)
	r = unicode.ToUpper(r)
	if r >= 'A' && r <= 'Z' {
		return string(r)
	}
	return DigitLetter
}

// IsValidLetter reports whether s is a group key (A-Z or "0").
func IsValidLetter(s string) bool {
	if len(s) != 1 {
		return false
	}
	return s == DigitLetter || (s[0] >= 'A' && s[0] <= 'Z')
}

// NormalizeLetter converts a URL letter parameter into a group key.
// "0-9" and "0" both select the digit group.
func NormalizeLetter(param string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(param))
	if p == "0-9" {
		return DigitLetter, nil
	}
	if !IsValidLetter(p) {
		return "", fmt.Errorf("%w: invalid letter %q", ErrValidation, param)
	}
	return p, nil
}

// Normalize trims every field and fills in the letter when it is missing
// or not a valid group key.
func (r Record) Normalize() Record {
	r.Term = strings.TrimSpace(r.Term)
	r.Definition = strings.TrimSpace(r.Definition)
	r.Acronym = strings.TrimSpace(r.Acronym)
	r.SeeAlso = strings.TrimSpace(r.SeeAlso)
	r.Letter = strings.ToUpper(strings.TrimSpace(r.Letter))
	if !IsValidLetter(r.Letter) {
		r.Letter = LetterFor(r.Term)
	}
	return r
}

// Validate checks the required fields.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Term) == "" {
		return fmt.Errorf("%w: term is required", ErrValidation)
	}
	if strings.TrimSpace(r.Definition) == "" {
		return fmt.Errorf("%w: definition is required for %q", ErrValidation, r.Term)
	}
	if r.Letter != "" && !IsValidLetter(r.Letter) {
		return fmt.Errorf("%w: letter %q must be A-Z or 0", ErrValidation, r.Letter)
	}
	return nil
}
