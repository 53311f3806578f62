package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/glossary/api/internal/model"
)

var (
	repoPattern   = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})/[A-Za-z0-9._-]{1,100}$`)
	tokenPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9]{36,}$`),
		regexp.MustCompile(`^github_pat_[A-Za-z0-9_]{22,}$`),
		regexp.MustCompile(`^[a-f0-9]{40}$`),
	}
)

// ValidateRepo checks an "owner/name" repository identifier.
func ValidateRepo(repo string) error {
	if !repoPattern.MatchString(repo) || strings.HasSuffix(repo, "/.") || strings.HasSuffix(repo, "/..") {
		return fmt.Errorf("%w: repository must look like owner/name, got %q", model.ErrValidation, repo)
	}
	return nil
}

// ValidateToken checks that token looks like a GitHub access token.
// It does not contact GitHub.
func ValidateToken(token string) error {
	if token == "" {
		return fmt.Errorf("%w: GitHub token is required", model.ErrValidation)
	}
	for _, p := range tokenPatterns {
		if p.MatchString(token) {
			return nil
		}
	}
	return fmt.Errorf("%w: GitHub token has an unrecognized format", model.ErrValidation)
}

// ValidateRecord normalizes r and checks its required fields.
func ValidateRecord(r model.Record) (model.Record, error) {
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return model.Record{}, err
	}
	return r, nil
}

// Issue types reported by AuditRecords
const (
	IssueDuplicate      = "duplicate"
	IssueLetterMismatch = "letter_mismatch"
	IssueMissingField   = "missing_field"
	IssueUntrimmed      = "untrimmed"
)

type Issue struct {
	Term    string `json:"term"`
	Type    string `json:"type"`
	Details string `json:"details"`
}

// AuditRecords reports data quality problems in a decoded record set.
func AuditRecords(records []model.Record) []Issue {
	var issues []Issue
	seen := make(map[string]string, len(records))

	for _, r := range records {
		if r.Term == "" || r.Definition == "" {
			issues = append(issues, Issue{Term: r.Term, Type: IssueMissingField, Details: "term and definition are required"})
			continue
		}
		if r.Term != strings.TrimSpace(r.Term) || r.Definition != strings.TrimSpace(r.Definition) {
			issues = append(issues, Issue{Term: r.Term, Type: IssueUntrimmed, Details: "leading or trailing whitespace"})
		}
		if want := model.LetterFor(r.Term); r.Letter != want {
			issues = append(issues, Issue{
				Term:    r.Term,
				Type:    IssueLetterMismatch,
				Details: fmt.Sprintf("letter %q, expected %q", r.Letter, want),
			})
		}
		key := r.Key()
		if first, ok := seen[key]; ok {
			issues = append(issues, Issue{
				Term:    r.Term,
				Type:    IssueDuplicate,
				Details: fmt.Sprintf("same term as %q", first),
			})
			continue
		}
		seen[key] = r.Term
	}
	return issues
}
