// Package csvcodec reads and writes the glossary CSV dialect:
//
//	letter,"term","definition",acronym[,seeAlso]
//
// The reader is a small quote-aware scanner rather than encoding/csv so that
// legacy files with a bare header, ragged rows or a broken quote still load
// every well-formed row.
package csvcodec

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/glossary/api/internal/model"
)

// Header is the first row written by Encode.
const Header = `letter,"term","definition",acronym`

const seeAlsoColumn = "seeAlso"

const maxFields = 5

var errUnterminatedQuote = errors.New("unterminated quoted field")

// Result holds the decoded records and the rows that were skipped.
type Result struct {
	Records []model.Record
	Errors  []model.ParseError
}

// Decode parses a CSV document. The first row is always treated as a header.
// Rows that cannot be parsed or lack letter, term or definition are skipped
// and reported in Result.Errors; they never abort the decode.
func Decode(text string) Result {
	var res Result

	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(text, "\n")

	i := 1
	for i < len(lines) {
		start := i
		i++
		if strings.TrimSpace(lines[start]) == "" {
			continue
		}

		// a quoted field may span physical lines; CR inside it is kept
		var row strings.Builder
		row.WriteString(lines[start])
		open := endsInQuotedField(lines[start], false)
		for open && i < len(lines) && !startsRow(lines[i]) {
			row.WriteByte('\n')
			row.WriteString(lines[i])
			open = endsInQuotedField(lines[i], true)
			i++
		}

		var fields []string
		err := errUnterminatedQuote
		if !open {
			fields, err = splitRow(strings.TrimSuffix(row.String(), "\r"))
		}
		if err == nil && len(fields) > maxFields {
			err = fmt.Errorf("too many fields (%d)", len(fields))
		}
		if err != nil {
			res.Errors = append(res.Errors, model.ParseError{Line: start + 1, Message: err.Error()})
			// resume right after the offending physical line
			i = start + 1
			continue
		}

		rec, err := toRecord(fields)
		if err != nil {
			res.Errors = append(res.Errors, model.ParseError{Line: start + 1, Message: err.Error()})
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

// CheckHeader is the soft format check used for uploads: the document must
// have a first row that names the term and definition columns.
func CheckHeader(text string) error {
	text = strings.TrimPrefix(text, "\ufeff")
	first, _, _ := strings.Cut(text, "\n")
	first = strings.ToLower(strings.TrimSpace(first))
	if first == "" {
		return fmt.Errorf("%w: CSV file is empty", model.ErrValidation)
	}
	if !strings.Contains(first, "term") || !strings.Contains(first, "definition") {
		return fmt.Errorf("%w: invalid CSV header, expected %s", model.ErrValidation, Header)
	}
	return nil
}

// endsInQuotedField reports whether line leaves a quoted field open. Only a
// quote at the start of a field opens one; a quote inside unquoted text,
// as in 5" floppy, is literal here and never continues the row.
func endsInQuotedField(line string, inQuotes bool) bool {
	atFieldStart := !inQuotes
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case inQuotes:
			if ch == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					i++
					continue
				}
				inQuotes = false
			}
		case ch == ',':
			atFieldStart = true
		case ch == '"' && atFieldStart:
			inQuotes = true
			atFieldStart = false
		case ch == ' ' || ch == '\t':
		default:
			atFieldStart = false
		}
	}
	return inQuotes
}

// startsRow reports whether line is on its own a complete row with a
// one-character letter and a quoted term. Joining stops there so that an
// unclosed quote cannot swallow the rows after it.
func startsRow(line string) bool {
	line = strings.TrimSuffix(line, "\r")
	letter, rest, ok := strings.Cut(line, ",")
	if !ok || utf8.RuneCountInString(strings.TrimSpace(letter)) != 1 {
		return false
	}
	if !strings.HasPrefix(strings.TrimSpace(rest), `"`) || endsInQuotedField(line, false) {
		return false
	}
	fields, err := splitRow(line)
	if err != nil || len(fields) < 3 || len(fields) > maxFields {
		return false
	}
	_, err = toRecord(fields)
	return err == nil
}

func splitRow(row string) ([]string, error) {
	var fields []string
	var current strings.Builder
	inQuotes := false

	runes := []rune(row)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	if inQuotes {
		return nil, errUnterminatedQuote
	}
	fields = append(fields, strings.TrimSpace(current.String()))
	return fields, nil
}

func toRecord(fields []string) (model.Record, error) {
	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	rec := model.Record{
		Letter:     strings.ToUpper(get(0)),
		Term:       get(1),
		Definition: get(2),
		Acronym:    get(3),
		SeeAlso:    get(4),
	}
	if rec.Letter == "" || rec.Term == "" || rec.Definition == "" {
		return model.Record{}, errors.New("missing letter, term or definition")
	}
	return rec.Normalize(), nil
}

// Encode writes records in the order given. Term, definition and seeAlso are
// always quoted; letter and acronym are bare unless the acronym needs quoting.
// The seeAlso column is emitted only when at least one record uses it.
func Encode(records []model.Record) string {
	withSeeAlso := false
	for _, r := range records {
		if r.SeeAlso != "" {
			withSeeAlso = true
			break
		}
	}

	var b strings.Builder
	b.WriteString(Header)
	if withSeeAlso {
		b.WriteString("," + seeAlsoColumn)
	}
	b.WriteByte('\n')

	for _, r := range records {
		letter := r.Letter
		if !model.IsValidLetter(letter) {
			letter = model.LetterFor(r.Term)
		}
		b.WriteString(letter)
		b.WriteByte(',')
		b.WriteString(quote(r.Term))
		b.WriteByte(',')
		b.WriteString(quote(r.Definition))
		b.WriteByte(',')
		b.WriteString(bare(r.Acronym))
		if withSeeAlso {
			b.WriteByte(',')
			if r.SeeAlso != "" {
				b.WriteString(quote(r.SeeAlso))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func bare(s string) string {
	if strings.ContainsAny(s, ",\"\n\r") {
		return quote(s)
	}
	return s
}
