package glossary

import (
	"fmt"

	"github.com/glossary/api/internal/model"
	"github.com/glossary/api/internal/validator"
)

// UpsertResult is the outcome of merging a batch into a record set.
type UpsertResult struct {
	Records []model.Record
	Added   int
	Updated int
}

// UpsertBatch merges incoming into existing keyed by case-insensitive term.
// Later records replace earlier ones with the same key. The result keeps
// first-seen order; callers sort before persisting.
func UpsertBatch(existing, incoming []model.Record) UpsertResult {
	index := make(map[string]int, len(existing)+len(incoming))
	records := make([]model.Record, 0, len(existing)+len(incoming))

	for _, r := range existing {
		key := r.Key()
		if i, ok := index[key]; ok {
			records[i] = r
			continue
		}
		index[key] = len(records)
		records = append(records, r)
	}

	res := UpsertResult{}
	for _, r := range incoming {
		r = r.Normalize()
		key := r.Key()
		if i, ok := index[key]; ok {
			records[i] = r
			res.Updated++
			continue
		}
		index[key] = len(records)
		records = append(records, r)
		res.Added++
	}
	res.Records = records
	return res
}

// AddRecord inserts rec, failing with model.ErrConflict if the term exists.
func AddRecord(existing []model.Record, rec model.Record) ([]model.Record, model.Record, error) {
	rec, err := validator.ValidateRecord(rec)
	if err != nil {
		return nil, model.Record{}, err
	}
	if i := indexOf(existing, rec.Term); i >= 0 {
		return nil, model.Record{}, fmt.Errorf("%w: term %q already exists", model.ErrConflict, existing[i].Term)
	}
	return UpsertBatch(existing, []model.Record{rec}).Records, rec, nil
}

// EditRecord replaces the record identified by originalTerm with rec, which
// may carry a new term. Without originalTerm the target is the record with
// rec's term and letter.
func EditRecord(existing []model.Record, originalTerm string, rec model.Record) ([]model.Record, model.Record, error) {
	rec, err := validator.ValidateRecord(rec)
	if err != nil {
		return nil, model.Record{}, err
	}

	target := -1
	if originalTerm != "" {
		target = indexOf(existing, originalTerm)
	} else {
		for i, r := range existing {
			if r.Key() == rec.Key() && r.Letter == rec.Letter {
				target = i
				break
			}
		}
	}
	if target < 0 {
		lookup := originalTerm
		if lookup == "" {
			lookup = rec.Term
		}
		return nil, model.Record{}, fmt.Errorf("%w: term %q", model.ErrNotFound, lookup)
	}

	for i, r := range existing {
		if i != target && r.Key() == rec.Key() {
			return nil, model.Record{}, fmt.Errorf("%w: cannot rename to %q, term already exists", model.ErrConflict, r.Term)
		}
	}

	out := make([]model.Record, len(existing))
	copy(out, existing)
	out[target] = rec
	return out, rec, nil
}

// DeleteRecord removes the record whose term matches case-insensitively.
func DeleteRecord(existing []model.Record, term string) ([]model.Record, model.Record, error) {
	i := indexOf(existing, term)
	if i < 0 {
		return nil, model.Record{}, fmt.Errorf("%w: term %q", model.ErrNotFound, term)
	}
	removed := existing[i]
	out := make([]model.Record, 0, len(existing)-1)
	out = append(out, existing[:i]...)
	out = append(out, existing[i+1:]...)
	return out, removed, nil
}

// FindRecord looks a term up case-insensitively.
func FindRecord(records []model.Record, term string) (model.Record, error) {
	i := indexOf(records, term)
	if i < 0 {
		return model.Record{}, fmt.Errorf("%w: term %q", model.ErrNotFound, term)
	}
	return records[i], nil
}

func indexOf(records []model.Record, term string) int {
	key := model.TermKey(term)
	if key == "" {
		return -1
	}
	for i, r := range records {
		if r.Key() == key {
			return i
		}
	}
	return -1
}
