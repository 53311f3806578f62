package glossary

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/glossary/api/internal/auth"
	"github.com/glossary/api/internal/csvcodec"
	"github.com/glossary/api/internal/metrics"
	"github.com/glossary/api/internal/model"
	"github.com/glossary/api/internal/store"
)

// UploadResult is reported back to the admin after a CSV upload.
type UploadResult struct {
	Added       int      `json:"added"`
	Updated     int      `json:"updated"`
	Skipped     int      `json:"skipped"`
	Total       int      `json:"total"`
	Errors      []string `json:"errors"`
	ErrorsTotal int      `json:"errorsTotal"`
}

// Upload merges every valid row of a CSV document into the glossary.
// Existing terms are overwritten; invalid rows are skipped and listed.
func (s *Service) Upload(ctx context.Context, sess *auth.Session, text string) (*UploadResult, error) {
	res, err := s.upload(ctx, sess, text)
	metrics.RecordMutation(model.ActionUpload, err)
	return res, err
}

func (s *Service) upload(ctx context.Context, sess *auth.Session, text string) (*UploadResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if err := csvcodec.CheckHeader(text); err != nil {
		return nil, err
	}

	decoded := csvcodec.Decode(text)
	result := &UploadResult{
		Skipped:     len(decoded.Errors),
		ErrorsTotal: len(decoded.Errors),
		Errors:      capErrors(decoded.Errors, s.errorLimit),
	}
	if len(decoded.Records) == 0 {
		return result, fmt.Errorf("%w: no valid rows in CSV", model.ErrValidation)
	}

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	merged := UpsertBatch(snap.Records, decoded.Records)
	result.Added = merged.Added
	result.Updated = merged.Updated
	result.Total = len(merged.Records)

	rev, err := s.save(ctx, merged.Records, snap.Revision, store.Change{Action: model.ActionUpload, Actor: sess.Subject})
	if err != nil {
		return nil, err
	}

	metrics.RecordUploadRows(result.Added, result.Updated, result.Skipped)
	s.logger.Info("csv upload applied",
		zap.Int("added", result.Added),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))
	s.recordAudit(ctx, sess, model.ActionUpload, "", rev, map[string]any{
		"added":   result.Added,
		"updated": result.Updated,
		"skipped": result.Skipped,
	})
	return result, nil
}

// capErrors keeps the first limit messages and summarizes the rest.
func capErrors(errs []model.ParseError, limit int) []string {
	out := []string{}
	for i, e := range errs {
		if i == limit {
			out = append(out, fmt.Sprintf("+%d more", len(errs)-limit))
			break
		}
		out = append(out, fmt.Sprintf("Row %d: %s", e.Line, e.Message))
	}
	return out
}
