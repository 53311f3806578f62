package glossary

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/glossary/api/internal/auth"
	"github.com/glossary/api/internal/csvcodec"
	"github.com/glossary/api/internal/metrics"
	"github.com/glossary/api/internal/model"
	"github.com/glossary/api/internal/store"
)

// AuditLog persists a trail of admin mutations.
type AuditLog interface {
	Record(ctx context.Context, entry *model.AuditEntry) error
}

type Options struct {
	Logger           *zap.Logger
	Audit            AuditLog
	SampleFallback   bool
	UploadErrorLimit int
}

// Service answers glossary queries and applies admin edits. Every edit is
// a load, an in-memory change and a full rewrite through the store, guarded
// by the revision returned from the load.
type Service struct {
	store          store.Store
	audit          AuditLog
	logger         *zap.Logger
	sampleFallback bool
	errorLimit     int
	now            func() time.Time
}

func NewService(st store.Store, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.UploadErrorLimit <= 0 {
		opts.UploadErrorLimit = 10
	}
	return &Service{
		store:          st,
		audit:          opts.Audit,
		logger:         opts.Logger,
		sampleFallback: opts.SampleFallback,
		errorLimit:     opts.UploadErrorLimit,
		now:            time.Now,
	}
}

func (s *Service) Backend() string { return s.store.Name() }

func (s *Service) load(ctx context.Context) (*store.Snapshot, error) {
	start := time.Now()
	snap, err := s.store.Load(ctx)
	metrics.ObserveStore(s.store.Name(), "load", start, err)
	if err != nil {
		return nil, err
	}
	for _, pe := range snap.Errors {
		s.logger.Warn("skipped glossary row", zap.Int("line", pe.Line), zap.String("reason", pe.Message))
	}
	return snap, nil
}

func (s *Service) save(ctx context.Context, records []model.Record, revision string, change store.Change) (string, error) {
	start := time.Now()
	rev, err := s.store.Save(ctx, model.SortRecords(records), revision, change)
	metrics.ObserveStore(s.store.Name(), "save", start, err)
	return rev, err
}

// List returns every record ordered by letter, then term.
func (s *Service) List(ctx context.Context) ([]model.Record, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	records := snap.Records
	if !snap.Exists && s.sampleFallback {
		records = SampleRecords()
	}
	return model.SortRecords(records), nil
}

// Stored returns the records actually persisted, never the sample set.
// A missing document yields an empty slice.
func (s *Service) Stored(ctx context.Context) ([]model.Record, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return model.SortRecords(snap.Records), nil
}

// Groups returns the records bucketed by letter.
func (s *Service) Groups(ctx context.Context) (map[string][]model.Record, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByLetter(records), nil
}

// ByLetter returns one letter group. letter accepts "0-9" for the digit group.
func (s *Service) ByLetter(ctx context.Context, letter string) ([]model.Record, error) {
	key, err := model.NormalizeLetter(letter)
	if err != nil {
		return nil, err
	}
	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}
	if g, ok := groups[key]; ok {
		return g, nil
	}
	return []model.Record{}, nil
}

// Search runs a substring search; minLen is InteractiveMinQuery for
// search-as-you-type and 0 for a full search.
func (s *Service) Search(ctx context.Context, query string, minLen int) ([]model.Record, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	results := Search(records, query, minLen)
	metrics.RecordSearch(len(results) > 0)
	return results, nil
}

// Lookup finds a single term.
func (s *Service) Lookup(ctx context.Context, term string) (model.Record, error) {
	records, err := s.List(ctx)
	if err != nil {
		return model.Record{}, err
	}
	return FindRecord(records, term)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	records, err := s.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(records), nil
}

// Export returns the stored document in canonical CSV form.
func (s *Service) Export(ctx context.Context) (string, error) {
	records, err := s.Stored(ctx)
	if err != nil {
		return "", err
	}
	return csvcodec.Encode(records), nil
}

func requireSession(sess *auth.Session) error {
	if sess == nil {
		return fmt.Errorf("%w: admin session required", model.ErrUnauthorized)
	}
	return nil
}

// Add inserts a new record. An existing term (any case) is a conflict.
func (s *Service) Add(ctx context.Context, sess *auth.Session, rec model.Record) (model.Record, error) {
	added, err := s.add(ctx, sess, rec)
	metrics.RecordMutation(model.ActionAdd, err)
	return added, err
}

func (s *Service) add(ctx context.Context, sess *auth.Session, rec model.Record) (model.Record, error) {
	if err := requireSession(sess); err != nil {
		return model.Record{}, err
	}
	snap, err := s.load(ctx)
	if err != nil {
		return model.Record{}, err
	}
	next, added, err := AddRecord(snap.Records, rec)
	if err != nil {
		return model.Record{}, err
	}
	rev, err := s.save(ctx, next, snap.Revision, store.Change{Action: model.ActionAdd, Term: added.Term, Actor: sess.Subject})
	if err != nil {
		return model.Record{}, err
	}
	s.recordAudit(ctx, sess, model.ActionAdd, added.Term, rev, map[string]any{"record": added})
	return added, nil
}

// Edit replaces the record identified by originalTerm (or, when empty, by
// rec's term and letter) with rec.
func (s *Service) Edit(ctx context.Context, sess *auth.Session, originalTerm string, rec model.Record) (model.Record, error) {
	edited, err := s.edit(ctx, sess, originalTerm, rec)
	metrics.RecordMutation(model.ActionEdit, err)
	return edited, err
}

func (s *Service) edit(ctx context.Context, sess *auth.Session, originalTerm string, rec model.Record) (model.Record, error) {
	if err := requireSession(sess); err != nil {
		return model.Record{}, err
	}
	snap, err := s.load(ctx)
	if err != nil {
		return model.Record{}, err
	}
	next, edited, err := EditRecord(snap.Records, originalTerm, rec)
	if err != nil {
		return model.Record{}, err
	}
	rev, err := s.save(ctx, next, snap.Revision, store.Change{Action: model.ActionEdit, Term: edited.Term, Actor: sess.Subject})
	if err != nil {
		return model.Record{}, err
	}
	s.recordAudit(ctx, sess, model.ActionEdit, edited.Term, rev, map[string]any{
		"originalTerm": originalTerm,
		"record":       edited,
	})
	return edited, nil
}

// Delete removes a term.
func (s *Service) Delete(ctx context.Context, sess *auth.Session, term string) (model.Record, error) {
	removed, err := s.delete(ctx, sess, term)
	metrics.RecordMutation(model.ActionDelete, err)
	return removed, err
}

func (s *Service) delete(ctx context.Context, sess *auth.Session, term string) (model.Record, error) {
	if err := requireSession(sess); err != nil {
		return model.Record{}, err
	}
	snap, err := s.load(ctx)
	if err != nil {
		return model.Record{}, err
	}
	next, removed, err := DeleteRecord(snap.Records, term)
	if err != nil {
		return model.Record{}, err
	}
	rev, err := s.save(ctx, next, snap.Revision, store.Change{Action: model.ActionDelete, Term: removed.Term, Actor: sess.Subject})
	if err != nil {
		return model.Record{}, err
	}
	s.recordAudit(ctx, sess, model.ActionDelete, removed.Term, rev, map[string]any{"record": removed})
	return removed, nil
}

func (s *Service) recordAudit(ctx context.Context, sess *auth.Session, action, term, revision string, details map[string]any) {
	if s.audit == nil {
		return
	}
	data, err := json.Marshal(details)
	if err != nil {
		data = nil
	}
	entry := &model.AuditEntry{
		ID:        uuid.NewString(),
		Action:    action,
		Term:      term,
		Actor:     sess.Subject,
		Backend:   s.store.Name(),
		Revision:  revision,
		Details:   datatypes.JSON(data),
		CreatedAt: s.now(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit entry", zap.String("action", action), zap.String("term", term), zap.Error(err))
	}
}
