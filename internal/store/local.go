package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/glossary/api/internal/csvcodec"
	"github.com/glossary/api/internal/model"
)

// BackupSink receives a copy of every backup the local store writes.
type BackupSink interface {
	Upload(ctx context.Context, name string, data []byte) error
}

// LocalStore keeps the glossary in a CSV file on disk. Every save first
// copies the current file to <path>.backup-<unixMillis>.
//
// There is no locking: two concurrent saves race and the last one wins.
type LocalStore struct {
	path   string
	sink   BackupSink
	logger *zap.Logger
	now    func() time.Time
}

type LocalOption func(*LocalStore)

// WithBackupSink mirrors backups to sink. Mirror failures are logged only.
func WithBackupSink(sink BackupSink) LocalOption {
	return func(s *LocalStore) { s.sink = sink }
}

func WithLogger(logger *zap.Logger) LocalOption {
	return func(s *LocalStore) { s.logger = logger }
}

func WithClock(now func() time.Time) LocalOption {
	return func(s *LocalStore) { s.now = now }
}

func NewLocalStore(path string, opts ...LocalOption) *LocalStore {
	s := &LocalStore{
		path:   path,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LocalStore) Name() string { return "local" }

func (s *LocalStore) Path() string { return s.path }

func (s *LocalStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	res := csvcodec.Decode(string(data))
	return &Snapshot{
		Records:  res.Records,
		Revision: contentRevision(data),
		Exists:   true,
		Errors:   res.Errors,
	}, nil
}

// Save ignores revision; local writes are last-write-wins.
func (s *LocalStore) Save(ctx context.Context, records []model.Record, revision string, change Change) (string, error) {
	content := []byte(csvcodec.Encode(model.SortRecords(records)))

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	existed, err := s.backup(ctx)
	if err != nil {
		return "", err
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(content)); err != nil {
		return "", fmt.Errorf("write %s: %w", s.path, err)
	}
	// atomic.WriteFile keeps the mode of a file it replaces but creates
	// new files 0600.
	if !existed {
		if err := os.Chmod(s.path, 0o644); err != nil {
			return "", fmt.Errorf("chmod %s: %w", s.path, err)
		}
	}

	s.logger.Info("glossary saved",
		zap.String("path", s.path),
		zap.Int("records", len(records)),
		zap.String("action", change.Action),
		zap.String("actor", change.Actor))
	return contentRevision(content), nil
}

// backup copies the current file aside and reports whether there was one.
func (s *LocalStore) backup(ctx context.Context) (bool, error) {
	old, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s for backup: %w", s.path, err)
	}

	backupPath, err := writeBackup(s.path, s.now(), old)
	if err != nil {
		return true, fmt.Errorf("write backup: %w", err)
	}

	if s.sink != nil {
		name := filepath.Base(backupPath)
		if err := s.sink.Upload(ctx, name, old); err != nil {
			s.logger.Warn("backup mirror failed", zap.String("backup", name), zap.Error(err))
		}
	}
	return true, nil
}
