package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/glossary/api/internal/csvcodec"
	"github.com/glossary/api/internal/model"
)

// Blobs is a single revisioned document on a remote service.
// Get returns model.ErrNotFound when the document does not exist yet.
// Put with an empty revision creates the document; with a revision it
// replaces it only if that revision is still current, and fails with
// model.ErrConflict otherwise.
type Blobs interface {
	Get(ctx context.Context) (content []byte, revision string, err error)
	Put(ctx context.Context, content []byte, revision, message string) (string, error)
}

// RemoteStore keeps the glossary in a remote blob such as a file in a
// GitHub repository. It never retries: on conflict the caller reloads.
type RemoteStore struct {
	blobs Blobs
}

func NewRemoteStore(blobs Blobs) *RemoteStore {
	return &RemoteStore{blobs: blobs}
}

func (s *RemoteStore) Name() string { return "github" }

func (s *RemoteStore) Load(ctx context.Context) (*Snapshot, error) {
	content, revision, err := s.blobs.Get(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return &Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}

	res := csvcodec.Decode(string(content))
	return &Snapshot{
		Records:  res.Records,
		Revision: revision,
		Exists:   true,
		Errors:   res.Errors,
	}, nil
}

func (s *RemoteStore) Save(ctx context.Context, records []model.Record, revision string, change Change) (string, error) {
	content := csvcodec.Encode(model.SortRecords(records))
	return s.blobs.Put(ctx, []byte(content), revision, CommitMessage(change, len(records)))
}

// CommitMessage describes a change for the remote history.
func CommitMessage(change Change, total int) string {
	action := change.Action
	if action == "" {
		action = "update"
	}
	msg := "glossary: " + action
	if change.Term != "" {
		msg += fmt.Sprintf(" %q", change.Term)
	}
	msg += fmt.Sprintf(" (%d terms)", total)
	if change.Actor != "" {
		msg += " by " + change.Actor
	}
	return msg
}
