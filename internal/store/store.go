// Package store persists the whole glossary as a single CSV document, either
// in a local file or in a remote revisioned blob.
package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"

	"github.com/glossary/api/internal/model"
)

// Snapshot is the decoded document plus the revision it was read at.
type Snapshot struct {
	Records  []model.Record     `json:"records"`
	Revision string             `json:"revision,omitempty"`
	Exists   bool               `json:"exists"`
	Errors   []model.ParseError `json:"errors,omitempty"`
}

// Change describes why a document is being written.
type Change struct {
	Action string
	Term   string
	Actor  string
}

// Store loads and saves the entire record set at once.
type Store interface {
	Name() string
	Load(ctx context.Context) (*Snapshot, error)
	// Save replaces the document. revision is the token returned by the
	// Load the caller based its edit on; stores that support conditional
	// writes reject a stale token with model.ErrConflict.
	Save(ctx context.Context, records []model.Record, revision string, change Change) (string, error)
}

func contentRevision(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}
