package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/glossary/api/internal/model"
)

// MemoryBlobs is an in-process Blobs with the same conditional-write rules
// as the GitHub Contents API. The CLI uses it for dry runs.
type MemoryBlobs struct {
	mu       sync.Mutex
	content  []byte
	revision string
	exists   bool
	puts     int
}

// NewMemoryBlobs returns a store holding content, or an empty one if
// content is nil.
func NewMemoryBlobs(content []byte) *MemoryBlobs {
	m := &MemoryBlobs{}
	if content != nil {
		m.content = append([]byte(nil), content...)
		m.revision = contentRevision(content)
		m.exists = true
	}
	return m
}

func (m *MemoryBlobs) Get(ctx context.Context) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return nil, "", fmt.Errorf("%w: blob does not exist", model.ErrNotFound)
	}
	return append([]byte(nil), m.content...), m.revision, nil
}

func (m *MemoryBlobs) Put(ctx context.Context, content []byte, revision, message string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.exists && revision == "" {
		return "", fmt.Errorf("%w: blob exists, revision required", model.ErrConflict)
	}
	if revision != m.revision {
		return "", fmt.Errorf("%w: revision %s is stale", model.ErrConflict, revision)
	}
	m.content = append([]byte(nil), content...)
	m.revision = contentRevision(append([]byte(fmt.Sprintf("%d:", m.puts)), content...))
	m.exists = true
	m.puts++
	return m.revision, nil
}

// Content returns the current document.
func (m *MemoryBlobs) Content() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.content...)
}
