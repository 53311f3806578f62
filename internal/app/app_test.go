package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glossary/api/internal/config"
)

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{StoreBackend: config.BackendLocal, DataPath: filepath.Join(t.TempDir(), "g.csv")}
	b, err := OpenBackend(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "local", b.Store.Name())
	assert.NotNil(t, b.Local)
	assert.Nil(t, b.GitHub)

	cfg = &config.Config{StoreBackend: config.BackendGitHub}
	cfg.GitHub.Repo = "acme/glossary"
	b, err = OpenBackend(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "github", b.Store.Name())
	assert.NotNil(t, b.GitHub)

	_, err = OpenBackend(ctx, &config.Config{StoreBackend: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
