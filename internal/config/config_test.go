package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GLOSSARY_CONFIG", "")
	t.Setenv("GLOSSARY_STORE", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendLocal, cfg.StoreBackend)
	assert.Equal(t, "data/glossary.csv", cfg.DataPath)
	assert.Equal(t, 10, cfg.UploadErrorLimit)
	assert.Equal(t, 15*time.Second, cfg.GitHub.Timeout)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store_backend: github
github:
  repo: acme/docs
  branch: content
  timeout: 5s
backup:
  keep: 3
`), 0o644))

	t.Setenv("GLOSSARY_CONFIG", path)
	t.Setenv("GLOSSARY_STORE", "")
	t.Setenv("GITHUB_BRANCH", "release")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendGitHub, cfg.StoreBackend)
	assert.Equal(t, "acme/docs", cfg.GitHub.Repo)
	assert.Equal(t, "release", cfg.GitHub.Branch)
	assert.Equal(t, 5*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, 3, cfg.Backup.Keep)
	assert.Equal(t, "data/glossary.csv", cfg.GitHub.Path, "unset keys keep defaults")
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	cfg.AdminPassword = "pw"
	cfg.JWTSecret = "0123456789abcdef0123"
	assert.NoError(t, cfg.Validate())

	cfg.StoreBackend = "s3"
	assert.ErrorContains(t, cfg.Validate(), "unknown store backend")

	cfg.StoreBackend = BackendGitHub
	cfg.GitHub.Repo = "not a repo"
	cfg.GitHub.Token = "ghp_" + "0123456789abcdefghijklmnopqrstuvwxyz"
	assert.ErrorContains(t, cfg.Validate(), "repository")

	cfg.GitHub.Repo = "acme/docs"
	assert.NoError(t, cfg.Validate())

	cfg.AdminPassword = ""
	assert.ErrorContains(t, cfg.Validate(), "ADMIN_PASSWORD")
}

func TestValidateRequiresPrivateJWTSecret(t *testing.T) {
	cfg := defaults()
	cfg.AdminPassword = "pw"
	assert.Empty(t, cfg.JWTSecret, "no signing key is shipped by default")
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg.JWTSecret = placeholderJWTSecret
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg.JWTSecret = "short"
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg.JWTSecret = "a-long-private-signing-key"
	assert.NoError(t, cfg.Validate())
}
