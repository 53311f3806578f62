package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/glossary/api/internal/backup"
	"github.com/glossary/api/internal/client"
	"github.com/glossary/api/internal/config"
	"github.com/glossary/api/internal/store"
)

// Backend is the configured glossary store plus the GitHub client when the
// github backend is selected.
type Backend struct {
	Store  store.Store
	GitHub *client.GitHubClient
	Local  *store.LocalStore
}

// OpenBackend builds the store selected by cfg.StoreBackend. Backup
// mirroring to S3 is attached to the local store when configured; a
// failure to reach the bucket only disables mirroring.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendGitHub:
		gh := client.NewGitHubClient(GitHubConfig(cfg))
		return &Backend{Store: store.NewRemoteStore(gh), GitHub: gh}, nil

	case config.BackendLocal:
		opts := []store.LocalOption{store.WithLogger(logger)}
		if cfg.S3.Enabled() {
			sink, err := backup.NewMinioSink(ctx, cfg.S3)
			if err != nil {
				logger.Warn("backup mirroring disabled", zap.Error(err))
			} else {
				opts = append(opts, store.WithBackupSink(sink))
				logger.Info("mirroring backups to s3", zap.String("bucket", cfg.S3.Bucket))
			}
		}
		local := store.NewLocalStore(cfg.DataPath, opts...)
		return &Backend{Store: local, Local: local}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func GitHubConfig(cfg *config.Config) client.GitHubConfig {
	return client.GitHubConfig{
		APIURL:  cfg.GitHub.APIURL,
		Repo:    cfg.GitHub.Repo,
		Branch:  cfg.GitHub.Branch,
		Path:    cfg.GitHub.Path,
		Token:   cfg.GitHub.Token,
		Timeout: cfg.GitHub.Timeout,
	}
}
