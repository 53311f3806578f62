package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/glossary/api/internal/store"
)

// BackupPruner periodically removes old local backups of the glossary file.
type BackupPruner struct {
	path     string
	keep     int
	maxAge   time.Duration
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	lastRun  time.Time
	lastErr  error
	removed  int
	runs     int
}

type PrunerConfig struct {
	DataPath string
	Keep     int
	MaxAge   time.Duration
	Interval time.Duration
}

// Status is reported by the scheduler status endpoint.
type Status struct {
	Running      bool       `json:"running"`
	Interval     string     `json:"interval"`
	Keep         int        `json:"keep"`
	MaxAge       string     `json:"maxAge"`
	Runs         int        `json:"runs"`
	TotalRemoved int        `json:"totalRemoved"`
	LastRun      *time.Time `json:"lastRun,omitempty"`
	LastError    string     `json:"lastError,omitempty"`
}

func NewBackupPruner(cfg PrunerConfig, logger *zap.Logger) *BackupPruner {
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupPruner{
		path:     cfg.DataPath,
		keep:     cfg.Keep,
		maxAge:   cfg.MaxAge,
		interval: cfg.Interval,
		logger:   logger.Named("pruner"),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Start prunes once, then on every tick until ctx is cancelled or Stop is
// called. It blocks; run it in its own goroutine.
func (p *BackupPruner) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.logger.Info("starting", zap.Duration("interval", p.interval), zap.Int("keep", p.keep))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.RunOnce()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("context cancelled, stopping")
			p.markStopped()
			return
		case <-p.stopChan:
			p.logger.Info("stop signal received")
			return
		case <-ticker.C:
			p.RunOnce()
		}
	}
}

func (p *BackupPruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		close(p.stopChan)
		p.running = false
	}
}

func (p *BackupPruner) markStopped() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

// RunOnce performs a single prune pass and returns the removed paths.
func (p *BackupPruner) RunOnce() []string {
	now := p.now()
	removed, err := store.PruneBackups(p.path, p.keep, p.maxAge, now)

	p.mu.Lock()
	p.runs++
	p.lastRun = now
	p.lastErr = err
	p.removed += len(removed)
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("prune failed", zap.String("path", p.path), zap.Error(err))
		return removed
	}
	if len(removed) > 0 {
		p.logger.Info("pruned backups", zap.Int("removed", len(removed)))
	}
	return removed
}

func (p *BackupPruner) GetStatus() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Status{
		Running:      p.running,
		Interval:     p.interval.String(),
		Keep:         p.keep,
		MaxAge:       p.maxAge.String(),
		Runs:         p.runs,
		TotalRemoved: p.removed,
	}
	if !p.lastRun.IsZero() {
		last := p.lastRun
		s.LastRun = &last
	}
	if p.lastErr != nil {
		s.LastError = p.lastErr.Error()
	}
	return s
}
