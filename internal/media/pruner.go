// Package media removes generated audio clips, screenshots and
// uploaded recordings once they outlive their retention window. The
// files are uuid-named one-shot artifacts; nothing references them
// after the response that produced them is delivered.
package media

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PrunerConfig sets what to sweep and how aggressively.
type PrunerConfig struct {
	// Dirs are swept independently; missing directories are skipped.
	Dirs []string
	// MaxAge is the retention window; 0 means 24 hours.
	MaxAge time.Duration
	// Interval is the sweep period; 0 means 1 hour.
	Interval time.Duration
	// Keep lists filenames never removed, such as the static
	// synthesis fallback clip.
	Keep []string
}

// Pruner periodically deletes expired media files.
type Pruner struct {
	cfg    PrunerConfig
	keep   map[string]struct{}
	logger *zap.Logger
}

// NewPruner builds the pruner.
func NewPruner(cfg PrunerConfig, logger *zap.Logger) *Pruner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 24 * time.Hour
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	keep := make(map[string]struct{}, len(cfg.Keep))
	for _, name := range cfg.Keep {
		keep[name] = struct{}{}
	}
	return &Pruner{
		cfg:    cfg,
		keep:   keep,
		logger: logger.With(zap.String("component", "media_pruner")),
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (p *Pruner) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Sweep(ctx); err != nil {
				p.logger.Warn("media sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep removes expired files from every directory, one goroutine per
// directory. The first error is returned after all sweeps finish.
func (p *Pruner) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-p.cfg.MaxAge)

	g, ctx := errgroup.WithContext(ctx)
	for _, dir := range p.cfg.Dirs {
		g.Go(func() error {
			return p.sweepDir(ctx, dir, cutoff)
		})
	}
	return g.Wait()
}

func (p *Pruner) sweepDir(ctx context.Context, dir string, cutoff time.Time) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			continue
		}
		if _, ok := p.keep[entry.Name()]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			p.logger.Warn("failed to remove expired file",
				zap.String("dir", dir),
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		p.logger.Info("pruned expired media",
			zap.String("dir", dir),
			zap.Int("removed", removed))
	}
	return nil
}
