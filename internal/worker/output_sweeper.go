package worker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OutputSweeper periodically deletes rendered documents older than the
// retention period from a single directory. Subdirectories are left alone.
type OutputSweeper struct {
	dir       string
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	logger    *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewOutputSweeper creates a sweeper for dir.
func NewOutputSweeper(dir string, retention, interval time.Duration, logger *zap.Logger) *OutputSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutputSweeper{
		dir:       dir,
		retention: retention,
		interval:  interval,
		now:       time.Now,
		logger:    logger,
	}
}

// Name returns the worker name for identification
func (s *OutputSweeper) Name() string {
	return "OutputSweeper"
}

// Start sweeps once immediately and then on every interval until Stop is
// called or ctx is cancelled.
func (s *OutputSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("output sweeper is already running")
	}
	if s.retention <= 0 || s.interval <= 0 {
		return fmt.Errorf("output sweeper needs positive retention and interval")
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.running = true

	s.logger.Info("OutputSweeper started",
		zap.String("dir", s.dir),
		zap.Duration("retention", s.retention),
		zap.Duration("interval", s.interval))

	go s.loop(ctx, s.done)
	return nil
}

// Stop stops the sweep loop and waits for a sweep in progress to finish.
func (s *OutputSweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	done := s.done
	s.mu.Unlock()

	<-done
}

func (s *OutputSweeper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepAndLog()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepAndLog()
		}
	}
}

func (s *OutputSweeper) sweepAndLog() {
	removed, err := s.Sweep()
	if err != nil {
		s.logger.Warn("Output sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("Removed expired rendered documents", zap.Int("count", removed))
	}
}

// Sweep removes regular files last modified before now minus the retention
// period and returns how many were removed. A missing directory is not an error.
func (s *OutputSweeper) Sweep() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read output directory: %w", err)
	}

	cutoff := s.now().Add(-s.retention)
	removed := 0
	var errs []error

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed concurrently
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
		s.logger.Debug("Removed rendered document", zap.String("path", path))
	}

	return removed, errors.Join(errs...)
}
