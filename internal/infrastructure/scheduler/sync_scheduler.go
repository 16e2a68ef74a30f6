// Package scheduler runs the periodic external requisition sync.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	appsync "github.com/opsboard/backend/internal/application/sync"
	"go.uber.org/zap"
)

// Ticker runs one scheduled sync. The coordinator implements it.
type Ticker interface {
	Tick(ctx context.Context)
}

// SyncSchedulerConfig holds configuration for the sync scheduler
type SyncSchedulerConfig struct {
	// Interval between ticks
	Interval time.Duration
	// RunOnStart ticks once immediately instead of waiting a full interval
	RunOnStart bool
	// MaxHistory is how many finished runs History keeps
	MaxHistory int
}

// DefaultSyncSchedulerConfig returns default configuration
func DefaultSyncSchedulerConfig() SyncSchedulerConfig {
	return SyncSchedulerConfig{
		Interval:   5 * time.Minute,
		RunOnStart: true,
		MaxHistory: 50,
	}
}

// Validate validates the configuration
func (c SyncSchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.MaxHistory <= 0 {
		return fmt.Errorf("%w: max history must be positive", ErrInvalidConfig)
	}
	return nil
}

// SyncScheduler ticks the coordinator on a fixed interval and keeps the
// recent run history for monitoring
type SyncScheduler struct {
	config SyncSchedulerConfig
	ticker Ticker
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	historyMu sync.RWMutex
	history   []appsync.Run // newest first
}

// NewSyncScheduler creates a scheduler for ticker
func NewSyncScheduler(config SyncSchedulerConfig, ticker Ticker, logger *zap.Logger) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncScheduler{
		config:  config,
		ticker:  ticker,
		logger:  logger.Named("sync-scheduler"),
		history: make([]appsync.Run, 0, config.MaxHistory),
	}, nil
}

// Start launches the tick loop. It returns immediately.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Bool("run_on_start", s.config.RunOnStart))
	return nil
}

// Stop cancels the loop and waits for an in-flight tick, up to ctx's
// deadline
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *SyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *SyncScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.ticker.Tick(ctx)
	}

	t := time.NewTicker(s.config.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.ticker.Tick(ctx)
		}
	}
}

// Record implements sync.RunRecorder
func (s *SyncScheduler) Record(run appsync.Run) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append(s.history, appsync.Run{})
	copy(s.history[1:], s.history)
	s.history[0] = run
	if len(s.history) > s.config.MaxHistory {
		s.history = s.history[:s.config.MaxHistory]
	}
}

// History returns up to limit recent runs, newest first. A non-positive
// limit returns all retained runs.
func (s *SyncScheduler) History(limit int) []appsync.Run {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]appsync.Run, limit)
	copy(out, s.history[:limit])
	return out
}

// LastRun returns the most recent run, if any
func (s *SyncScheduler) LastRun() (appsync.Run, bool) {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()
	if len(s.history) == 0 {
		return appsync.Run{}, false
	}
	return s.history[0], true
}

var _ appsync.RunRecorder = (*SyncScheduler)(nil)
