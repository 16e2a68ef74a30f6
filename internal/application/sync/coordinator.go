// Package sync merges externally created requisitions into the local store,
// either on a schedule or on demand.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	appreq "github.com/opsboard/backend/internal/application/requisition"
	"github.com/opsboard/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Feed is the external source of requisitions. Fetching must not consume
// the records: the same record may be returned on every call.
type Feed interface {
	Name() string
	Fetch(ctx context.Context) ([]appreq.ExternalRequisition, error)
}

// Merger inserts records not yet known locally
type Merger interface {
	MergeExternal(ctx context.Context, batch []appreq.ExternalRequisition) (*appreq.MergeResult, error)
}

// RunTrigger tells whether a run was scheduled or requested by a user
type RunTrigger string

const (
	TriggerAutomatic RunTrigger = "AUTOMATIC"
	TriggerManual    RunTrigger = "MANUAL"
)

// RunStatus is the outcome of one sync run
type RunStatus string

const (
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
	RunStatusSkipped RunStatus = "SKIPPED"
)

// Result is what a successful sync returns
type Result struct {
	Inserted  []appreq.RequisitionResponse `json:"inserted"`
	Skipped   []appreq.SkippedRecord       `json:"skipped"`
	Fetched   int                          `json:"fetched"`
	Known     int                          `json:"known"`
	Timestamp time.Time                    `json:"timestamp"`
}

// Run is the audit record of one sync attempt
type Run struct {
	ID          string        `json:"id"`
	Trigger     RunTrigger    `json:"trigger"`
	Feed        string        `json:"feed"`
	Status      RunStatus     `json:"status"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Duration    time.Duration `json:"duration"`
	Fetched     int           `json:"fetched"`
	Inserted    int           `json:"inserted"`
	Skipped     int           `json:"skipped"`
	Error       string        `json:"error,omitempty"`
}

// RunRecorder receives every finished run
type RunRecorder interface {
	Record(run Run)
}

// Coordinator pulls the feed and merges it. Runs never overlap.
type Coordinator struct {
	feed     Feed
	merger   Merger
	timeout  time.Duration
	logger   *zap.Logger
	recorder RunRecorder
	now      func() time.Time

	mu gosync.Mutex
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithTimeout bounds each run
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.logger = l.Named("sync") }
}

// WithRecorder reports finished runs to r
func WithRecorder(r RunRecorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator creates a coordinator for feed
func NewCoordinator(feed Feed, merger Merger, opts ...Option) *Coordinator {
	c := &Coordinator{
		feed:   feed,
		merger: merger,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetRecorder sets the run recorder after construction
func (c *Coordinator) SetRecorder(r RunRecorder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recorder = r
}

// FeedName returns the configured feed's name
func (c *Coordinator) FeedName() string {
	return c.feed.Name()
}

// Sync fetches the feed and merges every record not yet known. Already
// present requisitions are never modified or removed. Fetch and persistence
// failures are returned as SYNC_FAILURE.
func (c *Coordinator) Sync(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sync(ctx)
}

// Trigger runs a sync on user request and surfaces its failure
func (c *Coordinator) Trigger(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run(ctx, TriggerManual)
}

// Tick runs a scheduled sync. Failures are logged and left for the next
// tick. A tick that finds a run in progress is skipped.
func (c *Coordinator) Tick(ctx context.Context) {
	if !c.mu.TryLock() {
		c.logger.Debug("Sync already in progress, skipping tick")
		now := c.now()
		c.record(Run{
			ID:          uuid.New().String(),
			Trigger:     TriggerAutomatic,
			Feed:        c.feed.Name(),
			Status:      RunStatusSkipped,
			StartedAt:   now,
			CompletedAt: now,
		})
		return
	}
	defer c.mu.Unlock()
	_, _ = c.run(ctx, TriggerAutomatic)
}

func (c *Coordinator) run(ctx context.Context, trigger RunTrigger) (*Result, error) {
	run := Run{
		ID:        uuid.New().String(),
		Trigger:   trigger,
		Feed:      c.feed.Name(),
		StartedAt: c.now(),
	}
	result, err := c.sync(ctx)
	run.CompletedAt = c.now()
	run.Duration = run.CompletedAt.Sub(run.StartedAt)

	if err != nil {
		run.Status = RunStatusFailed
		run.Error = err.Error()
		c.record(run)
		if trigger == TriggerManual {
			c.logger.Error("Manual sync failed", zap.String("feed", run.Feed), zap.Error(err))
			return nil, err
		}
		c.logger.Warn("Scheduled sync failed, retrying next tick", zap.String("feed", run.Feed), zap.Error(err))
		return nil, nil
	}

	run.Status = RunStatusSuccess
	run.Fetched = result.Fetched
	run.Inserted = len(result.Inserted)
	run.Skipped = len(result.Skipped)
	c.record(run)

	c.logger.Info("Sync completed",
		zap.String("trigger", string(trigger)),
		zap.String("feed", run.Feed),
		zap.Int("fetched", run.Fetched),
		zap.Int("inserted", run.Inserted),
		zap.Int("skipped", run.Skipped),
		zap.Int("known", result.Known),
	)
	return result, nil
}

func (c *Coordinator) sync(ctx context.Context) (*Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	batch, err := c.feed.Fetch(ctx)
	if err != nil {
		return nil, syncFailure(fmt.Sprintf("fetch from %s feed", c.feed.Name()), err)
	}

	merged, err := c.merger.MergeExternal(ctx, batch)
	if err != nil {
		return nil, syncFailure("merge external requisitions", err)
	}

	return &Result{
		Inserted:  merged.Inserted,
		Skipped:   merged.Skipped,
		Fetched:   len(batch),
		Known:     merged.Known,
		Timestamp: c.now(),
	}, nil
}

func (c *Coordinator) record(run Run) {
	if c.recorder != nil {
		c.recorder.Record(run)
	}
}

// SyncError is a SYNC_FAILURE that keeps the underlying cause
type SyncError struct {
	*shared.DomainError
	Cause error
}

// Unwrap exposes the cause to errors.Is / errors.As
func (e *SyncError) Unwrap() []error {
	return []error{e.DomainError, e.Cause}
}

func syncFailure(op string, cause error) error {
	return &SyncError{
		DomainError: shared.NewDomainError(shared.CodeSyncFailure, op+": "+cause.Error()),
		Cause:       cause,
	}
}
