package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"tripsync/internal/pipeline"
	"tripsync/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// SyncService — run triggering, history, and scheduling
// ─────────────────────────────────────────────────────────────

// ErrRunInFlight is returned when a trigger fires while a previous run
// has not finished. The trigger is dropped, not queued.
var ErrRunInFlight = errors.New("a sync run is already in flight")

// SyncService owns the pipeline engine, guards against overlapping
// runs, records run history, and drives the recurring schedule.
type SyncService struct {
	engine *pipeline.Engine
	runs   *storage.RunStore // may be nil: history disabled

	guard     RunGuard
	cronSched *cron.Cron
}

// New creates a SyncService. runs may be nil to disable run history.
func New(engine *pipeline.Engine, runs *storage.RunStore) *SyncService {
	return &SyncService{engine: engine, runs: runs}
}

// RunOnce executes the pipeline once. Returns ErrRunInFlight without
// touching the pipeline if a previous run is still executing. A missing
// export is a success from the caller's point of view: the result says
// skipped and the error is nil.
func (s *SyncService) RunOnce(ctx context.Context) (*pipeline.RunResult, error) {
	if !s.guard.TryLock() {
		return nil, ErrRunInFlight
	}
	defer s.guard.Unlock()

	start := time.Now()
	result, runErr := s.engine.Run(ctx)

	if s.runs != nil {
		runLog := &storage.RunLog{
			StartedAt:   start,
			FinishedAt:  time.Now(),
			Status:      string(result.Status),
			File:        result.File,
			RowsRead:    result.RowsRead,
			RowsWritten: result.RowsWritten,
			Error:       result.Error,
		}
		if err := s.runs.CreateRun(runLog); err != nil {
			log.Printf("sync: failed to record run history: %v", err)
		}
	}

	switch result.Status {
	case pipeline.StatusSkipped:
		log.Printf("sync: %s not present yet, skipping run", result.File)
	case pipeline.StatusSuccess:
		log.Printf("sync: %s — read %d row(s), wrote %d in %s",
			result.File, result.RowsRead, result.RowsWritten, result.Duration.Round(time.Millisecond))
	}

	return result, runErr
}

// StartSchedule begins triggering RunOnce on the given cron expression,
// evaluated in loc. A trigger that finds a run in flight is dropped; a
// failed run is logged and the schedule keeps going.
func (s *SyncService) StartSchedule(expr string, loc *time.Location) error {
	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(expr, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			if errors.Is(err, ErrRunInFlight) {
				log.Printf("sync cron: previous run still in flight, dropping trigger")
				return
			}
			log.Printf("sync cron: run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	c.Start()
	s.cronSched = c
	log.Printf("sync cron: scheduled %q in %s", expr, loc)
	return nil
}

// WaitRunning blocks until an in-flight run finishes or ctx is cancelled.
// Used for graceful shutdown.
func (s *SyncService) WaitRunning(ctx context.Context) {
	s.guard.WaitAll(ctx)
}

// Stop halts the schedule. Any in-flight run continues; pair with
// WaitRunning to drain it.
func (s *SyncService) Stop() {
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
