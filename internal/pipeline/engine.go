package pipeline

import (
	"context"
	"fmt"
	"time"
)

// ── Engine ─────────────────────────────────────────────────
// The Engine orchestrates one run: locate → download → parse →
// transform → deliver. Stages are strictly sequential; each consumes
// the previous stage's full output.

// RunStatus is the terminal state of one run.
type RunStatus string

const (
	StatusSuccess RunStatus = "success"
	StatusSkipped RunStatus = "skipped" // export not present yet — clean no-op
	StatusError   RunStatus = "error"
)

// RunResult is the outcome of one pipeline run.
type RunResult struct {
	Status      RunStatus     `json:"status"`
	File        string        `json:"file"`
	RowsRead    int           `json:"rowsRead"`
	RowsWritten int           `json:"rowsWritten"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
}

// Engine runs the sync pipeline against a source and a sink.
type Engine struct {
	Open       SourceFactory
	Transforms []Transformer
	Sink       Sink

	// Now supplies the run's reference time; nil means time.Now.
	Now func() time.Time
}

// Run executes the pipeline once. A missing export file is reported as
// a skipped result with a nil error; every other failure is returned
// to the caller after the source session has been released.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	result := &RunResult{Status: StatusError, File: Filename(now())}
	fail := func(err error) (*RunResult, error) {
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result, err
	}

	src, err := e.Open(ctx)
	if err != nil {
		return fail(fmt.Errorf("open source: %w", err))
	}
	defer src.Close()

	files, err := src.List(ctx)
	if err != nil {
		return fail(fmt.Errorf("list exports: %w", err))
	}

	target, ok := FindExport(files, result.File)
	if !ok {
		result.Status = StatusSkipped
		result.Duration = time.Since(start)
		return result, nil
	}

	data, err := src.Download(ctx, target.Name)
	if err != nil {
		return fail(fmt.Errorf("download %s: %w", target.Name, err))
	}

	records, err := ParseReport(data)
	if err != nil {
		return fail(err)
	}
	result.RowsRead = len(records)

	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if t, keep := ApplyTransformers(rec, e.Transforms); keep {
			out = append(out, t)
		}
	}

	written, err := e.Sink.Write(ctx, out)
	if err != nil {
		return fail(fmt.Errorf("write: %w", err))
	}

	result.Status = StatusSuccess
	result.RowsWritten = written
	result.Duration = time.Since(start)
	return result, nil
}
