package pipeline

import (
	"context"
	"time"
)

// ── Source ─────────────────────────────────────────────────
// A Source exposes one remote (or local) directory of export files.
// Implementations live in pipeline/sources/ — one file per source type.

// FileInfo is a read-only snapshot of one directory-listing entry.
type FileInfo struct {
	Name      string
	SizeBytes int64
	ModTime   time.Time
}

// Source lists and downloads export files from the configured directory.
type Source interface {
	// List returns the entries of the export directory.
	List(ctx context.Context) ([]FileInfo, error)

	// Download returns the full byte content of the named file.
	Download(ctx context.Context, name string) ([]byte, error)

	// Close releases the underlying session.
	Close() error
}

// SourceFactory opens a fresh Source session. The engine opens one
// session per run and closes it on every exit path, so a failed run
// never leaks a connection into the next one.
type SourceFactory func(ctx context.Context) (Source, error)
