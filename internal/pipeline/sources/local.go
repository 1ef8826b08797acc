package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"tripsync/internal/pipeline"
)

// ── Local Directory Source ──────────────────────────────────
// Reads export files from a local directory. Used for development and
// for manually replaying an export that was fetched out of band.

type localSource struct {
	dir string
}

// OpenLocal returns a Source over a local directory.
func OpenLocal(ctx context.Context, dir string) (pipeline.Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open local dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open local dir: %s is not a directory", dir)
	}
	return &localSource{dir: dir}, nil
}

func (s *localSource) List(ctx context.Context) ([]pipeline.FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}

	files := make([]pipeline.FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, pipeline.FileInfo{
			Name:      info.Name(),
			SizeBytes: info.Size(),
			ModTime:   info.ModTime(),
		})
	}
	return files, nil
}

func (s *localSource) Download(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func (s *localSource) Close() error { return nil }
