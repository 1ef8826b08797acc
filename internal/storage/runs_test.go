package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"tripsync/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "state", "tripsync.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunStore_CreateAndList(t *testing.T) {
	store := storage.NewRunStore(openTestDB(t))

	base := time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC)
	runs := []*storage.RunLog{
		{StartedAt: base, FinishedAt: base.Add(time.Second), Status: "success", File: "daily_trips-2024_01_01.csv", RowsRead: 10, RowsWritten: 8},
		{StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour + time.Second), Status: "skipped", File: "daily_trips-2024_01_02.csv"},
		{StartedAt: base.Add(2 * time.Hour), FinishedAt: base.Add(2*time.Hour + time.Second), Status: "error", File: "daily_trips-2024_01_02.csv", Error: "connection reset"},
	}
	for _, r := range runs {
		if err := store.CreateRun(r); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
		if r.ID == "" {
			t.Fatal("CreateRun must assign an ID")
		}
	}

	got, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(got))
	}
	// Newest first.
	if got[0].Status != "error" || got[2].Status != "success" {
		t.Fatalf("unexpected order: %v, %v, %v", got[0].Status, got[1].Status, got[2].Status)
	}
	if got[0].Error != "connection reset" {
		t.Fatalf("error field = %q", got[0].Error)
	}
	if got[2].RowsRead != 10 || got[2].RowsWritten != 8 {
		t.Fatalf("row counts = %d/%d", got[2].RowsRead, got[2].RowsWritten)
	}
}

func TestRunStore_ListLimit(t *testing.T) {
	store := storage.NewRunStore(openTestDB(t))

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		run := &storage.RunLog{
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + time.Second),
			Status:     "success",
		}
		if err := store.CreateRun(run); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
	}

	got, err := store.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
}
