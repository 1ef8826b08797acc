package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"tripsync/internal/pipeline"
)

// ── Sheet Sink ──────────────────────────────────────────────
// Appends the whole record set to the reporting spreadsheet with one
// HTTP POST. Not idempotent: re-running the same export appends
// duplicate rows downstream. Accepted limitation of this mode.

// Sheet pushes records to the spreadsheet append endpoint.
type Sheet struct {
	Endpoint string
	Client   *http.Client
}

// NewSheet creates a Sheet sink for the given endpoint URL.
func NewSheet(endpoint string) *Sheet {
	return &Sheet{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Write sends all records as one append request, with each row ordered
// per pipeline.SheetColumns. An empty record set is a no-op. Any
// non-2xx response fails the run.
func (s *Sheet) Write(ctx context.Context, records []pipeline.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	values := make([][]any, 0, len(records))
	for _, rec := range records {
		row := make([]any, len(pipeline.SheetColumns))
		for i, col := range pipeline.SheetColumns {
			row[i] = rec.Data[col]
		}
		values = append(values, row)
	}

	body, err := json.Marshal(map[string]any{"values": values})
	if err != nil {
		return 0, fmt.Errorf("marshal rows: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sheet push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("sheet push: %s: %s", resp.Status, detail)
	}

	log.Printf("[SHEET] Appended %d row(s)", len(values))
	return len(records), nil
}
