package sinks_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tripsync/internal/pipeline"
	"tripsync/internal/pipeline/sinks"
)

func sheetRecord(tripID, first string) pipeline.Record {
	rec, _ := pipeline.SheetProjection{}.Transform(pipeline.Record{Data: map[string]any{
		pipeline.ColTripID:    tripID,
		pipeline.ColFirstName: first,
	}})
	return rec
}

func TestSheet_PostsOrderedRows(t *testing.T) {
	var (
		gotBody  []byte
		gotCT    string
		requests int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		gotCT = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := sinks.NewSheet(srv.URL)
	written, err := sink.Write(context.Background(), []pipeline.Record{
		sheetRecord("T1", "Ana"),
		sheetRecord("T2", "Bruno"),
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if written != 2 || requests != 1 {
		t.Fatalf("written=%d requests=%d", written, requests)
	}
	if gotCT != "application/json" {
		t.Errorf("content type = %q", gotCT)
	}

	var payload struct {
		Values [][]any `json:"values"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if len(payload.Values) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(payload.Values))
	}
	row := payload.Values[0]
	if len(row) != len(pipeline.SheetColumns) {
		t.Fatalf("row has %d cells, want %d", len(row), len(pipeline.SheetColumns))
	}
	// Column order is the declared schema order: trip_id first,
	// verification_status last.
	if row[0] != "T1" {
		t.Errorf("first cell = %v", row[0])
	}
	if row[len(row)-1] != pipeline.VerificationPending {
		t.Errorf("last cell = %v", row[len(row)-1])
	}
}

func TestSheet_EmptySetIsNoop(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	sink := sinks.NewSheet(srv.URL)
	written, err := sink.Write(context.Background(), nil)
	if err != nil || written != 0 {
		t.Fatalf("written=%d err=%v", written, err)
	}
	if requests != 0 {
		t.Fatalf("expected zero requests, got %d", requests)
	}
}

func TestSheet_NonSuccessStatusIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	sink := sinks.NewSheet(srv.URL)
	_, err := sink.Write(context.Background(), []pipeline.Record{sheetRecord("T1", "Ana")})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error should carry status and reason: %v", err)
	}
}
