package pipeline

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"
)

// ── Ingester ───────────────────────────────────────────────
// The export file may start with banner/preamble lines before the real
// column header. Everything before the first line containing the trip-ID
// header substring is discarded; the rest is semicolon-delimited CSV.

// headerMarker identifies the real header row, matched case-insensitively.
const headerMarker = "id da viagem/uber eats"

// Filename returns the expected export name for the calendar day
// immediately preceding runTime. The date arithmetic uses runTime's own
// calendar fields with no timezone conversion: if the process clock's
// zone differs from the schedule zone the computed name can be off by
// one day around midnight. That source behavior is kept as-is.
func Filename(runTime time.Time) string {
	d := runTime.AddDate(0, 0, -1)
	return fmt.Sprintf("daily_trips-%04d_%02d_%02d.csv", d.Year(), int(d.Month()), d.Day())
}

// FindExport returns the listing entry whose name equals target exactly.
// The match is case-sensitive; no pattern matching.
func FindExport(files []FileInfo, target string) (FileInfo, bool) {
	for _, f := range files {
		if f.Name == target {
			return f, true
		}
	}
	return FileInfo{}, false
}

// ParseReport decodes an export file into raw records.
//
// A missing header row yields an empty record set, not an error: an
// export with no header is an empty/placeholder file. Malformed CSV
// after the header (bad quoting, inconsistent column counts) is an
// error, because it means the upstream format changed.
func ParseReport(data []byte) ([]Record, error) {
	text := strings.TrimPrefix(string(data), "\ufeff")

	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), headerMarker) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, nil
	}

	r := csv.NewReader(strings.NewReader(strings.Join(lines[start:], "\n")))
	r.Comma = ';'
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		data := make(map[string]any, len(header))
		for j, h := range header {
			if j < len(row) {
				data[h] = strings.TrimSpace(row[j])
			}
		}
		records = append(records, Record{Data: data})
	}
	return records, nil
}
