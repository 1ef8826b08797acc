package pipeline

// ── Record ─────────────────────────────────────────────────
// Common intermediate data format.
// The ingester emits raw records keyed by the source file's header
// names; projections re-key them onto a declared output schema.

// Record is a single row of data flowing through the pipeline.
type Record struct {
	Data map[string]any `json:"data"`
}

// Field returns the value of the named field as a string,
// or "" when the field is absent or not a string.
func (r Record) Field(name string) string {
	v, _ := r.Data[name].(string)
	return v
}
