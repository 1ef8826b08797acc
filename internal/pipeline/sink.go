package pipeline

import "context"

// ── Sink ───────────────────────────────────────────────────
// A Sink delivers transformed records to a destination store.
// Implementations live in pipeline/sinks/ — one file per destination.

// Sink writes a transformed record set to the destination.
// An empty record set is a no-op. Write returns the number of records
// actually staged for delivery (the upsert sink skips records without
// a natural key; the append sink sends everything).
type Sink interface {
	Write(ctx context.Context, records []Record) (int, error)
}
