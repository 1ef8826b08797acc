package pipeline

import (
	"strconv"
	"strings"
)

// ── Transformer ────────────────────────────────────────────
// Transformers modify records in-flight between source and sink.
// They are composable: each takes a record, returns a (possibly modified)
// record and a boolean indicating whether to keep it.

// Transformer processes a single record.
// Returns (transformed record, keep). If keep is false, the record is dropped.
type Transformer interface {
	Transform(Record) (Record, bool)
}

// TransformerFunc adapts a plain function to the Transformer interface.
type TransformerFunc func(Record) (Record, bool)

func (f TransformerFunc) Transform(r Record) (Record, bool) { return f(r) }

// ApplyTransformers runs a chain of transformers on a record.
func ApplyTransformers(r Record, ts []Transformer) (Record, bool) {
	for _, t := range ts {
		var keep bool
		r, keep = t.Transform(r)
		if !keep {
			return r, false
		}
	}
	return r, true
}

// ── Built-in Transforms ────────────────────────────────────

// ExcludeGroups drops records whose group field, trimmed, exactly
// matches one of the excluded values. Matching is case-sensitive.
type ExcludeGroups struct {
	Excluded []string
}

func (t *ExcludeGroups) Transform(r Record) (Record, bool) {
	group := strings.TrimSpace(r.Field(ColGroup))
	for _, g := range t.Excluded {
		if group == g {
			return r, false
		}
	}
	return r, true
}

// SheetProjection maps a raw record onto the spreadsheet output schema.
// The projection is total: every column in SheetColumns is present in
// the output, defaulting to "" when the source lacks the field. Unknown
// source columns are dropped. verification_status is always stamped
// with the pending marker.
type SheetProjection struct{}

func (SheetProjection) Transform(r Record) (Record, bool) {
	out := make(map[string]any, len(SheetColumns))
	for _, col := range SheetColumns {
		if src, ok := sheetColumnSource[col]; ok {
			out[col] = r.Field(src)
		}
	}
	out["verification_status"] = VerificationPending
	return Record{Data: out}, true
}

// DocProjection maps a raw record onto the trip-document schema.
// full_name is derived from the trimmed first and last name fields,
// joined by a single space and trimmed again (so a missing half does
// not leave a stray space). Distance, duration and total value are
// coerced to float64; unparseable values become 0.
type DocProjection struct{}

func (DocProjection) Transform(r Record) (Record, bool) {
	first := strings.TrimSpace(r.Field(ColFirstName))
	last := strings.TrimSpace(r.Field(ColLastName))

	out := map[string]any{
		"trip_id":             r.Field(ColTripID),
		"request_date":        r.Field(ColRequestDate),
		"request_time":        r.Field(ColRequestTime),
		"arrival_time":        r.Field(ColArrivalTimeLocal),
		"full_name":           strings.TrimSpace(first + " " + last),
		"group":               r.Field(ColGroup),
		"service":             r.Field(ColService),
		"city":                r.Field(ColCity),
		"country":             r.Field(ColCountry),
		"distance_mi":         parseNumber(r.Field(ColDistance)),
		"duration_min":        parseNumber(r.Field(ColDuration)),
		"origin_address":      r.Field(ColOrigin),
		"destination_address": r.Field(ColDestination),
		"total":               parseNumber(r.Field(ColTotal)),
	}
	return Record{Data: out}, true
}

// parseNumber coerces a source numeric field to float64. The export
// uses Brazilian formatting ("12,5", "R$ 23,40"); anything that still
// fails to parse becomes 0.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
