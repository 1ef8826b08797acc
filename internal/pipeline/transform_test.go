package pipeline_test

import (
	"testing"

	"tripsync/internal/pipeline"
)

func rawRecord(fields map[string]string) pipeline.Record {
	data := make(map[string]any, len(fields))
	for k, v := range fields {
		data[k] = v
	}
	return pipeline.Record{Data: data}
}

func TestExcludeGroups(t *testing.T) {
	filter := &pipeline.ExcludeGroups{Excluded: []string{"ADMINISTRATIVO", "COMERCIAL"}}

	cases := []struct {
		group string
		keep  bool
	}{
		{"OPERACIONAL", true},
		{"ADMINISTRATIVO", false},
		{"COMERCIAL", false},
		{"  ADMINISTRATIVO  ", false}, // trimmed before matching
		{"administrativo", true},      // case-sensitive
		{"", true},
	}
	for _, c := range cases {
		rec := rawRecord(map[string]string{pipeline.ColGroup: c.group})
		if _, keep := filter.Transform(rec); keep != c.keep {
			t.Errorf("group %q: keep = %v, want %v", c.group, keep, c.keep)
		}
	}
}

func TestExcludeGroups_EmptyExclusionKeepsAll(t *testing.T) {
	filter := &pipeline.ExcludeGroups{}
	rec := rawRecord(map[string]string{pipeline.ColGroup: "ADMINISTRATIVO"})
	if _, keep := filter.Transform(rec); !keep {
		t.Fatal("empty exclusion set must keep every record")
	}
}

func TestSheetProjection_Total(t *testing.T) {
	// Source record with only a couple of fields: projection must still
	// produce every declared column.
	rec := rawRecord(map[string]string{
		pipeline.ColTripID:    "T1",
		pipeline.ColFirstName: "Ana",
		"Coluna desconhecida": "dropped",
	})

	out, keep := pipeline.SheetProjection{}.Transform(rec)
	if !keep {
		t.Fatal("projection must never drop records")
	}
	if len(out.Data) != len(pipeline.SheetColumns) {
		t.Fatalf("expected %d fields, got %d: %v", len(pipeline.SheetColumns), len(out.Data), out.Data)
	}
	for _, col := range pipeline.SheetColumns {
		if _, ok := out.Data[col]; !ok {
			t.Errorf("missing declared column %q", col)
		}
	}
	if out.Field("trip_id") != "T1" {
		t.Errorf("trip_id = %q", out.Field("trip_id"))
	}
	if out.Field("last_name") != "" {
		t.Errorf("absent source field should default to empty, got %q", out.Field("last_name"))
	}
	if _, ok := out.Data["Coluna desconhecida"]; ok {
		t.Error("unknown source column must be dropped")
	}
	if out.Field("verification_status") != pipeline.VerificationPending {
		t.Errorf("verification_status = %q", out.Field("verification_status"))
	}
}

func TestDocProjection_FullNameDerivation(t *testing.T) {
	cases := []struct {
		first, last, want string
	}{
		{"Ana", "Silva", "Ana Silva"},
		{"  Ana  ", " Silva ", "Ana Silva"},
		{"Ana", "", "Ana"},
		{"", "Silva", "Silva"},
		{"", "", ""},
	}
	for _, c := range cases {
		rec := rawRecord(map[string]string{
			pipeline.ColFirstName: c.first,
			pipeline.ColLastName:  c.last,
		})
		out, _ := pipeline.DocProjection{}.Transform(rec)
		if got := out.Field("full_name"); got != c.want {
			t.Errorf("full_name(%q, %q) = %q, want %q", c.first, c.last, got, c.want)
		}
	}
}

func TestDocProjection_TotalAndNumeric(t *testing.T) {
	rec := rawRecord(map[string]string{
		pipeline.ColTripID:   "T1",
		pipeline.ColDistance: "12,5",
		pipeline.ColDuration: "34",
		pipeline.ColTotal:    "R$ 23,40",
	})
	out, _ := pipeline.DocProjection{}.Transform(rec)

	if len(out.Data) != len(pipeline.DocFields) {
		t.Fatalf("expected %d fields, got %d: %v", len(pipeline.DocFields), len(out.Data), out.Data)
	}
	for _, f := range pipeline.DocFields {
		if _, ok := out.Data[f]; !ok {
			t.Errorf("missing declared field %q", f)
		}
	}
	if got := out.Data["distance_mi"].(float64); got != 12.5 {
		t.Errorf("distance_mi = %v", got)
	}
	if got := out.Data["duration_min"].(float64); got != 34 {
		t.Errorf("duration_min = %v", got)
	}
	if got := out.Data["total"].(float64); got != 23.4 {
		t.Errorf("total = %v", got)
	}

	// Missing numeric source → zero, missing string source → empty.
	empty, _ := pipeline.DocProjection{}.Transform(rawRecord(nil))
	if got := empty.Data["total"].(float64); got != 0 {
		t.Errorf("default total = %v", got)
	}
	if got := empty.Field("city"); got != "" {
		t.Errorf("default city = %q", got)
	}
}

func TestApplyTransformers_FilterThenProject(t *testing.T) {
	chain := []pipeline.Transformer{
		&pipeline.ExcludeGroups{Excluded: []string{"ADMINISTRATIVO"}},
		pipeline.DocProjection{},
	}

	kept, keep := pipeline.ApplyTransformers(rawRecord(map[string]string{
		pipeline.ColTripID: "T1",
		pipeline.ColGroup:  "OPERACIONAL",
	}), chain)
	if !keep {
		t.Fatal("OPERACIONAL record should survive")
	}
	if kept.Field("group") != "OPERACIONAL" {
		t.Errorf("group = %q", kept.Field("group"))
	}

	if _, keep := pipeline.ApplyTransformers(rawRecord(map[string]string{
		pipeline.ColGroup: "ADMINISTRATIVO",
	}), chain); keep {
		t.Fatal("excluded record leaked through the chain")
	}
}
