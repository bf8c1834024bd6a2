package tabular

import (
	"math"
	"strings"
	"testing"
)

func TestReadFromBasic(t *testing.T) {
	data := "#time A B\n0 1 NaN\n1 2 3\n"
	tbl, err := ReadFrom(strings.NewReader(data), "test")
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(tbl.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(tbl.Columns))
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
	if !math.IsNaN(tbl.Value(0, "B")) {
		t.Errorf("expected NaN at row 0 column B, got %v", tbl.Value(0, "B"))
	}
	if tbl.Value(1, "B") != 3 {
		t.Errorf("expected 3 at row 1 column B, got %v", tbl.Value(1, "B"))
	}
}

func TestReadFromColumnMismatch(t *testing.T) {
	data := "#time A\n0 1 2\n"
	if _, err := ReadFrom(strings.NewReader(data), "test"); err == nil {
		t.Fatal("expected error for mismatched column count")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	tbl := &Table{
		Columns: []string{"time", "A"},
		Rows: [][]float64{
			{0, 1.5},
			{1, math.NaN()},
		},
	}
	var buf strings.Builder
	if err := WriteTo(&buf, tbl); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got, err := ReadFrom(strings.NewReader(buf.String()), "roundtrip")
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if got.Value(0, "A") != 1.5 {
		t.Errorf("expected 1.5, got %v", got.Value(0, "A"))
	}
	if !math.IsNaN(got.Value(1, "A")) {
		t.Errorf("expected NaN, got %v", got.Value(1, "A"))
	}
}

func TestSDColumnHelpers(t *testing.T) {
	if SDColumn("A") != "A_SD" {
		t.Errorf("expected A_SD, got %s", SDColumn("A"))
	}
	if !IsSDColumn("A_SD") {
		t.Error("expected A_SD to be recognized as an SD column")
	}
	if IsSDColumn("A") {
		t.Error("did not expect A to be recognized as an SD column")
	}
}

func TestWeightMapRoundTrip(t *testing.T) {
	w := NewWeightMap([]string{"A", "B"}, 3)
	w.Weights["A"] = []int{2, 1, 0}
	w.Weights["B"] = []int{0, 2, 1}

	tmp := t.TempDir() + "/weights.txt"
	if err := WriteWeightMap(tmp, w); err != nil {
		t.Fatalf("WriteWeightMap: %v", err)
	}
	got, err := ReadWeightMap(tmp)
	if err != nil {
		t.Fatalf("ReadWeightMap: %v", err)
	}
	if got.WeightAt("A", 0) != 2 || got.WeightAt("B", 2) != 1 {
		t.Errorf("unexpected round-tripped weights: %+v", got.Weights)
	}
	if got.WeightAt("missing", 0) != 1 {
		t.Errorf("expected default weight of 1 for missing column")
	}
}
