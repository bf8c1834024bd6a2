package bootstrap

import (
	"math/rand"
	"testing"

	"github.com/netfit/fitctl/internal/tabular"
)

func TestGenerateWeightMapSumsToRowCount(t *testing.T) {
	ref := &tabular.ReferenceDataset{
		Control: "time",
		Table: &tabular.Table{
			Columns: []string{"time", "A", "B"},
			Rows:    [][]float64{{0, 1, 2}, {1, 3, 4}, {2, 5, 6}, {3, 7, 8}},
		},
	}

	rng := rand.New(rand.NewSource(42))
	wm := GenerateWeightMap(ref, rng)

	for _, col := range []string{"A", "B"} {
		sum := 0
		for _, w := range wm.Weights[col] {
			sum += w
		}
		if sum != len(ref.Table.Rows) {
			t.Fatalf("column %s: expected weight sum %d, got %d", col, len(ref.Table.Rows), sum)
		}
	}
}

func TestGenerateWeightMapExcludesControlAndSD(t *testing.T) {
	ref := &tabular.ReferenceDataset{
		Control: "time",
		Table: &tabular.Table{
			Columns: []string{"time", "A", "A_SD"},
			Rows:    [][]float64{{0, 1, 0.1}, {1, 2, 0.2}},
		},
	}
	rng := rand.New(rand.NewSource(1))
	wm := GenerateWeightMap(ref, rng)
	if _, ok := wm.Weights["time"]; ok {
		t.Fatalf("control column should not have weights")
	}
	if _, ok := wm.Weights["A_SD"]; ok {
		t.Fatalf("_SD column should not have weights")
	}
	if _, ok := wm.Weights["A"]; !ok {
		t.Fatalf("expected weights for data column A")
	}
}
