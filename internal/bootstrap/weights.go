package bootstrap

import (
	"math/rand"

	"github.com/netfit/fitctl/internal/tabular"
)

// GenerateWeightMap builds one bootstrap resampling of ref (spec §4.9):
// for each non-control, non-_SD column independently, sample row indices
// uniformly with replacement N times (N = row count) and count hits per
// row. The per-column sums therefore always equal N, but the per-row
// distribution differs column to column.
func GenerateWeightMap(ref *tabular.ReferenceDataset, rng *rand.Rand) *tabular.WeightMap {
	columns := ref.DataColumns()
	n := len(ref.Table.Rows)
	wm := tabular.NewWeightMap(columns, n)
	for _, col := range columns {
		counts := wm.Weights[col]
		for i := 0; i < n; i++ {
			counts[rng.Intn(n)]++
		}
	}
	return wm
}
