// Package averager collapses the smoothing > 1 replicate outputs of one
// permutation into a single averaged tabular output (spec §4.4). The
// column-wise arithmetic-mean loop is grounded on the teacher's
// calculateEnvironmentStability in
// intelligence/fitness-evaluator.go, which accumulates a running sum per
// group and divides by count rather than reaching for a statistics
// package -- appropriate here too, since NaN-aware skipping needs its
// own loop regardless of library.
package averager

import (
	"fmt"
	"math"

	"github.com/netfit/fitctl/internal/tabular"
)

// Average computes the per-column arithmetic mean across replicates,
// row-by-row, ignoring any replicate whose table doesn't have that row
// (shorter tables contribute NaN for trailing rows) and ignoring NaN
// cells within a present row. It requires every replicate share the
// same column schema. Replicates is the set of replicates that
// succeeded; callers must have already filtered out those with
// ".failed" sentinels.
//
// A permutation with zero surviving replicates is not something Average
// handles -- callers check that before invoking it (spec §4.4 "a
// permutation is marked failed iff all R replicates produced .failed
// sentinels").
func Average(replicates []*tabular.SimulationOutput) (*tabular.Table, error) {
	if len(replicates) == 0 {
		return nil, fmt.Errorf("averager: no surviving replicates to average")
	}
	columns := replicates[0].Table.Columns
	for _, r := range replicates[1:] {
		if !sameColumns(columns, r.Table.Columns) {
			return nil, fmt.Errorf("averager: replicate %s has mismatched columns", r.Path)
		}
	}

	control := replicates[0].Control
	controlIdx := indexOf(columns, control)

	maxRows := 0
	for _, r := range replicates {
		if n := len(r.Table.Rows); n > maxRows {
			maxRows = n
		}
	}

	out := &tabular.Table{Columns: columns, Rows: make([][]float64, maxRows)}
	for rowIdx := 0; rowIdx < maxRows; rowIdx++ {
		row := make([]float64, len(columns))
		for col := range columns {
			if col == controlIdx {
				// The control column is structural, not a measurement: take
				// it from the first replicate that still has this row
				// rather than averaging it.
				row[col] = firstControlValue(replicates, rowIdx, col)
				continue
			}
			sum, n := 0.0, 0
			for _, r := range replicates {
				if rowIdx >= len(r.Table.Rows) {
					continue
				}
				v := r.Table.Rows[rowIdx][col]
				if math.IsNaN(v) {
					continue
				}
				sum += v
				n++
			}
			if n == 0 {
				row[col] = math.NaN()
				continue
			}
			row[col] = sum / float64(n)
		}
		out.Rows[rowIdx] = row
	}
	return out, nil
}

func firstControlValue(replicates []*tabular.SimulationOutput, row, col int) float64 {
	for _, r := range replicates {
		if row < len(r.Table.Rows) {
			return r.Table.Rows[row][col]
		}
	}
	return math.NaN()
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}
