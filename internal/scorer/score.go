package scorer

import (
	"math"

	"github.com/netfit/fitctl/internal/config"
	"github.com/netfit/fitctl/internal/model"
	"github.com/netfit/fitctl/internal/tabular"
)

// Options carries the subset of FitConfig that shapes scoring (spec §4.5
// inputs).
type Options struct {
	Objective    config.ObjectiveFunction
	DivideByInit bool
	LogTransform bool
	LogBase      float64
	StdizeSim    bool
	StdizeExp    bool
}

// PerFileScore is one reference file's contribution to a permutation's
// total score, the breakdown the perm_model_diff artifact is built from.
type PerFileScore struct {
	ReferencePath string
	Sum           float64
	Score         float64
}

// Result is one permutation's scoring outcome.
type Result struct {
	PermID  int
	Failed  bool
	RawSum  float64
	Score   float64
	PerFile []PerFileScore
}

// Score evaluates one permutation's simulation outputs (keyed by
// reference path) against the reference datasets, per spec §4.5. A
// permutation that cannot be scored (missing column, insufficient
// control-value coverage, or a forbidden divide-by-zero) gets
// model.SentinelScore and Failed=true, but Score still returns a Result
// rather than an error -- a scoring failure is data, not a program fault,
// and the permutation must still rank (unselectably) in the population.
func Score(permID int, opts Options, refs []*tabular.ReferenceDataset, sims map[string]*tabular.SimulationOutput, weights map[string]*tabular.WeightMap) Result {
	res := Result{PermID: permID}
	total := 0.0

	for _, ref := range refs {
		sim, ok := sims[ref.Path]
		if !ok {
			return sentinel(permID)
		}
		if !sim.CoversReference(ref, model.AlignmentEpsilon) {
			return sentinel(permID)
		}

		fileSum := 0.0
		var wm *tabular.WeightMap
		if weights != nil {
			wm = weights[ref.Path]
		}

		for _, name := range ref.DataColumns() {
			simIdx := sim.Table.ColumnIndex(name)
			if simIdx < 0 {
				return sentinel(permID)
			}

			simCol := extractColumn(sim.Table.Columns, sim.Table.Rows, name)
			if opts.DivideByInit {
				simCol = divideByInit(simCol)
			}
			if opts.LogTransform {
				base := opts.LogBase
				if base <= 1 {
					base = 10
				}
				simCol = logTransform(simCol, base)
			}
			if opts.StdizeSim {
				simCol = standardizeSim(simCol)
			}

			expCol := extractColumn(ref.Table.Columns, ref.Table.Rows, name)
			if opts.StdizeExp {
				expCol = standardizeExp(expCol)
			}

			var colMean float64
			if opts.Objective == config.ObjectiveColumnMean {
				colMean = nonNaNMean(expCol)
			}

			sdIdx := -1
			if opts.Objective == config.ObjectiveSD {
				sdIdx = ref.Table.ColumnIndex(tabular.SDColumn(name))
			}

			startAt := 0
			for rowIdx := range ref.Table.Rows {
				eVal := expCol[rowIdx]
				if math.IsNaN(eVal) {
					continue
				}
				target := ref.ControlValue(rowIdx)
				simRow, next := sim.AlignRow(target, model.AlignmentEpsilon, startAt)
				startAt = next
				if simRow < 0 {
					return sentinel(permID)
				}
				sVal := simCol[simRow]

				var residual2 float64
				switch opts.Objective {
				case config.ObjectiveSD:
					if sdIdx < 0 {
						return sentinel(permID)
					}
					sigma := ref.Table.Rows[rowIdx][sdIdx]
					if math.IsNaN(sigma) || sigma == 0 {
						return sentinel(permID)
					}
					d := (eVal - sVal) / sigma
					residual2 = d * d
				case config.ObjectiveRelative:
					if eVal == 0 {
						return sentinel(permID)
					}
					d := (eVal - sVal) / eVal
					residual2 = d * d
				case config.ObjectiveColumnMean:
					if colMean == 0 {
						return sentinel(permID)
					}
					d := (eVal - sVal) / colMean
					residual2 = d * d
				default: // ObjectiveAbsolute
					d := eVal - sVal
					residual2 = d * d
				}

				weight := 1.0
				if wm != nil {
					weight = float64(wm.WeightAt(name, rowIdx))
				}
				fileSum += residual2 * weight
			}
		}

		res.PerFile = append(res.PerFile, PerFileScore{
			ReferencePath: ref.Path,
			Sum:           fileSum,
			Score:         math.Sqrt(fileSum),
		})
		total += fileSum
	}

	res.RawSum = total
	res.Score = math.Sqrt(total)
	return res
}

func sentinel(permID int) Result {
	return Result{PermID: permID, Failed: true, RawSum: model.SentinelScore, Score: model.SentinelScore}
}

func nonNaNMean(col []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range col {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
