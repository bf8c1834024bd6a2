// Package scorer computes the objective-function distance between a
// permutation's simulation output and the reference datasets it is fit
// against (spec §4.5). Descriptive statistics (mean, sample standard
// deviation) are delegated to gonum.org/v1/gonum/stat, since those need
// no Source/seeding discipline unlike the parameter generator's random
// draws (see internal/paramgen's grounding note).
package scorer

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const zeroInitReplacement = 1e-6
const zeroLogReplacement = 1e-6

// divideByInit replaces a zero initial value with a small floor, divides
// every point by it, and fixes the first point to exactly 1 (spec §4.5
// step 1).
func divideByInit(col []float64) []float64 {
	if len(col) == 0 {
		return col
	}
	init := col[0]
	if init == 0 {
		init = zeroInitReplacement
	}
	out := make([]float64, len(col))
	for i, v := range col {
		out[i] = v / init
	}
	out[0] = 1
	return out
}

// logTransform replaces zero values with a small floor and takes log base
// b of every point (spec §4.5 step 2).
func logTransform(col []float64, base float64) []float64 {
	out := make([]float64, len(col))
	logBase := math.Log(base)
	for i, v := range col {
		if v == 0 {
			v = zeroLogReplacement
		}
		out[i] = math.Log(v) / logBase
	}
	return out
}

// standardizeSim subtracts the column mean and divides by the sample
// standard deviation (N-1 denominator, spec §4.5 step 3). A zero mean
// leaves the column untouched.
func standardizeSim(col []float64) []float64 {
	mean := stat.Mean(col, nil)
	if mean == 0 {
		return col
	}
	sd := stat.StdDev(col, nil)
	if sd == 0 {
		return col
	}
	out := make([]float64, len(col))
	for i, v := range col {
		out[i] = (v - mean) / sd
	}
	return out
}

// standardizeExp does the same as standardizeSim but computes mean/stddev
// only over non-NaN points and passes NaN values through unchanged (spec
// §4.5 step 4).
func standardizeExp(col []float64) []float64 {
	filtered := make([]float64, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) == 0 {
		return col
	}
	mean := stat.Mean(filtered, nil)
	if mean == 0 {
		return col
	}
	sd := stat.StdDev(filtered, nil)
	if sd == 0 {
		return col
	}
	out := make([]float64, len(col))
	for i, v := range col {
		if math.IsNaN(v) {
			out[i] = v
			continue
		}
		out[i] = (v - mean) / sd
	}
	return out
}

func extractColumn(columns []string, rows [][]float64, name string) []float64 {
	idx := -1
	for i, c := range columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row[idx]
	}
	return out
}
