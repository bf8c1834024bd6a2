// Package paramgen implements the declarative parameter-set generator
// (spec §4.1): it turns a list of VariableSpecs into a population of
// ParameterVectors.
package paramgen

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/netfit/fitctl/internal/config"
	"github.com/netfit/fitctl/internal/model"
)

// Generate produces size ParameterVectors from specs, in the order their
// names first appear. rng drives every random family and must be seeded
// by the caller for reproducibility (spec §9).
func Generate(specs []config.VariableSpec, size int, rng *rand.Rand) ([]model.ParameterVector, []string, error) {
	schema := paramSchema(specs)
	working := [][]float64{} // rows indexed like schema; empty working set to start

	for _, spec := range specs {
		idx := indexOf(schema, spec.Name)
		if idx < 0 {
			return nil, nil, fmt.Errorf("paramgen: variable %q not in schema", spec.Name)
		}
		var err error
		working, err = apply(working, schema, idx, spec, size, rng)
		if err != nil {
			return nil, nil, fmt.Errorf("paramgen: variable %q: %w", spec.Name, err)
		}
	}

	if len(working) < size {
		return nil, nil, fmt.Errorf("paramgen: generated %d rows, need at least %d", len(working), size)
	}
	working = working[:size]

	out := make([]model.ParameterVector, len(working))
	for i, row := range working {
		out[i] = model.ParameterVector(row)
	}
	return out, schema, nil
}

func paramSchema(specs []config.VariableSpec) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range specs {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		out = append(out, s.Name)
	}
	return out
}

func indexOf(schema []string, name string) int {
	for i, n := range schema {
		if n == name {
			return i
		}
	}
	return -1
}

// apply folds one VariableSpec into the working set, per the combination
// semantics in spec §4.1.
func apply(working [][]float64, schema []string, idx int, spec config.VariableSpec, targetSize int, rng *rand.Rand) ([][]float64, error) {
	switch spec.Kind {
	case config.KindFixed:
		return cartesian(working, schema, idx, []float64{spec.Value}), nil

	case config.KindList:
		if len(spec.Values) == 0 {
			return nil, fmt.Errorf("list requires at least one value")
		}
		return cartesian(working, schema, idx, spec.Values), nil

	case config.KindStaticList:
		if len(working) == 0 {
			// Nothing to zip against yet: seed the working set directly.
			return zipSeed(schema, idx, spec.Values), nil
		}
		if len(spec.Values) != len(working) {
			return nil, fmt.Errorf("static_list length %d does not match current working-set size %d", len(spec.Values), len(working))
		}
		return zip(working, idx, spec.Values), nil

	case config.KindLinear:
		vals, err := linearValues(spec.First, spec.Last, spec.Steps)
		if err != nil {
			return nil, err
		}
		return cartesian(working, schema, idx, vals), nil

	case config.KindLog:
		vals, err := logValues(spec.First, spec.Last, spec.Steps, spec.Mantissa, spec.Base)
		if err != nil {
			return nil, err
		}
		return cartesian(working, schema, idx, vals), nil

	case config.KindRandom:
		if spec.Last <= spec.First {
			return nil, fmt.Errorf("random requires last > first")
		}
		return randomFamily(working, schema, idx, targetSize, rng, func() float64 {
			return spec.First + rng.Float64()*(spec.Last-spec.First)
		}), nil

	case config.KindLogUniform:
		if spec.Min <= 0 || spec.Max <= 0 || spec.Max <= spec.Min {
			return nil, fmt.Errorf("loguniform requires 0 < min < max")
		}
		lo, hi := math.Log10(spec.Min), math.Log10(spec.Max)
		return randomFamily(working, schema, idx, targetSize, rng, func() float64 {
			return math.Pow(10, lo+rng.Float64()*(hi-lo))
		}), nil

	case config.KindLogNormRandom:
		if spec.Mean <= 0 {
			return nil, fmt.Errorf("lognormrandom requires mean > 0")
		}
		// exp(log(mean) + Z*stddev), Z standard normal, per spec §4.1.
		// Drawn from the same seeded *rand.Rand as every other random
		// family rather than a separate distribution object, so a single
		// seed reproduces the whole generation step deterministically
		// (spec §9).
		return randomFamily(working, schema, idx, targetSize, rng, func() float64 {
			return math.Exp(math.Log(spec.Mean) + rng.NormFloat64()*spec.StdDev)
		}), nil

	default:
		return nil, fmt.Errorf("unknown variable kind %q", spec.Kind)
	}
}

// cartesian multiplies the working set by vals: each existing row is
// expanded into len(vals) rows, one per value, with idx set accordingly.
// An empty working set seeds directly from vals.
func cartesian(working [][]float64, schema []string, idx int, vals []float64) [][]float64 {
	if len(working) == 0 {
		out := make([][]float64, len(vals))
		for i, v := range vals {
			row := make([]float64, len(schema))
			row[idx] = v
			out[i] = row
		}
		return out
	}
	out := make([][]float64, 0, len(working)*len(vals))
	for _, row := range working {
		for _, v := range vals {
			nr := append([]float64(nil), row...)
			nr[idx] = v
			out = append(out, nr)
		}
	}
	return out
}

// zip pairs the working set 1:1 with vals (static_list semantics).
func zip(working [][]float64, idx int, vals []float64) [][]float64 {
	out := make([][]float64, len(working))
	for i, row := range working {
		nr := append([]float64(nil), row...)
		nr[idx] = vals[i]
		out[i] = nr
	}
	return out
}

func zipSeed(schema []string, idx int, vals []float64) [][]float64 {
	out := make([][]float64, len(vals))
	for i, v := range vals {
		row := make([]float64, len(schema))
		row[idx] = v
		out[i] = row
	}
	return out
}

// randomFamily implements the "random either adds a random component to
// each existing row (if >=2 rows exist) or expands a single/empty
// working set to targetSize rows by independent sampling" rule (spec
// §4.1).
func randomFamily(working [][]float64, schema []string, idx int, targetSize int, rng *rand.Rand, sample func() float64) [][]float64 {
	if len(working) >= 2 {
		out := make([][]float64, len(working))
		for i, row := range working {
			nr := append([]float64(nil), row...)
			nr[idx] = sample()
			out[i] = nr
		}
		return out
	}

	// Fewer than 2 rows: expand to targetSize independent samples.
	var base []float64
	if len(working) == 1 {
		base = working[0]
	} else {
		base = make([]float64, len(schema))
	}
	out := make([][]float64, targetSize)
	for i := 0; i < targetSize; i++ {
		nr := append([]float64(nil), base...)
		nr[idx] = sample()
		out[i] = nr
	}
	return out
}

// linearValues returns steps equally spaced values in [first, last],
// with the last value exactly equal to last (spec §4.1, scenario S1).
func linearValues(first, last float64, steps int) ([]float64, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be positive")
	}
	if steps == 1 {
		return []float64{last}, nil
	}
	out := make([]float64, steps)
	step := (last - first) / float64(steps-1)
	for i := 0; i < steps-1; i++ {
		out[i] = first + step*float64(i)
	}
	out[steps-1] = last
	return out, nil
}

// logValues returns steps geometrically spaced values in [first, last].
// mantissa, if positive, rounds each value to that many significant
// decimal digits, whatever the base; base defaults to 10.
func logValues(first, last float64, steps int, mantissa, base float64) ([]float64, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be positive")
	}
	if first <= 0 || last <= 0 {
		return nil, fmt.Errorf("log spacing requires first and last > 0")
	}
	if base == 0 {
		base = 10
	}
	if steps == 1 {
		return []float64{last}, nil
	}
	logFirst := math.Log(first) / math.Log(base)
	logLast := math.Log(last) / math.Log(base)
	step := (logLast - logFirst) / float64(steps-1)
	out := make([]float64, steps)
	for i := 0; i < steps-1; i++ {
		out[i] = math.Pow(base, logFirst+step*float64(i))
	}
	out[steps-1] = last
	if mantissa > 0 {
		for i, v := range out {
			out[i] = roundSignificant(v, mantissa)
		}
	}
	return out, nil
}

func roundSignificant(v, digits float64) float64 {
	if v == 0 {
		return 0
	}
	mag := math.Ceil(math.Log10(math.Abs(v)))
	factor := math.Pow(10, digits-mag)
	return math.Round(v*factor) / factor
}
