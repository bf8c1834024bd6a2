// Package genetic breeds one generation's scored population into the
// next (spec §4.6): merge-and-rank, stall/threshold termination checks,
// parent preservation, weighted survivor selection, crossover, mutation,
// and re-insertion. Grounded on the teacher's SimplePopulationManager
// (intelligence/population-manager.go), which also threads one seeded
// *rand.Rand through selection, crossover, and mutation for determinism;
// this operator keeps that single-RNG discipline but replaces tournament
// selection with the weighted-by-score-gap scheme spec §4.6 step 6-7
// describes, and keeps the engine's crossover/mutation split as two
// separate per-position coin flips rather than one mode toggle.
package genetic

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/netfit/fitctl/internal/config"
	"github.com/netfit/fitctl/internal/ferrors"
	"github.com/netfit/fitctl/internal/model"
)

// Outcome is the result of one breeding step.
type Outcome struct {
	Next           model.Population // next generation's parameter vectors, scores reset
	ParentSummary  model.Population // merged top-P summary, fed back in as prevParents next time
	Terminate      bool
	TerminateWhy   string
}

// Breed runs spec §4.6's eleven steps against current (this generation's
// scored population) and prevParents (the previous parent-summary, nil
// on generation 1).
func Breed(rng *rand.Rand, schema []string, generation int, current, prevParents model.Population, cfg *config.FitConfig) (Outcome, error) {
	p := cfg.PopulationSize

	// 1. Merge and rank. A previous parent whose parameter vector already
	// appears in current is not added a second time.
	merged := make(model.Population, 0, len(current)+len(prevParents))
	merged = append(merged, current...)
	for _, pp := range prevParents {
		dup := false
		for _, c := range current {
			if paramsEqual(model.Population{c}, model.Population{pp}) {
				dup = true
				break
			}
		}
		if !dup {
			merged = append(merged, pp)
		}
	}
	merged.Sort()
	merged = merged.Truncate(p)

	out := Outcome{ParentSummary: merged}

	// 2. Stall check.
	if cfg.StopWhenStalled && prevParents != nil && paramsEqual(merged, prevParents.Truncate(p)) {
		out.Terminate = true
		out.TerminateWhy = "stalled: top parameter vectors unchanged from previous generation"
		return out, nil
	}

	// 3. Threshold check.
	if best, ok := (model.GenerationRecord{Pop: merged}).Best(); ok && best.Score <= cfg.MinObjFuncValue {
		out.Terminate = true
		out.TerminateWhy = fmt.Sprintf("best score %.6g reached min_objfunc_value %.6g", best.Score, cfg.MinObjFuncValue)
		return out, nil
	}

	// 4. Parent-preservation set.
	var preserved model.Population
	if cfg.KeepTopKParents > 0 {
		k := cfg.KeepTopKParents
		if k > len(merged) {
			k = len(merged)
		}
		preserved = make(model.Population, k)
		for i := 0; i < k; i++ {
			preserved[i] = model.Individual{PermID: merged[i].PermID, Params: merged[i].Params.Clone()}
		}
	}

	// 5. Survivor pool.
	survivors := make(model.Population, 0, len(merged))
	for _, ind := range merged {
		if cfg.HasMaxObjFuncValue && ind.Score > cfg.MaxObjFuncValue {
			continue
		}
		survivors = append(survivors, ind)
	}
	if cfg.MaxParents > 0 && len(survivors) > cfg.MaxParents {
		survivors = survivors[:cfg.MaxParents]
	}
	if len(survivors) < 3 {
		return Outcome{}, &ferrors.InsufficientSurvivorsError{Generation: generation, Survivors: len(survivors)}
	}

	// 6. Weight construction: w_i = max_score - score_i, worst survivor weight 0.
	maxScore := survivors[len(survivors)-1].Score
	weights := make([]float64, len(survivors))
	prefix := make([]float64, len(survivors))
	sum := 0.0
	for i, s := range survivors {
		w := maxScore - s.Score
		if w < 0 {
			w = 0
		}
		weights[i] = w
		sum += w
		prefix[i] = sum
	}

	pick := func() int {
		if sum <= 0 {
			return len(survivors) - 1
		}
		// extra_weight is not surfaced anywhere else in this system's
		// configuration, so the documented "(1 - extra_weight/10)" factor
		// is treated as 1 (extra_weight == 0) rather than invented as a
		// new tunable.
		u := rng.Float64() * sum
		for i, cum := range prefix {
			if cum >= u {
				return i
			}
		}
		return len(survivors) - 1
	}

	// 10. Pair emission target: exactly P children (trim one if P is odd).
	// Steps 7-9 (select p1, p2; crossover; mutate) repeat fresh for every
	// pair, since each pair is its own independent weighted draw from the
	// survivor pool, not one parent pair reused for the whole cohort.
	pairs := (p + 1) / 2
	children := make(model.Population, 0, pairs*2)
	for pi := 0; pi < pairs; pi++ {
		p1 := pick()
		p2 := pick()
		if cfg.ForceDifferentParents && p1 == p2 {
			resampled := false
			for attempt := 0; attempt < 100; attempt++ {
				p2 = pick()
				if p2 != p1 {
					resampled = true
					break
				}
			}
			if !resampled {
				p1, p2 = 0, 1
				if len(survivors) < 2 {
					p2 = p1
				}
			}
		}

		parent1 := survivors[p1].Params
		parent2 := survivors[p2].Params

		c1, c2 := crossover(rng, schema, parent1, parent2, cfg.CrossoverSwapRate)
		mutate(rng, schema, c1, cfg)
		mutate(rng, schema, c2, cfg)
		children = append(children, model.Individual{Params: c1}, model.Individual{Params: c2})
	}
	if len(children) > p {
		children = children[:p]
	}

	// 11. Re-insertion: prepend preserved parents, drop last K children.
	next := make(model.Population, 0, len(preserved)+len(children))
	next = append(next, preserved...)
	next = append(next, children...)
	if len(next) > p {
		next = next[:p]
	}
	for i := range next {
		next[i].PermID = i
		next[i].Score = 0
		next[i].Failed = false
	}

	out.Next = next
	return out, nil
}

// crossover performs step 8: per parameter position independently, with
// probability swapRate keep (no swap), otherwise swap. The documented
// historic inversion is preserved by implementing exactly this reading,
// not the intuitive "swapRate = probability of swapping" one.
func crossover(rng *rand.Rand, schema []string, p1, p2 model.ParameterVector, swapRate float64) (model.ParameterVector, model.ParameterVector) {
	c1 := make(model.ParameterVector, len(schema))
	c2 := make(model.ParameterVector, len(schema))
	for j := range schema {
		if rng.Float64() < swapRate {
			c1[j] = p1[j]
			c2[j] = p2[j]
		} else {
			c1[j] = p2[j]
			c2[j] = p1[j]
		}
	}
	return c1, c2
}

// mutate performs step 9: for each position, look up the mutation spec by
// parameter name (falling back to "default"), and with probability Prob
// perturb the value by a uniform draw on [-v*Pct, +v*Pct].
func mutate(rng *rand.Rand, schema []string, child model.ParameterVector, cfg *config.FitConfig) {
	for j, name := range schema {
		spec, ok := cfg.MutationFor(name)
		if !ok {
			continue
		}
		if rng.Float64() >= spec.Prob {
			continue
		}
		v := child[j]
		delta := (rng.Float64()*2 - 1) * spec.Pct
		child[j] = v + v*delta
	}
}

func paramsEqual(a, b model.Population) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i].Params) != len(b[i].Params) {
			return false
		}
		for j := range a[i].Params {
			if math.Abs(a[i].Params[j]-b[i].Params[j]) > 0 {
				return false
			}
		}
	}
	return true
}
