package controller

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/netfit/fitctl/internal/ferrors"
	"github.com/netfit/fitctl/internal/genetic"
	"github.com/netfit/fitctl/internal/model"
	"github.com/netfit/fitctl/internal/obslog"
	"github.com/netfit/fitctl/internal/paramgen"
	"github.com/netfit/fitctl/internal/scorer"
	"github.com/netfit/fitctl/internal/tabular"
)

// Outcome is the terminal result of one full fitting run (spec §4.7
// decide states final/stalled/threshold-met, or a fatal consolidation).
type Outcome struct {
	Decision       string // "final", "stalled", "threshold-met", "insufficient-survivors"
	BestGeneration int
	Best           model.Individual
}

// Run advances generations from 1 through Cfg.Generations (or until a
// decide state halts early), writing per-generation artifacts and a
// final Results directory. weights is the bootstrap weight map for this
// run, or nil outside bootstrap mode.
func (c *Controller) Run(ctx context.Context, weights map[string]*tabular.WeightMap) (Outcome, error) {
	firstGenSize := c.Cfg.EffectiveFirstGenSize()
	vectors, schema, err := paramgen.Generate(c.Cfg.Variables, firstGenSize, c.RNG)
	if err != nil {
		return Outcome{}, fmt.Errorf("controller: initial population: %w", err)
	}
	if len(schema) != len(c.Schema) {
		c.Schema = schema
	}

	pop := make(model.Population, len(vectors))
	for i, v := range vectors {
		pop[i] = model.Individual{PermID: i, Params: v}
	}

	return c.runFrom(ctx, 1, pop, nil, nil, weights)
}

// RunFrom continues a previously interrupted run (spec §4.7 "Resume"):
// startGen's population has already been materialized but not yet
// scored, priorScored carries every generation before startGen (for the
// final sorted_params.txt), and parentSummary is the prior generation's
// surviving parents (nil if startGen == 1).
func (c *Controller) RunFrom(ctx context.Context, startGen int, pop, priorScored, parentSummary model.Population, weights map[string]*tabular.WeightMap) (Outcome, error) {
	return c.runFrom(ctx, startGen, pop, priorScored, parentSummary, weights)
}

func (c *Controller) runFrom(ctx context.Context, startGen int, pop, allScored, parentSummary model.Population, weights map[string]*tabular.WeightMap) (Outcome, error) {
	var best model.Individual
	haveBest := false
	for _, ind := range allScored {
		if !haveBest || ind.Score < best.Score {
			best = ind
			haveBest = true
		}
	}
	baseLog := c.Log

	for gen := startGen; gen <= c.Cfg.Generations; gen++ {
		c.Log = obslog.ForGeneration(baseLog, gen)

		scored, err := c.runGenerationWithRetries(ctx, gen, pop, weights)
		if err != nil {
			return Outcome{}, err
		}

		allScored = append(allScored, scored...)
		failedThisGen := 0
		for _, ind := range scored {
			if ind.Failed {
				failedThisGen++
			}
		}
		if b, ok := (model.GenerationRecord{Pop: scored}).Best(); ok {
			if !haveBest || b.Score < best.Score {
				best = b
				haveBest = true
			}
		}
		c.reportStatus(gen, best, failedThisGen, "running")

		// First-generation oversize: re-truncate to P before breeding
		// (spec §4.7 "First-generation over-size").
		if gen == 1 && len(scored) > c.Cfg.PopulationSize {
			scored.Sort()
			scored = scored.Truncate(c.Cfg.PopulationSize)
		}

		outcome, err := genetic.Breed(c.RNG, c.Schema, gen, scored, parentSummary, c.Cfg)
		if err != nil {
			if _, ok := err.(*ferrors.InsufficientSurvivorsError); ok {
				c.writeResults(allScored)
				c.reportStatus(gen, best, 0, "insufficient-survivors")
				return Outcome{Decision: "insufficient-survivors", BestGeneration: gen, Best: best}, nil
			}
			return Outcome{}, err
		}

		genDir := generationDir(c.Cfg.OutputDir, gen)
		parentTable := scorer.BuildSummaryTable(c.Schema, outcome.ParentSummary)
		if err := tabular.Write(parentSummaryPath(genDir), parentTable); err != nil {
			return Outcome{}, fmt.Errorf("controller: write parent summary: %w", err)
		}

		if outcome.Terminate {
			c.writeResults(allScored)
			decision := classifyTermination(outcome.TerminateWhy)
			c.reportStatus(gen, best, 0, decision)
			return Outcome{Decision: decision, BestGeneration: gen, Best: best}, nil
		}

		parentSummary = outcome.ParentSummary
		pop = outcome.Next
	}

	c.writeResults(allScored)
	c.reportStatus(c.Cfg.Generations, best, 0, "final")
	return Outcome{Decision: "final", BestGeneration: c.Cfg.Generations, Best: best}, nil
}

func classifyTermination(why string) string {
	if strings.HasPrefix(why, "stalled") {
		return "stalled"
	}
	return "threshold-met"
}

// runGenerationWithRetries runs one generation, retrying from scratch (per
// spec §4.7 "retry -> delete generation directory, materialize again")
// whenever RunGeneration reports more failures than the P-3 tolerance,
// up to Cfg.MaxRetries times. Retrying re-runs "from parameter
// generation" (spec §4.3): for generation 1 that means redrawing the
// population from paramgen.Generate, advancing the shared RNG, rather
// than resubmitting the exact vectors that just produced too many
// failures -- for a deterministic simulator, or for pathological
// random/loguniform/lognormrandom draws, replaying the same vectors
// would make the retry a guaranteed no-op. For gen > 1 the population
// already is that generation's output of the breeding operator (the
// prior generation's "parameter generation" step), so it is carried
// forward unchanged into the retried materialize.
func (c *Controller) runGenerationWithRetries(ctx context.Context, gen int, pop model.Population, weights map[string]*tabular.WeightMap) (model.Population, error) {
	attempts := 0
	for {
		result, err := c.RunGeneration(ctx, gen, pop, weights)
		if err != nil {
			return nil, err
		}
		if !result.RetryAdvised {
			return result.Scored, nil
		}
		attempts++
		if attempts > c.Cfg.MaxRetries {
			if gen < 3 {
				return nil, &ferrors.RetriesExhaustedError{Generation: gen, MaxRetries: c.Cfg.MaxRetries}
			}
			c.Log.Warn().Int("gen", gen).Msg("retries exhausted, consolidating with partial results")
			return result.Scored, nil
		}
		c.Log.Warn().Int("gen", gen).Int("attempt", attempts).Msg("generation retrying: too many permutation failures")
		os.RemoveAll(generationDir(c.Cfg.OutputDir, gen))

		if gen == 1 {
			vectors, schema, err := paramgen.Generate(c.Cfg.Variables, len(pop), c.RNG)
			if err != nil {
				return nil, fmt.Errorf("controller: regenerate initial population: %w", err)
			}
			if len(schema) != len(c.Schema) {
				c.Schema = schema
			}
			redrawn := make(model.Population, len(vectors))
			for i, v := range vectors {
				redrawn[i] = model.Individual{PermID: i, Params: v}
			}
			pop = redrawn
		}
	}
}

// writeResults persists every scored individual across all generations,
// sorted by score, to Results/sorted_params.txt (spec §6 "Results/sorted_params.txt:
// all generations combined, sorted").
func (c *Controller) writeResults(all model.Population) {
	if len(all) == 0 {
		return
	}
	dup := make(model.Population, len(all))
	copy(dup, all)
	dup.Sort()
	if err := os.MkdirAll(resultsDir(c.Cfg.OutputDir), 0o755); err != nil {
		c.Log.Error().Err(err).Msg("failed to create Results directory")
		return
	}
	table := scorer.BuildSummaryTable(c.Schema, dup)
	if err := tabular.Write(sortedParamsPath(c.Cfg.OutputDir), table); err != nil {
		c.Log.Error().Err(err).Msg("failed to write sorted_params.txt")
	}
}
