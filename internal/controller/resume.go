package controller

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/netfit/fitctl/internal/config"
	"github.com/netfit/fitctl/internal/ferrors"
	"github.com/netfit/fitctl/internal/model"
	"github.com/netfit/fitctl/internal/modelfile"
	"github.com/netfit/fitctl/internal/scorer"
	"github.com/netfit/fitctl/internal/tabular"
)

// ResumeState carries everything Controller.RunFrom needs to continue an
// interrupted fit from the generation Resume selected.
type ResumeState struct {
	Cfg           *config.FitConfig
	StartGen      int
	Pop           model.Population
	PriorScored   model.Population
	ParentSummary model.Population
}

// Resume implements spec §4.7 "Resume": it inspects outputDir for the
// highest-numbered generation directory carrying a config snapshot,
// deletes every higher-numbered generation, clears that generation's
// partial run outputs while preserving its config snapshot and
// materialized model files, and reconstructs the population, prior
// scored generations, and carried parent summary needed to re-enter the
// generation loop at that point. newMaxGen, when > 0, raises the
// resumed config's generation budget (spec §6 "resume <N> <conf>").
func Resume(outputDir string, newMaxGen int) (*ResumeState, error) {
	gen, err := discoverResumeGeneration(outputDir)
	if err != nil {
		return nil, err
	}
	genDir := generationDir(outputDir, gen)

	cfg, err := config.LoadSnapshot(configSnapshotPath(genDir))
	if err != nil {
		return nil, fmt.Errorf("controller: resume: load config snapshot: %w", err)
	}
	if newMaxGen > cfg.Generations {
		cfg.Generations = newMaxGen
		if err := config.Snapshot(configSnapshotPath(genDir), cfg); err != nil {
			return nil, fmt.Errorf("controller: resume: rewrite config snapshot: %w", err)
		}
	}

	for g := gen + 1; ; g++ {
		dir := generationDir(outputDir, g)
		if _, err := os.Stat(dir); err != nil {
			break
		}
		if err := os.RemoveAll(dir); err != nil {
			return nil, fmt.Errorf("controller: resume: remove generation %d: %w", g, err)
		}
	}

	pop, err := reconstructPopulation(genDir)
	if err != nil {
		return nil, fmt.Errorf("controller: resume: reconstruct generation %d population: %w", gen, err)
	}
	if err := clearPartialOutputs(genDir); err != nil {
		return nil, fmt.Errorf("controller: resume: clear partial outputs: %w", err)
	}

	var priorScored model.Population
	for g := 1; g < gen; g++ {
		t, err := tabular.Read(summaryPath(generationDir(outputDir, g), g))
		if err != nil {
			continue // a generation that was itself retried away; not fatal to resuming later work
		}
		priorScored = append(priorScored, scorer.ParsePopulation(t)...)
	}

	var parentSummary model.Population
	if gen > 1 {
		if t, err := tabular.Read(parentSummaryPath(generationDir(outputDir, gen-1))); err == nil {
			parentSummary = scorer.ParsePopulation(t)
		}
	}

	return &ResumeState{Cfg: cfg, StartGen: gen, Pop: pop, PriorScored: priorScored, ParentSummary: parentSummary}, nil
}

// discoverResumeGeneration finds the highest-numbered "gen<N>" directory
// under outputDir that contains a config snapshot.
func discoverResumeGeneration(outputDir string) (int, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return 0, &ferrors.ResumeError{OutputDir: outputDir, Reason: err.Error()}
	}
	best := -1
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "gen") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(e.Name(), "gen"))
		if err != nil {
			continue
		}
		if _, err := os.Stat(configSnapshotPath(filepath.Join(outputDir, e.Name()))); err != nil {
			continue
		}
		if n > best {
			best = n
		}
	}
	if best < 0 {
		return 0, &ferrors.ResumeError{OutputDir: outputDir, Reason: "no generation config snapshot found anywhere in the output tree"}
	}
	return best, nil
}

// reconstructPopulation rebuilds a generation's parameter vectors from
// each permutation's materialized model file change-log header (spec
// §4.2: "the scorer recovers the parameter vector from disk"), since the
// bred population that produced this generation is never itself
// persisted as a standalone artifact.
func reconstructPopulation(genDir string) (model.Population, error) {
	entries, err := os.ReadDir(genDir)
	if err != nil {
		return nil, err
	}
	var pop model.Population
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "perm") {
			continue
		}
		permID, err := strconv.Atoi(strings.TrimPrefix(e.Name(), "perm"))
		if err != nil {
			continue
		}
		permPath := filepath.Join(genDir, e.Name())
		modelPath, err := findMaterializedModelFile(permPath)
		if err != nil {
			return nil, err
		}
		_, values, err := modelfile.ReadChangeLog(modelPath)
		if err != nil {
			return nil, fmt.Errorf("perm %d: %w", permID, err)
		}
		pop = append(pop, model.Individual{PermID: permID, Params: model.ParameterVector(values)})
	}
	sort.Slice(pop, func(i, j int) bool { return pop[i].PermID < pop[j].PermID })
	return pop, nil
}

func findMaterializedModelFile(permDir string) (string, error) {
	entries, err := os.ReadDir(permDir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.IsDir() && !strings.HasPrefix(e.Name(), "avg_") {
			return filepath.Join(permDir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("no materialized model file found in %s", permDir)
}

// clearPartialOutputs removes a generation's run outputs (replicate
// sentinels and raw simulator output, averaged outputs, and the
// generation's own summary/diff artifacts, which reflect a scoring pass
// resume is about to redo) while preserving the config snapshot and the
// materialized per-permutation model files reconstructPopulation read
// back from (spec §4.3 "Resume deletes partial outputs in the resumed
// generation's directory while preserving its config").
func clearPartialOutputs(genDir string) error {
	entries, err := os.ReadDir(genDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir() && strings.HasPrefix(name, "perm"):
			if err := clearPermDir(filepath.Join(genDir, name)); err != nil {
				return err
			}
		case !e.IsDir() && (strings.HasSuffix(name, "_summary_diff.txt") ||
			name == "parent_summary_diff.txt" || name == "perm_model_diff.txt"):
			if err := os.Remove(filepath.Join(genDir, name)); err != nil {
				return err
			}
		}
	}
	return nil
}

func clearPermDir(permDir string) error {
	entries, err := os.ReadDir(permDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir() && strings.HasPrefix(name, "rep"):
			if err := os.RemoveAll(filepath.Join(permDir, name)); err != nil {
				return err
			}
		case !e.IsDir() && strings.HasPrefix(name, "avg_"):
			if err := os.Remove(filepath.Join(permDir, name)); err != nil {
				return err
			}
		}
	}
	return nil
}
