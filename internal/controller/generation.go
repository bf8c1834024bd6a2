package controller

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/netfit/fitctl/internal/averager"
	"github.com/netfit/fitctl/internal/config"
	"github.com/netfit/fitctl/internal/executor"
	"github.com/netfit/fitctl/internal/model"
	"github.com/netfit/fitctl/internal/modelfile"
	"github.com/netfit/fitctl/internal/scorer"
	"github.com/netfit/fitctl/internal/simulator"
	"github.com/netfit/fitctl/internal/statussvc"
	"github.com/netfit/fitctl/internal/tabular"
	"github.com/rs/zerolog"
)

// Controller drives one fitting job's generation loop end to end: it owns
// the reference datasets, the run executor, and the RNG shared by the
// parameter generator and genetic operator.
type Controller struct {
	Cfg    *config.FitConfig
	Schema []string
	Refs   []*tabular.ReferenceDataset
	Exec   executor.Executor
	Sim    simulator.Spec // Executable/Args template; ModelFile/OutDir filled per task
	Log    zerolog.Logger
	RNG    *rand.Rand

	// Status, when non-nil, receives a snapshot after every generation
	// (spec_full §2 item 15). BootstrapIter/BootstrapCount let a
	// bootstrap.Runner annotate which outer iteration this controller is
	// running; both are 0 outside bootstrap mode.
	Status         *statussvc.Server
	BootstrapIter  int
	BootstrapCount int

	netPath string // deterministic-ODE pre-generated network file, set on first use
}

// reportStatus pushes a progress snapshot to Status if one is wired in.
func (c *Controller) reportStatus(gen int, best model.Individual, failedLastGen int, decision string) {
	if c.Status == nil {
		return
	}
	c.Status.Update(statussvc.Snapshot{
		JobName:        c.Cfg.JobName,
		Generation:     gen,
		BestScore:      best.Score,
		Best:           best,
		Decision:       decision,
		BootstrapIter:  c.BootstrapIter,
		BootstrapCount: c.BootstrapCount,
		FailedLastGen:  failedLastGen,
	})
}

// New builds a Controller from a validated config and loaded references.
func New(cfg *config.FitConfig, refs []*tabular.ReferenceDataset, exec executor.Executor, log zerolog.Logger, rng *rand.Rand) *Controller {
	return &Controller{
		Cfg:    cfg,
		Schema: cfg.ParamSchema(),
		Refs:   refs,
		Exec:   exec,
		Sim:    simulator.Spec{Executable: cfg.SimulatorPath},
		Log:    log,
		RNG:    rng,
	}
}

// GenerationResult is the outcome of running one generation through
// materialize/dispatch/await/average/score/summarize.
type GenerationResult struct {
	Scored       model.Population
	FailedCount  int
	RetryAdvised bool // true when failures exceeded the P-3 tolerance (spec §7)
}

// RunGeneration executes spec §4.7's states for one generation: it
// materializes pop's model files, dispatches smoothing replicates per
// permutation, waits for every sentinel, averages surviving replicates,
// scores against Refs, and writes the generation's summary artifacts.
func (c *Controller) RunGeneration(ctx context.Context, gen int, pop model.Population, weights map[string]*tabular.WeightMap) (GenerationResult, error) {
	genDir := generationDir(c.Cfg.OutputDir, gen)
	if err := os.MkdirAll(genDir, 0o755); err != nil {
		return GenerationResult{}, fmt.Errorf("controller: %w", err)
	}
	if err := config.Snapshot(configSnapshotPath(genDir), c.Cfg); err != nil {
		return GenerationResult{}, fmt.Errorf("controller: snapshot config: %w", err)
	}

	if err := c.ensureNetwork(ctx, genDir); err != nil {
		return GenerationResult{}, err
	}

	modelFiles := make(map[int]string, len(pop))
	for _, ind := range pop {
		pDir := permDir(genDir, ind.PermID)
		path, err := modelfile.Materialize(c.Cfg.TemplateModelPath, c.Schema, ind.Params, pDir, ind.PermID)
		if err != nil {
			return GenerationResult{}, fmt.Errorf("controller: materialize perm %d: %w", ind.PermID, err)
		}
		if c.Cfg.DeterministicODE {
			if err := modelfile.AppendReadFileDirective(path, c.netPath); err != nil {
				return GenerationResult{}, err
			}
		}
		modelFiles[ind.PermID] = path
	}

	smoothing := c.Cfg.Smoothing
	if smoothing < 1 {
		smoothing = 1
	}
	walltime := c.Cfg.PerSimWalltime
	if walltime <= 0 {
		walltime = 10 * time.Minute
	}

	var batch []executor.Task
	for _, ind := range pop {
		pDir := permDir(genDir, ind.PermID)
		for r := 0; r < smoothing; r++ {
			rDir := replicaDir(pDir, r)
			if err := os.MkdirAll(rDir, 0o755); err != nil {
				return GenerationResult{}, fmt.Errorf("controller: %w", err)
			}
			batch = append(batch, executor.Task{
				PermID:    ind.PermID,
				Replica:   r,
				Name:      taskName(ind.PermID, r),
				ModelFile: modelFiles[ind.PermID],
				OutDir:    rDir,
				Deadline:  time.Now().Add(walltime),
			})
		}
	}

	handle, err := c.Exec.Dispatch(ctx, batch)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("controller: dispatch: %w", err)
	}

	poll := c.Cfg.PollInterval
	if poll <= 0 {
		poll = 2 * time.Second
	}
	var results []executor.TaskResult
	for {
		pr, err := c.Exec.Poll(ctx, handle)
		if err != nil {
			return GenerationResult{}, fmt.Errorf("controller: poll: %w", err)
		}
		results = pr.Results
		if !pr.Pending {
			break
		}
		select {
		case <-ctx.Done():
			return GenerationResult{}, ctx.Err()
		case <-time.After(poll):
		}
	}

	succeededByPerm := make(map[int][]executor.TaskResult)
	for _, r := range results {
		if r.Status == executor.StatusFinished {
			succeededByPerm[r.Task.PermID] = append(succeededByPerm[r.Task.PermID], r)
		}
	}

	scored := make(model.Population, 0, len(pop))
	failedCount := 0
	for _, ind := range pop {
		pDir := permDir(genDir, ind.PermID)
		succeeded := succeededByPerm[ind.PermID]
		if len(succeeded) == 0 {
			scored = append(scored, model.Individual{PermID: ind.PermID, Params: ind.Params, Score: model.SentinelScore, Failed: true})
			failedCount++
			continue
		}

		simsByRef := make(map[string]*tabular.SimulationOutput, len(c.Refs))
		ok := true
		for _, ref := range c.Refs {
			var replicates []*tabular.SimulationOutput
			for _, r := range succeeded {
				path := simOutputPath(r.Task.OutDir, r.Task.Name, ref.Path)
				simOut, err := tabular.LoadSimulationOutput(path, c.Cfg.ControlColumn)
				if err != nil {
					c.Log.Warn().Err(err).Int("perm", ind.PermID).Msg("failed to load replicate output")
					continue
				}
				replicates = append(replicates, simOut)
			}
			if len(replicates) == 0 {
				ok = false
				break
			}
			avgTable, err := averager.Average(replicates)
			if err != nil {
				ok = false
				break
			}
			avgPath := avgOutputPath(pDir, ref.Path)
			if err := tabular.Write(avgPath, avgTable); err != nil {
				return GenerationResult{}, fmt.Errorf("controller: write averaged output: %w", err)
			}
			simsByRef[ref.Path] = &tabular.SimulationOutput{Path: avgPath, Control: c.Cfg.ControlColumn, Table: avgTable}
		}
		if !ok {
			scored = append(scored, model.Individual{PermID: ind.PermID, Params: ind.Params, Score: model.SentinelScore, Failed: true})
			failedCount++
			continue
		}

		opts := scorer.Options{
			Objective:    c.Cfg.Objective,
			DivideByInit: c.Cfg.DivideByInit,
			LogTransform: c.Cfg.LogTransformSim,
			LogBase:      c.Cfg.LogBase,
			StdizeSim:    c.Cfg.StandardizeSimData,
			StdizeExp:    c.Cfg.StandardizeExpData,
		}
		res := scorer.Score(ind.PermID, opts, c.Refs, simsByRef, weights)
		scored = append(scored, model.Individual{PermID: ind.PermID, Params: ind.Params, Score: res.Score, Failed: res.Failed})
		if res.Failed {
			failedCount++
		}

		if c.Cfg.DeleteOutputsAfterScoring {
			for _, r := range succeeded {
				os.RemoveAll(r.Task.OutDir)
			}
		}
	}
	scored.Sort()

	summary := scorer.BuildSummaryTable(c.Schema, scored)
	if err := tabular.Write(summaryPath(genDir, gen), summary); err != nil {
		return GenerationResult{}, fmt.Errorf("controller: write summary: %w", err)
	}

	tolerance := len(pop) - 3
	retryAdvised := tolerance >= 0 && failedCount > tolerance

	return GenerationResult{Scored: scored, FailedCount: failedCount, RetryAdvised: retryAdvised}, nil
}

// ensureNetwork generates the deterministic-ODE network file once per
// Controller, into the first generation directory that calls it, and
// reuses that path for every later generation (spec §4.2 final
// paragraph, §6).
func (c *Controller) ensureNetwork(ctx context.Context, genDir string) error {
	if !c.Cfg.DeterministicODE || c.netPath != "" {
		return nil
	}
	netPath, err := modelfile.GenerateNetwork(ctx, c.Sim, c.Cfg.TemplateModelPath, genDir)
	if err != nil {
		return fmt.Errorf("controller: generate network: %w", err)
	}
	c.netPath = netPath
	return nil
}
