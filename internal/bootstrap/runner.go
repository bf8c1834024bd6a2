// Package bootstrap wraps the generation controller in the outer
// resampling loop (spec §4.8): each iteration draws a fresh
// BootstrapWeightMap per reference file, runs a full fit against it, and
// retries the iteration if the best score doesn't clear bootstrap_chi.
package bootstrap

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/netfit/fitctl/internal/config"
	"github.com/netfit/fitctl/internal/controller"
	"github.com/netfit/fitctl/internal/executor"
	"github.com/netfit/fitctl/internal/model"
	"github.com/netfit/fitctl/internal/obslog"
	"github.com/netfit/fitctl/internal/scorer"
	"github.com/netfit/fitctl/internal/statussvc"
	"github.com/netfit/fitctl/internal/tabular"
	"github.com/rs/zerolog"
)

// Runner drives bootstrap iterations 1..B, or a single unwrapped fit when
// BootstrapCount is zero.
type Runner struct {
	Cfg    *config.FitConfig
	Refs   []*tabular.ReferenceDataset
	Exec   executor.Executor
	Log    zerolog.Logger
	RNG    *rand.Rand // one seeded RNG threaded through every iteration (spec §9)
	Status *statussvc.Server
}

// Run executes the configured number of bootstrap iterations (or exactly
// one plain fit if BootstrapCount <= 0), writing a shared params.txt
// table and a Results_i/ copy per successful iteration.
func (r *Runner) Run(ctx context.Context) error {
	if r.Cfg.BootstrapCount <= 0 {
		ctrl := controller.New(r.Cfg, r.Refs, r.Exec, r.Log, r.RNG)
		ctrl.Status = r.Status
		_, err := ctrl.Run(ctx, nil)
		return err
	}

	schema := r.Cfg.ParamSchema()
	var runs model.Population

	for i := 1; i <= r.Cfg.BootstrapCount; i++ {
		log := obslog.ForBootstrapIter(r.Log, i)
		retries := 0
		for {
			weights := make(map[string]*tabular.WeightMap, len(r.Refs))
			for _, ref := range r.Refs {
				weights[ref.Path] = GenerateWeightMap(ref, r.RNG)
			}

			iterCfg := *r.Cfg
			iterCfg.OutputDir = filepath.Join(r.Cfg.OutputDir, fmt.Sprintf("bootstrap_%d", i))

			ctrl := controller.New(&iterCfg, r.Refs, r.Exec, log, r.RNG)
			ctrl.Status = r.Status
			ctrl.BootstrapIter = i
			ctrl.BootstrapCount = r.Cfg.BootstrapCount
			outcome, err := ctrl.Run(ctx, weights)
			if err != nil {
				return fmt.Errorf("bootstrap: iteration %d: %w", i, err)
			}

			if outcome.Best.Score >= r.Cfg.BootstrapChi {
				retries++
				if retries > r.Cfg.BootstrapRetries {
					return fmt.Errorf("bootstrap: iteration %d: best score %g did not clear bootstrap_chi after %d retries",
						i, outcome.Best.Score, r.Cfg.BootstrapRetries)
				}
				log.Warn().Int("attempt", retries).Float64("best_score", outcome.Best.Score).
					Msg("bootstrap iteration did not clear bootstrap_chi, retrying")
				os.RemoveAll(iterCfg.OutputDir)
				continue
			}

			runs = append(runs, model.Individual{PermID: i, Params: outcome.Best.Params, Score: outcome.Best.Score})

			iterResults := filepath.Join(r.Cfg.OutputDir, fmt.Sprintf("Results_%d", i))
			if err := copyDir(filepath.Join(iterCfg.OutputDir, "Results"), iterResults); err != nil {
				log.Error().Err(err).Msg("failed to copy per-iteration Results directory")
			}
			break
		}
	}

	table := scorer.BuildSummaryTable(schema, runs)
	table.Columns[0] = "Run"
	table.Columns[1] = "Chi-Sq"
	if err := tabular.Write(filepath.Join(r.Cfg.OutputDir, "params.txt"), table); err != nil {
		return fmt.Errorf("bootstrap: write params.txt: %w", err)
	}
	return nil
}

func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	for _, e := range entries {
		srcPath := filepath.Join(src, e.Name())
		dstPath := filepath.Join(dst, e.Name())
		if e.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		data, err := os.ReadFile(srcPath)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dstPath, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
