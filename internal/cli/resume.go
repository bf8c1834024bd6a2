package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/netfit/fitctl/internal/config"
	"github.com/netfit/fitctl/internal/controller"
	"github.com/spf13/cobra"
)

func newResumeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resume [N] <conf>",
		Short: "Resume an interrupted fitting job, optionally raising its generation budget to N",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			confPath := args[0]
			newMaxGen := 0
			if len(args) == 2 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("resume: %q is not a valid generation count: %w", args[0], err)
				}
				newMaxGen = n
				confPath = args[1]
			}
			return runResume(cmd.Context(), confPath, newMaxGen, *g)
		},
	}
}

func runResume(ctx context.Context, confPath string, newMaxGen int, g globalFlags) error {
	// Only OutputDir is needed to locate the job's generation tree; the
	// resumed generation's own config snapshot is authoritative from here.
	orig, err := config.Load(confPath)
	if err != nil {
		return err
	}
	if g.DryRun {
		if err := config.Validate(orig); err != nil {
			return err
		}
		newLogger(orig, g).Info().Str("output_dir", orig.OutputDir).Msg("config valid (dry run, resume tree not inspected)")
		return nil
	}

	state, err := controller.Resume(orig.OutputDir, newMaxGen)
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	cfg := state.Cfg
	log := newLogger(cfg, g)

	if err := acquireLock(cfg, g.Force); err != nil {
		return err
	}
	defer releaseLock(cfg)

	refs, err := loadReferences(cfg)
	if err != nil {
		return err
	}
	exec, err := buildExecutor(cfg, log)
	if err != nil {
		return err
	}

	ctrl := controller.New(cfg, refs, exec, log, newRNG(cfg))
	ctrl.Status = maybeStartStatusServer(ctx, cfg, log)
	log.Info().Int("resume_generation", state.StartGen).Msg("resuming fit")
	outcome, err := ctrl.RunFrom(ctx, state.StartGen, state.Pop, state.PriorScored, state.ParentSummary, nil)
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	log.Info().Str("decision", outcome.Decision).Int("generation", outcome.BestGeneration).
		Float64("best_score", outcome.Best.Score).Msg("fit complete")
	return nil
}
