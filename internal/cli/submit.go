package cli

import (
	"context"
	"fmt"

	"github.com/netfit/fitctl/internal/bootstrap"
	"github.com/spf13/cobra"
)

func newSubmitCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <conf>",
		Short: "Submit a new fitting job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd.Context(), args[0], *g)
		},
	}
}

func runSubmit(ctx context.Context, confPath string, g globalFlags) error {
	cfg, err := loadAndValidate(confPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg, g)
	if g.DryRun {
		log.Info().Msg("config valid (dry run, no simulations dispatched)")
		return nil
	}

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
	status := maybeStartStatusServer(ctx, cfg, log)

	runner := &bootstrap.Runner{Cfg: cfg, Refs: refs, Exec: exec, Log: log, RNG: newRNG(cfg), Status: status}
	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	log.Info().Msg("fit complete")
	return nil
}
