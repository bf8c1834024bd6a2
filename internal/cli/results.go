package cli

import (
	"context"
	"fmt"

	"github.com/netfit/fitctl/internal/controller"
	"github.com/spf13/cobra"
)

func newResultsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "results <conf>",
		Short: "Consolidate existing generation summaries into Results/sorted_params.txt without running anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResults(cmd.Context(), args[0], *g)
		},
	}
}

func runResults(_ context.Context, confPath string, g globalFlags) error {
	cfg, err := loadAndValidate(confPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg, g)

	pop, err := controller.Consolidate(cfg.OutputDir, cfg.ParamSchema())
	if err != nil {
		return fmt.Errorf("results: %w", err)
	}

	best := pop[0]
	log.Info().Int("perm", best.PermID).Float64("score", best.Score).
		Int("individuals_consolidated", len(pop)).Msg("results consolidated")
	return nil
}
