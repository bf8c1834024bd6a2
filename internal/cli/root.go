package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the fitctl command tree (spec §6): submit, resume,
// resume <N>, and results, sharing the persistent --log-level/--log-format/
// --force flags.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "fitctl",
		Short:         "Calibrate a biochemical reaction-network model against experimental time-course data",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&g.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&g.LogFormat, "log-format", "text", "log format: text, json")
	root.PersistentFlags().BoolVar(&g.Force, "force", false, "override an existing .lock_<job> file")
	root.PersistentFlags().BoolVar(&g.DryRun, "dry-run", false, "load and validate the config without dispatching any simulations")

	root.AddCommand(newSubmitCmd(g))
	root.AddCommand(newResumeCmd(g))
	root.AddCommand(newResultsCmd(g))
	return root
}
