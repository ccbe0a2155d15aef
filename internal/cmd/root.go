package cmd

import (
	"github.com/spf13/cobra"

	"github.com/saturnines/factsheet-tools/pkg/log"
)

type globalFlags struct {
	configPath string
	lxrPath    string
	envFile    string
	debug      bool
}

func Root() *cobra.Command {
	var flags globalFlags

	cmd := cobra.Command{
		Use:           "factsheets",
		Short:         "Archive, seed and report on factsheets of a LeanIX workspace",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return log.Set(flags.debug)
		},
	}

	pflags := cmd.PersistentFlags()

	pflags.StringVar(&flags.configPath, "config", "", "Path to a YAML config file. Takes precedence over --lxr.")
	pflags.StringVar(&flags.lxrPath, "lxr", "lxr.json", "Path to the workspace credentials file.")
	pflags.StringVar(&flags.envFile, "env-file", "", "Load environment variables from this file (default .env when present).")
	pflags.BoolVar(&flags.debug, "debug", false, "Enable debug logging.")

	cmd.AddCommand(checkCmd(&flags))
	cmd.AddCommand(archiveAllCmd(&flags))
	cmd.AddCommand(seedCmd(&flags))
	cmd.AddCommand(tagsCmd(&flags))
	cmd.AddCommand(reportCmd(&flags))

	return &cmd
}
