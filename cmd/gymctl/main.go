package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	env        string
	configPath string
}

func main() {
	var flags rootFlags
	root := &cobra.Command{
		Use:           "gymctl",
		Short:         "Gym tracker maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.env, "env", "development", "environment [prod | production | dev | development]")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "./config.toml", "path for the TOML config file")

	root.AddCommand(
		newMigrateCmd(&flags),
		newSeedCmd(&flags),
		newHashPasswordCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
