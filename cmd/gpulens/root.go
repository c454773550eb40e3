package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gpulens",
		Short: "gpulens - GPU listing normalization and scoring",
		Long: `gpulens turns messy marketplace GPU listings into canonical models with
comparable 0-100 deal scores.

It identifies the GPU model behind each listing title, joins hardware specs
from the model registry, runs capability heuristics, and ranks the whole
batch so the best deal always scores 100.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newScoreCommand())
	cmd.AddCommand(newRegistryCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}
