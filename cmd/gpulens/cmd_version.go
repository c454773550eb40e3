package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpulens/internal/core/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build and rule table versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			bi := version.Info()
			fmt.Printf("%s %s (commit %s, built %s)\n", bi.Service, bi.Version, bi.Commit, bi.Date)
			fmt.Printf("matcher rules %s\n", version.MatcherVersion)
			return nil
		},
	}
}
