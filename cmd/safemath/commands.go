package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGenCommand(rootOpts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "gen [packages]",
		Short: "Generate checked code for packages",
		Long: `Generate derived capability methods and rewritten checked functions for
the given packages, the current one by default.

Example:
  safemath gen ./...
  safemath gen --dry-run -v ./internal/billing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := rootOpts.run(cmd, args, dryRun)
			if err != nil {
				return err
			}

			rootOpts.logger().Info("done", "files", len(res.Outputs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute everything, write nothing")

	return cmd
}

func newCheckCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [packages]",
		Short: "Report rule violations without generating anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := rootOpts.run(cmd, args, true)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d files would be generated\n", len(res.Outputs))
			return nil
		},
	}
}
