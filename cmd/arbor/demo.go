package main

import (
	"github.com/aretw0/arbor/pkg/plan"
	"github.com/spf13/cobra"
)

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build the sample tree and print it",
		Long: `Replays the sample script: three branches, a leaf under Branch_2 and a
leaf under the missing Branch_3, which is reported and left unattached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, plan.Demo())
		},
	}
	addRenderFlags(cmd)
	return cmd
}
