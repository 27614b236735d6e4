package main

import (
	"github.com/aretw0/arbor"
	"github.com/spf13/cobra"
)

func newErrorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "error",
		Short: "Always fail, to check error propagation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return arbor.ErrorFunction()
		},
	}
}
