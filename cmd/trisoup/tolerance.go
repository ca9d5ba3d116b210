package main

import (
	"github.com/spf13/cobra"
)

func newToleranceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tolerance",
		Short: "Print the effective tolerances as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := opts.tol.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
