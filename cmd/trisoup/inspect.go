package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chazu/trisoup/pkg/inspect"
)

// errInspect is returned when the soup has blocking findings, so the
// process exits non-zero after the report has been printed.
var errInspect = errors.New("inspection found errors")

func newInspectCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect <file|->",
		Short: "Evaluate a script and report on the soup it produces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			eng := opts.engine()
			v, err := evaluate(cmd, eng, src)
			if err != nil {
				return err
			}
			b, err := eng.Soup(v)
			if err != nil {
				return err
			}

			report := inspect.Run(eng.SoupEngine(), b)
			opts.logger.Debug("inspected", "triangles", len(b), "errors", len(report.Errors), "warnings", len(report.Warnings))
			if err := writeValue(cmd.OutOrStdout(), format, report); err != nil {
				return err
			}
			if !report.OK() {
				return errInspect
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text or yaml")
	return cmd
}
