package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chazu/trisoup/pkg/engine"
	"github.com/chazu/trisoup/pkg/kernel/sdfx"
	"github.com/chazu/trisoup/pkg/tolerance"
)

// options holds the flags shared by every subcommand.
type options struct {
	tolerancePath string
	verbose       bool
	cells         int

	tol    tolerance.Tolerance
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "trisoup",
		Short:         "Evaluate and inspect triangle soup scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&opts.tolerancePath, "tolerance", "", "TOML file overriding the default tolerances")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log evaluation details")
	root.PersistentFlags().IntVar(&opts.cells, "cells", sdfx.DefaultMeshCells, "marching cubes resolution for solids")

	root.AddCommand(newEvalCmd(opts), newInspectCmd(opts), newToleranceCmd(opts))
	return root
}

func (o *options) setup(stderr io.Writer) error {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	o.tol = tolerance.Default()
	if o.tolerancePath != "" {
		tol, err := tolerance.Load(o.tolerancePath)
		if err != nil {
			return err
		}
		o.tol = tol
	}
	o.logger.Debug("tolerance", "zero", o.tol.Zero, "merge", o.tol.Merge, "planar", o.tol.Planar)
	return nil
}

func (o *options) engine() *engine.Engine {
	return engine.NewEngine(o.tol, sdfx.NewWithCells(o.cells), engine.WithLogger(o.logger))
}

// readSource reads a script from path, or from stdin when path is "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", errors.Wrapf(err, "read %s", path)
	}
	return string(data), nil
}

// evaluate runs source and folds eval errors into a single error after
// printing each of them.
func evaluate(cmd *cobra.Command, eng *engine.Engine, source string) (engine.Value, error) {
	v, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			cmd.PrintErrln(e.Error())
		}
		return nil, errors.Errorf("%d evaluation error(s)", len(evalErrs))
	}
	return v, nil
}
