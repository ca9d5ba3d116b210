package main

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newEvalCmd(opts *options) *cobra.Command {
	var (
		format string
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "eval <file|->",
		Short: "Evaluate a script and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			eng := opts.engine()
			run := func() error {
				src, err := readSource(cmd, args[0])
				if err != nil {
					return err
				}
				v, err := evaluate(cmd, eng, src)
				if err != nil {
					return err
				}
				return writeValue(cmd.OutOrStdout(), format, v)
			}
			if !watch {
				return run()
			}
			if args[0] == "-" {
				return errors.New("--watch needs a file, not stdin")
			}
			return watchFile(cmd.Context(), opts, args[0], run)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text or yaml")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-evaluate whenever the file changes")
	return cmd
}

// watchFile calls run once, then again on every write to path, until ctx is
// cancelled. Failed runs are logged and do not stop the watch.
func watchFile(ctx context.Context, opts *options, path string, run func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer watcher.Close()

	// editors often replace the file, so watch its directory
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.Wrapf(err, "watch %s", path)
	}
	target := filepath.Clean(path)

	if err := run(); err != nil {
		opts.logger.Error("evaluation failed", "file", path, "error", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&fsnotify.Write != fsnotify.Write && event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			opts.logger.Debug("file changed", "file", path, "op", event.Op.String())
			if err := run(); err != nil {
				opts.logger.Error("evaluation failed", "file", path, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			opts.logger.Warn("watch error", "error", err)
		}
	}
}
