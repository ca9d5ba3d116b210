// Command trisoup evaluates triangle soup scripts and reports on the soups
// they produce.
//
//	trisoup eval model.lisp
//	trisoup eval --watch --format yaml model.lisp
//	trisoup inspect model.lisp
//	trisoup tolerance --tolerance strict.toml
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errInspect) {
			fmt.Fprintln(os.Stderr, "trisoup:", err)
		}
		os.Exit(1)
	}
}
