// Package engine provides the Lisp evaluation engine for trisoup scripts.
// It wraps zygomys in a sandboxed environment whose builtins build triangle
// soups and run the soup engine over them.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/trisoup/pkg/kernel"
	"github.com/chazu/trisoup/pkg/soup"
	"github.com/chazu/trisoup/pkg/tolerance"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use; each
// call to Evaluate creates a fresh sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	soup    *soup.Engine
	kernel  kernel.Kernel
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger evaluations are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an Engine running soup operations with tol. k backs the
// solid builtins (box, cylinder, sphere); it may be nil, in which case those
// builtins report an error.
func NewEngine(tol tolerance.Tolerance, k kernel.Kernel, opts ...Option) *Engine {
	e := &Engine{
		soup:    soup.NewEngine(tol),
		kernel:  k,
		logger:  slog.Default(),
		timeout: EvalTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs Lisp source and returns the value of its last expression.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns value + nil errors + nil error
//   - On parse/eval failure: returns nil value + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (Value, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		v, evalErrs, err := e.evaluate(source)
		ch <- evalResult{value: v, errors: evalErrs, err: err}
	}()

	return e.await(ch, gen)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (Value, []EvalError, error) {
	// Empty source is a valid program with no value.
	if strings.TrimSpace(source) == "" {
		return nil, nil, nil
	}
	start := time.Now()

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	e.registerBuiltins(env)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		evalErrs := parseZygomysError(err)
		e.logger.Debug("parse failed", "error", evalErrs[0].Error())
		return nil, evalErrs, nil
	}

	out, err := env.Run()
	if err != nil {
		evalErrs := parseZygomysError(err)
		e.logger.Debug("evaluation failed", "error", evalErrs[0].Error())
		return nil, evalErrs, nil
	}

	v := toValue(out)
	e.logger.Debug("evaluated", "bytes", len(source), "elapsed", time.Since(start), "result", out.SexpString(nil))
	return v, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
