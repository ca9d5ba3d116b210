package engine

import (
	"time"

	"github.com/pkg/errors"
)

// EvalTimeout is the default limit on a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an evaluation runs past the engine's limit.
	ErrTimeout = errors.New("evaluation timed out")

	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// evalResult carries one evaluation back from its goroutine.
type evalResult struct {
	value  Value
	errors []EvalError
	err    error
}

// WithTimeout replaces EvalTimeout for this engine. Non-positive durations
// keep the default.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// latest reports whether gen is still the newest evaluation.
func (e *Engine) latest(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

// await blocks until evaluation gen reports on ch or the timeout fires. An
// abandoned evaluation keeps running in its goroutine; ch must be buffered
// so its final send never blocks.
func (e *Engine) await(ch <-chan evalResult, gen uint64) (Value, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.latest(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.value, res.errors, res.err
	case <-timer.C:
		return nil, nil, errors.Wrapf(ErrTimeout, "limit %s", e.timeout)
	}
}
