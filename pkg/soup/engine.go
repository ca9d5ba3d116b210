package soup

import "github.com/chazu/trisoup/pkg/tolerance"

// Engine runs the tolerance-dependent soup operations. It holds no state
// besides its thresholds and is safe for concurrent use.
type Engine struct {
	tol tolerance.Tolerance
}

// NewEngine returns an Engine using tol.
func NewEngine(tol tolerance.Tolerance) *Engine {
	return &Engine{tol: tol}
}

// Tolerance returns the thresholds the engine was built with.
func (e *Engine) Tolerance() tolerance.Tolerance {
	return e.tol
}
