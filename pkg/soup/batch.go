// Package soup implements batched geometry over triangle soups: unordered
// arrays of triangles with no shared-vertex topology.
//
// Every operation is a pure transform from one batch to per-triangle output
// aligned index-for-index with the input, or to a single aggregate record.
// Inputs are never mutated. Operations that depend on numerical thresholds
// hang off Engine, which carries an explicit tolerance.Tolerance.
package soup

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

var (
	// ErrShape reports input whose dimensions do not match what the
	// operation requires.
	ErrShape = errors.New("shape mismatch")

	// ErrEmpty reports an empty batch where at least one triangle is needed.
	ErrEmpty = errors.New("empty batch")
)

// Triangle is three vertices in 3D.
type Triangle [3]v3.Vec

// Triangle2 is three vertices in 2D.
type Triangle2 [3]v2.Vec

// Batch is an N×3×3 array of triangle vertices.
type Batch []Triangle

// Batch2 is an N×3×2 array of triangle vertices.
type Batch2 []Triangle2

// Centroid returns the mean of the three vertices.
func (t Triangle) Centroid() v3.Vec {
	return t[0].Add(t[1]).Add(t[2]).MulScalar(1.0 / 3.0)
}

// Finite reports whether every coordinate is neither NaN nor infinite.
func (t Triangle) Finite() bool {
	for _, v := range t {
		if !finite(v.X) || !finite(v.Y) || !finite(v.Z) {
			return false
		}
	}
	return true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Reversed returns a copy of b with every triangle's winding flipped.
func (b Batch) Reversed() Batch {
	out := make(Batch, len(b))
	for i, t := range b {
		out[i] = Triangle{t[0], t[2], t[1]}
	}
	return out
}

// Lift embeds a 2D batch in the z=0 plane.
func (b Batch2) Lift() Batch {
	out := make(Batch, len(b))
	for i, t := range b {
		for j, v := range t {
			out[i][j] = v3.Vec{X: v.X, Y: v.Y}
		}
	}
	return out
}

// checkShape validates a flat buffer against an (N, 3, dim) shape and
// returns N.
func checkShape(data []float64, shape []int, dim int) (int, error) {
	if len(shape) != 3 {
		return 0, errors.Wrapf(ErrShape, "expected rank 3 shape (n,3,%d), got %v", dim, shape)
	}
	n := shape[0]
	if n < 0 || shape[1] != 3 || shape[2] != dim {
		return 0, errors.Wrapf(ErrShape, "expected shape (n,3,%d), got %v", dim, shape)
	}
	if len(data) != n*3*dim {
		return 0, errors.Wrapf(ErrShape, "shape %v needs %d values, got %d", shape, n*3*dim, len(data))
	}
	return n, nil
}

// FromFloats builds a Batch from a row-major buffer with the given shape,
// which must be (n, 3, 3). The data is copied.
func FromFloats(data []float64, shape ...int) (Batch, error) {
	n, err := checkShape(data, shape, 3)
	if err != nil {
		return nil, err
	}
	b := make(Batch, n)
	for i := range b {
		for j := 0; j < 3; j++ {
			k := (i*3 + j) * 3
			b[i][j] = v3.Vec{X: data[k], Y: data[k+1], Z: data[k+2]}
		}
	}
	return b, nil
}

// FromFloats2 builds a Batch2 from a row-major buffer with shape (n, 3, 2).
func FromFloats2(data []float64, shape ...int) (Batch2, error) {
	n, err := checkShape(data, shape, 2)
	if err != nil {
		return nil, err
	}
	b := make(Batch2, n)
	for i := range b {
		for j := 0; j < 3; j++ {
			k := (i*3 + j) * 2
			b[i][j] = v2.Vec{X: data[k], Y: data[k+1]}
		}
	}
	return b, nil
}

// FromNested builds a Batch from nested slices, rejecting anything that is
// not rectangular n×3×3.
func FromNested(tris [][][]float64) (Batch, error) {
	b := make(Batch, len(tris))
	for i, t := range tris {
		if len(t) != 3 {
			return nil, errors.Wrapf(ErrShape, "triangle %d has %d vertices", i, len(t))
		}
		for j, p := range t {
			if len(p) != 3 {
				return nil, errors.Wrapf(ErrShape, "triangle %d vertex %d has %d coordinates", i, j, len(p))
			}
			b[i][j] = v3.Vec{X: p[0], Y: p[1], Z: p[2]}
		}
	}
	return b, nil
}

// Floats flattens b into a row-major (n, 3, 3) buffer.
func (b Batch) Floats() []float64 {
	out := make([]float64, 0, len(b)*9)
	for _, t := range b {
		for _, v := range t {
			out = append(out, v.X, v.Y, v.Z)
		}
	}
	return out
}

// checkLen reports ErrShape unless got equals want.
func checkLen(what string, got, want int) error {
	if got != want {
		return errors.Wrapf(ErrShape, "%s: have %d, want %d to match triangles", what, got, want)
	}
	return nil
}
