package soup

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// referencePlane returns the plane used by the coplanarity tests: the first
// valid triangle normal through the first vertex of the batch. rest is the
// part of b that still has to be tested against it.
func (e *Engine) referencePlane(b Batch) (normal, origin v3.Vec, rest Batch, ok bool) {
	normals, valid := e.Normals(b)
	i := lo.IndexOf(valid, true)
	if i < 0 {
		return v3.Vec{}, v3.Vec{}, nil, false
	}
	rest = b
	if i == 0 {
		rest = b[1:]
	}
	return normals[i], b[0][0], rest, true
}

// onPlane reports whether all three vertices of t lie closer than limit to
// the plane.
func onPlane(t Triangle, normal, origin v3.Vec, limit float64) bool {
	for _, v := range t {
		if math.Abs(v.Sub(origin).Dot(normal)) >= limit {
			return false
		}
	}
	return true
}

// AllCoplanar reports whether every vertex of every triangle lies on the
// reference plane. A batch whose triangles are all degenerate
// has no plane and is reported as not coplanar.
func (e *Engine) AllCoplanar(b Batch) (bool, error) {
	if len(b) == 0 {
		return false, ErrEmpty
	}
	normal, origin, rest, ok := e.referencePlane(b)
	if !ok {
		return false, nil
	}
	return lo.EveryBy(rest, func(t Triangle) bool {
		return onPlane(t, normal, origin, e.tol.Zero)
	}), nil
}

// AnyCoplanar reports whether the first triangle is coplanar with at least
// one of the triangles after it.
func (e *Engine) AnyCoplanar(b Batch) (bool, error) {
	if len(b) == 0 {
		return false, ErrEmpty
	}
	normal, origin, _, ok := e.referencePlane(b)
	if !ok {
		return false, nil
	}
	return lo.SomeBy(b[1:], func(t Triangle) bool {
		return onPlane(t, normal, origin, e.tol.Zero)
	}), nil
}

// Flat reports whether the whole soup lies within the planar tolerance of
// the reference plane. It is AllCoplanar with the looser threshold, and
// every triangle is tested, the first included.
func (e *Engine) Flat(b Batch) (bool, error) {
	if len(b) == 0 {
		return false, ErrEmpty
	}
	normal, origin, _, ok := e.referencePlane(b)
	if !ok {
		return false, nil
	}
	return lo.EveryBy(b, func(t Triangle) bool {
		return onPlane(t, normal, origin, e.tol.Planar)
	}), nil
}
