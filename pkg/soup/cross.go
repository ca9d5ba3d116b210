package soup

import v3 "github.com/deadsy/sdfx/vec/v3"

// Edges returns the edge vectors v1-v0 and v2-v0 of every triangle.
func Edges(b Batch) (a, c []v3.Vec) {
	a = make([]v3.Vec, len(b))
	c = make([]v3.Vec, len(b))
	for i, t := range b {
		a[i] = t[1].Sub(t[0])
		c[i] = t[2].Sub(t[0])
	}
	return a, c
}

// Cross returns (v1-v0) x (v2-v0) for every triangle. Degenerate triangles
// give the zero vector.
func Cross(b Batch) []v3.Vec {
	out := make([]v3.Vec, len(b))
	for i, t := range b {
		out[i] = t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
	}
	return out
}

// Cross2 returns the scalar 2D cross product of the two edge vectors of
// every triangle. It is positive for counter-clockwise winding.
func Cross2(b Batch2) []float64 {
	out := make([]float64, len(b))
	for i, t := range b {
		ax, ay := t[1].X-t[0].X, t[1].Y-t[0].Y
		bx, by := t[2].X-t[0].X, t[2].Y-t[0].Y
		out[i] = ax*by - ay*bx
	}
	return out
}
