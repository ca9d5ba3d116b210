package soup

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// ErrMethod reports an unknown BarycentricMethod.
var ErrMethod = errors.New("unknown barycentric method")

// Barycentric holds the weights of v0, v1 and v2.
type Barycentric [3]float64

// UV returns the barycentric coordinate with weights u for v0 and v for v1,
// the third weight making the sum one.
func UV(u, v float64) Barycentric {
	return Barycentric{u, v, 1 - u - v}
}

// Sum returns the total of the three weights.
func (c Barycentric) Sum() float64 {
	return c[0] + c[1] + c[2]
}

// BarycentricMethod selects the algorithm used by PointsToBarycentric.
type BarycentricMethod int

const (
	// Cramer solves the 2x2 normal equations with Cramer's rule.
	Cramer BarycentricMethod = iota

	// CrossProduct projects sub-triangle cross products onto the triangle
	// normal. Slower, with different rounding behaviour.
	CrossProduct
)

func (m BarycentricMethod) String() string {
	switch m {
	case Cramer:
		return "cramer"
	case CrossProduct:
		return "cross"
	}
	return fmt.Sprintf("BarycentricMethod(%d)", int(m))
}

// ParseBarycentricMethod maps "cramer" and "cross" to their methods.
func ParseBarycentricMethod(s string) (BarycentricMethod, error) {
	switch s {
	case "cramer":
		return Cramer, nil
	case "cross":
		return CrossProduct, nil
	}
	return 0, errors.Wrapf(ErrMethod, "%q", s)
}

// PointsToBarycentric returns the barycentric coordinates of points[i]
// relative to b[i]. Degenerate triangles produce NaN weights.
func PointsToBarycentric(b Batch, points []v3.Vec, method BarycentricMethod) ([]Barycentric, error) {
	if err := checkLen("points", len(points), len(b)); err != nil {
		return nil, err
	}
	var solve func(e0, e1, w v3.Vec) (float64, float64)
	switch method {
	case Cramer:
		solve = baryCramer
	case CrossProduct:
		solve = baryCross
	default:
		return nil, errors.Wrapf(ErrMethod, "%v", method)
	}

	out := make([]Barycentric, len(b))
	for i, t := range b {
		v, w := solve(t[1].Sub(t[0]), t[2].Sub(t[0]), points[i].Sub(t[0]))
		out[i] = Barycentric{1 - v - w, v, w}
	}
	return out, nil
}

// baryCramer returns the weights of v1 and v2 for offset w from v0, given
// edge vectors e0 = v1-v0 and e1 = v2-v0.
func baryCramer(e0, e1, w v3.Vec) (float64, float64) {
	d00 := e0.Dot(e0)
	d01 := e0.Dot(e1)
	d02 := e0.Dot(w)
	d11 := e1.Dot(e1)
	d12 := e1.Dot(w)
	inv := 1 / (d00*d11 - d01*d01)
	return (d11*d02 - d01*d12) * inv, (d00*d12 - d01*d02) * inv
}

func baryCross(e0, e1, w v3.Vec) (float64, float64) {
	n := e0.Cross(e1)
	denom := n.Dot(n)
	return w.Cross(e1).Dot(n) / denom, e0.Cross(w).Dot(n) / denom
}

// BarycentricToPoints converts barycentric coordinates on b to points. bary
// holds either one coordinate per triangle or a single coordinate shared by
// all of them. Weights are normalized to sum to one unless they sum to
// exactly zero.
func BarycentricToPoints(b Batch, bary []Barycentric) ([]v3.Vec, error) {
	shared := len(bary) == 1
	if !shared {
		if err := checkLen("barycentric", len(bary), len(b)); err != nil {
			return nil, err
		}
	}
	out := make([]v3.Vec, len(b))
	for i, t := range b {
		c := bary[0]
		if !shared {
			c = bary[i]
		}
		if s := c.Sum(); s != 0 {
			c = Barycentric{c[0] / s, c[1] / s, c[2] / s}
		}
		out[i] = t[0].MulScalar(c[0]).Add(t[1].MulScalar(c[1])).Add(t[2].MulScalar(c[2]))
	}
	return out, nil
}
