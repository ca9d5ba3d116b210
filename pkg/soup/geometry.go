package soup

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Area returns the area of every triangle.
func Area(b Batch) []float64 {
	return AreaOf(Cross(b))
}

// AreaOf returns triangle areas from precomputed cross products. The caller
// is responsible for the crosses matching the triangles they came from.
func AreaOf(crosses []v3.Vec) []float64 {
	out := make([]float64, len(crosses))
	for i, c := range crosses {
		out[i] = 0.5 * c.Length()
	}
	return out
}

// TotalArea returns the summed area of b.
func TotalArea(b Batch) float64 {
	return lo.Sum(Area(b))
}

// Area2 returns the unsigned area of every 2D triangle.
func Area2(b Batch2) []float64 {
	return lo.Map(Cross2(b), func(c float64, _ int) float64 {
		return 0.5 * math.Abs(c)
	})
}

// Normals returns the unit normal of every triangle and whether it is valid.
func (e *Engine) Normals(b Batch) ([]v3.Vec, []bool) {
	return e.NormalsOf(Cross(b))
}

// NormalsOf unitizes precomputed cross products. A cross product whose
// length is not above the zero tolerance is left as the zero vector and
// flagged invalid.
func (e *Engine) NormalsOf(crosses []v3.Vec) ([]v3.Vec, []bool) {
	unit := make([]v3.Vec, len(crosses))
	valid := make([]bool, len(crosses))
	for i, c := range crosses {
		l := c.Length()
		if l > e.tol.Zero {
			unit[i] = c.MulScalar(1 / l)
			valid[i] = true
		}
	}
	return unit, valid
}

// unitize scales v to unit length; the zero vector stays zero.
func unitize(v v3.Vec) v3.Vec {
	l := v.Length()
	if l == 0 {
		return v3.Vec{}
	}
	return v.MulScalar(1 / l)
}

// clampedAcos is acos with its argument clamped into [-1, 1] so rounding
// overshoot never produces NaN.
func clampedAcos(d float64) float64 {
	return math.Acos(math.Max(-1, math.Min(1, d)))
}

// Angles returns the interior angles in radians at v0, v1 and v2 of every
// triangle. A zero-length edge unitizes to the zero vector, which reads as a
// right angle at both of its ends.
func Angles(b Batch) [][3]float64 {
	out := make([][3]float64, len(b))
	for i, t := range b {
		ab := unitize(t[1].Sub(t[0]))
		bc := unitize(t[2].Sub(t[1]))
		ca := unitize(t[0].Sub(t[2]))
		out[i] = [3]float64{
			clampedAcos(-ab.Dot(ca)),
			clampedAcos(-bc.Dot(ab)),
			clampedAcos(-ca.Dot(bc)),
		}
	}
	return out
}

// Angles2 returns the interior angles of every 2D triangle.
func Angles2(b Batch2) [][3]float64 {
	return Angles(b.Lift())
}

// Extents returns the side lengths of each triangle's 2D oriented bounding
// box, taking v1-v0 and then v2-v0 as the baseline: 2*area/|edge|. A side is
// zero where its baseline is not longer than the merge tolerance.
//
// areas may be nil, in which case they are computed.
func (e *Engine) Extents(b Batch, areas []float64) ([][2]float64, error) {
	if areas == nil {
		areas = Area(b)
	} else if err := checkLen("areas", len(areas), len(b)); err != nil {
		return nil, err
	}
	box := make([][2]float64, len(b))
	for i, t := range b {
		la := t[1].Sub(t[0]).Length()
		lb := t[2].Sub(t[0]).Length()
		if la > e.tol.Merge {
			box[i][0] = areas[i] * 2 / la
		}
		if lb > e.tol.Merge {
			box[i][1] = areas[i] * 2 / lb
		}
	}
	return box, nil
}

// Nondegenerate reports which triangles have both oriented box sides longer
// than the merge tolerance.
func (e *Engine) Nondegenerate(b Batch) []bool {
	return e.NondegenerateHeight(b, e.tol.Merge)
}

// NondegenerateHeight reports which triangles have both oriented box sides
// longer than height.
func (e *Engine) NondegenerateHeight(b Batch, height float64) []bool {
	// areas are computed from b itself so the length check cannot fail
	box, _ := e.Extents(b, nil)
	return lo.Map(box, func(x [2]float64, _ int) bool {
		return x[0] > height && x[1] > height
	})
}
