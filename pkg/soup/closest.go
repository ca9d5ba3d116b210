package soup

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// closestCase partitions query points by how their closest point is found.
type closestCase uint8

const (
	caseInside closestCase = iota
	caseEdge
	caseDegenerate
)

// projection is the per-query state shared by every case.
type projection struct {
	normal    v3.Vec
	planeDist float64 // signed distance from the query to the plane, along normal
	inPlane   v3.Vec  // query projected into the triangle plane
	edgeDist  [3]float64
}

// closest is the raw result of a closest-point pass.
type closest struct {
	points []v3.Vec
	proj   []projection
	cases  []closestCase
}

// triangleEdges returns AB, BC and CA.
func triangleEdges(t Triangle) [3]v3.Vec {
	return [3]v3.Vec{t[1].Sub(t[0]), t[2].Sub(t[1]), t[0].Sub(t[2])}
}

// closestPass projects every query into its triangle's plane, classifies
// it, then resolves each class of queries in its own loop.
func (e *Engine) closestPass(b Batch, points []v3.Vec) (closest, error) {
	if err := checkLen("points", len(points), len(b)); err != nil {
		return closest{}, err
	}
	res := closest{
		points: make([]v3.Vec, len(b)),
		proj:   make([]projection, len(b)),
		cases:  make([]closestCase, len(b)),
	}
	var inside, outside, degenerate []int

	for i, t := range b {
		edges := triangleEdges(t)
		n := edges[0].Cross(edges[1])
		l := n.Length()
		if l <= e.tol.Zero {
			res.cases[i] = caseDegenerate
			degenerate = append(degenerate, i)
			continue
		}
		n = n.MulScalar(1 / l)

		p := &res.proj[i]
		p.normal = n
		p.planeDist = t[0].Sub(points[i]).Dot(n)
		p.inPlane = points[i].Add(n.MulScalar(p.planeDist))

		// edge x normal points away from the triangle for every edge, so
		// a positive dot marks the query as outside that edge
		in := true
		for k, edge := range edges {
			p.edgeDist[k] = edge.Cross(n).Dot(p.inPlane.Sub(t[k]))
			if p.edgeDist[k] > 0 {
				in = false
			}
		}
		if in {
			res.cases[i] = caseInside
			inside = append(inside, i)
		} else {
			res.cases[i] = caseEdge
			outside = append(outside, i)
		}
	}

	for _, i := range inside {
		res.points[i] = res.proj[i].inPlane
	}

	for _, i := range outside {
		t, p := b[i], &res.proj[i]
		k := argmax(p.edgeDist)
		res.points[i] = closestOnSegment(t[k], triangleEdges(t)[k], p.inPlane)
	}

	for _, i := range degenerate {
		t := b[i]
		edges := triangleEdges(t)
		best := math.Inf(1)
		for k := range edges {
			q := closestOnSegment(t[k], edges[k], points[i])
			if d := q.Sub(points[i]).Length(); d < best {
				best = d
				res.points[i] = q
			}
		}
	}

	return res, nil
}

// closestOnSegment clamps the projection of p onto the segment from u along
// uv. A zero-length segment returns u.
func closestOnSegment(u, uv, p v3.Vec) v3.Vec {
	den := uv.Dot(uv)
	if den == 0 {
		return u
	}
	s := math.Max(0, math.Min(1, p.Sub(u).Dot(uv)/den))
	return u.Add(uv.MulScalar(s))
}

func argmax(v [3]float64) int {
	k := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[k] {
			k = i
		}
	}
	return k
}

// ClosestPoints returns, for each i, the point on triangle b[i] closest to
// points[i].
func (e *Engine) ClosestPoints(b Batch, points []v3.Vec) ([]v3.Vec, error) {
	res, err := e.closestPass(b, points)
	if err != nil {
		return nil, err
	}
	return res.points, nil
}

// ClosestDistances returns, for each i, the distance from points[i] to
// triangle b[i]. Queries that project inside their triangle reuse the plane
// distance; the rest are measured to the clamped edge point.
func (e *Engine) ClosestDistances(b Batch, points []v3.Vec) ([]float64, error) {
	res, err := e.closestPass(b, points)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(b))
	for i, c := range res.cases {
		if c == caseInside {
			out[i] = math.Abs(res.proj[i].planeDist)
			continue
		}
		out[i] = points[i].Sub(res.points[i]).Length()
	}
	return out, nil
}
