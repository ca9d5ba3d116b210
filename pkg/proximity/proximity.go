// Package proximity answers closest-point queries against a whole triangle
// soup, using a spatial index to prune the triangles tested exactly.
package proximity

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/trisoup/pkg/soup"
	"github.com/chazu/trisoup/pkg/spatial"
)

// Query holds a soup and its index. It is read-only and safe for concurrent
// use.
type Query struct {
	engine *soup.Engine
	batch  soup.Batch
	index  *spatial.Index
}

// New prepares closest-point queries on b. If index is nil one is built with
// the engine's tolerance.
func New(e *soup.Engine, b soup.Batch, index *spatial.Index) (*Query, error) {
	if len(b) == 0 {
		return nil, soup.ErrEmpty
	}
	if index == nil {
		var err error
		if index, err = spatial.Build(b, e.Tolerance()); err != nil {
			return nil, err
		}
	}
	return &Query{engine: e, batch: b, index: index}, nil
}

// Result is the closest point on the soup for each query point.
type Result struct {
	Points    []v3.Vec
	Distances []float64
	Triangles []int
}

// Closest finds, for every point, the closest point on any triangle of the
// soup. Ties go to the lowest triangle index.
func (q *Query) Closest(points []v3.Vec) (Result, error) {
	res := Result{
		Points:    make([]v3.Vec, len(points)),
		Distances: make([]float64, len(points)),
		Triangles: make([]int, len(points)),
	}
	for i, p := range points {
		candidates, err := q.candidates(p)
		if err != nil {
			return Result{}, err
		}
		point, dist, id, err := q.nearestOf(candidates, p)
		if err != nil {
			return Result{}, err
		}
		res.Points[i], res.Distances[i], res.Triangles[i] = point, dist, id
	}
	return res, nil
}

// candidates returns the triangles that may hold the closest point to p:
// every triangle whose box reaches within the exact distance to the
// triangle with the nearest box.
func (q *Query) candidates(p v3.Vec) ([]int, error) {
	pt := []float64{p.X, p.Y, p.Z}
	first, err := q.index.Nearest(pt, 1)
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, soup.ErrEmpty
	}
	_, d, _, err := q.nearestOf(first, p)
	if err != nil {
		return nil, err
	}
	// a distance that overflowed bounds nothing, so every triangle stays in
	if math.IsInf(d, 1) || math.IsNaN(d) {
		return lo.Range(q.index.Len()), nil
	}
	return q.index.Intersect(
		[]float64{p.X - d, p.Y - d, p.Z - d},
		[]float64{p.X + d, p.Y + d, p.Z + d},
	)
}

// nearestOf runs the exact closest-point pass over ids and keeps the best.
func (q *Query) nearestOf(ids []int, p v3.Vec) (v3.Vec, float64, int, error) {
	if len(ids) == 0 {
		return v3.Vec{}, 0, 0, soup.ErrEmpty
	}
	sub := make(soup.Batch, len(ids))
	pts := make([]v3.Vec, len(ids))
	for j, id := range ids {
		sub[j] = q.batch[id]
		pts[j] = p
	}
	closest, err := q.engine.ClosestPoints(sub, pts)
	if err != nil {
		return v3.Vec{}, 0, 0, err
	}
	dist, err := q.engine.ClosestDistances(sub, pts)
	if err != nil {
		return v3.Vec{}, 0, 0, err
	}

	best := 0
	for j := 1; j < len(dist); j++ {
		if dist[j] < dist[best] || (dist[j] == dist[best] && ids[j] < ids[best]) {
			best = j
		}
	}
	return closest[best], dist[best], ids[best], nil
}

// Distance returns the unsigned distance from every point to the soup.
func (q *Query) Distance(points []v3.Vec) ([]float64, error) {
	res, err := q.Closest(points)
	if err != nil {
		return nil, err
	}
	return res.Distances, nil
}
