// Package spatial is a broad-phase index over per-triangle bounding boxes.
//
// An Index is built once from a batch and never updated; rebuild it when the
// triangles change. Every query returns triangle indices into the batch the
// index was built from.
package spatial

import (
	"sort"

	"github.com/deadsy/sdfx/sdf"
	"github.com/dhconnelly/rtreego"
	"github.com/pkg/errors"

	"github.com/chazu/trisoup/pkg/soup"
	"github.com/chazu/trisoup/pkg/tolerance"
)

// ErrDimension reports a query whose dimension differs from the index.
var ErrDimension = errors.New("dimension mismatch")

// Branching factors for the R-tree nodes.
const (
	minChildren = 25
	maxChildren = 50
)

// entry is one triangle's box as stored in the tree. min and max are the
// exact bounds; rect is padded.
type entry struct {
	id       int
	min, max []float64
	rect     rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect {
	return e.rect
}

// Index is an immutable R-tree of triangle bounding boxes.
type Index struct {
	tree    *rtreego.Rtree
	entries []*entry
	dim     int
	pad     float64
}

// Build indexes the 3D bounding box of every triangle in b. Boxes are padded
// by tol.Zero on every side so flat and axis-aligned triangles still have
// volume in the tree.
func Build(b soup.Batch, tol tolerance.Tolerance) (*Index, error) {
	boxes := make([][2][]float64, len(b))
	for i, box := range soup.Bounds(b) {
		boxes[i] = [2][]float64{
			{box.Min.X, box.Min.Y, box.Min.Z},
			{box.Max.X, box.Max.Y, box.Max.Z},
		}
	}
	return build(3, boxes, tol.Zero)
}

// Build2 indexes the 2D bounding box of every triangle in b.
func Build2(b soup.Batch2, tol tolerance.Tolerance) (*Index, error) {
	boxes := make([][2][]float64, len(b))
	for i, t := range b {
		lo := []float64{t[0].X, t[0].Y}
		hi := []float64{t[0].X, t[0].Y}
		for _, v := range t[1:] {
			lo[0], hi[0] = min(lo[0], v.X), max(hi[0], v.X)
			lo[1], hi[1] = min(lo[1], v.Y), max(hi[1], v.Y)
		}
		boxes[i] = [2][]float64{lo, hi}
	}
	return build(2, boxes, tol.Zero)
}

func build(dim int, boxes [][2][]float64, pad float64) (*Index, error) {
	idx := &Index{
		entries: make([]*entry, len(boxes)),
		dim:     dim,
		pad:     pad,
	}
	objs := make([]rtreego.Spatial, len(boxes))
	for i, box := range boxes {
		r, err := padded(box[0], box[1], pad)
		if err != nil {
			return nil, errors.Wrapf(err, "triangle %d", i)
		}
		e := &entry{id: i, min: box[0], max: box[1], rect: r}
		idx.entries[i] = e
		objs[i] = e
	}
	idx.tree = rtreego.NewTree(dim, minChildren, maxChildren, objs...)
	return idx, nil
}

// padded returns the rectangle [lo-pad, hi+pad].
func padded(lo, hi []float64, pad float64) (rtreego.Rect, error) {
	p := make(rtreego.Point, len(lo))
	q := make(rtreego.Point, len(hi))
	for k := range lo {
		p[k] = lo[k] - pad
		q[k] = hi[k] + pad
	}
	return rtreego.NewRectFromPoints(p, q)
}

// Len returns the number of indexed triangles.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Dim returns 2 or 3.
func (idx *Index) Dim() int {
	return idx.dim
}

// Bounds returns the unpadded box of triangle i.
func (idx *Index) Bounds(i int) (min, max []float64) {
	e := idx.entries[i]
	return append([]float64(nil), e.min...), append([]float64(nil), e.max...)
}

func (idx *Index) checkDim(what string, n int) error {
	if n != idx.dim {
		return errors.Wrapf(ErrDimension, "%s has %d coordinates, index is %dD", what, n, idx.dim)
	}
	return nil
}

// Intersect returns, in ascending order, the triangles whose boxes overlap
// the box [min, max]. Boxes that only touch the query count as overlapping.
func (idx *Index) Intersect(min, max []float64) ([]int, error) {
	if err := idx.checkDim("min", len(min)); err != nil {
		return nil, err
	}
	if err := idx.checkDim("max", len(max)); err != nil {
		return nil, err
	}
	r, err := padded(min, max, idx.pad)
	if err != nil {
		return nil, err
	}
	return ids(idx.tree.SearchIntersect(r)), nil
}

// IntersectBox is Intersect for a 3D sdf.Box3.
func (idx *Index) IntersectBox(box sdf.Box3) ([]int, error) {
	return idx.Intersect(
		[]float64{box.Min.X, box.Min.Y, box.Min.Z},
		[]float64{box.Max.X, box.Max.Y, box.Max.Z},
	)
}

// Contains returns the triangles whose boxes contain point.
func (idx *Index) Contains(point []float64) ([]int, error) {
	return idx.Intersect(point, point)
}

// Nearest returns up to k triangles ordered by the distance from point to
// their boxes, closest first.
func (idx *Index) Nearest(point []float64, k int) ([]int, error) {
	if err := idx.checkDim("point", len(point)); err != nil {
		return nil, err
	}
	if k <= 0 || idx.Len() == 0 {
		return nil, nil
	}
	var out []int
	for _, s := range idx.tree.NearestNeighbors(k, rtreego.Point(point)) {
		if s == nil {
			continue
		}
		out = append(out, s.(*entry).id)
	}
	return out, nil
}

func ids(found []rtreego.Spatial) []int {
	out := make([]int, 0, len(found))
	for _, s := range found {
		out = append(out, s.(*entry).id)
	}
	sort.Ints(out)
	return out
}
