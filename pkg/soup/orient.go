package soup

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// WindingsAligned reports, per triangle, whether its computed normal points
// the same way as reference[i]. Triangles without a valid normal report
// false.
func (e *Engine) WindingsAligned(b Batch, reference []v3.Vec) ([]bool, error) {
	if err := checkLen("reference normals", len(reference), len(b)); err != nil {
		return nil, err
	}
	normals, valid := e.Normals(b)
	aligned := make([]bool, len(b))
	for i, n := range normals {
		aligned[i] = valid[i] && n.Dot(reference[i]) > 0
	}
	return aligned, nil
}

// Indexed is a vertex list with faces referencing it by index.
type Indexed struct {
	Vertices []v3.Vec
	Faces    [][3]int
}

// ToIndexed lays b out as an indexed mesh without merging any vertices:
// face i is {3i, 3i+1, 3i+2}.
func ToIndexed(b Batch) Indexed {
	m := Indexed{
		Vertices: make([]v3.Vec, 0, len(b)*3),
		Faces:    make([][3]int, len(b)),
	}
	for i, t := range b {
		m.Vertices = append(m.Vertices, t[0], t[1], t[2])
		m.Faces[i] = [3]int{3 * i, 3*i + 1, 3*i + 2}
	}
	return m
}

// Batch rebuilds the triangle soup described by m.
func (m Indexed) Batch() (Batch, error) {
	b := make(Batch, len(m.Faces))
	for i, f := range m.Faces {
		for j, vi := range f {
			if vi < 0 || vi >= len(m.Vertices) {
				return nil, errors.Wrapf(ErrShape, "face %d references vertex %d of %d", i, vi, len(m.Vertices))
			}
			b[i][j] = m.Vertices[vi]
		}
	}
	return b, nil
}

// Bounds returns the axis-aligned bounding box of every triangle.
func Bounds(b Batch) []sdf.Box3 {
	out := make([]sdf.Box3, len(b))
	for i, t := range b {
		out[i] = sdf.Box3{
			Min: t[0].Min(t[1]).Min(t[2]),
			Max: t[0].Max(t[1]).Max(t[2]),
		}
	}
	return out
}

// Extent returns the bounding box of the whole batch. It reports false for
// an empty batch.
func Extent(b Batch) (sdf.Box3, bool) {
	if len(b) == 0 {
		return sdf.Box3{}, false
	}
	boxes := Bounds(b)
	box := boxes[0]
	for _, bb := range boxes[1:] {
		box.Min = box.Min.Min(bb.Min)
		box.Max = box.Max.Max(bb.Max)
	}
	return box, true
}
