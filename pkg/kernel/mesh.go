package kernel

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"

	"github.com/chazu/trisoup/pkg/soup"
)

// ErrMesh reports a Mesh whose arrays are inconsistent.
var ErrMesh = errors.New("malformed mesh")

// Mesh is a triangle mesh in flat arrays: vertices has 3 floats per vertex
// (x,y,z), normals has 3 floats per vertex, indices has 3 uint32s per
// triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name,omitempty"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Validate checks array lengths and index bounds.
func (m *Mesh) Validate() error {
	if len(m.Vertices)%3 != 0 {
		return errors.Wrapf(ErrMesh, "%d vertex floats is not a multiple of 3", len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return errors.Wrapf(ErrMesh, "%d indices is not a multiple of 3", len(m.Indices))
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Vertices) {
		return errors.Wrapf(ErrMesh, "%d normal floats for %d vertex floats", len(m.Normals), len(m.Vertices))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return errors.Wrapf(ErrMesh, "index %d references vertex %d of %d", i, idx, n)
		}
	}
	return nil
}

func (m *Mesh) vertex(i uint32) v3.Vec {
	k := int(i) * 3
	return v3.Vec{
		X: float64(m.Vertices[k]),
		Y: float64(m.Vertices[k+1]),
		Z: float64(m.Vertices[k+2]),
	}
}

// Batch expands the indexed mesh into a triangle soup. Widening float32 to
// float64 is exact.
func (m *Mesh) Batch() (soup.Batch, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	b := make(soup.Batch, m.TriangleCount())
	for i := range b {
		for j := 0; j < 3; j++ {
			b[i][j] = m.vertex(m.Indices[i*3+j])
		}
	}
	return b, nil
}

// FromBatch lays b out as an unshared-vertex mesh. normals holds one face
// normal per triangle; when nil, unit cross products are used, zero for
// degenerate triangles. Coordinates are rounded to the nearest float32.
func FromBatch(b soup.Batch, normals []v3.Vec) (*Mesh, error) {
	if normals == nil {
		normals = soup.Cross(b)
		for i, n := range normals {
			if l := n.Length(); l > 0 {
				normals[i] = n.MulScalar(1 / l)
			}
		}
	} else if len(normals) != len(b) {
		return nil, errors.Wrapf(ErrMesh, "%d normals for %d triangles", len(normals), len(b))
	}

	m := &Mesh{
		Vertices: make([]float32, 0, len(b)*9),
		Normals:  make([]float32, 0, len(b)*9),
		Indices:  make([]uint32, 0, len(b)*3),
	}
	for i, t := range b {
		n := normals[i]
		for j, v := range t {
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			m.Indices = append(m.Indices, uint32(i*3+j))
		}
	}
	return m, nil
}

// Bounds returns the bounding box of the vertices, or false when the mesh is
// empty.
func (m *Mesh) Bounds() (lo, hi v3.Vec, ok bool) {
	if m.IsEmpty() {
		return v3.Vec{}, v3.Vec{}, false
	}
	lo = v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi = v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i := 0; i < m.VertexCount(); i++ {
		v := m.vertex(uint32(i))
		lo, hi = lo.Min(v), hi.Max(v)
	}
	return lo, hi, true
}
