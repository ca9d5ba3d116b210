// Package kernel defines the mesh sources that feed triangle soups.
//
// A Kernel builds solids from primitives and rigid transforms and
// tessellates them into a Mesh. The soup engine only ever sees the
// tessellated triangles, so any backend that can produce a Mesh can sit
// behind this interface.
package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// Bounds returns the axis-aligned bounding box.
	Bounds() sdf.Box3
}

// Kernel builds and tessellates solids. Primitives are centered on the
// origin.
type Kernel interface {
	// Primitives
	Box(size v3.Vec) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)
	Sphere(radius float64) (Solid, error)

	// Transforms
	Translate(s Solid, offset v3.Vec) Solid
	Rotate(s Solid, degrees v3.Vec) Solid // Euler angles, applied X then Y then Z

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
