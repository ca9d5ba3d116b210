package soup

import (
	"math"
	"math/rand"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/trisoup/pkg/tolerance"
)

func vec(x, y, z float64) v3.Vec {
	return v3.Vec{X: x, Y: y, Z: z}
}

func tri(a, b, c v3.Vec) Triangle {
	return Triangle{a, b, c}
}

func newTestEngine() *Engine {
	return NewEngine(tolerance.Default())
}

// unitCube is [0,1]^3 as 12 outward-wound triangles.
func unitCube() Batch {
	return Batch{
		// z = 0
		tri(vec(0, 0, 0), vec(0, 1, 0), vec(1, 1, 0)),
		tri(vec(0, 0, 0), vec(1, 1, 0), vec(1, 0, 0)),
		// z = 1
		tri(vec(0, 0, 1), vec(1, 0, 1), vec(1, 1, 1)),
		tri(vec(0, 0, 1), vec(1, 1, 1), vec(0, 1, 1)),
		// y = 0
		tri(vec(0, 0, 0), vec(1, 0, 0), vec(1, 0, 1)),
		tri(vec(0, 0, 0), vec(1, 0, 1), vec(0, 0, 1)),
		// y = 1
		tri(vec(0, 1, 0), vec(0, 1, 1), vec(1, 1, 1)),
		tri(vec(0, 1, 0), vec(1, 1, 1), vec(1, 1, 0)),
		// x = 0
		tri(vec(0, 0, 0), vec(0, 0, 1), vec(0, 1, 1)),
		tri(vec(0, 0, 0), vec(0, 1, 1), vec(0, 1, 0)),
		// x = 1
		tri(vec(1, 0, 0), vec(1, 1, 0), vec(1, 1, 1)),
		tri(vec(1, 0, 0), vec(1, 1, 1), vec(1, 0, 1)),
	}
}

// unitSquare is [0,1]^2 in the z=0 plane as two triangles.
func unitSquare() Batch {
	return Batch{
		tri(vec(0, 0, 0), vec(1, 0, 0), vec(1, 1, 0)),
		tri(vec(0, 0, 0), vec(1, 1, 0), vec(0, 1, 0)),
	}
}

// degenerateMix holds three degenerate triangles followed by a good one.
func degenerateMix() Batch {
	return Batch{
		tri(vec(0, 0, 0), vec(1, 0, 0), vec(-0.5, 0, 0)),
		tri(vec(0, 0, 0), vec(0, 0, 0), vec(10, 10, 0)),
		tri(vec(0, 0, 0), vec(0, 0, 2), vec(0, 0, 2.2)),
		tri(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0)),
	}
}

// randomBatch returns n well-shaped random triangles from a fixed seed.
func randomBatch(n int, seed int64) Batch {
	r := rand.New(rand.NewSource(seed))
	point := func() v3.Vec {
		return vec(r.Float64()*10-5, r.Float64()*10-5, r.Float64()*10-5)
	}
	b := make(Batch, 0, n)
	for len(b) < n {
		t := tri(point(), point(), point())
		if Area(Batch{t})[0] < 0.5 {
			continue
		}
		b = append(b, t)
	}
	return b
}

func nan() float64 {
	return math.NaN()
}
