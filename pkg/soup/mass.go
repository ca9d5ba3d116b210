package soup

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/mat"
)

// MassProperties is the integrated mass of the solid bounded by a soup.
type MassProperties struct {
	Density    float64
	Mass       float64
	Volume     float64
	CenterMass v3.Vec

	// Inertia is the 3x3 inertia tensor scaled by density, or nil when it
	// was skipped.
	Inertia *mat.SymDense
}

// MassOptions adjusts a MassProperties computation. The zero value uses
// density 1, computes the center of mass and includes the inertia tensor.
type MassOptions struct {
	// Density scales mass and inertia. Nil means 1; an explicit zero gives
	// zero mass and inertia.
	Density *float64

	// CenterMass, when set, replaces the computed center of mass and is
	// used as the reference point of the inertia tensor.
	CenterMass *v3.Vec

	// SkipInertia leaves MassProperties.Inertia nil.
	SkipInertia bool

	// Crosses are precomputed cross products for the batch.
	Crosses []v3.Vec
}

// massCoefficients scale the ten surface integrals: volume, three first
// moments, three second moments and three products.
var massCoefficients = [10]float64{
	1.0 / 6, 1.0 / 24, 1.0 / 24, 1.0 / 24,
	1.0 / 60, 1.0 / 60, 1.0 / 60,
	1.0 / 120, 1.0 / 120, 1.0 / 120,
}

func axis(v v3.Vec, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

// MassProperties integrates volume, center of mass and inertia over the
// solid bounded by b using the divergence theorem (Eberly, "Polyhedral Mass
// Properties"). The surface is assumed closed and wound outward; otherwise
// the routine still runs but the numbers are not physical. Inward winding
// gives a negative volume and mass with the same center of mass.
func (e *Engine) MassProperties(b Batch, opts MassOptions) (MassProperties, error) {
	crosses := opts.Crosses
	if crosses == nil {
		crosses = Cross(b)
	} else if err := checkLen("crosses", len(crosses), len(b)); err != nil {
		return MassProperties{}, err
	}
	density := 1.0
	if opts.Density != nil {
		density = *opts.Density
	}

	var integral [10]float64
	for i, t := range b {
		c := crosses[i]
		var f1, f2, f3, g0, g1, g2 [3]float64
		for k := 0; k < 3; k++ {
			w0, w1, w2 := axis(t[0], k), axis(t[1], k), axis(t[2], k)
			f1[k] = w0 + w1 + w2
			f2[k] = w0*w0 + w1*w1 + w0*w1 + w2*f1[k]
			f3[k] = w0*w0*w0 + w0*w0*w1 + w0*w1*w1 + w1*w1*w1 + w2*f2[k]
			g0[k] = f2[k] + (w0+f1[k])*w0
			g1[k] = f2[k] + (w1+f1[k])*w1
			g2[k] = f2[k] + (w2+f1[k])*w2
		}
		integral[0] += c.X * f1[0]
		for k := 0; k < 3; k++ {
			ck := axis(c, k)
			integral[1+k] += ck * f2[k]
			integral[4+k] += ck * f3[k]
			next := (k + 1) % 3
			integral[7+k] += ck * (axis(t[0], next)*g0[k] +
				axis(t[1], next)*g1[k] +
				axis(t[2], next)*g2[k])
		}
	}
	for i := range integral {
		integral[i] *= massCoefficients[i]
	}

	volume := integral[0]
	var center v3.Vec
	switch {
	case opts.CenterMass != nil:
		center = *opts.CenterMass
	case math.Abs(volume) >= e.tol.Zero:
		center = v3.Vec{X: integral[1], Y: integral[2], Z: integral[3]}.MulScalar(1 / volume)
	}

	result := MassProperties{
		Density:    density,
		Mass:       density * volume,
		Volume:     volume,
		CenterMass: center,
	}
	if opts.SkipInertia {
		return result, nil
	}

	cx, cy, cz := center.X, center.Y, center.Z
	inertia := mat.NewSymDense(3, nil)
	inertia.SetSym(0, 0, integral[5]+integral[6]-volume*(cy*cy+cz*cz))
	inertia.SetSym(1, 1, integral[4]+integral[6]-volume*(cx*cx+cz*cz))
	inertia.SetSym(2, 2, integral[4]+integral[5]-volume*(cx*cx+cy*cy))
	inertia.SetSym(0, 1, integral[7]-volume*cx*cy)
	inertia.SetSym(1, 2, integral[8]-volume*cy*cz)
	inertia.SetSym(0, 2, integral[9]-volume*cx*cz)
	inertia.ScaleSym(density, inertia)
	result.Inertia = inertia

	return result, nil
}
