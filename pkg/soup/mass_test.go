package soup

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecNear(t *testing.T, want, got v3.Vec, delta float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, delta, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, delta, msgAndArgs...)
}

func TestMassPropertiesUnitCube(t *testing.T) {
	mp, err := newTestEngine().MassProperties(unitCube(), MassOptions{})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, mp.Volume, 1e-12)
	assert.InDelta(t, 1.0, mp.Mass, 1e-12)
	assert.Equal(t, 1.0, mp.Density)
	assertVecNear(t, vec(0.5, 0.5, 0.5), mp.CenterMass, 1e-12)

	require.NotNil(t, mp.Inertia)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0 / 6
			}
			assert.InDelta(t, want, mp.Inertia.At(i, j), 1e-12, "inertia[%d][%d]", i, j)
		}
	}
}

func TestMassPropertiesReversed(t *testing.T) {
	e := newTestEngine()
	mp, err := e.MassProperties(unitCube().Reversed(), MassOptions{})
	require.NoError(t, err)

	assert.InDelta(t, -1.0, mp.Volume, 1e-12)
	assert.InDelta(t, -1.0, mp.Mass, 1e-12)
	assertVecNear(t, vec(0.5, 0.5, 0.5), mp.CenterMass, 1e-12)
}

func TestMassPropertiesDensity(t *testing.T) {
	e := newTestEngine()
	density := 2.5
	mp, err := e.MassProperties(unitCube(), MassOptions{Density: &density})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, mp.Volume, 1e-12)
	assert.InDelta(t, 2.5, mp.Mass, 1e-12)
	assert.InDelta(t, 2.5/6, mp.Inertia.At(1, 1), 1e-12)
}

func TestMassPropertiesZeroDensity(t *testing.T) {
	e := newTestEngine()
	zero := 0.0
	mp, err := e.MassProperties(unitCube(), MassOptions{Density: &zero})
	require.NoError(t, err)

	assert.Equal(t, 0.0, mp.Density)
	assert.Equal(t, 0.0, mp.Mass)
	assert.InDelta(t, 1.0, mp.Volume, 1e-12)
	assert.Equal(t, 0.0, mp.Inertia.At(0, 0))
}

func TestMassPropertiesTranslated(t *testing.T) {
	offset := vec(3, -2, 7)
	cube := unitCube()
	for i := range cube {
		for j := range cube[i] {
			cube[i][j] = cube[i][j].Add(offset)
		}
	}
	mp, err := newTestEngine().MassProperties(cube, MassOptions{})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, mp.Volume, 1e-9)
	assertVecNear(t, offset.Add(vec(0.5, 0.5, 0.5)), mp.CenterMass, 1e-9)
	// inertia is taken about the center of mass, so translation leaves it alone
	assert.InDelta(t, 1.0/6, mp.Inertia.At(2, 2), 1e-9)
	assert.InDelta(t, 0.0, mp.Inertia.At(0, 2), 1e-9)
}

func TestMassPropertiesCenterOverride(t *testing.T) {
	origin := vec(0, 0, 0)
	mp, err := newTestEngine().MassProperties(unitCube(), MassOptions{CenterMass: &origin})
	require.NoError(t, err)

	assert.Equal(t, origin, mp.CenterMass)
	// parallel axis: 1/6 + (0.5^2 + 0.5^2)
	assert.InDelta(t, 2.0/3, mp.Inertia.At(0, 0), 1e-12)
	// products are the raw integral of xy, not negated
	assert.InDelta(t, 0.25, mp.Inertia.At(0, 1), 1e-12)
	assert.InDelta(t, 0.25, mp.Inertia.At(1, 0), 1e-12)
}

func TestMassPropertiesFlatFallsBackToOrigin(t *testing.T) {
	mp, err := newTestEngine().MassProperties(unitSquare(), MassOptions{})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, mp.Volume, 1e-15)
	assert.Equal(t, v3.Vec{}, mp.CenterMass)
}

func TestMassPropertiesSkipInertia(t *testing.T) {
	mp, err := newTestEngine().MassProperties(unitCube(), MassOptions{SkipInertia: true})
	require.NoError(t, err)
	assert.Nil(t, mp.Inertia)
	assert.InDelta(t, 1.0, mp.Volume, 1e-12)
}

func TestMassPropertiesCrosses(t *testing.T) {
	e := newTestEngine()
	cube := unitCube()

	mp, err := e.MassProperties(cube, MassOptions{Crosses: Cross(cube)})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mp.Volume, 1e-12)

	_, err = e.MassProperties(cube, MassOptions{Crosses: Cross(cube[:3])})
	assert.True(t, errors.Is(err, ErrShape))
}
