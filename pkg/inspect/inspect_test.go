package inspect

import (
	"math"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/trisoup/pkg/soup"
	"github.com/chazu/trisoup/pkg/tolerance"
)

func v(x, y, z float64) v3.Vec {
	return v3.Vec{X: x, Y: y, Z: z}
}

// tetra is a unit right tetrahedron wound outward.
func tetra() soup.Batch {
	o, x, y, z := v(0, 0, 0), v(1, 0, 0), v(0, 1, 0), v(0, 0, 1)
	return soup.Batch{
		{o, y, x},
		{o, x, z},
		{o, z, y},
		{x, y, z},
	}
}

func hasFinding(fs []Finding, substr string) bool {
	for _, f := range fs {
		if strings.Contains(f.Message, substr) {
			return true
		}
	}
	return false
}

func newEngine() *soup.Engine {
	return soup.NewEngine(tolerance.Default())
}

func TestClosedSolidIsClean(t *testing.T) {
	r := Run(newEngine(), tetra())
	assert.True(t, r.OK())
	assert.Empty(t, r.Warnings)
	assert.InDelta(t, 1.0/6, r.Volume, 1e-12)
}

func TestEmpty(t *testing.T) {
	r := Run(newEngine(), nil)
	require.False(t, r.OK())
	assert.True(t, hasFinding(r.Errors, "no triangles"))
	assert.Empty(t, r.Warnings)
}

func TestNonFinite(t *testing.T) {
	b := tetra()
	b[2][1].Y = math.Inf(1)
	r := Run(newEngine(), b)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, 2, r.Errors[0].Triangle)
	assert.Equal(t, "[error] triangle 2: vertex coordinate is NaN or infinite", r.Errors[0].Error())
	assert.Empty(t, r.Warnings, "tier 2 must not run after tier 1 errors")
}

func TestInvertedWinding(t *testing.T) {
	r := Run(newEngine(), tetra().Reversed())
	assert.True(t, r.OK())
	assert.True(t, hasFinding(r.Warnings, "negative"))
	assert.Less(t, r.Volume, 0.0)
}

func TestOpenAndDegenerate(t *testing.T) {
	b := soup.Batch{
		{v(0, 0, 0), v(1, 0, 0), v(0, 1, 0)},
		{v(0, 0, 0), v(1, 0, 0), v(2, 0, 0)},
	}
	r := Run(newEngine(), b)
	assert.True(t, r.OK())
	assert.True(t, hasFinding(r.Warnings, "open or flat"))

	var degenerate []int
	for _, w := range r.Warnings {
		if strings.HasPrefix(w.Message, "degenerate") {
			degenerate = append(degenerate, w.Triangle)
		}
	}
	assert.Equal(t, []int{1}, degenerate)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "Severity(7)", Severity(7).String())
	assert.Equal(t, "[warning] soup", Finding{Triangle: -1, Message: "soup", Severity: SeverityWarning}.Error())
}

func TestNearlyFlat(t *testing.T) {
	b := soup.Batch{
		{v(0, 0, 0), v(1, 0, 0), v(1, 1, 0)},
		{v(0, 0, 0), v(1, 1, 0), v(0, 1, 1e-6)},
	}
	r := Run(newEngine(), b)
	assert.True(t, r.OK())
	assert.True(t, hasFinding(r.Warnings, "soup is flat"))

	// a stricter planar threshold no longer calls it flat
	strict := soup.NewEngine(tolerance.Default().Scaled(1e-2))
	r = Run(strict, b)
	assert.False(t, hasFinding(r.Warnings, "soup is flat"))
}
