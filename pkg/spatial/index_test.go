package spatial

import (
	"math/rand"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/trisoup/pkg/soup"
	"github.com/chazu/trisoup/pkg/tolerance"
)

func randomSoup(n int, seed int64) soup.Batch {
	r := rand.New(rand.NewSource(seed))
	b := make(soup.Batch, n)
	for i := range b {
		c := v3.Vec{X: r.Float64() * 100, Y: r.Float64() * 100, Z: r.Float64() * 100}
		for j := range b[i] {
			b[i][j] = c.Add(v3.Vec{X: r.Float64() * 5, Y: r.Float64() * 5, Z: r.Float64() * 5})
		}
	}
	return b
}

func overlaps(lo, hi, qlo, qhi []float64) bool {
	for k := range lo {
		if hi[k] < qlo[k] || qhi[k] < lo[k] {
			return false
		}
	}
	return true
}

func TestIntersectMatchesBruteForce(t *testing.T) {
	b := randomSoup(500, 1)
	idx, err := Build(b, tolerance.Default())
	require.NoError(t, err)
	assert.Equal(t, 500, idx.Len())
	assert.Equal(t, 3, idx.Dim())

	r := rand.New(rand.NewSource(2))
	for q := 0; q < 50; q++ {
		qlo := []float64{r.Float64() * 90, r.Float64() * 90, r.Float64() * 90}
		qhi := []float64{qlo[0] + 10, qlo[1] + 10, qlo[2] + 10}

		var want []int
		for i := range b {
			lo, hi := idx.Bounds(i)
			if overlaps(lo, hi, qlo, qhi) {
				want = append(want, i)
			}
		}
		got, err := idx.Intersect(qlo, qhi)
		require.NoError(t, err)
		if len(want) == 0 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, want, got, "query %d", q)
	}
}

func TestFlatTrianglesAreFound(t *testing.T) {
	// axis-aligned triangle in z=0 has a zero-thickness box
	b := soup.Batch{{
		v3.Vec{X: 0, Y: 0, Z: 0},
		v3.Vec{X: 1, Y: 0, Z: 0},
		v3.Vec{X: 0, Y: 1, Z: 0},
	}}
	idx, err := Build(b, tolerance.Default())
	require.NoError(t, err)

	got, err := idx.Contains([]float64{0.25, 0.25, 0})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, got)

	got, err = idx.IntersectBox(sdf.Box3{
		Min: v3.Vec{X: -1, Y: -1, Z: 0},
		Max: v3.Vec{X: 0, Y: 0, Z: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, got)

	got, err = idx.Contains([]float64{0.25, 0.25, 0.5})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNearest(t *testing.T) {
	b := soup.Batch{
		{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		{{X: 10, Y: 0, Z: 0}, {X: 11, Y: 0, Z: 0}, {X: 10, Y: 1, Z: 0}},
		{{X: 20, Y: 0, Z: 0}, {X: 21, Y: 0, Z: 0}, {X: 20, Y: 1, Z: 0}},
	}
	idx, err := Build(b, tolerance.Default())
	require.NoError(t, err)

	got, err := idx.Nearest([]float64{19, 0.5, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, got)

	got, err = idx.Nearest([]float64{19, 0.5, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBuild2(t *testing.T) {
	b := soup.Batch2{
		{v2.Vec{X: 0, Y: 0}, v2.Vec{X: 2, Y: 0}, v2.Vec{X: 0, Y: 2}},
		{v2.Vec{X: 5, Y: 5}, v2.Vec{X: 6, Y: 5}, v2.Vec{X: 5, Y: 7}},
	}
	idx, err := Build2(b, tolerance.Default())
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Dim())

	lo, hi := idx.Bounds(1)
	assert.Equal(t, []float64{5, 5}, lo)
	assert.Equal(t, []float64{6, 7}, hi)

	got, err := idx.Intersect([]float64{1, 1}, []float64{5.5, 5.5})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)

	_, err = idx.Contains([]float64{1, 1, 1})
	assert.True(t, errors.Is(err, ErrDimension))

	_, err = idx.IntersectBox(sdf.Box3{})
	assert.True(t, errors.Is(err, ErrDimension))
}

func TestEmptyIndex(t *testing.T) {
	idx, err := Build(nil, tolerance.Default())
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())

	got, err := idx.Nearest([]float64{0, 0, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = idx.Contains([]float64{0, 0, 0})
	require.NoError(t, err)
	assert.Empty(t, got)
}
