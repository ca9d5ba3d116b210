// Package tolerance holds the numerical thresholds used by the triangle
// soup engine. A Tolerance is a plain value: callers build one (or load one
// from TOML) and hand it to the code that needs it, so different call sites
// and test modes can run with different strictness side by side.
package tolerance

import (
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// ErrInvalid is returned when a tolerance value is not a positive finite number.
var ErrInvalid = errors.New("invalid tolerance")

// Tolerance is the set of thresholds for near-zero comparisons.
type Tolerance struct {
	// Zero is the threshold below which plane distances, cross product
	// magnitudes and volumes are treated as zero.
	Zero float64 `toml:"zero"`

	// Merge is the shortest edge length considered non-degenerate, and the
	// default minimum triangle height.
	Merge float64 `toml:"merge"`

	// Planar is the looser plane-distance threshold used by soup.Engine.Flat
	// to decide whether a whole soup lies in one plane.
	Planar float64 `toml:"planar"`
}

// Default values, matching float64 resolution scaled by 100 for Zero.
const (
	DefaultZero   = 1e-13
	DefaultMerge  = 1e-8
	DefaultPlanar = 1e-5
)

// Default returns the standard tolerance set.
func Default() Tolerance {
	return Tolerance{
		Zero:   DefaultZero,
		Merge:  DefaultMerge,
		Planar: DefaultPlanar,
	}
}

// Scaled returns a copy with every threshold multiplied by f. Values below
// one give a stricter configuration.
func (t Tolerance) Scaled(f float64) Tolerance {
	return Tolerance{
		Zero:   t.Zero * f,
		Merge:  t.Merge * f,
		Planar: t.Planar * f,
	}
}

// Validate checks that every threshold is a positive finite number.
func (t Tolerance) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"zero", t.Zero},
		{"merge", t.Merge},
		{"planar", t.Planar},
	}
	for _, f := range fields {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return errors.Wrapf(ErrInvalid, "%s = %v", f.name, f.v)
		}
	}
	return nil
}

// Parse decodes TOML into a Tolerance. Keys missing from data keep their
// default values.
func Parse(data []byte) (Tolerance, error) {
	t := Default()
	if err := toml.Unmarshal(data, &t); err != nil {
		return Tolerance{}, errors.Wrap(err, "parse tolerance")
	}
	if err := t.Validate(); err != nil {
		return Tolerance{}, err
	}
	return t, nil
}

// Load reads a TOML tolerance file.
func Load(path string) (Tolerance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tolerance{}, errors.Wrapf(err, "read tolerance file %s", path)
	}
	return Parse(data)
}

// Marshal encodes t as TOML.
func (t Tolerance) Marshal() ([]byte, error) {
	return toml.Marshal(t)
}
