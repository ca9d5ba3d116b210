// Package inspect produces a tiered health report for a triangle soup.
//
// Tier 1 findings are errors: the soup cannot be used for numeric work at
// all. Tier 2 findings are warnings: the numbers are computable but some of
// them will not be physical.
package inspect

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/chazu/trisoup/pkg/soup"
)

// Severity indicates whether a finding blocks further computation or is
// advisory.
type Severity int

const (
	SeverityError   Severity = iota // blocks computation
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding describes a single problem. Triangle is -1 for soup-level
// findings.
type Finding struct {
	Triangle int
	Message  string
	Severity Severity
}

func (f Finding) Error() string {
	if f.Triangle < 0 {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("[%s] triangle %d: %s", f.Severity, f.Triangle, f.Message)
}

// Report bundles blocking errors and advisory warnings.
type Report struct {
	Errors   []Finding
	Warnings []Finding

	// Volume is the signed enclosed volume, set when tier 2 ran.
	Volume float64
}

// OK reports whether there were no errors. Warnings do not count.
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

// Run inspects b. Tier 2 only runs when tier 1 found nothing.
func Run(e *soup.Engine, b soup.Batch) Report {
	var r Report
	r.Errors = append(r.Errors, checkEmpty(b)...)
	r.Errors = append(r.Errors, checkFinite(b)...)
	if !r.OK() {
		return r
	}

	r.Warnings = append(r.Warnings, checkDegenerate(e, b)...)
	r.Warnings = append(r.Warnings, checkFlat(e, b)...)

	// the batch is non-empty and crosses are not supplied, so this cannot fail
	mp, _ := e.MassProperties(b, soup.MassOptions{SkipInertia: true})
	r.Volume = mp.Volume
	r.Warnings = append(r.Warnings, checkVolume(e, mp.Volume)...)
	return r
}

func checkEmpty(b soup.Batch) []Finding {
	if len(b) > 0 {
		return nil
	}
	return []Finding{{
		Triangle: -1,
		Message:  "soup has no triangles",
		Severity: SeverityError,
	}}
}

func checkFinite(b soup.Batch) []Finding {
	var out []Finding
	for i, t := range b {
		if !t.Finite() {
			out = append(out, Finding{
				Triangle: i,
				Message:  "vertex coordinate is NaN or infinite",
				Severity: SeverityError,
			})
		}
	}
	return out
}

func checkDegenerate(e *soup.Engine, b soup.Batch) []Finding {
	ok := e.Nondegenerate(b)
	bad := lo.Filter(lo.Range(len(b)), func(i int, _ int) bool {
		return !ok[i]
	})
	return lo.Map(bad, func(i int, _ int) Finding {
		return Finding{
			Triangle: i,
			Message:  fmt.Sprintf("degenerate: oriented box narrower than %g", e.Tolerance().Merge),
			Severity: SeverityWarning,
		}
	})
}

func checkFlat(e *soup.Engine, b soup.Batch) []Finding {
	// b is non-empty here
	if flat, _ := e.Flat(b); !flat {
		return nil
	}
	return []Finding{{
		Triangle: -1,
		Message:  fmt.Sprintf("soup is flat: every vertex lies within %g of one plane", e.Tolerance().Planar),
		Severity: SeverityWarning,
	}}
}

func checkVolume(e *soup.Engine, volume float64) []Finding {
	switch {
	case math.Abs(volume) < e.Tolerance().Zero:
		return []Finding{{
			Triangle: -1,
			Message:  "enclosed volume is zero; the soup is open or flat",
			Severity: SeverityWarning,
		}}
	case volume < 0:
		return []Finding{{
			Triangle: -1,
			Message:  fmt.Sprintf("enclosed volume %g is negative; winding is inverted", volume),
			Severity: SeverityWarning,
		}}
	}
	return nil
}
