package engine

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/trisoup/pkg/inspect"
	"github.com/chazu/trisoup/pkg/kernel"
	"github.com/chazu/trisoup/pkg/soup"
)

// Value is the Go form of a script result. It is one of nil, bool, int64,
// float64, string, v3.Vec, soup.Triangle, soup.Batch, soup.MassProperties,
// inspect.Report, kernel.Solid or []Value.
type Value any

// toValue converts the final expression of a script to a Value. Sexps with
// no Go form are returned as their printed representation.
func toValue(s zygo.Sexp) Value {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return v.Val
	case *zygo.SexpFloat:
		return v.Val
	case *zygo.SexpBool:
		return v.Val
	case *zygo.SexpStr:
		return v.S
	case *sexpVec3:
		return v.vec
	case *sexpTri:
		return v.tri
	case *sexpSoup:
		return v.batch
	case *sexpMass:
		return v.mp
	case *sexpReport:
		return v.report
	case *sexpSolid:
		return v.solid
	case *zygo.SexpArray:
		return toValues(v.Val)
	case *zygo.SexpPair:
		items, err := zygo.ListToArray(v)
		if err != nil {
			return v.SexpString(nil)
		}
		return toValues(items)
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil
		}
	}
	if s == nil {
		return nil
	}
	return s.SexpString(nil)
}

func toValues(items []zygo.Sexp) []Value {
	out := make([]Value, len(items))
	for i, item := range items {
		out[i] = toValue(item)
	}
	return out
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a point or direction.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return vecString(v.vec)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpTri wraps a single triangle.
type sexpTri struct {
	tri soup.Triangle
}

func (t *sexpTri) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(tri %s %s %s)", vecString(t.tri[0]), vecString(t.tri[1]), vecString(t.tri[2]))
}
func (t *sexpTri) Type() *zygo.RegisteredType { return nil }

// sexpSoup wraps a triangle batch.
type sexpSoup struct {
	batch soup.Batch
}

func (s *sexpSoup) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(soup %d triangles)", len(s.batch))
}
func (s *sexpSoup) Type() *zygo.RegisteredType { return nil }

// sexpMass wraps the result of `mass`.
type sexpMass struct {
	mp soup.MassProperties
}

func (m *sexpMass) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mass :volume %g :mass %g :center %s)", m.mp.Volume, m.mp.Mass, vecString(m.mp.CenterMass))
}
func (m *sexpMass) Type() *zygo.RegisteredType { return nil }

// sexpReport wraps the result of `inspect`.
type sexpReport struct {
	report inspect.Report
}

func (r *sexpReport) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(report :errors %d :warnings %d)", len(r.report.Errors), len(r.report.Warnings))
}
func (r *sexpReport) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps a kernel solid that has not been tessellated yet.
type sexpSolid struct {
	solid kernel.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	bb := s.solid.Bounds()
	return fmt.Sprintf("(solid %s %s)", vecString(bb.Min), vecString(bb.Max))
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

func vecString(v v3.Vec) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.X, v.Y, v.Z)
}

// Soup flattens a script result into a single batch. Triangles, soups and
// solids are accepted, as are lists of them; solids are tessellated with the
// engine's kernel.
func (e *Engine) Soup(v Value) (soup.Batch, error) {
	switch v := v.(type) {
	case soup.Batch:
		return v, nil
	case soup.Triangle:
		return soup.Batch{v}, nil
	case kernel.Solid:
		return e.tessellate(v)
	case []Value:
		var out soup.Batch
		for i, item := range v {
			b, err := e.Soup(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out = append(out, b...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected soup, tri or solid, got %T", v)
}

// SoupEngine returns the soup engine scripts run against.
func (e *Engine) SoupEngine() *soup.Engine {
	return e.soup
}
