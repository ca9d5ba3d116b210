package engine

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"

	"github.com/chazu/trisoup/pkg/inspect"
	"github.com/chazu/trisoup/pkg/kernel"
	"github.com/chazu/trisoup/pkg/proximity"
	"github.com/chazu/trisoup/pkg/soup"
)

// builtinFunc is the signature zygomys expects for Go functions.
type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// soupFunc is a builtin whose first argument is converted to a soup.
type soupFunc func(env *zygo.Zlisp, b soup.Batch, pa kwArgs) (zygo.Sexp, error)

// registerBuiltins installs every script builtin into env. Names use
// underscores; preprocessSource maps the kebab-case spellings onto them.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func (e *Engine) registerBuiltins(env *zygo.Zlisp) {
	fns := map[string]builtinFunc{
		// constructors
		"vec3":     e.vec3,
		"tri":      e.tri,
		"soup":     e.soupOf,
		"box":      e.box,
		"cylinder": e.cylinder,
		"sphere":   e.sphere,

		// transforms
		"translate": e.translate,
		"rotate":    e.rotate,

		// measurements
		"count":        e.withSoup(e.count),
		"area":         e.withSoup(e.area),
		"areas":        e.withSoup(e.areas),
		"volume":       e.withSoup(e.volume),
		"mass":         e.withSoup(e.mass),
		"center_mass":  e.centerMass,
		"inertia":      e.inertia,
		"normals":      e.withSoup(e.normals),
		"angles":       e.withSoup(e.angles),
		"degenerate":   e.withSoup(e.degenerate),
		"all_coplanar": e.withSoup(e.allCoplanar),
		"any_coplanar": e.withSoup(e.anyCoplanar),
		"flat":         e.withSoup(e.flat),
		"inspect":      e.withSoup(e.inspect),

		// queries
		"closest":     e.withSoup(e.closest),
		"distance":    e.withSoup(e.distance),
		"barycentric": e.barycentric,
	}
	for name, fn := range fns {
		env.AddFunction(name, fn)
	}
}

// withSoup adapts a soupFunc by converting its first positional argument.
func (e *Engine) withSoup(fn soupFunc) builtinFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("%s requires a soup as first argument", name)
		}
		b, err := e.toBatch(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		pa.positional = pa.positional[1:]
		out, err := fn(env, b, pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return out, nil
	}
}

// toBatch converts a soup, tri, solid, or list of them into one batch.
// Solids are tessellated with the engine's kernel.
func (e *Engine) toBatch(s zygo.Sexp) (soup.Batch, error) {
	switch v := s.(type) {
	case *sexpSoup:
		return v.batch, nil
	case *sexpTri:
		return soup.Batch{v.tri}, nil
	case *sexpSolid:
		return e.tessellate(v.solid)
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("expected soup, tri or solid, got %s", describe(s))
	}
	var out soup.Batch
	for _, item := range items {
		b, err := e.toBatch(item)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

func (e *Engine) tessellate(s kernel.Solid) (soup.Batch, error) {
	if e.kernel == nil {
		return nil, fmt.Errorf("no kernel configured")
	}
	mesh, err := e.kernel.ToMesh(s)
	if err != nil {
		return nil, err
	}
	return mesh.Batch()
}

func (e *Engine) requireKernel(name string) error {
	if e.kernel == nil {
		return fmt.Errorf("%s: no kernel configured", name)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// (vec3 1 2 3)
func (e *Engine) vec3(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
	}
	var xyz [3]float64
	for i, axis := range []string{"x", "y", "z"} {
		f, err := toFloat64(args[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
		}
		xyz[i] = f
	}
	return &sexpVec3{vec: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
}

// (tri (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0))
func (e *Engine) tri(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("tri requires exactly 3 vertices, got %d", len(args))
	}
	var t soup.Triangle
	for i, a := range args {
		v, err := toVec3(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tri: vertex %d: %w", i, err)
		}
		t[i] = v
	}
	return &sexpTri{tri: t}, nil
}

// (soup t1 t2 (list t3 t4) other-soup (box 1 1 1))
func (e *Engine) soupOf(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	var b soup.Batch
	for i, a := range args {
		part, err := e.toBatch(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("soup: argument %d: %w", i, err)
		}
		b = append(b, part...)
	}
	return &sexpSoup{batch: b}, nil
}

// (box 10 20 30) or (box :size (vec3 10 20 30))
func (e *Engine) box(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := e.requireKernel("box"); err != nil {
		return zygo.SexpNull, err
	}
	pa := parseArgs(args)
	var size v3.Vec
	var err error
	switch {
	case pa.kw["size"] != nil:
		size, err = toVec3(pa.kw["size"])
	case len(pa.positional) == 1:
		size, err = toVec3(pa.positional[0])
	case len(pa.positional) == 3:
		size, err = toVec3(sexpArray(env, pa.positional))
	default:
		err = fmt.Errorf("expected a size vector or three dimensions")
	}
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
	}
	s, err := e.kernel.Box(size)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("box: %w", err)
	}
	return &sexpSolid{solid: s}, nil
}

// (cylinder :height 10 :radius 2) or (cylinder 10 2)
func (e *Engine) cylinder(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := e.requireKernel("cylinder"); err != nil {
		return zygo.SexpNull, err
	}
	pa := parseArgs(args)
	height, err := toFloat64(pa.arg("height", 0))
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
	}
	radius, err := toFloat64(pa.arg("radius", 1))
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
	}
	s, err := e.kernel.Cylinder(height, radius)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
	}
	return &sexpSolid{solid: s}, nil
}

// (sphere :radius 5) or (sphere 5)
func (e *Engine) sphere(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := e.requireKernel("sphere"); err != nil {
		return zygo.SexpNull, err
	}
	pa := parseArgs(args)
	radius, err := toFloat64(pa.arg("radius", 0))
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
	}
	s, err := e.kernel.Sphere(radius)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
	}
	return &sexpSolid{solid: s}, nil
}

// ---------------------------------------------------------------------------
// Transforms
// ---------------------------------------------------------------------------

// transformArgs splits (op target vector) into its parts.
func transformArgs(name string, args []zygo.Sexp) (zygo.Sexp, v3.Vec, error) {
	if len(args) != 2 {
		return nil, v3.Vec{}, fmt.Errorf("%s requires a target and a vector, got %d arguments", name, len(args))
	}
	v, err := toVec3(args[1])
	if err != nil {
		return nil, v3.Vec{}, fmt.Errorf("%s: %w", name, err)
	}
	return args[0], v, nil
}

// transformSoup applies m to every vertex. Winding is preserved because m
// is rigid.
func transformSoup(b soup.Batch, m sdf.M44) soup.Batch {
	out := make(soup.Batch, len(b))
	for i, t := range b {
		for j, v := range t {
			out[i][j] = m.MulPosition(v)
		}
	}
	return out
}

// (translate target (vec3 dx dy dz))
func (e *Engine) translate(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	target, offset, err := transformArgs("translate", args)
	if err != nil {
		return zygo.SexpNull, err
	}
	if s, ok := target.(*sexpSolid); ok && e.kernel != nil {
		return &sexpSolid{solid: e.kernel.Translate(s.solid, offset)}, nil
	}
	b, err := e.toBatch(target)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("translate: %w", err)
	}
	return &sexpSoup{batch: transformSoup(b, sdf.Translate3d(offset))}, nil
}

// (rotate target (vec3 rx ry rz)), Euler angles in degrees applied X, Y, Z
func (e *Engine) rotate(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	target, degrees, err := transformArgs("rotate", args)
	if err != nil {
		return zygo.SexpNull, err
	}
	if s, ok := target.(*sexpSolid); ok && e.kernel != nil {
		return &sexpSolid{solid: e.kernel.Rotate(s.solid, degrees)}, nil
	}
	b, err := e.toBatch(target)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
	}
	rad := degrees.MulScalar(math.Pi / 180)
	m := sdf.RotateZ(rad.Z).Mul(sdf.RotateY(rad.Y)).Mul(sdf.RotateX(rad.X))
	return &sexpSoup{batch: transformSoup(b, m)}, nil
}

// ---------------------------------------------------------------------------
// Measurements
// ---------------------------------------------------------------------------

// (count s)
func (e *Engine) count(env *zygo.Zlisp, b soup.Batch, pa kwArgs) (zygo.Sexp, error) {
	return sexpInt(len(b)), nil
}

// (area s)
func (e *Engine) area(env *zygo.Zlisp, b soup.Batch, pa kwArgs) (zygo.Sexp, error) {
	return sexpFloat(soup.TotalArea(b)), nil
}

// (areas s)
func (e *Engine) areas(env *zygo.Zlisp, b soup.Batch, pa kwArgs) (zygo.Sexp, error) {
	return sexpFloats(env, soup.Area(b)), nil
}

// massOptions reads :density from pa.
func massOptions(pa kwArgs, skipInertia bool) (soup.MassOptions, error) {
	opts := soup.MassOptions{SkipInertia: skipInertia}
	if v, ok := pa.kw["density"]; ok {
		d, err := toFloat64(v)
		if err != nil {
			return opts, fmt.Errorf("density: %w", err)
		}
		opts.Density = &d
	}
	return opts, nil
}

// (volume s)
func (e *Engine) volume(env *zygo.Zlisp, b soup.Batch, pa kwArgs) (zygo.Sexp, error) {
	mp, err := e.soup.MassProperties(b, soup.MassOptions{SkipInertia: true})
	if err != nil {
		return zygo.SexpNull, err
	}
	return sexpFloat(mp.Volume), nil
}

// (mass s :density 2.7)
func (e *Engine) mass(env *zygo.Zlisp, b soup.Batch, pa kwArgs) (zygo.Sexp, error) {
	opts, err := massOptions(pa, false)
	if err != nil {
		return zygo.SexpNull, err
	}
	mp, err := e.soup.MassProperties(b, opts)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpMass{mp: mp}, nil
}

// toMass accepts a mass result or anything toBatch accepts.
func (e *Engine) toMass(s zygo.Sexp) (soup.MassProperties, error) {
	if m, ok := s.(*sexpMass); ok {
		return m.mp, nil
	}
	b, err := e.toBatch(s)
	if err != nil {
		return soup.MassProperties{}, err
	}
	return e.soup.MassProperties(b, soup.MassOptions{})
}

// (center-mass s) or (center-mass (mass s))
func (e *Engine) centerMass(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("center-mass requires one argument, got %d", len(args))
	}
	mp, err := e.toMass(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("center-mass: %w", err)
	}
	return &sexpVec3{vec: mp.CenterMass}, nil
}

// (inertia s) or (inertia (mass s :density 2)), as three rows
func (e *Engine) inertia(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("inertia requires one argument, got %d", len(args))
	}
	mp, err := e.toMass(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("inertia: %w", err)
	}
	if mp.Inertia == nil {
		return zygo.SexpNull, nil
	}
	rows := make([]zygo.Sexp, 3)
	for i := range rows {
		rows[i] = sexpFloats(env, []float64{mp.Inertia.At(i, 0), mp.Inertia.At(i, 1), mp.Inertia.At(i, 2)})
	}
	return sexpArray(env, rows), nil
}

// (normals s), zero vectors for degenerate triangles
func (e *Engine) normals(env *zygo.Zlisp, b soup.Batch, pa kwArgs) (zygo.Sexp, error) {
	normals, _ := e.soup.Normals(b)
	items := lo.Map(normals, func(n v3.Vec, _ int) zygo.Sexp {
		return &sexpVec3{vec: n}
	})
	return sexpArray(env, items), nil
}

// (angles s), radians per vertex
func (e *Engine) angles(env *zygo.Zlisp, b soup.Batch, pa kwArgs) (zygo.Sexp, error) {
	items := lo.Map(soup.Angles(b), func(a [3]float64, _ int) zygo.Sexp {
		return sexpFloats(env, a[:])
	})
	return sexpArray(env, items), nil
}

// (degenerate s :height 0.01), indices of degenerate triangles
func (e *Engine) degenerate(env *zygo.Zlisp, b soup.Batch, pa kwArgs) (zygo.Sexp, error) {
	height := e.soup.Tolerance().Merge
	if v, ok := pa.kw["height"]; ok {
		h, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("height: %w", err)
		}
		height = h
	}
	ok := e.soup.NondegenerateHeight(b, height)
	var items []zygo.Sexp
	for i, good := range ok {
		if !good {
			items = append(items, sexpInt(i))
		}
	}
	return sexpArray(env, items), nil
}

// (all-coplanar s)
func (e *Engine) allCoplanar(env *zygo.Zlisp, b soup.Batch, pa kwArgs) (zygo.Sexp, error) {
	ok, err := e.soup.AllCoplanar(b)
	if err != nil {
		return zygo.SexpNull, err
	}
	return sexpBool(ok), nil
}

// (any-coplanar s)
func (e *Engine) anyCoplanar(env *zygo.Zlisp, b soup.Batch, pa kwArgs) (zygo.Sexp, error) {
	ok, err := e.soup.AnyCoplanar(b)
	if err != nil {
		return zygo.SexpNull, err
	}
	return sexpBool(ok), nil
}

// (flat s), coplanarity at the planar tolerance
func (e *Engine) flat(env *zygo.Zlisp, b soup.Batch, pa kwArgs) (zygo.Sexp, error) {
	ok, err := e.soup.Flat(b)
	if err != nil {
		return zygo.SexpNull, err
	}
	return sexpBool(ok), nil
}

// (inspect s)
func (e *Engine) inspect(env *zygo.Zlisp, b soup.Batch, pa kwArgs) (zygo.Sexp, error) {
	return &sexpReport{report: inspect.Run(e.soup, b)}, nil
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// nearest runs a whole-soup closest point query for the point argument.
func (e *Engine) nearest(b soup.Batch, pa kwArgs) (proximity.Result, error) {
	pt := pa.arg("point", 0)
	if pt == nil {
		return proximity.Result{}, fmt.Errorf("requires a query point")
	}
	p, err := toVec3(pt)
	if err != nil {
		return proximity.Result{}, fmt.Errorf("point: %w", err)
	}
	q, err := proximity.New(e.soup, b, nil)
	if err != nil {
		return proximity.Result{}, err
	}
	return q.Closest([]v3.Vec{p})
}

// (closest s (vec3 x y z))
func (e *Engine) closest(env *zygo.Zlisp, b soup.Batch, pa kwArgs) (zygo.Sexp, error) {
	res, err := e.nearest(b, pa)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpVec3{vec: res.Points[0]}, nil
}

// (distance s (vec3 x y z))
func (e *Engine) distance(env *zygo.Zlisp, b soup.Batch, pa kwArgs) (zygo.Sexp, error) {
	res, err := e.nearest(b, pa)
	if err != nil {
		return zygo.SexpNull, err
	}
	return sexpFloat(res.Distances[0]), nil
}

// (barycentric t (vec3 x y z) :method :cross)
func (e *Engine) barycentric(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 2 {
		return zygo.SexpNull, fmt.Errorf("barycentric requires a tri and a point")
	}
	t, err := toTriangle(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("barycentric: %w", err)
	}
	p, err := toVec3(pa.positional[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("barycentric: point: %w", err)
	}
	method := soup.Cramer
	if v, ok := pa.kw["method"]; ok {
		s, err := toKeywordString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("barycentric: method: %w", err)
		}
		if method, err = soup.ParseBarycentricMethod(s); err != nil {
			return zygo.SexpNull, fmt.Errorf("barycentric: %w", err)
		}
	}
	bary, err := soup.PointsToBarycentric(soup.Batch{t}, []v3.Vec{p}, method)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("barycentric: %w", err)
	}
	return sexpFloats(env, bary[0][:]), nil
}
