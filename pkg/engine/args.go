package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/trisoup/pkg/soup"
)

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string and returns its
// name without the prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			// trailing keyword with no value is a flag
			result.kw[name] = zygo.SexpNull
			i++
		}
	}
	return result
}

// arg returns the keyword argument name if present, else positional
// argument pos, else nil.
func (a kwArgs) arg(name string, pos int) zygo.Sexp {
	if v, ok := a.kw[name]; ok {
		return v
	}
	if pos >= 0 && pos < len(a.positional) {
		return a.positional[pos]
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %s", describe(s))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toVec3 extracts a vector from a vec3 or a 3-element list of numbers.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil || len(items) != 3 {
		return v3.Vec{}, fmt.Errorf("expected vec3, got %s", describe(s))
	}
	var xyz [3]float64
	for i, item := range items {
		if xyz[i], err = toFloat64(item); err != nil {
			return v3.Vec{}, err
		}
	}
	return v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// toTriangle extracts a triangle from a tri or a single-triangle soup.
func toTriangle(s zygo.Sexp) (soup.Triangle, error) {
	switch v := s.(type) {
	case *sexpTri:
		return v.tri, nil
	case *sexpSoup:
		if len(v.batch) == 1 {
			return v.batch[0], nil
		}
	}
	return soup.Triangle{}, fmt.Errorf("expected tri, got %s", describe(s))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %s", describe(s))
}

// describe names a Sexp for error messages.
func describe(s zygo.Sexp) string {
	if s == nil {
		return "nothing"
	}
	return fmt.Sprintf("%T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Result constructors
// ---------------------------------------------------------------------------

func sexpFloat(f float64) zygo.Sexp {
	return &zygo.SexpFloat{Val: f}
}

func sexpInt(n int) zygo.Sexp {
	return &zygo.SexpInt{Val: int64(n)}
}

func sexpBool(b bool) zygo.Sexp {
	return &zygo.SexpBool{Val: b}
}

func sexpArray(env *zygo.Zlisp, items []zygo.Sexp) zygo.Sexp {
	return &zygo.SexpArray{Val: items, Env: env}
}

func sexpFloats(env *zygo.Zlisp, fs []float64) zygo.Sexp {
	items := make([]zygo.Sexp, len(fs))
	for i, f := range fs {
		items[i] = sexpFloat(f)
	}
	return sexpArray(env, items)
}
