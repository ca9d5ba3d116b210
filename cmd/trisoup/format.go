package main

import (
	"fmt"
	"io"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/chazu/trisoup/pkg/engine"
	"github.com/chazu/trisoup/pkg/inspect"
	"github.com/chazu/trisoup/pkg/kernel"
	"github.com/chazu/trisoup/pkg/soup"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatYAML = "yaml"
)

func checkFormat(f string) error {
	switch f {
	case formatText, formatYAML:
		return nil
	}
	return errors.Errorf("unknown format %q (want %s or %s)", f, formatText, formatYAML)
}

// writeValue prints v in the requested format.
func writeValue(w io.Writer, format string, v engine.Value) error {
	if format == formatYAML {
		data, err := yaml.Marshal(plain(v))
		if err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		_, err = w.Write(data)
		return err
	}
	_, err := fmt.Fprintln(w, text(v))
	return err
}

// plain converts a script value to maps, slices and scalars.
func plain(v engine.Value) any {
	switch v := v.(type) {
	case v3.Vec:
		return []float64{v.X, v.Y, v.Z}
	case soup.Triangle:
		return [][]float64{plain(v[0]).([]float64), plain(v[1]).([]float64), plain(v[2]).([]float64)}
	case soup.Batch:
		out := make([]any, len(v))
		for i, t := range v {
			out[i] = plain(t)
		}
		return out
	case soup.MassProperties:
		m := map[string]any{
			"density":     v.Density,
			"mass":        v.Mass,
			"volume":      v.Volume,
			"center_mass": plain(v.CenterMass),
		}
		if v.Inertia != nil {
			rows := make([][]float64, 3)
			for i := range rows {
				rows[i] = []float64{v.Inertia.At(i, 0), v.Inertia.At(i, 1), v.Inertia.At(i, 2)}
			}
			m["inertia"] = rows
		}
		return m
	case inspect.Report:
		return map[string]any{
			"ok":       v.OK(),
			"volume":   v.Volume,
			"errors":   findings(v.Errors),
			"warnings": findings(v.Warnings),
		}
	case kernel.Solid:
		bb := v.Bounds()
		return map[string]any{"bounds": map[string]any{"min": plain(bb.Min), "max": plain(bb.Max)}}
	case []engine.Value:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plain(item)
		}
		return out
	}
	return v
}

func findings(fs []inspect.Finding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Error()
	}
	return out
}

// text renders v on one line, or one line per triangle for soups.
func text(v engine.Value) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case v3.Vec:
		return fmt.Sprintf("%g %g %g", v.X, v.Y, v.Z)
	case soup.Triangle:
		return fmt.Sprintf("%s | %s | %s", text(v[0]), text(v[1]), text(v[2]))
	case soup.Batch:
		lines := make([]string, len(v))
		for i, t := range v {
			lines[i] = text(t)
		}
		return strings.Join(lines, "\n")
	case soup.MassProperties:
		return fmt.Sprintf("volume %g mass %g center %s", v.Volume, v.Mass, text(v.CenterMass))
	case inspect.Report:
		return reportText(v)
	case kernel.Solid:
		bb := v.Bounds()
		return fmt.Sprintf("solid %s .. %s", text(bb.Min), text(bb.Max))
	case []engine.Value:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = text(item)
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return fmt.Sprint(v)
}

func reportText(r inspect.Report) string {
	var sb strings.Builder
	for _, f := range r.Errors {
		sb.WriteString(f.Error() + "\n")
	}
	for _, f := range r.Warnings {
		sb.WriteString(f.Error() + "\n")
	}
	if r.OK() {
		fmt.Fprintf(&sb, "ok: %d warning(s), volume %g", len(r.Warnings), r.Volume)
	} else {
		fmt.Fprintf(&sb, "failed: %d error(s)", len(r.Errors))
	}
	return sb.String()
}
