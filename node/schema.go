package node

import (
	"fmt"
	"math"

	"github.com/BaSui01/mediaflow/assets"
)

// ParamKind is the declared type of a node parameter.
type ParamKind string

const (
	ParamString ParamKind = "string"
	ParamInt    ParamKind = "int"
	ParamFloat  ParamKind = "float"
	ParamBool   ParamKind = "bool"
	ParamEnum   ParamKind = "enum"
)

// ParamSpec declares one parameter of a model: its type, default and
// constraints. Out-of-range numeric values are clamped, not rejected, so a
// host graph built against older limits keeps executing.
type ParamSpec struct {
	Name        string
	Kind        ParamKind
	Required    bool
	Default     any
	Min, Max    *float64 // numeric bounds; nil means unbounded
	Enum        []string // allowed values for ParamEnum
	Description string
}

// InputSpec declares one input asset slot.
type InputSpec struct {
	Name        string
	Kind        assets.Kind
	Required    bool
	Description string
}

// OutputSpec declares one output asset slot.
type OutputSpec struct {
	Name        string
	Kind        assets.Kind
	Description string
}

// NormalizeParams validates raw parameter values against the schema and
// returns a complete parameter map: unknown names are rejected, missing
// values are filled from defaults, numerics are coerced and clamped, enum
// membership is enforced.
func NormalizeParams(specs []ParamSpec, raw map[string]any) (map[string]any, error) {
	byName := make(map[string]*ParamSpec, len(specs))
	for i := range specs {
		byName[specs[i].Name] = &specs[i]
	}

	for name := range raw {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("unknown parameter %q", name)
		}
	}

	out := make(map[string]any, len(specs))
	for i := range specs {
		spec := &specs[i]
		value, present := raw[spec.Name]
		if !present || value == nil {
			if spec.Default != nil {
				out[spec.Name] = spec.Default
				continue
			}
			if spec.Required {
				return nil, fmt.Errorf("missing required parameter %q", spec.Name)
			}
			continue
		}

		normalized, err := normalizeValue(spec, value)
		if err != nil {
			return nil, err
		}
		out[spec.Name] = normalized
	}
	return out, nil
}

func normalizeValue(spec *ParamSpec, value any) (any, error) {
	switch spec.Kind {
	case ParamString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("parameter %q: expected string, got %T", spec.Name, value)
		}
		return s, nil

	case ParamEnum:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("parameter %q: expected string, got %T", spec.Name, value)
		}
		for _, allowed := range spec.Enum {
			if s == allowed {
				return s, nil
			}
		}
		return nil, fmt.Errorf("parameter %q: %q is not one of %v", spec.Name, s, spec.Enum)

	case ParamBool:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("parameter %q: expected bool, got %T", spec.Name, value)
		}
		return b, nil

	case ParamInt:
		f, ok := toFloat(value)
		if !ok {
			return nil, fmt.Errorf("parameter %q: expected integer, got %T", spec.Name, value)
		}
		return int(math.Round(spec.clamp(f))), nil

	case ParamFloat:
		f, ok := toFloat(value)
		if !ok {
			return nil, fmt.Errorf("parameter %q: expected number, got %T", spec.Name, value)
		}
		return spec.clamp(f), nil

	default:
		return nil, fmt.Errorf("parameter %q: unsupported kind %q", spec.Name, spec.Kind)
	}
}

// clamp bounds a numeric value to the declared range.
func (p *ParamSpec) clamp(f float64) float64 {
	if p.Min != nil && f < *p.Min {
		f = *p.Min
	}
	if p.Max != nil && f > *p.Max {
		f = *p.Max
	}
	return f
}

// toFloat coerces the numeric representations JSON decoding produces.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Float reads a normalized float parameter, falling back to def.
func Float(params map[string]any, name string, def float64) float64 {
	if v, ok := params[name]; ok {
		if f, ok := toFloat(v); ok {
			return f
		}
	}
	return def
}

// Int reads a normalized integer parameter, falling back to def.
func Int(params map[string]any, name string, def int) int {
	if v, ok := params[name]; ok {
		if f, ok := toFloat(v); ok {
			return int(math.Round(f))
		}
	}
	return def
}

// String reads a normalized string parameter, falling back to def.
func String(params map[string]any, name, def string) string {
	if v, ok := params[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool reads a normalized bool parameter, falling back to def.
func Bool(params map[string]any, name string, def bool) bool {
	if v, ok := params[name]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Ptr is a convenience for declaring Min/Max bounds in catalog tables.
func Ptr(f float64) *float64 { return &f }
