package toolreg

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Validation is the outcome of checking raw arguments against a schema.
// Errors holds every violation found in one pass, never just the first,
// so a single rejected call reports all problems simultaneously.
// Sanitized holds the coerced values and is what reaches the tool body.
type Validation struct {
	Valid     bool
	Errors    []string
	Sanitized map[string]any
}

// ValidateParams checks params against schema, accumulating all violations.
// Best-effort coercion happens before type-checking: a string "123" becomes
// the number 123 when the property expects one, "true"/"false" become
// booleans. Numeric bounds and enum membership are re-checked against the
// coerced value, not the raw input.
func ValidateParams(params map[string]any, schema *Schema) Validation {
	v := Validation{Sanitized: make(map[string]any, len(params))}

	if schema == nil || schema.Properties == nil {
		// An unschema'd tool accepts whatever it was given.
		for k, val := range params {
			v.Sanitized[k] = val
		}
		v.Valid = true
		return v
	}

	for _, name := range schema.Required {
		if _, ok := params[name]; !ok {
			v.Errors = append(v.Errors, fmt.Sprintf("missing required parameter %q", name))
		}
	}

	for name, prop := range schema.Properties {
		raw, ok := params[name]
		if !ok {
			continue
		}

		coerced, err := coerce(raw, prop)
		if err != nil {
			v.Errors = append(v.Errors, fmt.Sprintf("parameter %q: %v", name, err))
			continue
		}

		if err := checkBounds(coerced, prop); err != nil {
			v.Errors = append(v.Errors, fmt.Sprintf("parameter %q: %v", name, err))
			continue
		}
		if err := checkEnum(coerced, prop); err != nil {
			v.Errors = append(v.Errors, fmt.Sprintf("parameter %q: %v", name, err))
			continue
		}

		v.Sanitized[name] = coerced
	}

	v.Valid = len(v.Errors) == 0
	return v
}

func coerce(raw any, prop *Property) (any, error) {
	if prop == nil || prop.Type == "" {
		return raw, nil
	}

	switch prop.Type {
	case "string":
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return s, nil

	case "number":
		return coerceNumber(raw)

	case "integer":
		n, err := coerceNumber(raw)
		if err != nil {
			return nil, err
		}
		if n != math.Trunc(n) {
			return nil, fmt.Errorf("expected integer, got %v", n)
		}
		return n, nil

	case "boolean":
		switch t := raw.(type) {
		case bool:
			return t, nil
		case string:
			switch strings.ToLower(strings.TrimSpace(t)) {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
			return nil, fmt.Errorf("expected boolean, got %q", t)
		default:
			return nil, fmt.Errorf("expected boolean, got %T", raw)
		}

	case "array":
		arr, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("expected array, got %T", raw)
		}
		return arr, nil

	case "object":
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected object, got %T", raw)
		}
		return obj, nil

	default:
		return raw, nil
	}
}

func coerceNumber(raw any) (float64, error) {
	switch t := raw.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", raw)
	}
}

func checkBounds(val any, prop *Property) error {
	n, ok := val.(float64)
	if !ok {
		return nil
	}
	if prop.Minimum != nil && n < *prop.Minimum {
		return fmt.Errorf("value %v below minimum %v", n, *prop.Minimum)
	}
	if prop.Maximum != nil && n > *prop.Maximum {
		return fmt.Errorf("value %v above maximum %v", n, *prop.Maximum)
	}
	return nil
}

func checkEnum(val any, prop *Property) error {
	if len(prop.Enum) == 0 {
		return nil
	}
	for _, allowed := range prop.Enum {
		if enumEqual(val, allowed) {
			return nil
		}
	}
	return fmt.Errorf("value %v not in enum", val)
}

func enumEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
