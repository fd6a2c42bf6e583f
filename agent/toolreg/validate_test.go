package toolreg

import (
	"strings"
	"testing"
)

func TestValidateParamsNilSchemaPassesThrough(t *testing.T) {
	t.Parallel()

	params := map[string]any{"anything": 1, "goes": true}
	v := ValidateParams(params, nil)
	if !v.Valid {
		t.Fatalf("Valid = false, want true; errors=%v", v.Errors)
	}
	if len(v.Sanitized) != 2 {
		t.Fatalf("Sanitized = %v, want both keys kept", v.Sanitized)
	}
}

func TestValidateParamsMissingRequired(t *testing.T) {
	t.Parallel()

	schema := ObjectSchema(map[string]*Property{
		"query": {Type: "string"},
		"limit": {Type: "integer"},
	}, "query", "limit")

	v := ValidateParams(map[string]any{}, schema)
	if v.Valid {
		t.Fatalf("Valid = true, want false")
	}
	if len(v.Errors) != 2 {
		t.Fatalf("Errors = %v, want one per missing required field", v.Errors)
	}
}

func TestValidateParamsAccumulatesAllViolations(t *testing.T) {
	t.Parallel()

	schema := ObjectSchema(map[string]*Property{
		"query": {Type: "string"},
		"limit": {Type: "integer", Minimum: Min(1), Maximum: Max(20)},
		"mode":  {Type: "string", Enum: []any{"fast", "slow"}},
	}, "query")

	v := ValidateParams(map[string]any{
		"limit": 50,
		"mode":  "turbo",
	}, schema)
	if v.Valid {
		t.Fatalf("Valid = true, want false")
	}
	// missing query, limit above maximum, mode outside enum
	if len(v.Errors) != 3 {
		t.Fatalf("Errors = %v, want 3 accumulated violations", v.Errors)
	}
}

func TestValidateParamsCoercesStringNumber(t *testing.T) {
	t.Parallel()

	schema := ObjectSchema(map[string]*Property{
		"limit": {Type: "number"},
	})

	v := ValidateParams(map[string]any{"limit": "123"}, schema)
	if !v.Valid {
		t.Fatalf("Valid = false; errors=%v", v.Errors)
	}
	if got, ok := v.Sanitized["limit"].(float64); !ok || got != 123 {
		t.Fatalf("Sanitized[limit] = %#v, want float64(123)", v.Sanitized["limit"])
	}
}

func TestValidateParamsCoercesStringBoolean(t *testing.T) {
	t.Parallel()

	schema := ObjectSchema(map[string]*Property{
		"recursive": {Type: "boolean"},
	})

	for raw, want := range map[string]bool{"true": true, "false": false, " True ": true} {
		v := ValidateParams(map[string]any{"recursive": raw}, schema)
		if !v.Valid {
			t.Fatalf("raw %q: Valid = false; errors=%v", raw, v.Errors)
		}
		if got := v.Sanitized["recursive"]; got != want {
			t.Fatalf("raw %q: Sanitized = %#v, want %v", raw, got, want)
		}
	}

	v := ValidateParams(map[string]any{"recursive": "yes"}, schema)
	if v.Valid {
		t.Fatalf("raw yes: Valid = true, want false")
	}
}

func TestValidateParamsBoundsCheckedAfterCoercion(t *testing.T) {
	t.Parallel()

	schema := ObjectSchema(map[string]*Property{
		"limit": {Type: "integer", Minimum: Min(1), Maximum: Max(20)},
	})

	v := ValidateParams(map[string]any{"limit": "25"}, schema)
	if v.Valid {
		t.Fatalf("Valid = true, want bounds violation on coerced value")
	}
	if !strings.Contains(v.Errors[0], "maximum") {
		t.Fatalf("Errors = %v, want maximum violation", v.Errors)
	}

	v = ValidateParams(map[string]any{"limit": "10"}, schema)
	if !v.Valid {
		t.Fatalf("Valid = false for in-range coerced value; errors=%v", v.Errors)
	}
}

func TestValidateParamsEnumCheckedAfterCoercion(t *testing.T) {
	t.Parallel()

	schema := ObjectSchema(map[string]*Property{
		"level": {Type: "integer", Enum: []any{1, 2, 3}},
	})

	v := ValidateParams(map[string]any{"level": "2"}, schema)
	if !v.Valid {
		t.Fatalf("Valid = false; errors=%v", v.Errors)
	}

	v = ValidateParams(map[string]any{"level": "7"}, schema)
	if v.Valid {
		t.Fatalf("Valid = true, want enum violation on coerced value")
	}
}

func TestValidateParamsRejectsFractionalInteger(t *testing.T) {
	t.Parallel()

	schema := ObjectSchema(map[string]*Property{
		"count": {Type: "integer"},
	})

	v := ValidateParams(map[string]any{"count": 2.5}, schema)
	if v.Valid {
		t.Fatalf("Valid = true, want integer violation for 2.5")
	}

	v = ValidateParams(map[string]any{"count": 2.0}, schema)
	if !v.Valid {
		t.Fatalf("Valid = false for whole float; errors=%v", v.Errors)
	}
}

func TestValidateParamsTypeMismatch(t *testing.T) {
	t.Parallel()

	schema := ObjectSchema(map[string]*Property{
		"ids":  {Type: "array", Items: &Property{Type: "string"}},
		"meta": {Type: "object"},
		"name": {Type: "string"},
	})

	v := ValidateParams(map[string]any{
		"ids":  "bm-1",
		"meta": []any{},
		"name": 7,
	}, schema)
	if v.Valid {
		t.Fatalf("Valid = true, want three type violations")
	}
	if len(v.Errors) != 3 {
		t.Fatalf("Errors = %v, want 3", v.Errors)
	}
}

func TestValidateParamsUnknownKeysKeptOut(t *testing.T) {
	t.Parallel()

	schema := ObjectSchema(map[string]*Property{
		"query": {Type: "string"},
	})

	v := ValidateParams(map[string]any{"query": "go", "extra": 1}, schema)
	if !v.Valid {
		t.Fatalf("Valid = false; errors=%v", v.Errors)
	}
	if _, ok := v.Sanitized["extra"]; ok {
		t.Fatalf("Sanitized = %v, want undeclared key dropped", v.Sanitized)
	}
	if v.Sanitized["query"] != "go" {
		t.Fatalf("Sanitized[query] = %#v, want go", v.Sanitized["query"])
	}
}
