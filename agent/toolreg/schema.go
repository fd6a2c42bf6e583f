package toolreg

// Schema is the typed parameter schema attached to a tool. It covers the
// subset of JSON Schema the function-calling API understands: an object with
// typed properties, a required list, enums, and numeric bounds.
type Schema struct {
	Type       string               `json:"type"`
	Properties map[string]*Property `json:"properties"`
	Required   []string             `json:"required,omitempty"`
}

type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []any    `json:"enum,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// ObjectSchema is a convenience constructor for the common case.
func ObjectSchema(props map[string]*Property, required ...string) *Schema {
	return &Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// ToMap projects the schema into the plain map form the function-calling
// descriptor carries on the wire.
func (s *Schema) ToMap() map[string]any {
	if s == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}

	props := make(map[string]any, len(s.Properties))
	for name, p := range s.Properties {
		props[name] = p.toMap()
	}

	out := map[string]any{
		"type":       s.Type,
		"properties": props,
	}
	if len(s.Required) > 0 {
		required := make([]any, 0, len(s.Required))
		for _, r := range s.Required {
			required = append(required, r)
		}
		out["required"] = required
	}
	return out
}

func (p *Property) toMap() map[string]any {
	if p == nil {
		return map[string]any{}
	}

	out := map[string]any{"type": p.Type}
	if p.Description != "" {
		out["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		out["enum"] = p.Enum
	}
	if p.Minimum != nil {
		out["minimum"] = *p.Minimum
	}
	if p.Maximum != nil {
		out["maximum"] = *p.Maximum
	}
	if p.Items != nil {
		out["items"] = p.Items.toMap()
	}
	return out
}

// structuralIssues reports schema shape violations. Registration logs these
// but does not reject the tool; a lenient catalog beats a dead one.
func (s *Schema) structuralIssues() []string {
	var issues []string
	if s == nil {
		return []string{"schema is nil"}
	}
	if s.Type != "object" {
		issues = append(issues, "schema type must be \"object\"")
	}
	if s.Properties == nil {
		issues = append(issues, "schema properties must exist")
	}
	for _, name := range s.Required {
		if s.Properties == nil {
			break
		}
		if _, ok := s.Properties[name]; !ok {
			issues = append(issues, "required field "+name+" has no property definition")
		}
	}
	return issues
}

func float64Ptr(v float64) *float64 {
	return &v
}

// Min and Max are schema-building helpers.
func Min(v float64) *float64 { return float64Ptr(v) }
func Max(v float64) *float64 { return float64Ptr(v) }
