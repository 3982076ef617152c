package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
)

// Type is a schema value type.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Schema describes the JSON shape a generation must return. It converts
// to each provider's wire format and validates decoded output.
type Schema struct {
	Type        Type
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	Enum        []string
}

func Object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: required}
}

func Array(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

func String(desc string) *Schema  { return &Schema{Type: TypeString, Description: desc} }
func Number(desc string) *Schema  { return &Schema{Type: TypeNumber, Description: desc} }
func Integer(desc string) *Schema { return &Schema{Type: TypeInteger, Description: desc} }
func Boolean(desc string) *Schema { return &Schema{Type: TypeBoolean, Description: desc} }

func Enum(desc string, values ...string) *Schema {
	return &Schema{Type: TypeString, Description: desc, Enum: values}
}

// GeminiSchema is the Gemini responseSchema form (upper-case type names).
func (s *Schema) GeminiSchema() map[string]any {
	return s.convert(func(t Type) string { return strings.ToUpper(string(t)) }, false)
}

// JSONSchema is standard JSON Schema as used by OpenAI-style
// response_format.
func (s *Schema) JSONSchema() map[string]any {
	return s.convert(func(t Type) string { return string(t) }, true)
}

func (s *Schema) convert(typeName func(Type) string, closed bool) map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": typeName(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Items != nil {
		out["items"] = s.Items.convert(typeName, closed)
	}
	if s.Type == TypeObject {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.convert(typeName, closed)
		}
		out["properties"] = props
		if len(s.Required) > 0 {
			out["required"] = s.Required
		}
		if closed {
			out["additionalProperties"] = false
		}
	}
	return out
}

// PromptHint embeds the schema into a prompt for providers without native
// structured output.
func (s *Schema) PromptHint() string {
	data, err := json.MarshalIndent(s.JSONSchema(), "", "  ")
	if err != nil {
		return ""
	}
	return "Respond only with a JSON value that matches this JSON Schema. " +
		"Do not wrap it in prose.\n" + string(data)
}

// Validate checks a value decoded by encoding/json into any against the
// schema: types, required properties and enums. All violations are joined.
func (s *Schema) Validate(v any) error {
	var errs []error
	s.validate("$", v, &errs)
	return errors.Join(errs...)
}

func (s *Schema) validate(path string, v any, errs *[]error) {
	if s == nil {
		return
	}
	fail := func(format string, args ...any) {
		*errs = append(*errs, fmt.Errorf("%s: "+format, append([]any{path}, args...)...))
	}

	switch s.Type {
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			fail("expected object, got %s", kindOf(v))
			return
		}
		for _, name := range s.Required {
			if _, present := obj[name]; !present {
				fail("missing required property %q", name)
			}
		}
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if val, present := obj[name]; present && val != nil {
				s.Properties[name].validate(path+"."+name, val, errs)
			}
		}
	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			fail("expected array, got %s", kindOf(v))
			return
		}
		for i, item := range arr {
			s.Items.validate(fmt.Sprintf("%s[%d]", path, i), item, errs)
		}
	case TypeString:
		str, ok := v.(string)
		if !ok {
			fail("expected string, got %s", kindOf(v))
			return
		}
		if len(s.Enum) > 0 && !slices.Contains(s.Enum, str) {
			fail("%q is not one of %s", str, strings.Join(s.Enum, ", "))
		}
	case TypeNumber:
		if _, ok := v.(float64); !ok {
			fail("expected number, got %s", kindOf(v))
		}
	case TypeInteger:
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			fail("expected integer, got %s", kindOf(v))
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			fail("expected boolean, got %s", kindOf(v))
		}
	}
}

func kindOf(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		if x == math.Trunc(x) {
			return "integer"
		}
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
