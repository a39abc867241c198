package tools

import (
	"fmt"
)

// ValidateParams checks the supplied arguments against a tool's declared
// JSON-schema parameter set: required properties must be present and
// provided values must match their declared type. It does not recurse
// into nested object schemas; tools validate their own payload shapes
// past the first level.
func ValidateParams(schema map[string]any, params map[string]any) error {
	if schema == nil {
		return nil
	}

	props, _ := schema["properties"].(map[string]any)

	if required, ok := schema["required"].([]string); ok {
		for _, name := range required {
			if _, present := params[name]; !present {
				return fmt.Errorf("missing required parameter %q", name)
			}
		}
	} else if required, ok := schema["required"].([]any); ok {
		for _, r := range required {
			name, _ := r.(string)
			if _, present := params[name]; !present {
				return fmt.Errorf("missing required parameter %q", name)
			}
		}
	}

	for name, value := range params {
		propRaw, declared := props[name]
		if !declared {
			continue
		}
		prop, _ := propRaw.(map[string]any)
		declaredType, _ := prop["type"].(string)
		if declaredType == "" || value == nil {
			continue
		}
		if !typeMatches(declaredType, value) {
			return fmt.Errorf("parameter %q must be of type %s", name, declaredType)
		}
	}
	return nil
}

// typeMatches checks a decoded JSON value against a schema type name.
// JSON numbers decode as float64, so "integer" accepts whole floats.
func typeMatches(declaredType string, value any) bool {
	switch declaredType {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		switch value.(type) {
		case float64, int:
			return true
		}
		return false
	case "integer":
		switch n := value.(type) {
		case int:
			return true
		case float64:
			return n == float64(int64(n))
		}
		return false
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}
