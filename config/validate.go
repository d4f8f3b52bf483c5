package config

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/corral-dev/corral-host-sdk/registry"
)

// ValidationError describes one failed config block.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationResult aggregates the outcome of validating a Config.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// Validate checks every provider block against the schema registered for
// its kind/provider pair. An unknown pair is a validation error, not a
// hard failure.
func Validate(cfg *Config, reg registry.SchemaRegistry) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true}

	for kind, block := range cfg.Capabilities {
		key := schemaKey(kind, block.Provider)

		schemaStr, ok := reg.GetSchema(key)
		if !ok {
			result.Errors = append(result.Errors, ValidationError{
				Field:   kind,
				Message: fmt.Sprintf("no schema registered for %s", key),
			})
			continue
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(key, strings.NewReader(schemaStr)); err != nil {
			return nil, fmt.Errorf("failed to add schema resource for %s: %w", key, err)
		}
		sch, err := compiler.Compile(key)
		if err != nil {
			return nil, fmt.Errorf("invalid schema for %s: %w", key, err)
		}

		obj := normalize(block.Config)
		if err := sch.Validate(obj); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   kind,
				Message: err.Error(),
			})
		}
	}

	if len(result.Errors) > 0 {
		result.Valid = false
	}
	return result, nil
}

// normalize converts a decoded YAML block into the plain-map shape the
// schema validator expects.
func normalize(raw map[string]any) any {
	if raw == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalize(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	case int:
		// the validator works on json.Number-compatible values
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}
