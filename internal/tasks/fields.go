package tasks

import (
	"fmt"
	"math"
)

// Field extraction helpers for reasoner results. A missing required field,
// a wrong type, or an out-of-range value is an invocation error: the task
// fails rather than accepting a partially valid payload.

func getFloat64Field(obj map[string]any, key string, required bool) (float64, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		if required {
			return 0, fmt.Errorf("missing required field %q", key)
		}
		return 0, nil
	}

	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("field %q is %T, want number", key, v)
	}
}

func getFloat64FieldInRange(obj map[string]any, key string, min, max float64) (float64, error) {
	v, err := getFloat64Field(obj, key, true)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || v < min || v > max {
		return 0, fmt.Errorf("field %q value %v outside [%v,%v]", key, v, min, max)
	}
	return v, nil
}

func getIntField(obj map[string]any, key string, required bool) (int, error) {
	v, err := getFloat64Field(obj, key, required)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("field %q value %v is not an integer", key, v)
	}
	return int(v), nil
}

func getStringField(obj map[string]any, key string, required bool) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, want string", key, v)
	}
	if required && s == "" {
		return "", fmt.Errorf("field %q is empty", key)
	}
	return s, nil
}

func getStringSliceField(obj map[string]any, key string, required bool) ([]string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		if required {
			return nil, fmt.Errorf("missing required field %q", key)
		}
		return nil, nil
	}

	// JSON decoding yields []any even for homogeneous arrays.
	items, ok := v.([]any)
	if !ok {
		if ss, ok := v.([]string); ok {
			return ss, nil
		}
		return nil, fmt.Errorf("field %q is %T, want array of strings", key, v)
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("field %q element %d is %T, want string", key, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func getObjectSliceField(obj map[string]any, key string, required bool) ([]map[string]any, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		if required {
			return nil, fmt.Errorf("missing required field %q", key)
		}
		return nil, nil
	}

	items, ok := v.([]any)
	if !ok {
		if ms, ok := v.([]map[string]any); ok {
			return ms, nil
		}
		return nil, fmt.Errorf("field %q is %T, want array of objects", key, v)
	}

	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q element %d is %T, want object", key, i, item)
		}
		out = append(out, m)
	}
	return out, nil
}

func getNumberMapField(obj map[string]any, key string, required bool) (map[string]float64, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		if required {
			return nil, fmt.Errorf("missing required field %q", key)
		}
		return nil, nil
	}

	m, ok := v.(map[string]any)
	if !ok {
		if fm, ok := v.(map[string]float64); ok {
			return fm, nil
		}
		return nil, fmt.Errorf("field %q is %T, want object of numbers", key, v)
	}

	out := make(map[string]float64, len(m))
	for k, item := range m {
		switch n := item.(type) {
		case float64:
			out[k] = n
		case int:
			out[k] = float64(n)
		default:
			return nil, fmt.Errorf("field %q entry %q is %T, want number", key, k, item)
		}
	}
	return out, nil
}
