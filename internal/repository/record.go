package repository

import "time"

// Typed accessors over the generic Record shape. The backing client returns
// driver-native values, so numeric columns may arrive as any integer or
// float width.

func recString(r Record, key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

func recBool(r Record, key string) bool {
	if v, ok := r[key].(bool); ok {
		return v
	}
	return false
}

func recInt64(r Record, key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func recInt64Ptr(r Record, key string) *int64 {
	if r[key] == nil {
		return nil
	}
	v := recInt64(r, key)
	return &v
}

func recFloat64(r Record, key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func recTime(r Record, key string) time.Time {
	if v, ok := r[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}

func recTimePtr(r Record, key string) *time.Time {
	if v, ok := r[key].(time.Time); ok {
		return &v
	}
	return nil
}

func recStringPtr(r Record, key string) *string {
	if v, ok := r[key].(string); ok {
		return &v
	}
	return nil
}
