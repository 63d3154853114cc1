package internal

import "sort"

// CopyMap returns a copy of m where nested maps are copied as well.
// Non-map values are shared with the original.
func CopyMap(m map[string]interface{}) map[string]interface{} {
	mapCopy := make(map[string]interface{}, len(m))
	for k, v := range m {
		if mapValue, ok := v.(map[string]interface{}); ok {
			mapCopy[k] = CopyMap(mapValue)
		} else {
			mapCopy[k] = v
		}
	}
	return mapCopy
}

// MapKeys returns the keys of m in lexicographic order.
func MapKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func IsNumber(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

func IsFloat(v interface{}) bool {
	switch v.(type) {
	case float32, float64:
		return true
	default:
		return false
	}
}

func ToFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	panic("not a number")
}

func ToInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	}
	panic("not an integer")
}

func BoolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
