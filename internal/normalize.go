package internal

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/satchel-db/satchel/oid"
)

func processStructTag(tagStr string) (string, bool) {
	tags := strings.Split(tagStr, ",")
	name := tags[0] // when tagStr is "", tags[0] will also be ""
	omitempty := len(tags) > 1 && tags[1] == "omitempty"
	return name, omitempty
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}

func normalizeStruct(structValue reflect.Value) (map[string]interface{}, error) {
	m := make(map[string]interface{})
	for i := 0; i < structValue.NumField(); i++ {
		fieldType := structValue.Type().Field(i)
		fieldValue := structValue.Field(i)

		if fieldType.PkgPath != "" { // unexported
			continue
		}

		fieldName := fieldType.Name
		name, omitempty := processStructTag(fieldType.Tag.Get("satchel"))
		if name != "" {
			fieldName = name
		}

		if omitempty && isEmptyValue(fieldValue) {
			continue
		}

		normalized, err := Normalize(fieldValue.Interface())
		if err != nil {
			return nil, err
		}

		if fieldType.Anonymous {
			if normalizedMap, ok := normalized.(map[string]interface{}); ok {
				for k, v := range normalizedMap {
					m[k] = v
				}
				continue
			}
		}
		m[fieldName] = normalized
	}
	return m, nil
}

func normalizeSlice(sliceValue reflect.Value) (interface{}, error) {
	if sliceValue.Type().Elem().Kind() == reflect.Uint8 {
		return sliceValue.Interface(), nil
	}

	s := make([]interface{}, 0, sliceValue.Len())
	for i := 0; i < sliceValue.Len(); i++ {
		v, err := Normalize(sliceValue.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		s = append(s, v)
	}
	return s, nil
}

func normalizeMap(mapValue reflect.Value) (map[string]interface{}, error) {
	if mapValue.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("map key type must be a string")
	}

	m := make(map[string]interface{})
	for _, key := range mapValue.MapKeys() {
		normalized, err := Normalize(mapValue.MapIndex(key).Interface())
		if err != nil {
			return nil, err
		}
		m[key.String()] = normalized
	}
	return m, nil
}

func getElemValueAndType(v interface{}) (reflect.Value, reflect.Type) {
	rv := reflect.ValueOf(v)
	rt := reflect.TypeOf(v)

	for rt.Kind() == reflect.Ptr && !rv.IsNil() {
		rt = rt.Elem()
		rv = rv.Elem()
	}
	return rv, rt
}

// Normalize converts an arbitrary value into the canonical in-memory
// representation of document fields: string-keyed maps, []interface{}
// slices, int64/uint64/float64 numbers, strings, bools, time.Time and
// oid.ID values.
func Normalize(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case oid.ID:
		return v, nil
	case time.Time:
		return v, nil
	}

	rValue, rType := getElemValueAndType(value)
	if rType.Kind() == reflect.Ptr { // nil pointer
		return nil, nil
	}

	if t, isTime := rValue.Interface().(time.Time); isTime {
		return t, nil
	}

	switch rType.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rValue.Uint(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rValue.Int(), nil
	case reflect.Float32, reflect.Float64:
		return rValue.Float(), nil
	case reflect.Struct:
		return normalizeStruct(rValue)
	case reflect.Map:
		return normalizeMap(rValue)
	case reflect.String:
		return rValue.String(), nil
	case reflect.Bool:
		return rValue.Bool(), nil
	case reflect.Slice, reflect.Array:
		if id, ok := rValue.Interface().(oid.ID); ok {
			return id, nil
		}
		return normalizeSlice(rValue)
	}
	return nil, fmt.Errorf("invalid dtype %s", rType.Name())
}

func createRenameMap(rv reflect.Value) map[string]string {
	renameMap := make(map[string]string)
	for i := 0; i < rv.NumField(); i++ {
		fieldType := rv.Type().Field(i)

		tagStr, found := fieldType.Tag.Lookup("satchel")
		if found {
			name, _ := processStructTag(tagStr)
			renameMap[name] = fieldType.Name
		}
	}
	return renameMap
}

func rename(fields map[string]interface{}, v interface{}) map[string]interface{} {
	rv := reflect.ValueOf(v)
	if rv.Type().Kind() != reflect.Struct {
		return nil
	}

	renameMap := createRenameMap(rv)
	m := make(map[string]interface{})
	for key, value := range fields {
		renamedFieldName := renameMap[key]
		if renamedFieldName != "" {
			m[renamedFieldName] = value
		} else {
			m[key] = value
		}
	}
	return m
}

func getElemType(rt reflect.Type) reflect.Type {
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	return rt
}

func renameMapKeys(m map[string]interface{}, v interface{}) map[string]interface{} {
	rv, rt := getElemValueAndType(v)
	if rt.Kind() != reflect.Struct {
		return m
	}

	renamed := rename(m, rv.Interface())
	for i := 0; i < rv.NumField(); i++ {
		sf := rv.Type().Field(i)
		fv := renamed[sf.Name]
		ft := getElemType(sf.Type)

		fMap, isMap := fv.(map[string]interface{})
		if isMap && ft.Kind() == reflect.Struct {
			renamed[sf.Name] = renameMapKeys(fMap, rv.Field(i).Interface())
		}
	}
	return renamed
}

// Convert stores the content of a field map into the value pointed by v,
// honoring "satchel" struct tags.
func Convert(m map[string]interface{}, v interface{}) error {
	renamed := renameMapKeys(m, v)

	b, err := json.Marshal(renamed)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
