package internal

import (
	"errors"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/satchel-db/satchel/oid"
)

// ErrStopIteration signals early termination of a document scan.
// It is never surfaced to callers.
var ErrStopIteration = errors.New("stop iteration")

// Identifier values are persisted in extended-JSON style, as a
// single-key map {"$oid": <hex>}, and restored on decode.
const oidKey = "$oid"

// Encode serializes a field map with msgpack.
func Encode(fields map[string]interface{}) ([]byte, error) {
	return msgpack.Marshal(packValue(fields))
}

// Decode deserializes data previously produced by Encode.
func Decode(data []byte) (map[string]interface{}, error) {
	var m map[string]interface{}
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	fields, _ := unpackValue(m).(map[string]interface{})
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return fields, nil
}

func packValue(v interface{}) interface{} {
	switch v := v.(type) {
	case oid.ID:
		return map[string]interface{}{oidKey: v.Hex()}
	case map[string]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, e := range v {
			m[k] = packValue(e)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(v))
		for i, e := range v {
			s[i] = packValue(e)
		}
		return s
	}
	return v
}

func unpackValue(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		if hex, ok := v[oidKey].(string); ok && len(v) == 1 {
			if id, err := oid.FromHex(hex); err == nil {
				return id
			}
		}
		m := make(map[string]interface{}, len(v))
		for k, e := range v {
			m[k] = unpackValue(e)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(v))
		for i, e := range v {
			s[i] = unpackValue(e)
		}
		return s
	}
	return v
}
