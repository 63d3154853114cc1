package internal

import (
	"bytes"
	"math/big"
	"strings"
	"time"

	"github.com/satchel-db/satchel/oid"
)

// Type ranks used when comparing values of different types, so that sort
// order over mixed-type fields is total and stable.
const (
	typeNil = iota
	typeNumber
	typeString
	typeObjectID
	typeMap
	typeSlice
	typeBool
	typeTime
)

func typeRank(v interface{}) int {
	if IsNumber(v) {
		return typeNumber
	}

	switch v.(type) {
	case nil:
		return typeNil
	case string:
		return typeString
	case oid.ID:
		return typeObjectID
	case map[string]interface{}:
		return typeMap
	case []interface{}:
		return typeSlice
	case bool:
		return typeBool
	case time.Time:
		return typeTime
	}
	return typeNil
}

func compareSlices(s1 []interface{}, s2 []interface{}) int {
	for i := 0; i < len(s1) && i < len(s2); i++ {
		if res := Compare(s1[i], s2[i]); res != 0 {
			return res
		}
	}
	return len(s1) - len(s2)
}

func compareNumbers(v1 interface{}, v2 interface{}) int {
	if IsFloat(v1) || IsFloat(v2) {
		return big.NewFloat(ToFloat64(v1)).Cmp(big.NewFloat(ToFloat64(v2)))
	}

	n1, n2 := ToInt64(v1), ToInt64(v2)
	switch {
	case n1 < n2:
		return -1
	case n1 > n2:
		return 1
	}
	return 0
}

func compareMaps(m1 map[string]interface{}, m2 map[string]interface{}) int {
	m1Keys := MapKeys(m1)
	m2Keys := MapKeys(m2)

	for i := 0; i < len(m1Keys) && i < len(m2Keys); i++ {
		if res := strings.Compare(m1Keys[i], m2Keys[i]); res != 0 {
			return res
		}
		if res := Compare(m1[m1Keys[i]], m2[m2Keys[i]]); res != 0 {
			return res
		}
	}
	return len(m1Keys) - len(m2Keys)
}

// Compare establishes a total order over normalized field values.
// Values of different types are ordered by type rank.
func Compare(v1 interface{}, v2 interface{}) int {
	if res := typeRank(v1) - typeRank(v2); res != 0 {
		return res
	}

	if IsNumber(v1) && IsNumber(v2) {
		return compareNumbers(v1, v2)
	}

	switch t1 := v1.(type) {
	case nil:
		return 0
	case string:
		return strings.Compare(t1, v2.(string))
	case oid.ID:
		id2 := v2.(oid.ID)
		return bytes.Compare(t1[:], id2[:])
	case bool:
		return BoolToInt(t1) - BoolToInt(v2.(bool))
	case time.Time:
		t2 := v2.(time.Time)
		switch {
		case t1.Before(t2):
			return -1
		case t1.After(t2):
			return 1
		}
		return 0
	case []interface{}:
		return compareSlices(t1, v2.([]interface{}))
	case map[string]interface{}:
		return compareMaps(t1, v2.(map[string]interface{}))
	}
	return 0
}
