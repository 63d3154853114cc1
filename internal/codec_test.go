package internal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satchel-db/satchel/oid"
)

func TestCodecRestoresIdentifiers(t *testing.T) {
	id := oid.New()
	ref := oid.New()

	data, err := Encode(map[string]interface{}{
		"_id":  id,
		"name": "ada",
		"nested": map[string]interface{}{
			"ref": ref,
		},
		"refs": []interface{}{ref},
	})
	require.NoError(t, err)

	fields, err := Decode(data)
	require.NoError(t, err)

	require.Equal(t, id, fields["_id"])
	require.Equal(t, "ada", fields["name"])

	nested := fields["nested"].(map[string]interface{})
	require.Equal(t, ref, nested["ref"])

	refs := fields["refs"].([]interface{})
	require.Equal(t, ref, refs[0])
}

func TestDecodeEmptyDocument(t *testing.T) {
	data, err := Encode(map[string]interface{}{})
	require.NoError(t, err)

	fields, err := Decode(data)
	require.NoError(t, err)
	require.Empty(t, fields)
}

func TestNormalizeValues(t *testing.T) {
	v, err := Normalize(map[string]interface{}{
		"n":    3,
		"f":    1.5,
		"s":    "x",
		"b":    true,
		"list": []int{1, 2},
	})
	require.NoError(t, err)

	m := v.(map[string]interface{})
	require.Equal(t, int64(3), m["n"])
	require.Equal(t, 1.5, m["f"])
	require.Equal(t, []interface{}{int64(1), int64(2)}, m["list"])
}

func TestNormalizeKeepsIdentifiers(t *testing.T) {
	id := oid.New()
	v, err := Normalize(id)
	require.NoError(t, err)
	require.Equal(t, id, v)
}

func TestNormalizeRejectsNonStringKeys(t *testing.T) {
	_, err := Normalize(map[int]interface{}{1: "x"})
	require.Error(t, err)
}
