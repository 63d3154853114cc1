package embedded

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satchel-db/satchel/document"
	"github.com/satchel-db/satchel/oid"
)

func docOf(fields map[string]interface{}) *document.Document {
	doc := document.New()
	doc.SetAll(fields)
	return doc
}

func TestMatchesEquality(t *testing.T) {
	doc := docOf(map[string]interface{}{"name": "ada", "age": 36})

	ok, err := matches(doc, map[string]interface{}{"name": "ada"})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = matches(doc, map[string]interface{}{"name": "ada", "age": 36})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = matches(doc, map[string]interface{}{"name": "bob"})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMatchesDotPath(t *testing.T) {
	doc := docOf(map[string]interface{}{
		"meta": map[string]interface{}{"owner": "ada"},
	})

	ok, err := matches(doc, map[string]interface{}{"meta.owner": "ada"})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMatchesComparisonOperators(t *testing.T) {
	doc := docOf(map[string]interface{}{"n": 5})

	cases := []struct {
		op   string
		arg  int
		want bool
	}{
		{"$gt", 4, true},
		{"$gt", 5, false},
		{"$gte", 5, true},
		{"$lt", 6, true},
		{"$lte", 4, false},
		{"$ne", 4, true},
		{"$eq", 5, true},
	}

	for _, tc := range cases {
		ok, err := matches(doc, map[string]interface{}{
			"n": map[string]interface{}{tc.op: tc.arg},
		})
		require.NoError(t, err)
		require.Equal(t, tc.want, ok, tc.op)
	}
}

func TestMatchesRejectsTopLevelOperators(t *testing.T) {
	doc := docOf(map[string]interface{}{"n": 5})

	_, err := matches(doc, map[string]interface{}{"$or": []interface{}{}})
	require.Error(t, err)
}

func TestMatchesEmptyOperatorDocIsLiteral(t *testing.T) {
	doc := docOf(map[string]interface{}{"m": map[string]interface{}{}})

	ok, err := matches(doc, map[string]interface{}{"m": map[string]interface{}{}})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestApplyUpdatePlainFieldsReplaceDocument(t *testing.T) {
	doc := docOf(map[string]interface{}{"a": 1, "b": 2})
	doc.SetID(oid.New())

	updated, err := applyUpdate(doc, map[string]interface{}{"a": 10})
	require.NoError(t, err)
	require.EqualValues(t, 10, updated.Get("a"))
	require.False(t, updated.Has("b"))
	require.Equal(t, doc.ID(), updated.ID())

	// the input document is never modified
	require.EqualValues(t, 1, doc.Get("a"))
	require.EqualValues(t, 2, doc.Get("b"))
}

func TestApplyUpdateRejectsMixedSpec(t *testing.T) {
	doc := docOf(map[string]interface{}{"a": 1})

	_, err := applyUpdate(doc, map[string]interface{}{
		"$set": map[string]interface{}{"a": 2},
		"b":    3,
	})
	require.Error(t, err)
}

func TestApplyUpdateRejectsUnknownOperator(t *testing.T) {
	doc := docOf(map[string]interface{}{"a": 1})

	_, err := applyUpdate(doc, map[string]interface{}{
		"$rename": map[string]interface{}{"a": "b"},
	})
	require.Error(t, err)
}

func TestPullIgnoresNonArrayFields(t *testing.T) {
	doc := docOf(map[string]interface{}{"a": "scalar"})

	updated, err := applyUpdate(doc, map[string]interface{}{
		"$pull": map[string]interface{}{"a": "scalar"},
	})
	require.NoError(t, err)
	require.Equal(t, "scalar", updated.Get("a"))
}
