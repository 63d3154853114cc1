package document

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satchel-db/satchel/oid"
)

func TestDocumentSetGet(t *testing.T) {
	doc := New()
	doc.Set("title", "groceries")
	doc.Set("meta.owner", "ada")
	doc.Set("meta.priority", 2)

	require.Equal(t, "groceries", doc.Get("title"))
	require.Equal(t, "ada", doc.Get("meta.owner"))
	require.EqualValues(t, 2, doc.Get("meta.priority"))
	require.True(t, doc.Has("meta.owner"))
	require.Nil(t, doc.Get("meta.missing"))
}

func TestDocumentDelete(t *testing.T) {
	doc := New()
	doc.Set("a", 1)
	doc.Set("nested.b", 2)

	doc.Delete("a")
	doc.Delete("nested.b")
	doc.Delete("never.there")

	require.Nil(t, doc.Get("a"))
	require.Nil(t, doc.Get("nested.b"))
}

func TestDocumentID(t *testing.T) {
	doc := New()
	require.False(t, doc.HasID())
	require.Equal(t, oid.Nil, doc.ID())

	id := oid.New()
	doc.SetID(id)
	require.True(t, doc.HasID())
	require.Equal(t, id, doc.ID())
}

func TestDocumentCopyIsIndependent(t *testing.T) {
	doc := New()
	doc.Set("a", 1)
	doc.Set("nested.b", 2)

	cp := doc.Copy()
	cp.Set("a", 10)
	cp.Set("nested.b", 20)

	require.EqualValues(t, 1, doc.Get("a"))
	require.EqualValues(t, 2, doc.Get("nested.b"))
}

func TestNewDocumentOf(t *testing.T) {
	type address struct {
		City string `satchel:"city"`
	}
	type person struct {
		Name    string  `satchel:"name"`
		Age     int     `satchel:"age"`
		Nick    string  `satchel:"nick,omitempty"`
		Address address `satchel:"address"`
	}

	doc := NewDocumentOf(person{Name: "ada", Age: 36, Address: address{City: "london"}})
	require.NotNil(t, doc)
	require.Equal(t, "ada", doc.Get("name"))
	require.EqualValues(t, 36, doc.Get("age"))
	require.Equal(t, "london", doc.Get("address.city"))
	require.False(t, doc.Has("nick"))

	require.Nil(t, NewDocumentOf("not a document"))
}

func TestDocumentUnmarshal(t *testing.T) {
	type person struct {
		Name string `satchel:"name"`
		Age  int    `satchel:"age"`
	}

	doc := New()
	doc.Set("name", "ada")
	doc.Set("age", 36)

	var p person
	require.NoError(t, doc.Unmarshal(&p))
	require.Equal(t, "ada", p.Name)
	require.Equal(t, 36, p.Age)
}

func TestDocumentEncodeDecode(t *testing.T) {
	doc := New()
	doc.SetID(oid.New())
	doc.Set("name", "ada")
	doc.Set("tags", []string{"x", "y"})
	doc.Set("ref", oid.New())

	data, err := Encode(doc)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	require.Equal(t, doc.ID(), decoded.ID())
	require.Equal(t, doc.Get("ref"), decoded.Get("ref"))
	require.Equal(t, "ada", decoded.Get("name"))
	require.Equal(t, []interface{}{"x", "y"}, decoded.Get("tags"))
}
