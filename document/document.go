// Package document implements the schemaless document type exchanged
// with the store.
package document

import (
	"strings"

	"github.com/satchel-db/satchel/internal"
	"github.com/satchel-db/satchel/oid"
)

// IDField is the reserved field holding the document identifier.
const IDField = "_id"

// Document represents a document as an unordered mapping from field
// names to values. Nested fields are addressed with dot notation.
type Document struct {
	fields map[string]interface{}
}

// New creates a new empty document.
func New() *Document {
	return &Document{
		fields: make(map[string]interface{}),
	}
}

// NewDocumentOf creates a document initialized with the content of the
// provided object (a string-keyed map or a struct, honoring "satchel"
// tags). It returns nil if the object cannot be converted.
func NewDocumentOf(o interface{}) *Document {
	normalized, _ := internal.Normalize(o)
	fields, _ := normalized.(map[string]interface{})
	if fields == nil {
		return nil
	}
	return &Document{fields: fields}
}

// FromMap wraps an already normalized field map without copying it.
func FromMap(fields map[string]interface{}) *Document {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return &Document{fields: fields}
}

// ID returns the identifier of the document, or oid.Nil if the document
// has not been persisted yet.
func (doc *Document) ID() oid.ID {
	id, _ := doc.fields[IDField].(oid.ID)
	return id
}

// HasID reports whether the document carries an identifier.
func (doc *Document) HasID() bool {
	_, ok := doc.fields[IDField].(oid.ID)
	return ok
}

// SetID stores the identifier into the document.
func (doc *Document) SetID(id oid.ID) {
	doc.fields[IDField] = id
}

func lookupField(name string, fieldMap map[string]interface{}, force bool) (map[string]interface{}, interface{}, string) {
	fields := strings.Split(name, ".")

	var exists bool
	var f interface{}
	currMap := fieldMap
	for i, field := range fields {
		f, exists = currMap[field]

		m, isMap := f.(map[string]interface{})

		if force {
			if (!exists || !isMap) && i < len(fields)-1 {
				m = make(map[string]interface{})
				currMap[field] = m
				f = m
			}
		} else if !exists {
			return nil, nil, ""
		}

		if i < len(fields)-1 {
			currMap = m
		}
	}
	return currMap, f, fields[len(fields)-1]
}

// Has reports whether the document contains a field with the supplied name.
func (doc *Document) Has(name string) bool {
	fieldMap, _, _ := lookupField(name, doc.fields, false)
	return fieldMap != nil
}

// Get retrieves the value of a field. Nested fields can be accessed using dot.
func (doc *Document) Get(name string) interface{} {
	_, v, _ := lookupField(name, doc.fields, false)
	return v
}

// Set maps a field to a value. Nested fields can be accessed using dot.
func (doc *Document) Set(name string, value interface{}) {
	normalizedValue, err := internal.Normalize(value)
	if err == nil {
		m, _, fieldName := lookupField(name, doc.fields, true)
		m[fieldName] = normalizedValue
	}
}

// SetAll sets each field in the input map to the corresponding value.
func (doc *Document) SetAll(values map[string]interface{}) {
	for field, value := range values {
		doc.Set(field, value)
	}
}

// Delete removes a field from the document, if present.
func (doc *Document) Delete(name string) {
	m, _, fieldName := lookupField(name, doc.fields, false)
	if m != nil {
		delete(m, fieldName)
	}
}

// Copy returns a copy of the document. Nested maps are copied, other
// values are shared.
func (doc *Document) Copy() *Document {
	return &Document{
		fields: internal.CopyMap(doc.fields),
	}
}

// ToMap returns a copy of the underlying field map.
func (doc *Document) ToMap() map[string]interface{} {
	return internal.CopyMap(doc.fields)
}

// Fields returns a lexicographically sorted slice of the top-level
// field names of the document.
func (doc *Document) Fields() []string {
	return internal.MapKeys(doc.fields)
}

// Unmarshal stores the document in the value pointed by v.
func (doc *Document) Unmarshal(v interface{}) error {
	return internal.Convert(doc.fields, v)
}

// Decode deserializes a document previously produced by Encode.
func Decode(data []byte) (*Document, error) {
	fields, err := internal.Decode(data)
	if err != nil {
		return nil, err
	}
	return &Document{fields: fields}, nil
}

// Encode serializes the document for storage.
func Encode(doc *Document) ([]byte, error) {
	return internal.Encode(doc.fields)
}
