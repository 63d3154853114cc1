// Package oid defines the native document identifier type and its
// canonical hexadecimal encoding.
package oid

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ID is the identifier issued by the store when a document is first
// persisted. It is the bson ObjectID, so values cross the mongo driver
// boundary without conversion.
type ID = primitive.ObjectID

// Nil is the zero identifier. A document carrying it is treated as not
// yet persisted.
var Nil ID

// New returns a freshly generated identifier.
func New() ID {
	return primitive.NewObjectID()
}

// FromHex converts the canonical hex encoding of an identifier into its
// native form. Validation is delegated to the bson primitive package.
func FromHex(s string) (ID, error) {
	return primitive.ObjectIDFromHex(s)
}

// IsValidHex reports whether s is a well-formed hex encoding of an ID.
func IsValidHex(s string) bool {
	return primitive.IsValidObjectID(s)
}
