package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/satchel-db/satchel/document"
	"github.com/satchel-db/satchel/driver"
)

func toSortSpec(opts []driver.SortOption) bson.D {
	spec := make(bson.D, 0, len(opts))
	for _, opt := range opts {
		dir := 1
		if opt.Direction < 0 {
			dir = -1
		}
		spec = append(spec, bson.E{Key: opt.Field, Value: dir})
	}
	return spec
}

// toDocument converts a decoded bson document into the facade's
// canonical in-memory form. ObjectID values pass through untouched,
// since oid.ID is the bson ObjectID.
func toDocument(raw bson.M) *document.Document {
	fields, _ := fromValue(raw).(map[string]interface{})
	return document.FromMap(fields)
}

func fromValue(v interface{}) interface{} {
	switch v := v.(type) {
	case bson.M:
		m := make(map[string]interface{}, len(v))
		for k, e := range v {
			m[k] = fromValue(e)
		}
		return m
	case bson.D:
		m := make(map[string]interface{}, len(v))
		for _, e := range v {
			m[e.Key] = fromValue(e.Value)
		}
		return m
	case bson.A:
		s := make([]interface{}, len(v))
		for i, e := range v {
			s[i] = fromValue(e)
		}
		return s
	case primitive.DateTime:
		return v.Time()
	case int32:
		return int64(v)
	}
	return v
}
