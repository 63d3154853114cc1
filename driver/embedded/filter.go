package embedded

import (
	"fmt"
	"sort"
	"strings"

	"github.com/satchel-db/satchel/document"
	"github.com/satchel-db/satchel/driver"
	"github.com/satchel-db/satchel/internal"
)

// matches reports whether doc satisfies every predicate in filter.
// A field condition is either a literal value (equality) or a map of
// $-operators.
func matches(doc *document.Document, filter map[string]interface{}) (bool, error) {
	for field, cond := range filter {
		if strings.HasPrefix(field, "$") {
			return false, fmt.Errorf("embedded: unsupported top-level operator %q", field)
		}

		if condMap, ok := cond.(map[string]interface{}); ok && isOperatorDoc(condMap) {
			ok, err := matchOperators(doc, field, condMap)
			if err != nil || !ok {
				return false, err
			}
			continue
		}

		want, err := internal.Normalize(cond)
		if err != nil {
			return false, err
		}
		if internal.Compare(doc.Get(field), want) != 0 {
			return false, nil
		}
	}
	return true, nil
}

func isOperatorDoc(m map[string]interface{}) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

func matchOperators(doc *document.Document, field string, conds map[string]interface{}) (bool, error) {
	got := doc.Get(field)

	for op, rawWant := range conds {
		want, err := internal.Normalize(rawWant)
		if err != nil {
			return false, err
		}

		var ok bool
		switch op {
		case "$eq":
			ok = internal.Compare(got, want) == 0
		case "$ne":
			ok = internal.Compare(got, want) != 0
		case "$gt":
			ok = internal.Compare(got, want) > 0
		case "$gte":
			ok = internal.Compare(got, want) >= 0
		case "$lt":
			ok = internal.Compare(got, want) < 0
		case "$lte":
			ok = internal.Compare(got, want) <= 0
		case "$in":
			values, isSlice := want.([]interface{})
			if !isSlice {
				return false, fmt.Errorf("embedded: $in requires an array")
			}
			for _, v := range values {
				if internal.Compare(got, v) == 0 {
					ok = true
					break
				}
			}
		case "$exists":
			wantExists, isBool := want.(bool)
			if !isBool {
				return false, fmt.Errorf("embedded: $exists requires a boolean")
			}
			ok = doc.Has(field) == wantExists
		default:
			return false, fmt.Errorf("embedded: unsupported operator %q", op)
		}

		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// applyUpdate produces the updated form of doc without modifying it.
// An update is either a plain field map (whole-document replacement) or
// a map of update operators; mixing the two is an error.
func applyUpdate(doc *document.Document, update map[string]interface{}) (*document.Document, error) {
	hasOp, hasField := false, false
	for k := range update {
		if strings.HasPrefix(k, "$") {
			hasOp = true
		} else {
			hasField = true
		}
	}
	if hasOp && hasField {
		return nil, fmt.Errorf("embedded: update mixes operators and plain fields")
	}

	// A plain field map replaces the document wholesale, keeping only
	// its identifier. Operators modify a copy field by field.
	if !hasOp {
		updated := document.New()
		updated.SetAll(update)
		if doc.HasID() {
			updated.SetID(doc.ID())
		}
		return updated, nil
	}

	updated := doc.Copy()

	for op, rawSpec := range update {
		spec, ok := rawSpec.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("embedded: update operator %q requires a document", op)
		}

		switch op {
		case "$set":
			updated.SetAll(spec)
		case "$unset":
			for field := range spec {
				updated.Delete(field)
			}
		case "$pull":
			for field, rawTarget := range spec {
				if err := pullFromField(updated, field, rawTarget); err != nil {
					return nil, err
				}
			}
		default:
			return nil, fmt.Errorf("embedded: unsupported update operator %q", op)
		}
	}
	return updated, nil
}

// pullFromField removes every element equal to target from the array
// stored at field. Non-array fields are left untouched.
func pullFromField(doc *document.Document, field string, rawTarget interface{}) error {
	arr, ok := doc.Get(field).([]interface{})
	if !ok {
		return nil
	}

	target, err := internal.Normalize(rawTarget)
	if err != nil {
		return err
	}

	kept := make([]interface{}, 0, len(arr))
	for _, el := range arr {
		if internal.Compare(el, target) != 0 {
			kept = append(kept, el)
		}
	}
	doc.Set(field, kept)
	return nil
}

func sortDocs(docs []*document.Document, opts []driver.SortOption) {
	if len(opts) == 0 {
		return
	}

	sort.SliceStable(docs, func(i, j int) bool {
		for _, opt := range opts {
			res := internal.Compare(docs[i].Get(opt.Field), docs[j].Get(opt.Field))
			if opt.Direction < 0 {
				res = -res
			}
			if res != 0 {
				return res < 0
			}
		}
		return false
	})
}
