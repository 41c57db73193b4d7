package viewstate

import (
	"encoding/json"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// defaultDocument is shared read-only; DefaultDocument hands out copies.
// The field names are a contract with the web client.
var defaultDocument = mustValue(map[string]any{
	"currentMode":    "columns",
	"kanbanGrouping": "status",
	"taskView":       "list",
	"filters": map[string]any{
		"priority":      "all",
		"tags":          []any{},
		"showCompleted": false,
	},
})

func mustValue(v any) *structpb.Value {
	value, err := structpb.NewValue(v)
	if err != nil {
		panic(err)
	}
	return value
}

// DefaultDocument returns a fresh copy of the document used when a user has nothing stored.
func DefaultDocument() *structpb.Value {
	return proto.Clone(defaultDocument).(*structpb.Value)
}

// Merge applies source onto target and returns the result; neither argument is modified.
//
// When source is an object, the result starts as a shallow copy of target's fields
// (none if target is not an object) and every key of source is written into it:
// object values recurse, anything else (scalars, null, arrays) overwrites.
// A source that is not an object has no keys to apply, so the result is a copy of target.
func Merge(target, source *structpb.Value) *structpb.Value {
	src := source.GetStructValue()
	if src == nil {
		return proto.Clone(normalize(target)).(*structpb.Value)
	}

	fields := make(map[string]*structpb.Value)
	if base := target.GetStructValue(); base != nil {
		for key, value := range base.GetFields() {
			fields[key] = value
		}
	}
	for key, value := range src.GetFields() {
		if value.GetStructValue() != nil {
			fields[key] = Merge(fields[key], value)
			continue
		}
		fields[key] = normalize(value)
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}

// normalize turns a nil or kindless value into JSON null.
func normalize(v *structpb.Value) *structpb.Value {
	if v == nil || v.GetKind() == nil {
		return structpb.NewNullValue()
	}
	return v
}

// ParseDocument decodes a JSON document of any shape.
// Duplicate object keys are accepted and the last one wins.
func ParseDocument(data []byte) (*structpb.Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "invalid JSON document")
	}
	doc, err := structpb.NewValue(raw)
	if err != nil {
		return nil, errors.Wrap(err, "invalid JSON document")
	}
	return doc, nil
}

// MarshalDocument encodes a document as JSON.
func MarshalDocument(doc *structpb.Value) ([]byte, error) {
	data, err := protojson.Marshal(normalize(doc))
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal document")
	}
	return data, nil
}
