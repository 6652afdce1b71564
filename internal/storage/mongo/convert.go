package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/polkiloo/rigshop/internal/storage/document"
)

// toDocument encodes v with snake_case keys, keyed by _id. A non-zero
// createdAt is stored as a BSON date so range queries compare correctly.
func toDocument(id string, v any, createdAt time.Time) (bson.M, error) {
	doc, err := document.Encode(v)
	if err != nil {
		return nil, err
	}
	delete(doc, "id")
	doc["_id"] = id
	if !createdAt.IsZero() {
		doc["created_at"] = createdAt.UTC()
	}
	return bson.M(doc), nil
}

// fromDocument decodes a stored document into dst.
func fromDocument(raw bson.M, dst any) error {
	doc, _ := normalize(raw).(map[string]any)
	if id, ok := doc["_id"]; ok {
		doc["id"] = id
		delete(doc, "_id")
	}
	return document.Decode(doc, dst)
}

// normalize replaces driver specific values with plain Go values.
func normalize(v any) any {
	switch val := v.(type) {
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.ObjectID:
		return val.Hex()
	case primitive.Decimal128:
		return val.String()
	default:
		return val
	}
}
