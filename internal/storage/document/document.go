// Package document converts domain values to persisted documents. Documents
// are stored with snake_case keys while the domain and API speak camelCase.
package document

import (
	"encoding/json"
	"fmt"

	"github.com/polkiloo/rigshop/internal/pkg/casing"
)

// Encode turns v into a snake_case keyed document.
func Encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	snake, ok := casing.ToSnake(generic).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document is not an object")
	}
	return snake, nil
}

// EncodeJSON returns the snake_case document as JSON bytes.
func EncodeJSON(v any) ([]byte, error) {
	doc, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// Decode fills v from a snake_case keyed document.
func Decode(doc map[string]any, v any) error {
	raw, err := json.Marshal(casing.ToCamel(doc))
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	return nil
}

// DecodeJSON fills v from snake_case JSON bytes.
func DecodeJSON(data []byte, v any) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	return Decode(doc, v)
}
