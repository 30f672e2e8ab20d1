package models

import (
	"encoding/json"
	"fmt"
)

// ToDoc converts a model into the map form stored by the persistence layer.
// The round trip through JSON keeps field names aligned with the json tags
// and normalizes times to RFC 3339 strings, so documents written by this
// backend and by the web client stay comparable.
func ToDoc(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document into map: %w", err)
	}
	return doc, nil
}

// FromDoc decodes a stored document map into the given model pointer.
func FromDoc(doc map[string]interface{}, dst interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document map: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

// FromDocs decodes a list of documents, skipping none; any decode error
// aborts the whole conversion.
func FromDocs[T any](docs []map[string]interface{}) ([]T, error) {
	out := make([]T, 0, len(docs))
	for i, doc := range docs {
		var item T
		if err := FromDoc(doc, &item); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out = append(out, item)
	}
	return out, nil
}
