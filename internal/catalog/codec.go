package catalog

import (
	"encoding/json"
	"fmt"
)

// On disk the collection lives in a single JSON document of the shape
// {"products": [...]}, pretty-printed so it stays hand-editable.

type document struct {
	Products *[]Product `json:"products"`
}

func encodeDocument(products []Product) ([]byte, error) {
	if products == nil {
		products = []Product{}
	}
	b, err := json.MarshalIndent(document{Products: &products}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode catalog document: %w", err)
	}
	return append(b, '\n'), nil
}

func decodeDocument(b []byte) ([]Product, error) {
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	if doc.Products == nil {
		return nil, fmt.Errorf("%w: missing products field", ErrCorruptData)
	}
	return *doc.Products, nil
}
