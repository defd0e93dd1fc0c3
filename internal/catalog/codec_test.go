package catalog

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestDocumentRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		products []Product
	}{
		{"empty", []Product{}},
		{"one", []Product{
			{ID: "p1", Title: "Pen", Category: "office", Price: 9.5, Image: PlaceholderImage},
		}},
		{"ordered", []Product{
			{ID: "p2", Title: "Notebook", Price: 49},
			{ID: "p1", Title: "Pen", Price: 9.5, Description: "blue ink"},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := encodeDocument(tc.products)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := decodeDocument(b)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(got, tc.products) {
				t.Fatalf("round trip mismatch:\n got=%#v\nwant=%#v", got, tc.products)
			}
		})
	}
}

func TestEncodeNilCollection(t *testing.T) {
	b, err := encodeDocument(nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(b), `"products": []`) {
		t.Fatalf("expected empty products array, got:\n%s", b)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"truncated", `{"products": [`},
		{"missing field", `{}`},
		{"wrong field type", `{"products": 5}`},
		{"not an object", `[]`},
		{"garbage", `hello`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeDocument([]byte(tc.in))
			if !errors.Is(err, ErrCorruptData) {
				t.Fatalf("err=%v, want ErrCorruptData", err)
			}
		})
	}
}
