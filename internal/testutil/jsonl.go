package testutil

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/buger/jsonparser"
)

// Lines splits JSONL output into its lines, requiring a trailing
// newline when the output is non-empty.
func Lines(t *testing.T, data []byte) [][]byte {
	t.Helper()
	if len(data) == 0 {
		return nil
	}
	if data[len(data)-1] != '\n' {
		t.Fatalf("JSONL output does not end with a newline: %q", data)
	}
	return bytes.Split(data[:len(data)-1], []byte{'\n'})
}

// ValidJSONLines fails the test unless every line of data is one
// valid JSON value.
func ValidJSONLines(t *testing.T, data []byte, msgAndArgs ...any) {
	t.Helper()
	for i, line := range Lines(t, data) {
		if !json.Valid(line) {
			t.Fatalf("%s: line %d is not valid JSON: %s", formatMsg(msgAndArgs), i+1, line)
		}
	}
}

// JSONString extracts a string field from a JSON object by key path,
// failing the test if the path is absent or not a string.
func JSONString(t *testing.T, data []byte, keys ...string) string {
	t.Helper()
	v, err := jsonparser.GetString(data, keys...)
	if err != nil {
		t.Fatalf("field %v missing from %s: %v", keys, data, err)
	}
	return v
}

// JSONHexLeaves collects every string leaf of a JSON value in
// traversal order. Useful for coverage checks against the input
// record bytes.
func JSONHexLeaves(t *testing.T, data []byte) []string {
	t.Helper()
	var leaves []string
	var walk func(value []byte, dataType jsonparser.ValueType)
	walk = func(value []byte, dataType jsonparser.ValueType) {
		switch dataType {
		case jsonparser.String:
			leaves = append(leaves, string(value))
		case jsonparser.Object:
			err := jsonparser.ObjectEach(value, func(_ []byte, v []byte, vt jsonparser.ValueType, _ int) error {
				walk(v, vt)
				return nil
			})
			if err != nil {
				t.Fatalf("walk object: %v", err)
			}
		case jsonparser.Array:
			_, err := jsonparser.ArrayEach(value, func(v []byte, vt jsonparser.ValueType, _ int, _ error) {
				walk(v, vt)
			})
			if err != nil {
				t.Fatalf("walk array: %v", err)
			}
		}
	}

	v, vt, _, err := jsonparser.Get(data)
	if err != nil {
		t.Fatalf("parse JSON value: %v", err)
	}
	walk(v, vt)
	return leaves
}
