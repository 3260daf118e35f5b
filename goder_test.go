package goder

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestNewParsesSchema(t *testing.T) {
	dec, err := New([]byte(testSchema))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	dict := dec.Dictionary()
	if _, ok := dict.Sequences["CallRecord"]; !ok {
		t.Error("CallRecord missing from dictionary")
	}
}

func TestNewRejectsBadSchemaTag(t *testing.T) {
	_, err := New([]byte(`Rec ::= SEQUENCE { n [99999999999999999999] INTEGER }`))
	if err == nil {
		t.Fatal("expected error for overflowing context tag")
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cdr.asn1")
	writeFile(t, path, []byte(testSchema))

	dec, err := NewFromFile(path, WithRootType("CallRecord"))
	if err != nil {
		t.Fatalf("NewFromFile failed: %v", err)
	}
	if !dec.KnowsRootType() {
		t.Error("KnowsRootType = false for declared type")
	}
}

func TestNewFromFileMissing(t *testing.T) {
	if _, err := NewFromFile("/no/such/schema.asn1"); err == nil {
		t.Error("expected error for missing schema file")
	}
}

func TestKnowsRootType(t *testing.T) {
	tests := []struct {
		root string
		want bool
	}{
		{"CallRecord", true},
		{"auto", true},
		{"AUTO", true},
		{"", true},
		{"Missing", false},
	}
	for _, tt := range tests {
		dec, err := New([]byte(testSchema), WithRootType(tt.root))
		if err != nil {
			t.Fatal(err)
		}
		if got := dec.KnowsRootType(); got != tt.want {
			t.Errorf("KnowsRootType(%q) = %v, want %v", tt.root, got, tt.want)
		}
	}
}

func TestDecodeStream(t *testing.T) {
	dec := newTestDecoder(t)
	var out bytes.Buffer
	n, err := dec.DecodeStream(append(testRecord, testRecord...), &out)
	if err != nil {
		t.Fatalf("DecodeStream failed: %v", err)
	}
	if n != 2 {
		t.Errorf("records = %d, want 2", n)
	}
	want := testRecordJSON + testRecordJSON
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestDecodeStreamConcurrent(t *testing.T) {
	dec := newTestDecoder(t)
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			var out bytes.Buffer
			_, err := dec.DecodeStream(bytes.Repeat(testRecord, 50), &out)
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent decode failed: %v", err)
		}
	}
}
