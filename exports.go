package goder

import "github.com/golangsnmp/goder/schema"

// Type aliases for public API - dictionary types come from the schema
// subpackage.

// Dictionary is the type model extracted from ASN.1 schema text.
type Dictionary = schema.Dictionary

// FieldSpec describes one member of a SEQUENCE or SET body.
type FieldSpec = schema.FieldSpec

// Alternative is one named arm of a CHOICE.
type Alternative = schema.Alternative

// SynthBase is the first synthetic tag key for untagged CHOICE
// alternatives.
const SynthBase = schema.SynthBase

// IsSyntheticTag reports whether tag is a synthetic CHOICE key.
var IsSyntheticTag = schema.IsSyntheticTag

// ParseSchema parses ASN.1 schema text into a Dictionary without
// building a Decoder.
var ParseSchema = schema.Parse
