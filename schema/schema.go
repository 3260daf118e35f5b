// Package schema holds the ASN.1 type dictionary that drives DER
// decoding. The dictionary is populated once by Parse and is immutable
// afterwards; it may be shared by any number of concurrent readers.
package schema

// SynthBase is the first synthetic tag key. CHOICE alternatives
// declared without an explicit [n] tag are stored under keys at or
// above this value; such keys never appear on the wire and signal
// "needs runtime probing" rather than "matches a wire tag".
const SynthBase uint32 = 0xFFFF_FF00

// maxSynthAlternatives caps how many untagged alternatives a single
// CHOICE may carry. Alternatives past the cap are dropped.
const maxSynthAlternatives = 255

// maxAliasHops bounds alias chain resolution. Cycles resolve to
// whatever name the final hop lands on.
const maxAliasHops = 16

// IsSyntheticTag reports whether tag is a synthetic CHOICE key.
func IsSyntheticTag(tag uint32) bool {
	return tag >= SynthBase
}

// FieldSpec describes one member of a SEQUENCE or SET body.
type FieldSpec struct {
	Name string
	// Type is the declared type name, or the element type when
	// SequenceOf is set.
	Type string
	// Optional records the OPTIONAL keyword. It is preserved from the
	// schema text but not consulted during decoding.
	Optional bool
	// SequenceOf marks fields declared as "X OF Y".
	SequenceOf bool
}

// Alternative is one named arm of a CHOICE.
type Alternative struct {
	Name string
	Type string
}

// Dictionary is the type model extracted from ASN.1 schema text.
//
// A name may appear as a key in more than one map; lookups follow a
// fixed precedence (choices, then sequences, then sets, then
// primitives).
type Dictionary struct {
	Choices    map[string]map[uint32]Alternative
	Sequences  map[string]map[uint32]FieldSpec
	Sets       map[string]map[uint32]FieldSpec
	Primitives map[string]string // type name -> primitive keyword
	Aliases    map[string]string // type name -> target type name
}

func newDictionary() *Dictionary {
	return &Dictionary{
		Choices:    make(map[string]map[uint32]Alternative),
		Sequences:  make(map[string]map[uint32]FieldSpec),
		Sets:       make(map[string]map[uint32]FieldSpec),
		Primitives: make(map[string]string),
		Aliases:    make(map[string]string),
	}
}

// ResolveAlias follows "A ::= B" chains for at most 16 hops and returns
// the final name. Names absent from the alias map resolve to themselves;
// a cycle yields whatever name the 16th hop lands on.
func (d *Dictionary) ResolveAlias(name string) string {
	for i := 0; i < maxAliasHops; i++ {
		next, ok := d.Aliases[name]
		if !ok {
			break
		}
		name = next
	}
	return name
}

// Knows reports whether the resolved name is defined in any of the
// four type maps.
func (d *Dictionary) Knows(name string) bool {
	rt := d.ResolveAlias(name)
	if _, ok := d.Choices[rt]; ok {
		return true
	}
	if _, ok := d.Sequences[rt]; ok {
		return true
	}
	if _, ok := d.Sets[rt]; ok {
		return true
	}
	_, ok := d.Primitives[rt]
	return ok
}

// TypeCount returns the number of distinct type names across all maps.
func (d *Dictionary) TypeCount() int {
	names := make(map[string]struct{})
	for name := range d.Choices {
		names[name] = struct{}{}
	}
	for name := range d.Sequences {
		names[name] = struct{}{}
	}
	for name := range d.Sets {
		names[name] = struct{}{}
	}
	for name := range d.Primitives {
		names[name] = struct{}{}
	}
	return len(names)
}
