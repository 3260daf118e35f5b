package main

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/golangsnmp/goder/schema"
)

// DictOutput is the top-level JSON output for the schema command.
type DictOutput struct {
	Choices    []ChoiceJSON    `json:"choices,omitempty"`
	Sequences  []CompositeJSON `json:"sequences,omitempty"`
	Sets       []CompositeJSON `json:"sets,omitempty"`
	Primitives []PrimitiveJSON `json:"primitives,omitempty"`
	Aliases    []AliasJSON     `json:"aliases,omitempty"`
}

// ChoiceJSON holds one CHOICE type with its alternatives.
type ChoiceJSON struct {
	Name         string            `json:"name"`
	Alternatives []AlternativeJSON `json:"alternatives,omitempty"`
}

// AlternativeJSON holds one CHOICE arm. Untagged alternatives carry
// synthetic=true and their probe order instead of a wire tag. Tag and
// Order are pointers so a legitimate [0] tag is not dropped by
// omitempty.
type AlternativeJSON struct {
	Tag       *uint32 `json:"tag,omitempty"`
	Synthetic bool    `json:"synthetic,omitempty"`
	Order     *uint32 `json:"order,omitempty"`
	Name      string  `json:"field"`
	Type      string  `json:"type"`
}

// CompositeJSON holds a SEQUENCE or SET with its tagged fields.
type CompositeJSON struct {
	Name   string      `json:"name"`
	Fields []FieldJSON `json:"fields,omitempty"`
}

// FieldJSON holds one SEQUENCE/SET member.
type FieldJSON struct {
	Tag        uint32 `json:"tag"`
	Name       string `json:"field"`
	Type       string `json:"type"`
	Optional   bool   `json:"optional,omitempty"`
	SequenceOf bool   `json:"sequenceOf,omitempty"`
}

// PrimitiveJSON holds a primitive type assignment.
type PrimitiveJSON struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// AliasJSON holds one alias entry.
type AliasJSON struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

func marshalDictionary(d *schema.Dictionary, pretty bool) ([]byte, error) {
	var out DictOutput

	for _, name := range sortedKeys(d.Choices) {
		cj := ChoiceJSON{Name: name}
		alts := d.Choices[name]
		for _, tag := range sortedTags(alts) {
			alt := alts[tag]
			aj := AlternativeJSON{Name: alt.Name, Type: alt.Type}
			if schema.IsSyntheticTag(tag) {
				aj.Synthetic = true
				order := tag - schema.SynthBase
				aj.Order = &order
			} else {
				wire := tag
				aj.Tag = &wire
			}
			cj.Alternatives = append(cj.Alternatives, aj)
		}
		out.Choices = append(out.Choices, cj)
	}

	out.Sequences = compositesJSON(d.Sequences)
	out.Sets = compositesJSON(d.Sets)

	for _, name := range sortedKeys(d.Primitives) {
		out.Primitives = append(out.Primitives, PrimitiveJSON{Name: name, Kind: d.Primitives[name]})
	}
	for _, name := range sortedKeys(d.Aliases) {
		out.Aliases = append(out.Aliases, AliasJSON{Name: name, Target: d.Aliases[name]})
	}

	if pretty {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

func compositesJSON(m map[string]map[uint32]schema.FieldSpec) []CompositeJSON {
	var out []CompositeJSON
	for _, name := range sortedKeys(m) {
		cj := CompositeJSON{Name: name}
		fields := m[name]
		for _, tag := range sortedTags(fields) {
			f := fields[tag]
			cj.Fields = append(cj.Fields, FieldJSON{
				Tag:        tag,
				Name:       f.Name,
				Type:       f.Type,
				Optional:   f.Optional,
				SequenceOf: f.SequenceOf,
			})
		}
		out = append(out, cj)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, strings.Compare)
	return keys
}

func sortedTags[V any](m map[uint32]V) []uint32 {
	tags := make([]uint32, 0, len(m))
	for t := range m {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags
}
