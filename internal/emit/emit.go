// Package emit renders concatenated DER records as JSON Lines, driven
// by a schema dictionary. Leaf values are lowercase hex strings of the
// raw content octets; no primitive is interpreted.
package emit

import (
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/golangsnmp/goder/internal/der"
	"github.com/golangsnmp/goder/internal/types"
	"github.com/golangsnmp/goder/schema"
)

// Decoder holds the dictionary and the auto-root index. It is
// immutable after New and safe for concurrent use; each concurrent
// caller owns its own Stream.
type Decoder struct {
	dict     *schema.Dictionary
	autoRoot map[uint32]string // context tag -> alternative type name
	types.Logger
}

// New builds a Decoder, precomputing the auto-root index from every
// non-synthetic CHOICE alternative tag in the dictionary. Colliding
// tags resolve deterministically: CHOICEs are visited in lexicographic
// name order, alternatives in ascending tag order, first wins.
func New(dict *schema.Dictionary, logger *slog.Logger) *Decoder {
	d := &Decoder{
		dict:     dict,
		autoRoot: make(map[uint32]string),
		Logger:   types.Logger{L: logger},
	}

	choiceNames := make([]string, 0, len(dict.Choices))
	for name := range dict.Choices {
		choiceNames = append(choiceNames, name)
	}
	slices.Sort(choiceNames)

	for _, name := range choiceNames {
		alts := dict.Choices[name]
		tags := make([]uint32, 0, len(alts))
		for tag := range alts {
			if schema.IsSyntheticTag(tag) {
				continue
			}
			tags = append(tags, tag)
		}
		slices.Sort(tags)
		for _, tag := range tags {
			if _, exists := d.autoRoot[tag]; !exists {
				d.autoRoot[tag] = alts[tag].Type
			}
		}
	}

	d.Log(slog.LevelDebug, "decoder constructed",
		slog.Int("types", dict.TypeCount()),
		slog.Int("autoRootTags", len(d.autoRoot)))

	return d
}

// Dictionary returns the dictionary the decoder was built from.
func (d *Decoder) Dictionary() *schema.Dictionary {
	return d.dict
}

// AutoRootType returns the type name the auto-root index maps the
// given context tag to, if any.
func (d *Decoder) AutoRootType(tag uint32) (string, bool) {
	name, ok := d.autoRoot[tag]
	return name, ok
}

// altMatchesTLV reports whether an untagged CHOICE alternative of the
// given type can absorb the probe TLV.
func (d *Decoder) altMatchesTLV(altType string, tlv *der.TLV) bool {
	rt := d.dict.ResolveAlias(altType)

	if sub, ok := d.dict.Choices[rt]; ok && !schema.IsSyntheticTag(tlv.TagNum) {
		if _, hit := sub[tlv.TagNum]; hit {
			return true
		}
	}
	if _, ok := d.dict.Sequences[rt]; ok {
		return tlv.Class == der.ClassUniversal && tlv.Constructed && tlv.TagNum == der.TagSequence
	}
	if _, ok := d.dict.Sets[rt]; ok {
		return tlv.Class == der.ClassUniversal && tlv.Constructed && tlv.TagNum == der.TagSet
	}
	return false
}

// NewStream returns a Stream that writes decoded records to w. A
// Stream carries the per-file scratch buffers and must not be shared
// across goroutines.
func (d *Decoder) NewStream(w io.Writer) *Stream {
	return &Stream{
		d:       d,
		w:       w,
		scratch: make([]byte, 0, 4096),
	}
}

// DecodeAll scans buf as concatenated DER records and writes one JSON
// line per record. rootType selects the schema type each record is
// decoded as; "auto" (any case) or the empty string enables automatic
// classification via the auto-root index, as does a root type missing
// from the dictionary (with a single warning). Returns the number of
// records written and the first write error, if any.
//
// Scanning stops at the first malformed TLV; trailing bytes after it
// are dropped without a partial line.
func (s *Stream) DecodeAll(buf []byte, rootType string) (int, error) {
	d := s.d

	useAuto := rootType == "" || strings.EqualFold(rootType, "auto")
	if !useAuto && !d.dict.Knows(rootType) {
		d.Log(slog.LevelWarn, "root type not in schema, falling back to auto",
			slog.String("rootType", rootType))
		useAuto = true
	}

	count := 0
	offset := 0
	for offset < len(buf) {
		tlv, next, ok := der.Parse(buf, offset)
		if !ok || next <= offset {
			break
		}

		if useAuto {
			s.writeAutoRecord(&tlv)
		} else {
			s.writeRoot(&tlv, rootType)
		}
		s.writeByte('\n')

		offset = next
		count++
	}

	if d.TraceEnabled() {
		d.Trace("stream decoded",
			slog.Int("records", count),
			slog.Int("bytes", offset))
	}

	return count, s.err
}

// writeRoot decodes one record as the given (known) root type. A
// CHOICE root needs the outer tag for discrimination and receives the
// raw TLV; every other root descends into the content.
func (s *Stream) writeRoot(tlv *der.TLV, rootType string) {
	rt := s.d.dict.ResolveAlias(rootType)
	if _, ok := s.d.dict.Choices[rt]; ok {
		s.writeType(tlv.Raw, rootType)
	} else {
		s.writeType(tlv.Value, rootType)
	}
}

// writeAutoRecord classifies a top-level TLV through the auto-root
// index. Unclassifiable records are preserved whole under "unknown".
func (s *Stream) writeAutoRecord(tlv *der.TLV) {
	if tlv.Class == der.ClassContextSpecific {
		if altType, ok := s.d.autoRoot[tlv.TagNum]; ok {
			s.writeByte('{')
			s.writeKey(lowerFirst(altType))
			s.writeByte(':')
			s.writeType(tlv.Value, altType)
			s.writeByte('}')
			return
		}
	}

	s.writeByte('{')
	s.writeKey("unknown")
	s.writeByte(':')
	s.writeHex(tlv.Raw)
	s.writeByte('}')
}

// writeType dispatches on the resolved type name: CHOICE, then
// SEQUENCE/SET (decoded identically), then the hex fallback shared by
// primitives and unknown types.
func (s *Stream) writeType(buf []byte, typeName string) {
	rt := s.d.dict.ResolveAlias(typeName)

	if alts, ok := s.d.dict.Choices[rt]; ok {
		s.writeChoice(buf, alts)
		return
	}
	if fields, ok := s.d.dict.Sequences[rt]; ok {
		s.writeFields(buf, fields)
		return
	}
	if fields, ok := s.d.dict.Sets[rt]; ok {
		s.writeFields(buf, fields)
		return
	}

	s.writeHex(buf)
}

// writeFields emits a JSON object from a flat TLV stream, assigning
// keys from the field map. SET members arrive tag-keyed like SEQUENCE
// members, so both decode here. Tags absent from the map keep their
// bytes under unknown_tag_<n>.
func (s *Stream) writeFields(buf []byte, fields map[uint32]schema.FieldSpec) {
	s.writeByte('{')
	first := true
	offset := 0

	for offset < len(buf) {
		tlv, next, ok := der.Parse(buf, offset)
		if !ok || next <= offset {
			break
		}

		if !first {
			s.writeByte(',')
		}
		first = false

		if field, ok := fields[tlv.TagNum]; ok {
			s.writeKey(field.Name)
			s.writeByte(':')

			switch {
			case field.SequenceOf:
				s.writeSequenceOf(tlv.Value, field.Type)
			case s.isChoice(field.Type):
				// A CHOICE needs the outer tag for discrimination.
				s.writeType(tlv.Raw, field.Type)
			case tlv.Constructed:
				s.writeType(tlv.Value, field.Type)
			default:
				s.writeHex(tlv.Value)
			}
		} else {
			s.d.Log(slog.LevelDebug, "unknown tag in field stream",
				slog.Uint64("tag", uint64(tlv.TagNum)),
				slog.Int("length", tlv.Length))
			s.writeRaw(`"unknown_tag_`)
			s.writeUint(tlv.TagNum)
			s.writeRaw(`":`)
			s.writeHex(tlv.Value)
		}

		offset = next
	}

	s.writeByte('}')
}

// writeSequenceOf emits a JSON array of homogeneous elements.
func (s *Stream) writeSequenceOf(buf []byte, elementType string) {
	s.writeByte('[')
	first := true
	offset := 0

	isChoice := s.isChoice(elementType)

	for offset < len(buf) {
		tlv, next, ok := der.Parse(buf, offset)
		if !ok || next <= offset {
			break
		}

		if !first {
			s.writeByte(',')
		}
		first = false

		switch {
		case isChoice:
			s.writeType(tlv.Raw, elementType)
		case tlv.Constructed:
			s.writeType(tlv.Value, elementType)
		default:
			s.writeHex(tlv.Value)
		}

		offset = next
	}

	s.writeByte(']')
}

// writeChoice discriminates a CHOICE value. Up to three candidate TLVs
// are considered: the outer TLV, its first inner TLV when constructed,
// and the first TLV inside a universal OCTET STRING wrapper. Tagged
// alternatives match a candidate tag directly; untagged (synthetic)
// alternatives are probed structurally against the innermost candidate.
func (s *Stream) writeChoice(buf []byte, alts map[uint32]schema.Alternative) {
	outer, _, ok := der.Parse(buf, 0)
	if !ok {
		s.writeRaw("null")
		return
	}

	candidates := make([]der.TLV, 0, 3)
	candidates = append(candidates, outer)
	if outer.Constructed {
		if inner, _, ok := der.Parse(outer.Value, 0); ok {
			candidates = append(candidates, inner)
		}
	}
	if outer.Class == der.ClassUniversal && !outer.Constructed && outer.TagNum == der.TagOctetString {
		if inner, _, ok := der.Parse(outer.Value, 0); ok {
			candidates = append(candidates, inner)
		}
	}

	s.writeByte('{')

	for i := range candidates {
		cand := &candidates[i]
		if schema.IsSyntheticTag(cand.TagNum) {
			continue
		}
		if alt, ok := alts[cand.TagNum]; ok {
			s.writeKey(alt.Name)
			s.writeByte(':')
			s.writeType(cand.Value, alt.Type)
			s.writeByte('}')
			return
		}
	}

	synthTags := make([]uint32, 0, len(alts))
	for tag := range alts {
		if schema.IsSyntheticTag(tag) {
			synthTags = append(synthTags, tag)
		}
	}
	slices.Sort(synthTags)

	probe := &candidates[len(candidates)-1]

	for _, tag := range synthTags {
		alt := alts[tag]
		if !s.d.altMatchesTLV(alt.Type, probe) {
			continue
		}
		s.writeKey(alt.Name)
		s.writeByte(':')
		if s.isChoice(alt.Type) {
			s.writeType(probe.Raw, alt.Type)
		} else {
			s.writeType(probe.Value, alt.Type)
		}
		s.writeByte('}')
		return
	}

	s.d.Log(slog.LevelDebug, "no CHOICE alternative matched",
		slog.Uint64("probeTag", uint64(probe.TagNum)))
	s.writeKey("unknown_alternative")
	s.writeByte(':')
	s.writeHex(probe.Raw)
	s.writeByte('}')
}

func (s *Stream) isChoice(typeName string) bool {
	_, ok := s.d.dict.Choices[s.d.dict.ResolveAlias(typeName)]
	return ok
}
