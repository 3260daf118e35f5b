package schema

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/golangsnmp/goder/internal/types"
)

// The extractor is deliberately opportunistic: it scans for the
// grammar fragments that matter to DER decoding and ignores everything
// else. Bodies are matched non-greedily up to the first closing brace,
// which is sufficient for the flat SEQUENCE/SET/CHOICE bodies found in
// CDR-style schemas; nested bodies yield partial entries without error.
var (
	commentRe = regexp.MustCompile(`--.*?(?:\n|$)`)

	// IDENT ::= KIND (constraint?) (body?). The constraint group is
	// discarded; the body group is processed per kind.
	typeAssignRe = regexp.MustCompile(
		`(?s)([\w-]+)\s*::=\s*(CHOICE|SEQUENCE|SET|ENUMERATED|INTEGER|OCTET STRING|BIT STRING|IA5String|UTF8String|BOOLEAN|NULL|TBCD-STRING)\s*(?:\(((?:[^()]|\([^()]*\))*)\))?\s*(\{.*?\})?`)

	// A ::= B on a single line, where B is a bare identifier.
	aliasRe = regexp.MustCompile(`(?m)^\s*([\w-]+)\s*::=\s*([\w-]+)\s*$`)

	choiceTaggedRe   = regexp.MustCompile(`([\w-]+)\s+\[(\d+)\]\s+([\w-]+)`)
	choiceUntaggedRe = regexp.MustCompile(`([\w-]+)\s+([\w-]+)`)

	fieldRe = regexp.MustCompile(`([\w-]+)\s+\[(\d+)\]\s+([\w-]+(?:\s+OF\s+[\w-]+)?)\s*(OPTIONAL)?`)
)

// aliasKeywords are reserved type keywords that disqualify the right
// hand side of "A ::= B" from being recorded as an alias.
var aliasKeywords = map[string]struct{}{
	"CHOICE":       {},
	"SEQUENCE":     {},
	"SET":          {},
	"ENUMERATED":   {},
	"INTEGER":      {},
	"OCTET":        {},
	"OCTET STRING": {},
	"BIT":          {},
	"BIT STRING":   {},
	"IA5STRING":    {},
	"UTF8STRING":   {},
	"BOOLEAN":      {},
	"NULL":         {},
	"TBCD-STRING":  {},
}

// Parse scans ASN.1 schema text and builds the type dictionary.
// Unknown or malformed fragments are skipped without error; the only
// fatal condition is a context tag that does not parse as a decimal
// number.
func Parse(source []byte, logger *slog.Logger) (*Dictionary, error) {
	log := types.Logger{L: logger}
	d := newDictionary()

	stripped := commentRe.ReplaceAll(source, nil)

	for _, m := range aliasRe.FindAllSubmatch(stripped, -1) {
		lhs := string(m[1])
		rhs := string(m[2])
		if _, keyword := aliasKeywords[strings.ToUpper(rhs)]; keyword || lhs == rhs {
			continue
		}
		d.Aliases[lhs] = rhs
		if log.TraceEnabled() {
			log.Trace("alias", slog.String("name", lhs), slog.String("target", rhs))
		}
	}

	for _, m := range typeAssignRe.FindAllSubmatch(stripped, -1) {
		name := string(m[1])
		kind := string(m[2])
		body := string(m[4])

		switch kind {
		case "CHOICE":
			alts, err := parseChoiceBody(name, body)
			if err != nil {
				return nil, err
			}
			d.Choices[name] = alts
		case "SEQUENCE", "SET":
			fields, err := parseFieldBody(name, body)
			if err != nil {
				return nil, err
			}
			if kind == "SEQUENCE" {
				d.Sequences[name] = fields
			} else {
				d.Sets[name] = fields
			}
		default:
			d.Primitives[name] = kind
		}
		if log.TraceEnabled() {
			log.Trace("type assignment",
				slog.String("name", name),
				slog.String("kind", kind))
		}
	}

	log.Log(slog.LevelDebug, "schema extracted",
		slog.Int("choices", len(d.Choices)),
		slog.Int("sequences", len(d.Sequences)),
		slog.Int("sets", len(d.Sets)),
		slog.Int("primitives", len(d.Primitives)),
		slog.Int("aliases", len(d.Aliases)))

	return d, nil
}

// parseChoiceBody collects CHOICE alternatives. Tagged alternatives
// win; only when none are present are untagged alternatives assigned
// synthetic keys in declaration order.
func parseChoiceBody(name, body string) (map[uint32]Alternative, error) {
	alts := make(map[uint32]Alternative)

	for _, c := range choiceTaggedRe.FindAllStringSubmatch(body, -1) {
		tag, err := parseTag(name, c[2])
		if err != nil {
			return nil, err
		}
		alts[tag] = Alternative{Name: c[1], Type: c[3]}
	}

	if len(alts) == 0 {
		idx := uint32(0)
		for _, c := range choiceUntaggedRe.FindAllStringSubmatch(body, -1) {
			if c[1] == "" || c[2] == "" {
				continue
			}
			alts[SynthBase+idx] = Alternative{Name: c[1], Type: c[2]}
			idx++
			if idx >= maxSynthAlternatives {
				break
			}
		}
	}

	return alts, nil
}

// parseFieldBody collects SEQUENCE/SET members. A type spec of the
// form "X OF Y" marks the field as a list of Y.
func parseFieldBody(name, body string) (map[uint32]FieldSpec, error) {
	fields := make(map[uint32]FieldSpec)

	for _, c := range fieldRe.FindAllStringSubmatch(body, -1) {
		tag, err := parseTag(name, c[2])
		if err != nil {
			return nil, err
		}

		spec := FieldSpec{
			Name:     c[1],
			Type:     c[3],
			Optional: c[4] != "",
		}
		if pos := strings.Index(spec.Type, " OF "); pos >= 0 {
			spec.SequenceOf = true
			spec.Type = strings.TrimSpace(spec.Type[pos+4:])
		}
		fields[tag] = spec
	}

	return fields, nil
}

func parseTag(typeName, text string) (uint32, error) {
	tag, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("schema type %s: context tag [%s]: %w", typeName, text, err)
	}
	return uint32(tag), nil
}
