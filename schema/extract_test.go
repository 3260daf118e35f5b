package schema

import (
	"fmt"
	"strings"
	"testing"
)

func mustParse(t *testing.T, text string) *Dictionary {
	t.Helper()
	d, err := Parse([]byte(text), nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return d
}

func TestExtractSequence(t *testing.T) {
	d := mustParse(t, `
Rec ::= SEQUENCE {
	a      [0] OCTET STRING,
	b      [1] INTEGER OPTIONAL,
	items  [2] SEQUENCE OF ItemType
}
`)
	fields, ok := d.Sequences["Rec"]
	if !ok {
		t.Fatal("Rec not extracted as SEQUENCE")
	}
	if len(fields) != 3 {
		t.Fatalf("fields = %d, want 3", len(fields))
	}

	a := fields[0]
	if a.Name != "a" || a.Type != "OCTET" || a.Optional || a.SequenceOf {
		t.Errorf("field a = %+v", a)
	}

	b := fields[1]
	if b.Name != "b" || b.Type != "INTEGER" || !b.Optional {
		t.Errorf("field b = %+v", b)
	}

	items := fields[2]
	if items.Name != "items" || !items.SequenceOf || items.Type != "ItemType" {
		t.Errorf("field items = %+v", items)
	}
}

func TestExtractSet(t *testing.T) {
	d := mustParse(t, `Attrs ::= SET { id [0] INTEGER, payload [1] OCTET STRING }`)
	fields, ok := d.Sets["Attrs"]
	if !ok {
		t.Fatal("Attrs not extracted as SET")
	}
	if len(fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(fields))
	}
	if _, isSeq := d.Sequences["Attrs"]; isSeq {
		t.Error("SET stored under sequences")
	}
}

func TestExtractTaggedChoice(t *testing.T) {
	d := mustParse(t, `
Record ::= CHOICE {
	mobile [79] MobileRecord,
	fixed  [80] FixedRecord
}
`)
	alts, ok := d.Choices["Record"]
	if !ok {
		t.Fatal("Record not extracted as CHOICE")
	}
	if len(alts) != 2 {
		t.Fatalf("alternatives = %d, want 2", len(alts))
	}
	if alt := alts[79]; alt.Name != "mobile" || alt.Type != "MobileRecord" {
		t.Errorf("alts[79] = %+v", alt)
	}
	if alt := alts[80]; alt.Name != "fixed" || alt.Type != "FixedRecord" {
		t.Errorf("alts[80] = %+v", alt)
	}
}

func TestExtractUntaggedChoice(t *testing.T) {
	d := mustParse(t, `
Value ::= CHOICE {
	num  NumValue,
	text TextValue
}
`)
	alts := d.Choices["Value"]
	if len(alts) != 2 {
		t.Fatalf("alternatives = %d, want 2", len(alts))
	}
	if alt := alts[SynthBase]; alt.Name != "num" || alt.Type != "NumValue" {
		t.Errorf("alts[SynthBase] = %+v", alt)
	}
	if alt := alts[SynthBase+1]; alt.Name != "text" || alt.Type != "TextValue" {
		t.Errorf("alts[SynthBase+1] = %+v", alt)
	}
	for tag := range alts {
		if !IsSyntheticTag(tag) {
			t.Errorf("untagged alternative stored under wire tag %d", tag)
		}
	}
}

func TestUntaggedChoiceCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Big ::= CHOICE {\n")
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&sb, "\talt%d Type%d,\n", i, i)
	}
	sb.WriteString("}\n")

	d := mustParse(t, sb.String())
	alts := d.Choices["Big"]
	if len(alts) != 255 {
		t.Errorf("alternatives = %d, want 255", len(alts))
	}
}

func TestExtractPrimitives(t *testing.T) {
	d := mustParse(t, `
CallDuration ::= INTEGER (0..4294967295)
IPAddress ::= OCTET STRING (SIZE(4..16))
Flag ::= BOOLEAN
Digits ::= TBCD-STRING
`)
	want := map[string]string{
		"CallDuration": "INTEGER",
		"IPAddress":    "OCTET STRING",
		"Flag":         "BOOLEAN",
		"Digits":       "TBCD-STRING",
	}
	for name, kind := range want {
		if got := d.Primitives[name]; got != kind {
			t.Errorf("Primitives[%s] = %q, want %q", name, got, kind)
		}
	}
}

func TestExtractAliases(t *testing.T) {
	d := mustParse(t, `
MSISDN ::= AddressString
AddressString ::= OctetBlob
Same ::= Same
NotAlias ::= INTEGER
AlsoNot ::= Sequence2 { x [0] INTEGER }
`)
	if got := d.Aliases["MSISDN"]; got != "AddressString" {
		t.Errorf("Aliases[MSISDN] = %q", got)
	}
	if got := d.Aliases["AddressString"]; got != "OctetBlob" {
		t.Errorf("Aliases[AddressString] = %q", got)
	}
	if _, ok := d.Aliases["Same"]; ok {
		t.Error("self alias recorded")
	}
	if _, ok := d.Aliases["NotAlias"]; ok {
		t.Error("keyword RHS recorded as alias")
	}
	if _, ok := d.Aliases["AlsoNot"]; ok {
		t.Error("assignment with body recorded as alias")
	}
}

func TestAliasKeywordCaseInsensitive(t *testing.T) {
	d := mustParse(t, "X ::= Integer\n")
	if _, ok := d.Aliases["X"]; ok {
		t.Error("case-variant keyword RHS recorded as alias")
	}
}

func TestCommentStripping(t *testing.T) {
	d := mustParse(t, "-- leading comment\nDur ::= INTEGER -- trailing\n-- full line\nFlag ::= BOOLEAN")
	if _, ok := d.Primitives["Dur"]; !ok {
		t.Error("Dur lost to comment stripping")
	}
	if _, ok := d.Primitives["Flag"]; !ok {
		t.Error("full-line comment swallowed following assignment")
	}
}

func TestCommentAtEOFWithoutNewline(t *testing.T) {
	// The final line has no trailing newline; the comment must still
	// be stripped to end of input.
	d := mustParse(t, "Flag ::= BOOLEAN\nGone ::= INTEGER -- note")
	if _, ok := d.Primitives["Gone"]; !ok {
		t.Error("assignment before EOF comment not extracted")
	}
}

func TestConstraintDiscarded(t *testing.T) {
	d := mustParse(t, `Seq ::= SEQUENCE (SIZE(1..10)) { n [0] INTEGER }`)
	fields := d.Sequences["Seq"]
	if len(fields) != 1 || fields[0].Name != "n" {
		t.Errorf("fields = %+v", fields)
	}
}

func TestBadTagIsFatal(t *testing.T) {
	_, err := Parse([]byte(`Rec ::= SEQUENCE { n [99999999999999999999] INTEGER }`), nil)
	if err == nil {
		t.Fatal("expected error for overflowing tag")
	}
}

func TestSequenceOfAssignmentYieldsEmptyFieldMap(t *testing.T) {
	// "X ::= SEQUENCE OF Y" matches as a SEQUENCE with no body.
	d := mustParse(t, "List ::= SEQUENCE OF Item\n")
	fields, ok := d.Sequences["List"]
	if !ok {
		t.Fatal("List not extracted as SEQUENCE")
	}
	if len(fields) != 0 {
		t.Errorf("fields = %+v, want empty", fields)
	}
}

func TestUnmatchedFragmentsIgnored(t *testing.T) {
	d := mustParse(t, `
GPRSChargingDataTypes DEFINITIONS IMPLICIT TAGS ::= BEGIN
Rec ::= SEQUENCE { a [0] INTEGER }
END
`)
	if _, ok := d.Sequences["Rec"]; !ok {
		t.Error("Rec not extracted amid module ceremony")
	}
}
