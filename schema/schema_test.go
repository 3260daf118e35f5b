package schema

import "testing"

func TestResolveAlias(t *testing.T) {
	d := newDictionary()
	d.Aliases["A"] = "B"
	d.Aliases["B"] = "C"

	if got := d.ResolveAlias("A"); got != "C" {
		t.Errorf("ResolveAlias(A) = %q, want C", got)
	}
	if got := d.ResolveAlias("B"); got != "C" {
		t.Errorf("ResolveAlias(B) = %q, want C", got)
	}
	if got := d.ResolveAlias("C"); got != "C" {
		t.Errorf("ResolveAlias(C) = %q, want C", got)
	}
	if got := d.ResolveAlias("missing"); got != "missing" {
		t.Errorf("ResolveAlias(missing) = %q, want missing", got)
	}
}

func TestResolveAliasCycleTerminates(t *testing.T) {
	d := newDictionary()
	d.Aliases["X"] = "Y"
	d.Aliases["Y"] = "X"

	// Sixteen hops from X land back on X.
	if got := d.ResolveAlias("X"); got != "X" {
		t.Errorf("ResolveAlias(X) = %q, want X", got)
	}
	if got := d.ResolveAlias("Y"); got != "Y" {
		t.Errorf("ResolveAlias(Y) = %q, want Y", got)
	}
}

func TestResolveAliasLongChainBounded(t *testing.T) {
	d := newDictionary()
	names := []string{"T0", "T1", "T2", "T3", "T4", "T5", "T6", "T7", "T8", "T9",
		"T10", "T11", "T12", "T13", "T14", "T15", "T16", "T17", "T18", "T19", "T20"}
	for i := 0; i+1 < len(names); i++ {
		d.Aliases[names[i]] = names[i+1]
	}

	// Resolution stops after 16 hops even though the chain continues.
	if got := d.ResolveAlias("T0"); got != "T16" {
		t.Errorf("ResolveAlias(T0) = %q, want T16", got)
	}
}

func TestKnows(t *testing.T) {
	d := newDictionary()
	d.Choices["C"] = map[uint32]Alternative{}
	d.Sequences["S"] = map[uint32]FieldSpec{}
	d.Sets["Z"] = map[uint32]FieldSpec{}
	d.Primitives["P"] = "INTEGER"
	d.Aliases["A"] = "S"

	for _, name := range []string{"C", "S", "Z", "P", "A"} {
		if !d.Knows(name) {
			t.Errorf("Knows(%s) = false, want true", name)
		}
	}
	if d.Knows("nope") {
		t.Error("Knows(nope) = true, want false")
	}
	// Bare keywords are not dictionary entries.
	if d.Knows("INTEGER") {
		t.Error("Knows(INTEGER) = true, want false")
	}
}

func TestIsSyntheticTag(t *testing.T) {
	if IsSyntheticTag(0) || IsSyntheticTag(31) || IsSyntheticTag(0xFFFF_FEFF) {
		t.Error("wire tags classified as synthetic")
	}
	if !IsSyntheticTag(SynthBase) || !IsSyntheticTag(SynthBase+254) || !IsSyntheticTag(0xFFFF_FFFF) {
		t.Error("synthetic tags not recognized")
	}
}

func TestTypeCount(t *testing.T) {
	d := newDictionary()
	d.Choices["A"] = map[uint32]Alternative{}
	d.Sequences["B"] = map[uint32]FieldSpec{}
	d.Primitives["A"] = "INTEGER" // collides across maps, counted once
	if got := d.TypeCount(); got != 2 {
		t.Errorf("TypeCount = %d, want 2", got)
	}
}
