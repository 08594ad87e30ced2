package snapshot

import "testing"

func TestSameName(t *testing.T) {
	if !SameName("Mira", "  mira ") {
		t.Fatal("names differing in case and padding should match")
	}
	if !SameName("STRASSE", "straße") {
		t.Fatal("Unicode case folding should match beyond ASCII")
	}
	if SameName("Mira", "Joss") {
		t.Fatal("different names should not match")
	}
}

func TestPairKeyOrderInsensitive(t *testing.T) {
	if PairKey("Mira", "Joss") != PairKey("joss", "MIRA") {
		t.Fatal("pair key should ignore order and case")
	}
}

func TestOrderedSetAdd(t *testing.T) {
	set := OrderedSet{"Wet"}
	set = set.Add("wet")
	if len(set) != 1 {
		t.Fatalf("set length = %d, want 1", len(set))
	}
	if set[0] != "Wet" {
		t.Fatalf("display casing = %q, want original %q", set[0], "Wet")
	}
	set = set.Add("")
	if len(set) != 1 {
		t.Fatal("empty items should be dropped")
	}
	set = set.Add("tired")
	if len(set) != 2 || set[1] != "tired" {
		t.Fatalf("set = %v, want [Wet tired]", set)
	}
}

func TestOrderedSetRemove(t *testing.T) {
	set := OrderedSet{"wet", "tired", "bruised"}
	set = set.Remove("TIRED")
	if len(set) != 2 || set.Contains("tired") {
		t.Fatalf("set = %v, want tired removed", set)
	}
	// Removing something absent is a no-op.
	set = set.Remove("missing")
	if len(set) != 2 {
		t.Fatalf("set = %v, want unchanged", set)
	}
}
