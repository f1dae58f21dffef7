package uci

import "testing"

func TestIntOptionRejectsOutOfRange(t *testing.T) {
	var v = 16
	var opt = IntOption{Name: "Hash", Min: 4, Max: 1024, Value: &v}
	if err := opt.Set("2000"); err == nil {
		t.Error("Set(2000) should fail with Max 1024")
	}
	if v != 16 {
		t.Errorf("rejected Set should leave Value unchanged, got %d", v)
	}
	if err := opt.Set("64"); err != nil {
		t.Fatal(err)
	}
	if v != 64 {
		t.Errorf("Value = %d, want 64", v)
	}
}

func TestBoolOptionParses(t *testing.T) {
	var v = false
	var opt = BoolOption{Name: "Ponder", Value: &v}
	if err := opt.Set("true"); err != nil {
		t.Fatal(err)
	}
	if !v {
		t.Error("Set(true) should set Value to true")
	}
	if err := opt.Set("not-a-bool"); err == nil {
		t.Error("Set should reject a non-boolean string")
	}
}

func TestStringOptionDefaultsToEmptyPlaceholder(t *testing.T) {
	var v = ""
	var opt = StringOption{Name: "SyzygyPath", Value: &v}
	if got := opt.UciString(); got != "option name SyzygyPath type string default <empty>" {
		t.Errorf("UciString() = %q", got)
	}
	if err := opt.Set("/tmp/tb"); err != nil {
		t.Fatal(err)
	}
	if v != "/tmp/tb" {
		t.Errorf("Value = %q, want /tmp/tb", v)
	}
}

func TestComboOptionSetInvokesOnSet(t *testing.T) {
	var v = "Default"
	var seen string
	var opt = ComboOption{
		Name:   "Style",
		Combos: []string{"Default", "Aggressive", "Defensive"},
		Value:  &v,
		OnSet:  func(s string) { seen = s },
	}
	if err := opt.Set("aggressive"); err != nil {
		t.Fatal(err)
	}
	if v != "Aggressive" {
		t.Errorf("Value = %q, want canonical-cased Aggressive", v)
	}
	if seen != "Aggressive" {
		t.Errorf("OnSet was not invoked with the canonical value, got %q", seen)
	}
}

func TestComboOptionRejectsUnknownValue(t *testing.T) {
	var v = "Default"
	var opt = ComboOption{Name: "Style", Combos: []string{"Default", "Aggressive"}, Value: &v}
	if err := opt.Set("Bogus"); err == nil {
		t.Error("Set should reject a value outside Combos")
	}
	if v != "Default" {
		t.Errorf("rejected Set should leave Value unchanged, got %q", v)
	}
}
