package compiler

import "testing"

func TestShouldCompileMethodInherentName(t *testing.T) {
	used := map[string]bool{"Counter::bump": true}
	if !shouldCompileMethod(used, "Counter", "", "bump") {
		t.Fatal("expected inherent Type::m match to keep the method")
	}
	if shouldCompileMethod(used, "Counter", "", "reset") {
		t.Fatal("expected an unused method to be eliminated")
	}
}

func TestShouldCompileMethodBareName(t *testing.T) {
	used := map[string]bool{"bump": true}
	if !shouldCompileMethod(used, "Counter", "", "bump") {
		t.Fatal("expected a bare-name call site to keep the method")
	}
}

func TestShouldCompileMethodTraitImplName(t *testing.T) {
	used := map[string]bool{"<Display as Counter>::fmt": true}
	if !shouldCompileMethod(used, "Counter", "Display", "fmt") {
		t.Fatal("expected the full <Trait as Type>::m name to keep the method")
	}
	if shouldCompileMethod(used, "Counter", "Display", "other") {
		t.Fatal("expected an unrelated trait method to be eliminated")
	}
}

func TestShouldCompileMethodTraitSuffixMentioningType(t *testing.T) {
	used := map[string]bool{"Wrapper::fmt": true}
	if !shouldCompileMethod(used, "Wrapper", "Display", "fmt") {
		t.Fatal("expected a ::m suffix mentioning the target type to keep a trait method")
	}
}

func TestShouldCompileMethodNoTraitNoSuffixMatch(t *testing.T) {
	used := map[string]bool{"Other::fmt": true}
	if shouldCompileMethod(used, "Counter", "", "fmt") {
		t.Fatal("expected an inherent method named fmt on an unrelated type to be eliminated")
	}
}

func TestContainsStr(t *testing.T) {
	cases := []struct {
		haystack, needle string
		want             bool
	}{
		{"Counter::bump", "Counter", true},
		{"Counter::bump", "bump", true},
		{"Counter::bump", "Zzz", false},
		{"x", "", true},
		{"", "x", false},
	}
	for _, c := range cases {
		if got := containsStr(c.haystack, c.needle); got != c.want {
			t.Fatalf("containsStr(%q, %q) = %v, want %v", c.haystack, c.needle, got, c.want)
		}
	}
}
