package cleaner

import (
	"strings"
	"testing"
)

func TestCleanStripsMarkup(t *testing.T) {
	original := `<p>See <i>Smith v. Jones</i>, 500 U.S. 100 (2020).</p>`
	c := New(DefaultSteps()...)
	res := c.Clean(original)

	want := "See Smith v. Jones, 500 U.S. 100 (2020)."
	if res.Text != want {
		t.Fatalf("Expected %q, got %q", want, res.Text)
	}

	cleanIdx := strings.Index(res.Text, "Smith v. Jones")
	origIdx := strings.Index(original, "Smith v. Jones")
	if got := res.Map.ToOriginal(cleanIdx); got != origIdx {
		t.Errorf("Expected ToOriginal(%d)=%d, got %d", cleanIdx, origIdx, got)
	}
	end := cleanIdx + len("Smith v. Jones")
	if got := res.Map.ToOriginal(end); got != origIdx+len("Smith v. Jones") {
		t.Errorf("Expected span end to map to %d, got %d", origIdx+len("Smith v. Jones"), got)
	}

	if len(res.Applied) != 1 || res.Applied[0] != "html" {
		t.Errorf("Expected applied steps [html], got %v", res.Applied)
	}
}

func TestCleanDecodesEntities(t *testing.T) {
	original := "Smith &amp; Sons v. Jones, 500 F.2d 123"
	c := New(DefaultSteps()...)
	res := c.Clean(original)

	want := "Smith & Sons v. Jones, 500 F.2d 123"
	if res.Text != want {
		t.Fatalf("Expected %q, got %q", want, res.Text)
	}

	cleanIdx := strings.Index(res.Text, "Jones")
	origIdx := strings.Index(original, "Jones")
	if got := res.Map.ToOriginal(cleanIdx); got != origIdx {
		t.Errorf("Expected ToOriginal(%d)=%d, got %d", cleanIdx, origIdx, got)
	}
}

func TestCleanNormalizesUnicode(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"curly apostrophe", "Smith’s Estate v. Jones", "Smith's Estate v. Jones"},
		{"curly quotes", "“en banc”", `"en banc"`},
		{"en dash", "123–124", "123-124"},
		{"non-breaking space", "500 U.S. 100", "500 U.S. 100"},
		{"soft hyphen dropped", "Jo­nes", "Jones"},
		{"zero width dropped", "Id.​ at 5", "Id. at 5"},
	}
	c := New(DefaultSteps()...)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := c.Clean(tc.in)
			if res.Text != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, res.Text)
			}
		})
	}
}

func TestCollapseUnderscores(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"long run collapsed", "500 F.2d ______", "500 F.2d ___"},
		{"three kept as is", "500 F.2d ___", "500 F.2d ___"},
		{"short run kept", "a __ b", "a __ b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := collapseUnderscores(tc.in); got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRejoinHyphenatedWords(t *testing.T) {
	in := "the consti-\ntution provides"
	want := "the constitution provides"
	if got := rejoinHyphenatedWords(in); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestCollapseAllWhitespace(t *testing.T) {
	in := "first paragraph\n\nsecond  paragraph"
	want := "first paragraph second paragraph"
	if got := collapseAllWhitespace(in); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"<p>Smith v. Jones, 500 F.2d 123 (9th Cir. 2020).</p>",
		"Roe  v.\tWade, 410 U.S. 113 (1973)",
		"500 F.2d ______ (2020)",
		"plain text with no markup at all",
	}
	c := New(DefaultSteps()...)
	for _, in := range inputs {
		first := c.Clean(in)
		second := c.Clean(first.Text)
		if second.Text != first.Text {
			t.Errorf("Expected second clean of %q to be a no-op, got %q", first.Text, second.Text)
		}
		if !second.Map.IsIdentity() {
			t.Errorf("Expected identity map when cleaning already-clean text %q", first.Text)
		}
		if len(second.Applied) != 0 {
			t.Errorf("Expected no applied steps on clean text, got %v", second.Applied)
		}
	}
}

func TestStepsUnknownName(t *testing.T) {
	_, err := Steps("html", "nonsense")
	if err == nil {
		t.Fatal("Expected error for unknown step name")
	}
	if !strings.Contains(err.Error(), "nonsense") {
		t.Errorf("Expected error to name the unknown step, got %v", err)
	}
}

func TestNamesCoverBuiltins(t *testing.T) {
	names := Names()
	if len(names) != len(builtins) {
		t.Fatalf("Expected %d names, got %d", len(builtins), len(names))
	}
	for _, name := range names {
		if _, ok := builtins[name]; !ok {
			t.Errorf("Names() returned unregistered step %q", name)
		}
	}
}

func TestCleanNoSteps(t *testing.T) {
	c := New()
	res := c.Clean("anything <b>at all</b>")
	if res.Text != res.Original {
		t.Errorf("Expected untouched text, got %q", res.Text)
	}
	if !res.Map.IsIdentity() {
		t.Error("Expected identity map with no steps")
	}
}

// FuzzClean checks that cleaning arbitrary input never panics and that
// every cleaned position translates to an in-bounds original offset.
// Run with: go test -fuzz=FuzzClean -fuzztime=30s ./pkg/cleaner/...
func FuzzClean(f *testing.F) {
	seeds := []string{
		"",
		"<p>Smith v. Jones, 500 F.2d 123</p>",
		"&amp;amp;",
		"<!-- comment --> text <!-- another -->",
		"<<<>>>",
		"‘’“”–— ",
		strings.Repeat("_", 500),
		strings.Repeat("<b>", 200),
		"a\tb\nc\r\nd",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	c := New(DefaultSteps()...)
	f.Fuzz(func(t *testing.T, input string) {
		res := c.Clean(input)

		for pos := 0; pos <= len(res.Text); pos++ {
			orig := res.Map.ToOriginal(pos)
			if orig < 0 || orig > len(input) {
				t.Errorf("ToOriginal(%d)=%d out of range [0,%d]", pos, orig, len(input))
			}
		}
	})
}
