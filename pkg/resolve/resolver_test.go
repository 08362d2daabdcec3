package resolve

import (
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/coolbeans/lexcite/pkg/citation"
	"github.com/coolbeans/lexcite/pkg/pattern"
)

// extract runs the default tokenizer and extractors over text with an
// identity position map.
func extract(t *testing.T, text string) []*citation.Citation {
	t.Helper()
	tokenizer := pattern.NewTokenizer(pattern.Default(), nil)
	var citations []*citation.Citation
	for _, token := range tokenizer.Tokenize(text) {
		cit, err := citation.Extract(token, nil, text, citation.Options{})
		if err != nil {
			t.Fatalf("Extract(%q) failed: %v", token.Text, err)
		}
		citations = append(citations, cit)
	}
	return citations
}

func resolveText(t *testing.T, text string, opts Options) []*ResolvedCitation {
	t.Helper()
	r, err := NewResolver(text, opts)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	return r.Resolve(extract(t, text))
}

func TestResolveID(t *testing.T) {
	text := "Smith v. Jones, 500 F.2d 123 (9th Cir. 2020). Id. at 125."
	results := resolveText(t, text, Options{})
	if len(results) != 2 {
		t.Fatalf("Expected 2 citations, got %d", len(results))
	}
	if results[0].Resolution != nil {
		t.Errorf("Expected no resolution on the full citation, got %+v", results[0].Resolution)
	}

	res := results[1].Resolution
	if res == nil {
		t.Fatal("Expected a resolution on the id citation")
	}
	if res.Status != StatusResolved {
		t.Fatalf("Expected resolved, got %s (%s)", res.Status, res.Reason)
	}
	if res.Index != 0 {
		t.Errorf("Expected index 0, got %d", res.Index)
	}
	if res.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %v", res.Confidence)
	}
	if meta := results[1].Citation.ID; meta == nil || meta.Pincite != "125" {
		t.Errorf("Expected id pincite 125, got %+v", meta)
	}
}

func TestResolveIDWithoutCase(t *testing.T) {
	results := resolveText(t, "42 U.S.C. § 1983 governs this claim. Id.", Options{})
	if len(results) != 2 {
		t.Fatalf("Expected 2 citations, got %d", len(results))
	}
	res := results[1].Resolution
	if res == nil || res.Status != StatusFailed {
		t.Fatalf("Expected failure, got %+v", res)
	}
	if res.Reason != "no preceding case citation" {
		t.Errorf("Reason: got %q", res.Reason)
	}
	if res.Index != -1 {
		t.Errorf("Expected index -1, got %d", res.Index)
	}
}

func TestResolveIDSkipsNonCases(t *testing.T) {
	text := "Smith v. Jones, 500 F.2d 123 (9th Cir. 2020). See 42 U.S.C. § 1983. Id. at 125."
	results := resolveText(t, text, Options{})
	if len(results) != 3 {
		t.Fatalf("Expected 3 citations, got %d", len(results))
	}
	res := results[2].Resolution
	if res == nil || res.Status != StatusResolved {
		t.Fatalf("Expected resolved, got %+v", res)
	}
	if res.Index != 0 {
		t.Errorf("Expected the id to reach past the statute to index 0, got %d", res.Index)
	}
}

func TestResolveIDAcrossParagraphs(t *testing.T) {
	text := "Smith v. Jones, 500 F.2d 123 (9th Cir. 2020).\n\nId. at 125."

	t.Run("paragraph_scope", func(t *testing.T) {
		results := resolveText(t, text, Options{})
		if results[0].Paragraph != 0 || results[1].Paragraph != 1 {
			t.Fatalf("Expected paragraphs 0 and 1, got %d and %d",
				results[0].Paragraph, results[1].Paragraph)
		}
		res := results[1].Resolution
		if res == nil || res.Status != StatusFailed {
			t.Fatalf("Expected failure, got %+v", res)
		}
		if res.Reason != "nearest case citation is outside the resolution scope" {
			t.Errorf("Reason: got %q", res.Reason)
		}
	})

	t.Run("no_scope", func(t *testing.T) {
		results := resolveText(t, text, Options{Scope: ScopeNone})
		res := results[1].Resolution
		if res == nil || res.Status != StatusResolved || res.Index != 0 {
			t.Fatalf("Expected resolution to index 0, got %+v", res)
		}
	})
}

func TestResolveSupraFuzzy(t *testing.T) {
	text := "Smith v. Jones, 500 F.2d 123. Smyth, supra, at 130."
	results := resolveText(t, text, Options{})
	if len(results) != 2 {
		t.Fatalf("Expected 2 citations, got %d", len(results))
	}

	res := results[1].Resolution
	if res == nil {
		t.Fatal("Expected a resolution on the supra citation")
	}
	if res.Status != StatusResolved {
		t.Fatalf("Expected resolved, got %s (%s)", res.Status, res.Reason)
	}
	if res.Index != 0 {
		t.Errorf("Expected index 0, got %d", res.Index)
	}
	if !approx(res.Confidence, 0.8) {
		t.Errorf("Expected confidence 0.8, got %v", res.Confidence)
	}
	if len(res.Warnings) != 1 || res.Warnings[0] != "fuzzy party match (similarity 0.80)" {
		t.Errorf("Warnings: got %v", res.Warnings)
	}
	if meta := results[1].Citation.Supra; meta == nil || meta.Pincite != "130" {
		t.Errorf("Expected supra pincite 130, got %+v", meta)
	}
}

func TestResolveSupraExact(t *testing.T) {
	text := "Brown v. Board of Education, 347 U.S. 483 (1954). Brown, supra, at 495."
	results := resolveText(t, text, Options{})
	if len(results) != 2 {
		t.Fatalf("Expected 2 citations, got %d", len(results))
	}
	res := results[1].Resolution
	if res == nil || res.Status != StatusResolved {
		t.Fatalf("Expected resolved, got %+v", res)
	}
	if res.Index != 0 {
		t.Errorf("Expected index 0, got %d", res.Index)
	}
	if res.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %v", res.Confidence)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Expected no warnings on an exact match, got %v", res.Warnings)
	}
}

func TestResolveSupraDisableFuzzy(t *testing.T) {
	opts := Options{DisableFuzzyMatching: true}

	t.Run("near_miss_fails", func(t *testing.T) {
		results := resolveText(t, "Smith v. Jones, 500 F.2d 123. Smyth, supra, at 130.", opts)
		res := results[1].Resolution
		if res == nil || res.Status != StatusFailed {
			t.Fatalf("Expected failure, got %+v", res)
		}
		if res.Reason != `no antecedent within similarity 0.80 of party "Smyth"` {
			t.Errorf("Reason: got %q", res.Reason)
		}
	})

	t.Run("exact_still_resolves", func(t *testing.T) {
		results := resolveText(t, "Smith v. Jones, 500 F.2d 123. Smith, supra, at 130.", opts)
		res := results[1].Resolution
		if res == nil || res.Status != StatusResolved || res.Index != 0 {
			t.Fatalf("Expected resolution to index 0, got %+v", res)
		}
		if res.Confidence != 1.0 || len(res.Warnings) != 0 {
			t.Errorf("Expected a clean exact match, got confidence %v warnings %v",
				res.Confidence, res.Warnings)
		}
	})
}

func TestResolveSupraThreshold(t *testing.T) {
	text := "Smith v. Jones, 500 F.2d 123. Smyth, supra, at 130."
	results := resolveText(t, text, Options{PartyMatchThreshold: 0.9})
	res := results[1].Resolution
	if res == nil || res.Status != StatusFailed {
		t.Fatalf("Expected failure above the similarity threshold, got %+v", res)
	}
	if res.Reason != `no antecedent within similarity 0.90 of party "Smyth"` {
		t.Errorf("Reason: got %q", res.Reason)
	}
}

func TestResolveSupraAcrossParagraphs(t *testing.T) {
	text := "Smith v. Jones, 500 F.2d 123.\n\nSmith, supra, at 130."

	results := resolveText(t, text, Options{})
	res := results[1].Resolution
	if res == nil || res.Status != StatusFailed {
		t.Fatalf("Expected failure across paragraphs, got %+v", res)
	}

	results = resolveText(t, text, Options{Scope: ScopeNone})
	res = results[1].Resolution
	if res == nil || res.Status != StatusResolved || res.Index != 0 {
		t.Fatalf("Expected unscoped resolution to index 0, got %+v", res)
	}
}

func TestResolveSupraPrefersRecent(t *testing.T) {
	// "Smath" sits one edit from both Smith and Smyth; the tie goes to
	// the later citation.
	text := "Smith v. Jones, 500 F.2d 123. Smyth v. Doe, 600 F.3d 1. Smath, supra, at 5."
	results := resolveText(t, text, Options{})
	if len(results) != 3 {
		t.Fatalf("Expected 3 citations, got %d", len(results))
	}
	res := results[2].Resolution
	if res == nil || res.Status != StatusResolved {
		t.Fatalf("Expected resolved, got %+v", res)
	}
	if res.Index != 1 {
		t.Errorf("Expected the tie to pick index 1, got %d", res.Index)
	}
	if !approx(res.Confidence, 0.8) {
		t.Errorf("Expected confidence 0.8, got %v", res.Confidence)
	}
}

func TestResolveShortForm(t *testing.T) {
	text := "Smith v. Jones, 500 F.2d 123 (9th Cir. 2020). The court in 500 F.2d at 125 held otherwise."
	results := resolveText(t, text, Options{})
	if len(results) != 2 {
		t.Fatalf("Expected 2 citations, got %d", len(results))
	}
	if results[1].Citation.Type != pattern.TypeShortFormCase {
		t.Fatalf("Expected a short form, got %s", results[1].Citation.Type)
	}

	res := results[1].Resolution
	if res == nil || res.Status != StatusResolved {
		t.Fatalf("Expected resolved, got %+v", res)
	}
	if res.Index != 0 {
		t.Errorf("Expected index 0, got %d", res.Index)
	}
	if res.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %v", res.Confidence)
	}
	if res.Reason != "volume and reporter match" {
		t.Errorf("Reason: got %q", res.Reason)
	}
	if meta := results[1].Citation.ShortCase; meta == nil || meta.Page != "125" {
		t.Errorf("Expected short-form page 125, got %+v", meta)
	}
}

func TestResolveShortFormMismatches(t *testing.T) {
	cases := []struct {
		name           string
		text           string
		opts           Options
		expectedStatus Status
		expectedReason string
	}{
		{
			name:           "different_volume",
			text:           "Smith v. Jones, 500 F.2d 123 (9th Cir. 2020). But see 501 F.2d at 125.",
			expectedStatus: StatusFailed,
			expectedReason: "no preceding case citation reports 501 F.2d",
		},
		{
			name:           "different_reporter",
			text:           "Smith v. Jones, 500 F. Supp. 123 (S.D.N.Y. 2020). Compare 500 F.2d at 125.",
			expectedStatus: StatusFailed,
			expectedReason: "no preceding case citation reports 500 F.2d",
		},
		{
			name:           "antecedent_outside_paragraph",
			text:           "Smith v. Jones, 500 F.2d 123 (9th Cir. 2020).\n\n500 F.2d at 125.",
			expectedStatus: StatusFailed,
			expectedReason: "no preceding case citation reports 500 F.2d",
		},
		{
			name:           "antecedent_outside_paragraph_unscoped",
			text:           "Smith v. Jones, 500 F.2d 123 (9th Cir. 2020).\n\n500 F.2d at 125.",
			opts:           Options{Scope: ScopeNone},
			expectedStatus: StatusResolved,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			results := resolveText(t, tc.text, tc.opts)
			if len(results) != 2 {
				t.Fatalf("Expected 2 citations, got %d", len(results))
			}
			res := results[1].Resolution
			if res == nil {
				t.Fatal("Expected a resolution")
			}
			if res.Status != tc.expectedStatus {
				t.Fatalf("Status: got %s (%s), want %s", res.Status, res.Reason, tc.expectedStatus)
			}
			if tc.expectedReason != "" && res.Reason != tc.expectedReason {
				t.Errorf("Reason: got %q, want %q", res.Reason, tc.expectedReason)
			}
		})
	}
}

func TestResolveShortFormSkipsNonCases(t *testing.T) {
	text := "Smith v. Jones, 500 F.2d 123 (9th Cir. 2020). See 42 U.S.C. § 1983. 500 F.2d at 125 applies."
	results := resolveText(t, text, Options{})
	if len(results) != 3 {
		t.Fatalf("Expected 3 citations, got %d", len(results))
	}
	res := results[2].Resolution
	if res == nil || res.Status != StatusResolved || res.Index != 0 {
		t.Fatalf("Expected resolution past the statute to index 0, got %+v", res)
	}
}

func TestResolveFallbackPartyName(t *testing.T) {
	// The case citation carries no extracted name, so the history key
	// falls back to the last capitalized word before the volume.
	text := "The court agreed with Calder. 500 F.2d 123, 125 (9th Cir. 1990). Calder, supra, at 130."
	results := resolveText(t, text, Options{})
	if len(results) != 2 {
		t.Fatalf("Expected 2 citations, got %d", len(results))
	}
	if name := results[0].Citation.Case.CaseName; name != "" {
		t.Fatalf("Expected a nameless case citation, got %q", name)
	}

	res := results[1].Resolution
	if res == nil || res.Status != StatusResolved {
		t.Fatalf("Expected resolved, got %+v", res)
	}
	if res.Index != 0 {
		t.Errorf("Expected index 0, got %d", res.Index)
	}
	if res.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %v", res.Confidence)
	}
}

func TestResolveMissingMetadata(t *testing.T) {
	cases := []struct {
		name           string
		cit            *citation.Citation
		expectedReason string
	}{
		{
			name:           "supra_blank_name",
			cit:            &citation.Citation{Type: pattern.TypeSupra, Supra: &citation.SupraMeta{Name: "   "}},
			expectedReason: "supra citation names no party",
		},
		{
			name:           "supra_nil_meta",
			cit:            &citation.Citation{Type: pattern.TypeSupra},
			expectedReason: "supra citation names no party",
		},
		{
			name:           "short_form_nil_meta",
			cit:            &citation.Citation{Type: pattern.TypeShortFormCase},
			expectedReason: "short form carries no volume and reporter",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewResolver("", Options{})
			if err != nil {
				t.Fatalf("NewResolver failed: %v", err)
			}
			results := r.Resolve([]*citation.Citation{tc.cit})
			res := results[0].Resolution
			if res == nil || res.Status != StatusFailed {
				t.Fatalf("Expected failure, got %+v", res)
			}
			if res.Reason != tc.expectedReason {
				t.Errorf("Reason: got %q, want %q", res.Reason, tc.expectedReason)
			}
		})
	}
}

func TestResolveParagraphs(t *testing.T) {
	text := "Smith v. Jones, 500 F.2d 123.\n\nSee 42 U.S.C. § 1983.\n\n110 Yale L.J. 443 discusses this."
	results := resolveText(t, text, Options{})
	if len(results) != 3 {
		t.Fatalf("Expected 3 citations, got %d", len(results))
	}
	for i, expected := range []int{0, 1, 2} {
		if results[i].Paragraph != expected {
			t.Errorf("Citation %d: expected paragraph %d, got %d", i, expected, results[i].Paragraph)
		}
		if results[i].Resolution != nil {
			t.Errorf("Citation %d: expected no resolution, got %+v", i, results[i].Resolution)
		}
	}
}

func TestResolveDeterministic(t *testing.T) {
	text := "Smith v. Jones, 500 F.2d 123. Smyth v. Doe, 600 F.3d 1. Smath, supra, at 5. Id. at 6."
	citations := extract(t, text)
	r, err := NewResolver(text, Options{})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	first := r.Resolve(citations)
	for i := 0; i < 10; i++ {
		again := r.Resolve(citations)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Resolve is not deterministic: run %d differs", i)
		}
	}
}

func TestResolveConcurrent(t *testing.T) {
	text := "Smith v. Jones, 500 F.2d 123. Smyth v. Doe, 600 F.3d 1. Smath, supra, at 5. Id. at 6."
	citations := extract(t, text)
	r, err := NewResolver(text, Options{})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	sequential := r.Resolve(citations)

	out := make([][]*ResolvedCitation, 4)
	var wg sync.WaitGroup
	for k := range out {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			out[k] = r.Resolve(citations)
		}(k)
	}
	wg.Wait()

	for k, got := range out {
		if !reflect.DeepEqual(sequential, got) {
			t.Errorf("Concurrent run %d differs from the sequential result", k)
		}
	}
}

func TestNewResolverErrors(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{"unknown_scope", Options{Scope: "chapter"}},
		{"threshold_above_one", Options{PartyMatchThreshold: 1.5}},
		{"bad_boundary", Options{ParagraphBoundary: "["}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewResolver("text", tc.opts); err == nil {
				t.Fatal("Expected an error")
			}
		})
	}

	if _, err := NewResolver("text", Options{Scope: "chapter"}); err == nil || !strings.Contains(err.Error(), "chapter") {
		t.Errorf("Expected the error to name the scope, got %v", err)
	}
}

func TestScopeAliases(t *testing.T) {
	text := "Smith v. Jones, 500 F.2d 123 (9th Cir. 2020).\n\nId. at 125."
	for _, scope := range []ScopeStrategy{ScopeSection, ScopeFootnote} {
		t.Run(string(scope), func(t *testing.T) {
			results := resolveText(t, text, Options{Scope: scope})
			res := results[1].Resolution
			if res == nil || res.Status != StatusFailed {
				t.Fatalf("Expected paragraph semantics under %s, got %+v", scope, res)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.defaults()
	if opts.Scope != ScopeParagraph {
		t.Errorf("Scope: got %q", opts.Scope)
	}
	if opts.ParagraphBoundary != DefaultParagraphBoundary {
		t.Errorf("ParagraphBoundary: got %q", opts.ParagraphBoundary)
	}
	if opts.PartyMatchThreshold != 0.8 {
		t.Errorf("PartyMatchThreshold: got %v", opts.PartyMatchThreshold)
	}
	if opts.PartyFallbackWindow != 100 {
		t.Errorf("PartyFallbackWindow: got %d", opts.PartyFallbackWindow)
	}
}
