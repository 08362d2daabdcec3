package pipeline

import (
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/coolbeans/lexcite/pkg/citation"
	"github.com/coolbeans/lexcite/pkg/pattern"
	"github.com/coolbeans/lexcite/pkg/reporters"
	"github.com/coolbeans/lexcite/pkg/resolve"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	p, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func run(t *testing.T, opts Options, text string) *Result {
	t.Helper()
	result, err := newPipeline(t, opts).Run(text)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return result
}

func defaultReporters(t *testing.T) *reporters.DB {
	t.Helper()
	db, err := reporters.Default()
	if err != nil {
		t.Fatalf("Loading embedded reporters failed: %v", err)
	}
	return db
}

func TestRunResolvesID(t *testing.T) {
	opts := Options{Resolution: &resolve.Options{}, Reporters: defaultReporters(t)}
	result := run(t, opts, "Smith v. Jones, 500 F.2d 123 (9th Cir. 2020). Id. at 125.")

	if len(result.Citations) != 2 {
		t.Fatalf("Expected 2 citations, got %d", len(result.Citations))
	}
	res := result.Citations[1].Resolution
	if res == nil || res.Status != resolve.StatusResolved {
		t.Fatalf("Expected the id citation to resolve, got %+v", res)
	}
	if res.Index != 0 {
		t.Errorf("Expected index 0, got %d", res.Index)
	}
	if res.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %v", res.Confidence)
	}
	if result.Report == nil || result.Report.ShortForms != 1 || result.Report.Resolved != 1 {
		t.Errorf("Report: got %+v", result.Report)
	}
}

func TestRunBlankPage(t *testing.T) {
	result := run(t, Options{Reporters: defaultReporters(t)}, "500 F.2d ___")

	if len(result.Citations) != 1 {
		t.Fatalf("Expected 1 citation, got %d", len(result.Citations))
	}
	cit := result.Citations[0].Citation
	meta := cit.Case
	if meta == nil || !meta.HasBlankPage {
		t.Fatalf("Expected a blank-page case citation, got %+v", meta)
	}
	if meta.Page != "" {
		t.Errorf("Expected no page, got %q", meta.Page)
	}
	if cit.Confidence != citation.BlankPageConfidence {
		t.Errorf("Expected confidence %v, got %v", citation.BlankPageConfidence, cit.Confidence)
	}
}

func TestRunResolvesSupraFuzzy(t *testing.T) {
	opts := Options{Resolution: &resolve.Options{}, Reporters: defaultReporters(t)}
	result := run(t, opts, "Smith v. Jones, 500 F.2d 123. Smyth, supra, at 130.")

	if len(result.Citations) != 2 {
		t.Fatalf("Expected 2 citations, got %d", len(result.Citations))
	}
	res := result.Citations[1].Resolution
	if res == nil || res.Status != resolve.StatusResolved || res.Index != 0 {
		t.Fatalf("Expected resolution to index 0, got %+v", res)
	}
	if !approx(res.Confidence, 0.8) {
		t.Errorf("Expected confidence 0.8, got %v", res.Confidence)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "fuzzy party match") {
		t.Errorf("Warnings: got %v", res.Warnings)
	}
}

func TestRunLinksParallel(t *testing.T) {
	result := run(t, Options{Reporters: defaultReporters(t)}, "410 U.S. 113, 93 S. Ct. 705 (1973).")

	if len(result.Citations) != 2 {
		t.Fatalf("Expected 2 citations, got %d", len(result.Citations))
	}
	head := result.Citations[0].Citation.Case
	member := result.Citations[1].Citation.Case
	if head.GroupID != "410-U.S.-113" || member.GroupID != "410-U.S.-113" {
		t.Errorf("GroupIDs: got %q and %q", head.GroupID, member.GroupID)
	}
	if len(head.ParallelCitations) != 1 {
		t.Fatalf("Expected 1 parallel citation on the head, got %d", len(head.ParallelCitations))
	}
	parallel := head.ParallelCitations[0]
	if parallel.Volume != "93" || parallel.Reporter != "S. Ct." || parallel.Page != "705" {
		t.Errorf("Parallel: got %+v", parallel)
	}
	if len(member.ParallelCitations) != 0 {
		t.Errorf("Expected no parallel list on the member, got %d", len(member.ParallelCitations))
	}
}

func TestRunDeeplyNestedParens(t *testing.T) {
	text := strings.Repeat("(", 500) + "410 U.S. 113 (1973)."
	result := run(t, Options{}, text)
	if len(result.Citations) != 1 {
		t.Fatalf("Expected 1 citation, got %d", len(result.Citations))
	}
	if result.Citations[0].Citation.Type != pattern.TypeCase {
		t.Errorf("Type: got %s", result.Citations[0].Citation.Type)
	}
}

func TestRunSkipsMalformedTokens(t *testing.T) {
	lib := pattern.Default()
	err := lib.Register(&pattern.Pattern{ID: "docket", Type: pattern.TypeCase, Expr: `DOCKET-\d+`})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	result := run(t, Options{Patterns: lib}, "DOCKET-7 cited with 410 U.S. 113 (1973).")
	if len(result.Citations) != 1 {
		t.Fatalf("Expected 1 citation, got %d", len(result.Citations))
	}
	if result.Citations[0].Citation.MatchedText != "410 U.S. 113" {
		t.Errorf("Citation: got %q", result.Citations[0].Citation.MatchedText)
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("Expected 1 skipped token, got %d", len(result.Skipped))
	}
	skipped := result.Skipped[0]
	if skipped.Token.PatternID != "docket" {
		t.Errorf("Skipped pattern: got %q", skipped.Token.PatternID)
	}
	if !strings.Contains(skipped.Reason, "volume reporter page shape") {
		t.Errorf("Reason: got %q", skipped.Reason)
	}
}

func TestRunWithoutResolution(t *testing.T) {
	result := run(t, Options{}, "Smith v. Jones, 500 F.2d 123 (9th Cir. 2020). Id. at 125.")

	if len(result.Citations) != 2 {
		t.Fatalf("Expected 2 citations, got %d", len(result.Citations))
	}
	for i, rc := range result.Citations {
		if rc.Resolution != nil {
			t.Errorf("Citation %d: expected no resolution, got %+v", i, rc.Resolution)
		}
	}
	if result.Report != nil {
		t.Errorf("Expected no report, got %+v", result.Report)
	}
}

func TestRunMapsPositionsThroughCleaning(t *testing.T) {
	original := "<p>See <b>410 U.S. 113</b> (1973).</p>"
	result := run(t, Options{}, original)

	if result.CleanedText != "See 410 U.S. 113 (1973)." {
		t.Fatalf("CleanedText: got %q", result.CleanedText)
	}
	if len(result.Citations) != 1 {
		t.Fatalf("Expected 1 citation, got %d", len(result.Citations))
	}

	span := result.Citations[0].Citation.Span
	if span.CleanStart != 4 || span.CleanEnd != 16 {
		t.Errorf("Clean span: got [%d, %d)", span.CleanStart, span.CleanEnd)
	}
	if got := original[span.OriginalStart:span.OriginalEnd]; got != "410 U.S. 113" {
		t.Errorf("Original span covers %q", got)
	}
}

func TestRunConcurrent(t *testing.T) {
	opts := Options{Resolution: &resolve.Options{}, Reporters: defaultReporters(t)}
	p := newPipeline(t, opts)
	text := "Smith v. Jones, 500 F.2d 123. Smyth, supra, at 130. Id. at 131."

	base, err := p.Run(text)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out := make([]*Result, 4)
	errs := make([]error, 4)
	var wg sync.WaitGroup
	for k := range out {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			out[k], errs[k] = p.Run(text)
		}(k)
	}
	wg.Wait()

	for k := range out {
		if errs[k] != nil {
			t.Fatalf("Concurrent run %d failed: %v", k, errs[k])
		}
		if !reflect.DeepEqual(base, out[k]) {
			t.Errorf("Concurrent run %d differs from the sequential result", k)
		}
	}
}

func TestNewValidatesResolutionOptions(t *testing.T) {
	_, err := New(Options{Resolution: &resolve.Options{Scope: "bogus"}})
	if err == nil {
		t.Fatal("Expected an error")
	}
	if !strings.Contains(err.Error(), "resolution options") {
		t.Errorf("Error: got %v", err)
	}
}
