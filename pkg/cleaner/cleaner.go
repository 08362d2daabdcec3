// Package cleaner normalizes document text ahead of pattern matching
// while preserving a byte-accurate translation back to the input.
//
// Each step is a pure string transformation. The cleaner applies its
// configured steps in order and rebuilds the position map after every
// step that changes the text, so spans found in the cleaned output
// translate to original offsets no matter how many steps ran.
package cleaner

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/coolbeans/lexcite/pkg/position"
)

// Func is a single text transformation. Implementations must be pure:
// same input, same output, no side effects.
type Func func(string) string

// Step pairs a transformation with the name it is registered under.
type Step struct {
	Name string
	Fn   Func
}

var (
	// htmlCommentPattern matches HTML comments. Non-greedy body so one
	// unterminated comment cannot swallow the document.
	htmlCommentPattern = regexp.MustCompile(`<!--[\s\S]*?-->`)

	// htmlTagPattern matches markup tags. The tag body is bounded so a
	// stray "<" in prose never consumes the rest of the text.
	htmlTagPattern = regexp.MustCompile(`</?[a-zA-Z][^<>]{0,256}>`)

	// inlineSpacePattern matches runs of spaces and tabs.
	inlineSpacePattern = regexp.MustCompile(`[ \t]{2,}`)

	// anySpacePattern matches runs of any whitespace including newlines.
	anySpacePattern = regexp.MustCompile(`\s{2,}`)

	// underscoreRunPattern matches underscore runs long enough to
	// collapse while keeping blank-page placeholders recognizable.
	underscoreRunPattern = regexp.MustCompile(`_{4,}`)

	// hyphenBreakPattern matches a word hyphenated across a line break,
	// continuing in lowercase.
	hyphenBreakPattern = regexp.MustCompile(`([a-zA-Z])-\n[ \t]*([a-z])`)

	// unicodeReplacer straightens typographic punctuation and drops
	// invisible characters that would otherwise break pattern matching.
	unicodeReplacer = strings.NewReplacer(
		"‘", "'", // left single quote
		"’", "'", // right single quote
		"“", `"`, // left double quote
		"”", `"`, // right double quote
		"–", "-", // en dash
		"—", "-", // em dash
		" ", " ", // non-breaking space
		"…", "...", // ellipsis
		"­", "", // soft hyphen
		"​", "", // zero-width space
		"‌", "", // zero-width non-joiner
		"‍", "", // zero-width joiner
		"\uFEFF", "", // byte order mark
	)
)

// cleanHTML drops comments and markup tags, then decodes entities. Tags
// are removed rather than replaced with a space: an inserted byte that
// never existed in the input can mis-anchor the position diff, while a
// pure deletion always maps exactly.
func cleanHTML(text string) string {
	text = htmlCommentPattern.ReplaceAllString(text, "")
	text = htmlTagPattern.ReplaceAllString(text, "")
	return html.UnescapeString(text)
}

func normalizeUnicode(text string) string {
	return unicodeReplacer.Replace(text)
}

func collapseInlineWhitespace(text string) string {
	return inlineSpacePattern.ReplaceAllString(text, " ")
}

func collapseAllWhitespace(text string) string {
	return anySpacePattern.ReplaceAllString(text, " ")
}

// collapseUnderscores shortens long underscore runs to exactly three so
// blank-page placeholders stay detectable but bounded.
func collapseUnderscores(text string) string {
	return underscoreRunPattern.ReplaceAllString(text, "___")
}

func rejoinHyphenatedWords(text string) string {
	return hyphenBreakPattern.ReplaceAllString(text, "$1$2")
}

// builtins maps registry names to transformations. Configuration refers
// to steps by these names.
var builtins = map[string]Func{
	"html":              cleanHTML,
	"unicode":           normalizeUnicode,
	"underscores":       collapseUnderscores,
	"inline_whitespace": collapseInlineWhitespace,
	"all_whitespace":    collapseAllWhitespace,
	"hyphenation":       rejoinHyphenatedWords,
}

// Names returns all registered step names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Steps resolves registry names into an ordered step list. Unknown
// names are an error.
func Steps(names ...string) ([]Step, error) {
	steps := make([]Step, 0, len(names))
	for _, name := range names {
		fn, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("unknown cleaner step %q", name)
		}
		steps = append(steps, Step{Name: name, Fn: fn})
	}
	return steps, nil
}

// DefaultSteps returns the standard cleaning sequence: markup removal,
// unicode normalization, underscore collapsing, and inline whitespace
// collapsing. Newlines survive so paragraph boundaries remain visible
// to later stages.
func DefaultSteps() []Step {
	steps, err := Steps("html", "unicode", "underscores", "inline_whitespace")
	if err != nil {
		panic(err)
	}
	return steps
}

// Cleaner applies an ordered step list with position tracking.
type Cleaner struct {
	steps     []Step
	lookahead int
}

// Result carries the cleaned text together with the position map that
// translates between it and the original input.
type Result struct {
	Original string
	Text     string
	Map      *position.Map
	// Applied lists the steps that actually changed the text, in order.
	Applied []string
}

// New builds a cleaner over the given steps with the default diff
// lookahead. No steps means no transformation.
func New(steps ...Step) *Cleaner {
	return NewLookahead(steps, position.DefaultLookahead)
}

// NewLookahead builds a cleaner with an explicit diff lookahead window.
func NewLookahead(steps []Step, lookahead int) *Cleaner {
	return &Cleaner{steps: steps, lookahead: lookahead}
}

// Clean runs every step in order over the text. Cleaning never fails:
// steps are pure transformations and the position diff degrades rather
// than erroring on divergences wider than its lookahead.
func (c *Cleaner) Clean(text string) *Result {
	b := position.NewBuilderLookahead(text, c.lookahead)
	current := text
	var applied []string
	for _, step := range c.steps {
		next := step.Fn(current)
		if next == current {
			continue
		}
		b.Advance(next)
		applied = append(applied, step.Name)
		current = next
	}
	return &Result{
		Original: text,
		Text:     current,
		Map:      b.Build(),
		Applied:  applied,
	}
}
