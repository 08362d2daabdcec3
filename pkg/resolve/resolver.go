// Package resolve links short-form citations back to their antecedent
// full citations within one document. "Id. at 125" points at the
// nearest preceding case citation, "Smyth, supra" at the best
// party-name match in the document's history, and "500 F.2d at 125" at
// the citation that shares its volume and reporter.
package resolve

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/coolbeans/lexcite/pkg/citation"
	"github.com/coolbeans/lexcite/pkg/pattern"
	"github.com/coolbeans/lexcite/pkg/reporters"
)

// ScopeStrategy names the textual region within which a short form may
// reach its antecedent.
type ScopeStrategy string

const (
	// ScopeParagraph restricts resolution to the same paragraph.
	ScopeParagraph ScopeStrategy = "paragraph"

	// ScopeSection and ScopeFootnote currently share paragraph
	// semantics; they are distinct names so documents configured for
	// them keep working when the strategies diverge.
	ScopeSection  ScopeStrategy = "section"
	ScopeFootnote ScopeStrategy = "footnote"

	// ScopeNone lifts the restriction entirely.
	ScopeNone ScopeStrategy = "none"
)

// Options configure a Resolver. The zero value means defaults.
type Options struct {
	// Scope selects the resolution scope strategy.
	Scope ScopeStrategy `yaml:"scope" json:"scope"`

	// ParagraphBoundary is the pattern that separates paragraphs in
	// the original text. Default: two or more newlines.
	ParagraphBoundary string `yaml:"paragraph_boundary" json:"paragraph_boundary"`

	// DisableFuzzyMatching restricts supra resolution to exact
	// normalized party names.
	DisableFuzzyMatching bool `yaml:"disable_fuzzy_matching" json:"disable_fuzzy_matching"`

	// PartyMatchThreshold is the minimum normalized similarity for a
	// supra match. Default 0.8.
	PartyMatchThreshold float64 `yaml:"party_match_threshold" json:"party_match_threshold"`

	// ReportUnresolved includes per-citation detail for failed
	// resolutions in the generated report.
	ReportUnresolved bool `yaml:"report_unresolved" json:"report_unresolved"`

	// PartyFallbackWindow is how far back, in bytes of original text,
	// to look for a party name when a case citation carries none.
	// Default 100.
	PartyFallbackWindow int `yaml:"party_fallback_window" json:"party_fallback_window"`
}

// DefaultParagraphBoundary separates paragraphs on blank lines.
const DefaultParagraphBoundary = `\n{2,}`

func (o Options) defaults() Options {
	if o.Scope == "" {
		o.Scope = ScopeParagraph
	}
	if o.ParagraphBoundary == "" {
		o.ParagraphBoundary = DefaultParagraphBoundary
	}
	if o.PartyMatchThreshold <= 0 {
		o.PartyMatchThreshold = 0.8
	}
	if o.PartyFallbackWindow <= 0 {
		o.PartyFallbackWindow = 100
	}
	return o
}

// Status is the outcome of one resolution attempt.
type Status string

const (
	StatusResolved Status = "resolved"
	StatusFailed   Status = "failed"
)

// Resolution is the typed result attached to a short-form citation.
// Failure carries a reason string; resolution never raises.
type Resolution struct {
	Status     Status   `json:"status"`
	Index      int      `json:"index"`
	Confidence float64  `json:"confidence"`
	Reason     string   `json:"reason,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// ResolvedCitation wraps a citation with its paragraph id and, for the
// three short-form types, a resolution. The input citation is not
// mutated.
type ResolvedCitation struct {
	Citation   *citation.Citation `json:"citation"`
	Paragraph  int                `json:"paragraph"`
	Resolution *Resolution        `json:"resolution,omitempty"`
}

// fallbackNamePattern picks capitalized words out of the text before a
// nameless case citation.
var fallbackNamePattern = regexp.MustCompile(`[A-Z][A-Za-z'&.\-]{1,40}`)

// Resolver resolves the short forms of one document. Instances hold
// the document text and its paragraph boundaries; a fresh Resolver is
// required per document. Resolve carries its pass state locally, so
// one Resolver may serve repeated or concurrent calls over the same
// document.
type Resolver struct {
	opts       Options
	original   string
	paraStarts []int
}

// NewResolver prepares a resolver for one document's original text.
func NewResolver(originalText string, opts Options) (*Resolver, error) {
	opts = opts.defaults()

	switch opts.Scope {
	case ScopeParagraph, ScopeSection, ScopeFootnote, ScopeNone:
	default:
		return nil, fmt.Errorf("unknown scope strategy %q", opts.Scope)
	}
	if opts.PartyMatchThreshold > 1 {
		return nil, fmt.Errorf("party match threshold %v outside (0, 1]", opts.PartyMatchThreshold)
	}

	boundary, err := regexp.Compile(opts.ParagraphBoundary)
	if err != nil {
		return nil, fmt.Errorf("compiling paragraph boundary: %w", err)
	}

	starts := []int{0}
	for _, m := range boundary.FindAllStringIndex(originalText, -1) {
		starts = append(starts, m[1])
	}

	return &Resolver{
		opts:       opts,
		original:   originalText,
		paraStarts: starts,
	}, nil
}

// paragraphOf maps an original-text offset to its paragraph id.
func (r *Resolver) paragraphOf(pos int) int {
	idx := sort.Search(len(r.paraStarts), func(k int) bool {
		return r.paraStarts[k] > pos
	}) - 1
	if idx < 0 {
		idx = 0
	}
	return idx
}

func (r *Resolver) scoped() bool {
	return r.opts.Scope != ScopeNone
}

type historyEntry struct {
	index     int
	paragraph int
}

// Resolve walks the document's citations once, in order, recording
// case citations and resolving the short forms against what has been
// recorded so far. The results parallel the input slice.
func (r *Resolver) Resolve(citations []*citation.Citation) []*ResolvedCitation {
	paras := make([]int, len(citations))
	for i, cit := range citations {
		paras[i] = r.paragraphOf(cit.Span.OriginalStart)
	}

	lastCase, lastCasePara := -1, -1
	history := make(map[string]historyEntry)

	results := make([]*ResolvedCitation, len(citations))
	for i, cit := range citations {
		results[i] = &ResolvedCitation{Citation: cit, Paragraph: paras[i]}

		switch cit.Type {
		case pattern.TypeCase:
			if cit.Case == nil {
				continue
			}
			lastCase, lastCasePara = i, paras[i]
			for _, key := range r.partyKeys(cit) {
				history[key] = historyEntry{index: i, paragraph: paras[i]}
			}

		case pattern.TypeID:
			results[i].Resolution = r.resolveID(lastCase, lastCasePara, paras[i])

		case pattern.TypeSupra:
			results[i].Resolution = r.resolveSupra(cit, history, paras[i])

		case pattern.TypeShortFormCase:
			results[i].Resolution = r.resolveShortForm(cit, citations, paras, i)
		}
	}
	return results
}

// partyKeys returns the history keys for a case citation, defendant
// before plaintiff so a shared surname keeps the plaintiff's entry.
// A citation without extracted names falls back to the last
// capitalized word in the window before it.
func (r *Resolver) partyKeys(cit *citation.Citation) []string {
	meta := cit.Case
	var keys []string
	if meta.NormalizedDefendant != "" {
		keys = append(keys, meta.NormalizedDefendant)
	}
	if meta.NormalizedPlaintiff != "" {
		keys = append(keys, meta.NormalizedPlaintiff)
	}
	if len(keys) > 0 {
		return keys
	}
	if key := r.fallbackPartyKey(cit); key != "" {
		keys = append(keys, key)
	}
	return keys
}

func (r *Resolver) fallbackPartyKey(cit *citation.Citation) string {
	start := cit.Span.OriginalStart
	if start < 0 || start > len(r.original) {
		return ""
	}
	from := start - r.opts.PartyFallbackWindow
	if from < 0 {
		from = 0
	}
	words := fallbackNamePattern.FindAllString(r.original[from:start], -1)
	if len(words) == 0 {
		return ""
	}
	return citation.NormalizeParty(words[len(words)-1])
}

func (r *Resolver) resolveID(lastCase, lastCasePara, para int) *Resolution {
	if lastCase < 0 {
		return failed("no preceding case citation")
	}
	if r.scoped() && lastCasePara != para {
		return failed("nearest case citation is outside the resolution scope")
	}
	return resolved(lastCase, 1.0, "nearest preceding case citation")
}

func (r *Resolver) resolveSupra(cit *citation.Citation, history map[string]historyEntry, para int) *Resolution {
	if cit.Supra == nil || strings.TrimSpace(cit.Supra.Name) == "" {
		return failed("supra citation names no party")
	}
	key := citation.NormalizeParty(cit.Supra.Name)
	if key == "" {
		return failed("supra citation names no party")
	}

	bestIndex, bestSim := -1, 0.0
	for name, entry := range history {
		if r.scoped() && entry.paragraph != para {
			continue
		}
		sim := Similarity(key, name)
		if r.opts.DisableFuzzyMatching && sim < 1.0 {
			continue
		}
		// Ties between equally similar parties go to the more recent
		// citation.
		if sim > bestSim || (sim == bestSim && entry.index > bestIndex) {
			bestIndex, bestSim = entry.index, sim
		}
	}

	if bestIndex < 0 || bestSim < r.opts.PartyMatchThreshold {
		return failed(fmt.Sprintf("no antecedent within similarity %.2f of party %q",
			r.opts.PartyMatchThreshold, cit.Supra.Name))
	}

	res := resolved(bestIndex, bestSim, "matched antecedent party")
	if bestSim < 1.0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("fuzzy party match (similarity %.2f)", bestSim))
	}
	return res
}

func (r *Resolver) resolveShortForm(cit *citation.Citation, citations []*citation.Citation, paras []int, i int) *Resolution {
	meta := cit.ShortCase
	if meta == nil {
		return failed("short form carries no volume and reporter")
	}
	wantReporter := reporters.Normalize(meta.Reporter)

	for j := i - 1; j >= 0; j-- {
		// Paragraph ids never decrease, so the first out-of-scope
		// candidate ends the search.
		if r.scoped() && paras[j] != paras[i] {
			break
		}
		prev := citations[j]
		if prev.Type != pattern.TypeCase || prev.Case == nil {
			continue
		}
		if prev.Case.Volume == meta.Volume && reporters.Normalize(prev.Case.Reporter) == wantReporter {
			return resolved(j, 1.0, "volume and reporter match")
		}
	}
	return failed(fmt.Sprintf("no preceding case citation reports %s %s", meta.Volume, meta.Reporter))
}

func resolved(index int, confidence float64, reason string) *Resolution {
	return &Resolution{
		Status:     StatusResolved,
		Index:      index,
		Confidence: confidence,
		Reason:     reason,
	}
}

func failed(reason string) *Resolution {
	return &Resolution{
		Status: StatusFailed,
		Index:  -1,
		Reason: reason,
	}
}
