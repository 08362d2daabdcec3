package citation

import (
	"strings"

	"github.com/coolbeans/lexcite/pkg/pattern"
)

// DefaultParallelGap is the widest gap, in bytes of cleaned text,
// across which two case citations can still be parallel reports of one
// decision. The gap fits a comma and an intervening pincite.
const DefaultParallelGap = 12

// sharedParenWindow bounds the forward scan for the parenthetical a
// parallel chain shares.
const sharedParenWindow = 200

// LinkParallel joins adjacent case citations that report one decision
// in several reporters, as in "410 U.S. 113, 93 S. Ct. 705 (1973)".
// Two case citations link when the gap between them is inside
// gapWindow (<= 0 means DefaultParallelGap), contains a comma,
// contains no closing paren, and a shared parenthetical follows the
// second; chains extend transitively. Every member receives the
// chain's group id; the head alone lists the other members.
//
// The pass runs once after extraction, before resolution; its writes
// complete a citation rather than mutate a finished one.
func LinkParallel(citations []*Citation, clean string, gapWindow int) {
	if gapWindow <= 0 {
		gapWindow = DefaultParallelGap
	}

	var chain []*Citation
	flush := func() {
		if len(chain) > 1 {
			applyGroup(chain)
		}
		chain = nil
	}

	for _, cit := range citations {
		if cit.Type != pattern.TypeCase {
			continue
		}
		if len(chain) > 0 && linked(chain[len(chain)-1], cit, clean, gapWindow) {
			chain = append(chain, cit)
			continue
		}
		flush()
		chain = []*Citation{cit}
	}
	flush()
}

func linked(a, b *Citation, clean string, gapWindow int) bool {
	start, end := a.Span.CleanEnd, b.Span.CleanStart
	if end < start || end-start > gapWindow || end > len(clean) {
		return false
	}
	gap := clean[start:end]
	if !strings.Contains(gap, ",") || strings.Contains(gap, ")") {
		return false
	}
	return sharedParenFollows(clean, b.Span.CleanEnd)
}

func sharedParenFollows(clean string, from int) bool {
	if from >= len(clean) {
		return false
	}
	window := clean[from:]
	if len(window) > sharedParenWindow {
		window = window[:sharedParenWindow]
	}
	open, _ := parenExtent(window)
	return open >= 0
}

func applyGroup(chain []*Citation) {
	head := chain[0].Case
	groupID := head.Volume + "-" + strings.ReplaceAll(head.Reporter, " ", "") + "-" + head.Page

	parallel := make([]ParallelCitation, 0, len(chain)-1)
	for _, member := range chain[1:] {
		meta := member.Case
		meta.GroupID = groupID
		parallel = append(parallel, ParallelCitation{
			Volume:   meta.Volume,
			Reporter: meta.Reporter,
			Page:     meta.Page,
		})
	}
	head.GroupID = groupID
	head.ParallelCitations = parallel
}
