// Package annotate splices markup around citation spans in the
// original document text. Spans come from extraction in original
// coordinates, so annotations land correctly even when the cleaned
// text the patterns ran over differs from the source.
package annotate

import (
	"regexp"
	"sort"

	"github.com/coolbeans/lexcite/pkg/citation"
)

// Annotation wraps one span of original text with a markup pair.
type Annotation struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Before string `json:"before"`
	After  string `json:"after"`
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Annotator applies annotations to one original text. It records the
// document's own markup up front so insertions never land inside a
// foreign tag.
type Annotator struct {
	original string
	tags     [][]int
}

// New prepares an annotator for the original text.
func New(original string) *Annotator {
	return &Annotator{
		original: original,
		tags:     tagPattern.FindAllStringIndex(original, -1),
	}
}

// safeSpan snaps endpoints out of foreign markup: a start inside a tag
// moves forward to the tag end, an end inside a tag moves back to the
// tag start. Reports false when the span collapses or its bounds were
// invalid to begin with.
func (a *Annotator) safeSpan(start, end int) (int, int, bool) {
	if start < 0 || end > len(a.original) || end <= start {
		return 0, 0, false
	}
	for _, tag := range a.tags {
		if tag[0] < start && start < tag[1] {
			start = tag[1]
		}
		if tag[0] < end && end < tag[1] {
			end = tag[0]
		}
	}
	if end <= start {
		return 0, 0, false
	}
	return start, end, true
}

type insertion struct {
	pos  int
	text string
	open bool
	// rank orders ties at one position: opens nest outside-in, closes
	// inside-out.
	rank int
}

// Apply splices the annotations into the original text and returns the
// result. Insertions run back-to-front so the original offsets of
// annotations not yet applied stay valid. At a shared position a
// closing insertion lands before an opening one, which keeps adjacent
// and nested annotations well formed.
func (a *Annotator) Apply(annotations []Annotation) string {
	var ins []insertion
	for _, ann := range annotations {
		start, end, ok := a.safeSpan(ann.Start, ann.End)
		if !ok {
			continue
		}
		ins = append(ins, insertion{pos: start, text: ann.Before, open: true, rank: end})
		ins = append(ins, insertion{pos: end, text: ann.After, open: false, rank: start})
	}

	sort.SliceStable(ins, func(i, j int) bool {
		if ins[i].pos != ins[j].pos {
			return ins[i].pos > ins[j].pos
		}
		if ins[i].open != ins[j].open {
			return ins[i].open
		}
		return ins[i].rank < ins[j].rank
	})

	out := a.original
	for _, in := range ins {
		out = out[:in.pos] + in.text + out[in.pos:]
	}
	return out
}

// ForCitations builds annotations from citation spans. The full span
// is used when extraction recovered one, so the markup wraps the case
// name and trailing parentheticals along with the matched text. Wrap
// returns the markup pair for one citation; returning two empty
// strings leaves that citation unmarked.
func ForCitations(citations []*citation.Citation, wrap func(*citation.Citation) (before, after string)) []Annotation {
	var annotations []Annotation
	for _, cit := range citations {
		before, after := wrap(cit)
		span := cit.Span
		if cit.FullSpan != nil {
			span = *cit.FullSpan
		}
		annotations = append(annotations, Annotation{
			Start:  span.OriginalStart,
			End:    span.OriginalEnd,
			Before: before,
			After:  after,
		})
	}
	return annotations
}
