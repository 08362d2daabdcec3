package position

// DefaultLookahead bounds the forward search used to classify a text
// divergence as a deletion or an insertion. Divergences wider than the
// window degrade to a 1:1 substitution mapping rather than failing.
const DefaultLookahead = 20

// Builder accumulates a position Map across an ordered sequence of text
// transformations. Each Advance diffs the next stage against the current
// one and composes the mappings, so the finished Map translates between
// the final text and the original input no matter how many stages ran.
type Builder struct {
	lookahead int
	text      string
	// toOriginal[i] is the original position of byte i in text, with one
	// extra entry for the exclusive end position.
	toOriginal []int
}

// NewBuilder starts a builder over the original text with the default
// lookahead window.
func NewBuilder(original string) *Builder {
	return NewBuilderLookahead(original, DefaultLookahead)
}

// NewBuilderLookahead starts a builder with an explicit lookahead
// window. Values below 1 fall back to the default.
func NewBuilderLookahead(original string, lookahead int) *Builder {
	if lookahead < 1 {
		lookahead = DefaultLookahead
	}
	mapping := make([]int, len(original)+1)
	for i := range mapping {
		mapping[i] = i
	}
	return &Builder{lookahead: lookahead, text: original, toOriginal: mapping}
}

// Text returns the latest stage of the text.
func (b *Builder) Text() string {
	return b.text
}

// Advance records one transformation step. The next text is diffed
// against the current stage and the resulting mapping is composed
// through the accumulated one. Passing an unchanged text is a no-op.
func (b *Builder) Advance(next string) {
	if next == b.text {
		return
	}
	step := diffPositions(b.text, next, b.lookahead)
	composed := make([]int, len(next)+1)
	for j, prev := range step {
		composed[j] = b.toOriginal[prev]
	}
	b.text = next
	b.toOriginal = composed
}

// Build produces the finished Map. Only non-identity entries are stored,
// so building without any effective Advance yields an identity map.
func (b *Builder) Build() *Map {
	m := &Map{
		cleanToOriginal: make(map[int]int),
		originalToClean: make(map[int]int),
	}
	seen := make(map[int]bool, len(b.toOriginal))
	for clean, orig := range b.toOriginal {
		first := !seen[orig]
		seen[orig] = true
		if clean == orig {
			continue
		}
		m.cleanToOriginal[clean] = orig
		if first {
			m.originalToClean[orig] = clean
		}
	}
	return m
}

// diffPositions aligns two stages of a text and returns, for every byte
// position in next plus a sentinel entry for len(next), the
// corresponding position in prev. On a byte mismatch it searches forward
// up to lookahead bytes in both texts: the current next byte found ahead
// in prev means prev bytes were deleted, the current prev byte found
// ahead in next means next bytes were inserted, and when neither side
// resynchronizes within the window the bytes are treated as a 1:1
// substitution. The nearer resynchronization point wins; ties prefer
// deletion, since cleaning overwhelmingly removes text. Inserted next
// positions anchor to the current prev position, so every entry is a
// real prev offset and lookups never fail.
func diffPositions(prev, next string, lookahead int) []int {
	mapping := make([]int, len(next)+1)
	i, j := 0, 0
	for j < len(next) {
		if i >= len(prev) {
			// next has trailing bytes prev lacks; anchor them at the end.
			mapping[j] = len(prev)
			j++
			continue
		}
		if prev[i] == next[j] {
			mapping[j] = i
			i++
			j++
			continue
		}
		del := findAhead(prev, i, next[j], lookahead)
		ins := findAhead(next, j, prev[i], lookahead)
		switch {
		case del > 0 && (ins == 0 || del <= ins):
			// prev[i : i+del] was deleted; resynchronize and let the
			// main loop consume the match.
			i += del
		case ins > 0:
			// next[j : j+ins] was inserted; it has no prev counterpart.
			for k := 0; k < ins && j < len(next); k++ {
				mapping[j] = i
				j++
			}
		default:
			mapping[j] = i
			i++
			j++
		}
	}
	mapping[len(next)] = i
	return mapping
}

// findAhead returns the distance within (0, window] at which byte c next
// occurs in s after position from, or 0 when it does not occur within
// the window.
func findAhead(s string, from int, c byte, window int) int {
	limit := from + window
	if limit > len(s)-1 {
		limit = len(s) - 1
	}
	for k := from + 1; k <= limit; k++ {
		if s[k] == c {
			return k - from
		}
	}
	return 0
}
