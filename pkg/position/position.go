// Package position tracks byte offsets across text transformations.
//
// Cleaning rewrites document text before pattern matching runs, so every
// match found in the cleaned text must translate back to the original
// input. A Map holds that translation in both directions; a Builder
// accumulates it across an ordered sequence of transformations.
package position

// Span locates one matched region in both coordinate systems. Offsets
// are byte positions; ends are exclusive.
type Span struct {
	CleanStart    int `json:"clean_start"`
	CleanEnd      int `json:"clean_end"`
	OriginalStart int `json:"original_start"`
	OriginalEnd   int `json:"original_end"`
}

// Valid reports whether the span covers at least one byte in both
// coordinate systems.
func (s Span) Valid() bool {
	return s.CleanEnd > s.CleanStart && s.OriginalEnd > s.OriginalStart
}

// Len returns the clean-text length of the span.
func (s Span) Len() int {
	return s.CleanEnd - s.CleanStart
}

// Map translates byte positions between cleaned and original text. Both
// directions are total: positions without a recorded entry fall back to
// identity, so lookups never fail. A Map is read-only after Build and
// safe for concurrent use.
type Map struct {
	cleanToOriginal map[int]int
	originalToClean map[int]int
}

// Identity returns the map for text that cleaning left unchanged.
func Identity() *Map {
	return &Map{}
}

// ToOriginal translates a cleaned-text position to the original text.
func (m *Map) ToOriginal(pos int) int {
	if m == nil || m.cleanToOriginal == nil {
		return pos
	}
	if orig, ok := m.cleanToOriginal[pos]; ok {
		return orig
	}
	return pos
}

// ToClean translates an original-text position to the cleaned text.
// Positions removed by cleaning have no exact counterpart; they fall
// back to identity.
func (m *Map) ToClean(pos int) int {
	if m == nil || m.originalToClean == nil {
		return pos
	}
	if clean, ok := m.originalToClean[pos]; ok {
		return clean
	}
	return pos
}

// SpanFromClean builds a Span from clean-text offsets, translating both
// endpoints to the original text.
func (m *Map) SpanFromClean(start, end int) Span {
	return Span{
		CleanStart:    start,
		CleanEnd:      end,
		OriginalStart: m.ToOriginal(start),
		OriginalEnd:   m.ToOriginal(end),
	}
}

// IsIdentity reports whether every position maps to itself, which is the
// case when no transformation changed the text.
func (m *Map) IsIdentity() bool {
	return m == nil || (len(m.cleanToOriginal) == 0 && len(m.originalToClean) == 0)
}
