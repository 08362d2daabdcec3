package pattern

import (
	"sort"

	"go.uber.org/zap"
)

// Tokenizer runs every library pattern over cleaned text and collects
// candidate tokens for extraction.
type Tokenizer struct {
	lib    *Library
	logger *zap.Logger
}

// NewTokenizer creates a tokenizer over the given library. A nil logger
// is replaced with a no-op logger.
func NewTokenizer(lib *Library, logger *zap.Logger) *Tokenizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tokenizer{lib: lib, logger: logger}
}

// Tokenize applies all patterns in library order over the cleaned text.
// A failure inside any single pattern is recovered and logged so the
// remaining patterns still contribute tokens. Matches repeating an
// exact (start, end) span keep the first token seen, which is what
// makes evaluation order the match priority. The result is sorted by
// start, then end.
func (t *Tokenizer) Tokenize(text string) []Token {
	type spanKey struct{ start, end int }
	seen := make(map[spanKey]bool)
	var tokens []Token

	for _, p := range t.lib.Patterns() {
		matches := t.matchSafely(p, text)
		for _, m := range matches {
			if len(m) < 2 || m[0] < 0 || m[1] > len(text) || m[1] <= m[0] {
				continue
			}
			key := spanKey{m[0], m[1]}
			if seen[key] {
				continue
			}
			seen[key] = true
			tokens = append(tokens, Token{
				Text:      text[m[0]:m[1]],
				Start:     m[0],
				End:       m[1],
				Type:      p.Type,
				PatternID: p.ID,
			})
		}
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].Start != tokens[j].Start {
			return tokens[i].Start < tokens[j].Start
		}
		return tokens[i].End < tokens[j].End
	})
	return tokens
}

// matchSafely isolates one pattern's failure so a bad custom matcher
// cannot take down the whole pass.
func (t *Tokenizer) matchSafely(p *Pattern, text string) (matches [][]int) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn("pattern failed during tokenization",
				zap.String("pattern", p.ID),
				zap.Any("panic", r))
			matches = nil
		}
	}()
	return p.Match(text)
}
