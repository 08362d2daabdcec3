// Package pattern provides the citation pattern library and tokenizer.
//
// Patterns are deliberately broad: they surface candidate spans and
// leave precision to the extractors. A library keeps its patterns in
// evaluation order, which doubles as match priority: when two patterns
// produce the same exact span, the earlier one's token wins.
package pattern

import (
	"fmt"
	"regexp"
	"regexp/syntax"
)

// TokenType identifies the citation family a pattern surfaces.
type TokenType string

const (
	TypeCase            TokenType = "case"
	TypeStatute         TokenType = "statute"
	TypeJournal         TokenType = "journal"
	TypeNeutral         TokenType = "neutral"
	TypePublicLaw       TokenType = "public_law"
	TypeFederalRegister TokenType = "federal_register"
	TypeStatutesAtLarge TokenType = "statutes_at_large"
	TypeID              TokenType = "id"
	TypeSupra           TokenType = "supra"
	TypeShortFormCase   TokenType = "short_form_case"
)

// Types returns all token types in specificity order, most specific
// first.
func Types() []TokenType {
	return []TokenType{
		TypeID,
		TypeSupra,
		TypeStatute,
		TypePublicLaw,
		TypeStatutesAtLarge,
		TypeFederalRegister,
		TypeJournal,
		TypeNeutral,
		TypeShortFormCase,
		TypeCase,
	}
}

// ValidTokenType reports whether t is one of the known token types.
func ValidTokenType(t TokenType) bool {
	switch t {
	case TypeCase, TypeStatute, TypeJournal, TypeNeutral, TypePublicLaw,
		TypeFederalRegister, TypeStatutesAtLarge, TypeID, TypeSupra,
		TypeShortFormCase:
		return true
	}
	return false
}

// Token is an unvalidated candidate citation: a raw pattern match over
// cleaned text, before extraction. Offsets are clean-text bytes.
type Token struct {
	Text      string    `json:"text"`
	Start     int       `json:"start"`
	End       int       `json:"end"`
	Type      TokenType `json:"type"`
	PatternID string    `json:"pattern_id"`
}

// Pattern is one tokenizer rule.
type Pattern struct {
	// ID uniquely names the pattern within a library.
	ID string `yaml:"id" json:"id"`

	// Type is the token type produced by this pattern's matches.
	Type TokenType `yaml:"type" json:"type"`

	// Expr is the regular expression source. Expressions must not nest
	// unbounded quantifiers; Validate enforces this.
	Expr string `yaml:"expr" json:"expr"`

	// Before optionally names the pattern this one is inserted ahead of
	// when registered. Empty appends at the end, the lowest priority.
	Before string `yaml:"before,omitempty" json:"before,omitempty"`

	// MatchFunc, when set, replaces the compiled expression entirely.
	// Returned values are (start, end) byte offset pairs into the text.
	MatchFunc func(text string) [][]int `yaml:"-" json:"-"`

	re *regexp.Regexp
}

// Validate checks the pattern declaration without compiling it.
func (p *Pattern) Validate() error {
	var errs ValidationErrors
	if p.ID == "" {
		errs = append(errs, ValidationError{
			Field:   "id",
			Message: "required field is missing",
		})
	}
	if p.Type == "" {
		errs = append(errs, ValidationError{
			Field:   "type",
			Message: "required field is missing",
		})
	} else if !ValidTokenType(p.Type) {
		errs = append(errs, ValidationError{
			Field:   "type",
			Message: "unknown token type",
			Value:   string(p.Type),
		})
	}
	if p.Expr == "" && p.MatchFunc == nil {
		errs = append(errs, ValidationError{
			Field:   "expr",
			Message: "required field is missing",
		})
	}
	if p.Expr != "" {
		if err := CheckSafety(p.Expr); err != nil {
			errs = append(errs, ValidationError{
				Field:   "expr",
				Message: err.Error(),
				Value:   p.Expr,
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Compile prepares the expression for matching. Patterns with a
// MatchFunc need no compilation.
func (p *Pattern) Compile() error {
	if p.MatchFunc != nil {
		return nil
	}
	re, err := regexp.Compile(p.Expr)
	if err != nil {
		return fmt.Errorf("compiling pattern %q: %w", p.ID, err)
	}
	p.re = re
	return nil
}

// IsCompiled reports whether the pattern is ready to match.
func (p *Pattern) IsCompiled() bool {
	return p.re != nil || p.MatchFunc != nil
}

// Match returns (start, end) byte offset pairs for every occurrence in
// text, in document order.
func (p *Pattern) Match(text string) [][]int {
	if p.MatchFunc != nil {
		return p.MatchFunc(text)
	}
	return p.re.FindAllStringIndex(text, -1)
}

// CheckSafety rejects expressions that nest an unbounded quantifier
// inside another unbounded quantifier. Go's RE2 engine runs in linear
// time regardless, but the rule keeps library patterns portable to
// backtracking engines and keeps the pathological-input battery honest.
func CheckSafety(expr string) error {
	parsed, err := syntax.Parse(expr, syntax.Perl)
	if err != nil {
		return fmt.Errorf("parsing expression: %w", err)
	}
	if hasNestedUnbounded(parsed, false) {
		return fmt.Errorf("expression nests unbounded quantifiers")
	}
	return nil
}

func hasNestedUnbounded(re *syntax.Regexp, inUnbounded bool) bool {
	unbounded := false
	switch re.Op {
	case syntax.OpStar, syntax.OpPlus:
		unbounded = true
	case syntax.OpRepeat:
		unbounded = re.Max < 0
	}
	if unbounded && inUnbounded {
		return true
	}
	for _, sub := range re.Sub {
		if hasNestedUnbounded(sub, inUnbounded || unbounded) {
			return true
		}
	}
	return false
}
