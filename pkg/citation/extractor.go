package citation

import (
	"fmt"

	"github.com/coolbeans/lexcite/pkg/pattern"
	"github.com/coolbeans/lexcite/pkg/position"
)

// Options control the text windows extractors scan around a token.
type Options struct {
	// CaseNameWindow bounds the backward case-name search, in bytes
	// before the matched token.
	CaseNameWindow int `yaml:"case_name_window" json:"case_name_window"`

	// ParentheticalWindow bounds the forward scan for court, date and
	// disposition parentheticals, in bytes past the matched token.
	ParentheticalWindow int `yaml:"parenthetical_window" json:"parenthetical_window"`
}

// DefaultOptions returns the extraction windows used when a caller
// leaves Options zero.
func DefaultOptions() Options {
	return Options{
		CaseNameWindow:      150,
		ParentheticalWindow: 200,
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.CaseNameWindow <= 0 {
		o.CaseNameWindow = defaults.CaseNameWindow
	}
	if o.ParentheticalWindow <= 0 {
		o.ParentheticalWindow = defaults.ParentheticalWindow
	}
	return o
}

// MalformedTokenError reports a token whose text does not satisfy the
// structural shape its pattern promised. It signals a contract break
// between a pattern and its extractor, so it is fatal for that token
// only; callers skip the token and continue with the batch.
type MalformedTokenError struct {
	PatternID string
	Type      pattern.TokenType
	Text      string
	Reason    string
}

func (e *MalformedTokenError) Error() string {
	return fmt.Sprintf("malformed %s token %q from pattern %s: %s",
		e.Type, e.Text, e.PatternID, e.Reason)
}

func malformed(tok pattern.Token, reason string) error {
	return &MalformedTokenError{
		PatternID: tok.PatternID,
		Type:      tok.Type,
		Text:      tok.Text,
		Reason:    reason,
	}
}

// Extract builds a citation from one token. clean is the cleaned text
// the token offsets refer to and pm translates spans back into
// original-text coordinates; a nil pm is treated as identity. The
// returned error is a *MalformedTokenError when the token text fails
// its extractor's structural re-match.
func Extract(tok pattern.Token, pm *position.Map, clean string, opts Options) (*Citation, error) {
	opts = opts.withDefaults()

	switch tok.Type {
	case pattern.TypeCase:
		return extractCase(tok, pm, clean, opts)
	case pattern.TypeStatute:
		return extractStatute(tok, pm)
	case pattern.TypeJournal:
		return extractJournal(tok, pm, clean)
	case pattern.TypeNeutral:
		return extractNeutral(tok, pm)
	case pattern.TypePublicLaw:
		return extractPublicLaw(tok, pm)
	case pattern.TypeFederalRegister:
		return extractFederalRegister(tok, pm)
	case pattern.TypeStatutesAtLarge:
		return extractStatutesAtLarge(tok, pm)
	case pattern.TypeID:
		return extractID(tok, pm)
	case pattern.TypeSupra:
		return extractSupra(tok, pm)
	case pattern.TypeShortFormCase:
		return extractShortFormCase(tok, pm)
	default:
		return nil, malformed(tok, "no extractor for token type")
	}
}

// newCitation fills the fields shared by every extractor. Confidence
// starts at 1.0; the case extractor rescores it.
func newCitation(tok pattern.Token, pm *position.Map) Citation {
	return Citation{
		Type:        tok.Type,
		Text:        tok.Text,
		MatchedText: tok.Text,
		Span:        pm.SpanFromClean(tok.Start, tok.End),
		Confidence:  1.0,
		PatternID:   tok.PatternID,
	}
}
