package pattern

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/fsnotify.v1"
)

// Core expressions shared with the extractors. The tokenizer wraps them
// in word boundaries to find candidates; the extractors anchor the same
// expression to re-parse a token's text with capture groups, so the two
// stages can never disagree about shape.
const (
	// IDCoreExpr matches: "Id.", "id. at 125", "Id. at 125-30"
	IDCoreExpr = `[Ii]d\.(?:,?\s+at\s+(\d{1,5}(?:-\d{1,5})?)\b)?`

	// SupraCoreExpr matches: "Smyth, supra, at 130", "Brown, supra note 4, at 131"
	SupraCoreExpr = `([A-Z][A-Za-z'&.\- ]{0,60}?),\s+supra\b(?:\s+note\s+(\d{1,4})\b)?(?:,?\s+at\s+(\d{1,5}(?:-\d{1,5})?)\b)?`

	// USCCoreExpr matches: "42 U.S.C. § 1983", "15 U.S.C. §§ 1681-1681x et seq.",
	// "42 U.S.C. Section 1320d(a)(1)"
	USCCoreExpr = `(\d{1,3})\s+(U\.?\s?S\.?\s?C\.?(?:A\.?)?)\s+(?:(?:§§?|[Ss]ections?|[Ss]ecs?\.)\s*)?(\d+(?:[a-zA-Z0-9.\-]*[a-zA-Z0-9])?(?:\([a-zA-Z0-9]{1,8}\))*)(\s+et\s+seq\.)?`

	// CFRCoreExpr matches: "45 C.F.R. § 164.502", "21 C.F.R. Part 50"
	CFRCoreExpr = `(\d{1,3})\s+(C\.?\s?F\.?\s?R\.?)\s+(?:(?:§§?|[Pp]arts?)\s*)?(\d+(?:\.\d+)?[a-z]?(?:\([a-zA-Z0-9]{1,8}\))*)(\s+et\s+seq\.)?`

	// PublicLawCoreExpr matches: "Pub. L. No. 104-191", "Public Law 111-5", "P.L. 104-191"
	PublicLawCoreExpr = `(?:Pub(?:lic)?\.?\s+L(?:aw)?\.?|P\.\s?L\.)\s+(?:No\.?\s+)?(\d{1,3})-(\d{1,4})\b`

	// StatutesAtLargeCoreExpr matches: "110 Stat. 1936", "124 Stat. 3,064"
	StatutesAtLargeCoreExpr = `(\d{1,3})\s+Stat\.\s+(\d{1,5}(?:,\d{3})?)\b`

	// FederalRegisterCoreExpr matches: "85 Fed. Reg. 12,345"
	FederalRegisterCoreExpr = `(\d{1,3})\s+Fed\.\s?Reg\.\s+(\d{1,6}(?:,\d{3})*)\b`

	// JournalCoreExpr matches: "115 Harv. L. Rev. 1342", "100 Yale L.J. 2107".
	// The abbreviation must end in a journal marker; reporters with
	// digit-bearing series ("F.2d") can never satisfy it, which keeps
	// law-review citations and case citations apart at the token level.
	JournalCoreExpr = `(\d{1,3})\s+((?:[A-Z][A-Za-z.']{0,12}\s){0,4}(?:L\.\s?Rev\.|L\.\s?J\.|J\.|Rev\.|Q\.|Stud\.))\s+(\d{1,5})\b`

	// NeutralCoreExpr matches: "2020 WL 1234567", "2019 UT 18"
	NeutralCoreExpr = `((?:19|20)\d{2})\s+([A-Z]{2}[A-Za-z]{0,8})\s+(\d{1,7})\b`

	// ShortFormCaseCoreExpr matches: "500 F.2d at 125"
	ShortFormCaseCoreExpr = `(\d{1,3})\s+([A-Z][A-Za-z0-9.']{0,12}(?:\s[A-Za-z0-9.']{1,12}){0,3})\s+at\s+(\d{1,5})\b`

	// CaseCoreExpr matches: "500 F.2d 123", "410 U.S. 113", "500 F.2d ___",
	// "96-2 U.S. Tax Cas. 50,312". Volume keeps hyphenated forms; the
	// page alternation admits comma-grouped pages and blank-page
	// placeholders of three or more underscores or hyphens.
	CaseCoreExpr = `(\d{1,3}(?:-\d{1,4})?)\s+([A-Z][A-Za-z0-9.']{0,12}(?:\s[A-Za-z0-9.']{1,12}){0,4})\s+(\d{1,3}(?:,\d{3}){1,3}\b|\d{1,5}\b|[_-]{3,10})`
)

// defaultPatterns returns the built-in set in evaluation order. Short
// forms and coded citation families come first; the broad case pattern
// runs last so that any identical span has already been claimed by a
// more specific type.
func defaultPatterns() []*Pattern {
	return []*Pattern{
		{ID: "id", Type: TypeID, Expr: `\b` + IDCoreExpr},
		{ID: "supra", Type: TypeSupra, Expr: `\b` + SupraCoreExpr},
		{ID: "usc", Type: TypeStatute, Expr: `\b` + USCCoreExpr},
		{ID: "cfr", Type: TypeStatute, Expr: `\b` + CFRCoreExpr},
		{ID: "public_law", Type: TypePublicLaw, Expr: `\b` + PublicLawCoreExpr},
		{ID: "statutes_at_large", Type: TypeStatutesAtLarge, Expr: `\b` + StatutesAtLargeCoreExpr},
		{ID: "federal_register", Type: TypeFederalRegister, Expr: `\b` + FederalRegisterCoreExpr},
		{ID: "journal", Type: TypeJournal, Expr: `\b` + JournalCoreExpr},
		{ID: "neutral", Type: TypeNeutral, Expr: `\b` + NeutralCoreExpr},
		{ID: "short_form_case", Type: TypeShortFormCase, Expr: `\b` + ShortFormCaseCoreExpr},
		{ID: "case", Type: TypeCase, Expr: `\b` + CaseCoreExpr},
	}
}

// Library holds patterns in evaluation order and supports loading
// overlays from YAML files. All methods are safe for concurrent use.
type Library struct {
	mu       sync.RWMutex
	patterns []*Pattern
	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	logger   *zap.Logger
}

// New creates an empty library.
func New() *Library {
	return &Library{}
}

// Default returns a library loaded with the built-in pattern set.
func Default() *Library {
	lib := New()
	for _, p := range defaultPatterns() {
		if err := lib.Register(p); err != nil {
			panic(fmt.Sprintf("built-in pattern %q: %v", p.ID, err))
		}
	}
	return lib
}

// SetLogger attaches a logger used by the directory watcher. A nil
// logger silences it.
func (l *Library) SetLogger(logger *zap.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = logger
}

func (l *Library) log() *zap.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.logger == nil {
		return zap.NewNop()
	}
	return l.logger
}

// Register validates, compiles, and adds a pattern. A pattern whose ID
// is already present replaces the existing one in place, keeping its
// evaluation position; this makes file reloads idempotent. Otherwise
// the pattern is inserted before the pattern named by Before, or
// appended when Before is empty or unknown.
func (l *Library) Register(p *Pattern) error {
	if p == nil {
		return fmt.Errorf("pattern cannot be nil")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	if !p.IsCompiled() {
		if err := p.Compile(); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i, existing := range l.patterns {
		if existing.ID == p.ID {
			l.patterns[i] = p
			return nil
		}
	}

	if p.Before != "" {
		for i, existing := range l.patterns {
			if existing.ID == p.Before {
				l.patterns = append(l.patterns[:i], append([]*Pattern{p}, l.patterns[i:]...)...)
				return nil
			}
		}
	}
	l.patterns = append(l.patterns, p)
	return nil
}

// Unregister removes a pattern by ID.
func (l *Library) Unregister(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, p := range l.patterns {
		if p.ID == id {
			l.patterns = append(l.patterns[:i], l.patterns[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("pattern %q not found", id)
}

// Get returns a pattern by ID.
func (l *Library) Get(id string) (*Pattern, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, p := range l.patterns {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Patterns returns a snapshot of the patterns in evaluation order.
func (l *Library) Patterns() []*Pattern {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Pattern, len(l.patterns))
	copy(out, l.patterns)
	return out
}

// Count returns the number of registered patterns.
func (l *Library) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.patterns)
}

// Clear removes all patterns.
func (l *Library) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.patterns = nil
}
