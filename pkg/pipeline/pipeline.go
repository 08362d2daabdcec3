// Package pipeline wires cleaning, tokenization, extraction,
// parallel-citation linking, reporter confidence adjustment, and
// short-form resolution into one document pass.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/coolbeans/lexcite/pkg/citation"
	"github.com/coolbeans/lexcite/pkg/cleaner"
	"github.com/coolbeans/lexcite/pkg/pattern"
	"github.com/coolbeans/lexcite/pkg/position"
	"github.com/coolbeans/lexcite/pkg/reporters"
	"github.com/coolbeans/lexcite/pkg/resolve"
)

// Options configure a pipeline. The zero value means defaults.
type Options struct {
	// Cleaners run in order before tokenization. Nil means the default
	// sequence; an empty non-nil slice disables cleaning.
	Cleaners []cleaner.Step

	// Lookahead bounds the position diff resync window.
	Lookahead int

	// Patterns is the tokenizer library. Nil means the built-in set.
	Patterns *pattern.Library

	// Extraction windows for case names and parentheticals.
	Extraction citation.Options

	// Resolution enables the short-form resolution pass. Nil skips
	// resolution entirely.
	Resolution *resolve.Options

	// Reporters backs the case-confidence adjustment. Nil skips the
	// adjustment and is logged once per run.
	Reporters *reporters.DB

	// Adjust tunes the confidence deltas.
	Adjust reporters.AdjustConfig

	Logger *zap.Logger
}

func (o Options) defaults() Options {
	if o.Cleaners == nil {
		o.Cleaners = cleaner.DefaultSteps()
	}
	if o.Lookahead <= 0 {
		o.Lookahead = position.DefaultLookahead
	}
	if o.Patterns == nil {
		o.Patterns = pattern.Default()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// SkippedToken records a token the extractor rejected. The rest of the
// document is unaffected.
type SkippedToken struct {
	Token  pattern.Token `json:"token"`
	Reason string        `json:"reason"`
}

// Result is one document's extraction output.
type Result struct {
	// Citations in document order. Paragraph ids and resolutions are
	// populated only when the pipeline was configured with resolution
	// options.
	Citations []*resolve.ResolvedCitation `json:"citations"`

	// CleanedText is what the patterns matched against; Map translates
	// between its offsets and the original input's.
	CleanedText string        `json:"-"`
	Map         *position.Map `json:"-"`

	// Report summarizes resolution when it ran.
	Report *resolve.Report `json:"report,omitempty"`

	// Skipped lists tokens that failed extraction.
	Skipped []SkippedToken `json:"skipped,omitempty"`
}

// Pipeline is a reusable document processor. One Pipeline value is
// safe for concurrent Runs: every run owns its cleaner result, token
// list, and resolver.
type Pipeline struct {
	opts Options
}

// New applies defaults and validates the options.
func New(opts Options) (*Pipeline, error) {
	opts = opts.defaults()
	if opts.Resolution != nil {
		if _, err := resolve.NewResolver("", *opts.Resolution); err != nil {
			return nil, fmt.Errorf("resolution options: %w", err)
		}
	}
	return &Pipeline{opts: opts}, nil
}

// Run processes one document. A malformed token skips that token only;
// run-level errors are limited to resolver construction.
func (p *Pipeline) Run(text string) (*Result, error) {
	cleaned := cleaner.NewLookahead(p.opts.Cleaners, p.opts.Lookahead).Clean(text)

	tokenizer := pattern.NewTokenizer(p.opts.Patterns, p.opts.Logger)
	tokens := tokenizer.Tokenize(cleaned.Text)

	citations := make([]*citation.Citation, 0, len(tokens))
	var skipped []SkippedToken
	for _, tok := range tokens {
		cit, err := citation.Extract(tok, cleaned.Map, cleaned.Text, p.opts.Extraction)
		if err != nil {
			p.opts.Logger.Warn("token failed extraction",
				zap.String("pattern", tok.PatternID),
				zap.String("text", tok.Text),
				zap.Error(err))
			skipped = append(skipped, SkippedToken{Token: tok, Reason: err.Error()})
			continue
		}
		citations = append(citations, cit)
	}

	citation.LinkParallel(citations, cleaned.Text, 0)
	reporters.Adjust(citations, p.opts.Reporters, p.opts.Adjust, p.opts.Logger)

	result := &Result{
		CleanedText: cleaned.Text,
		Map:         cleaned.Map,
		Skipped:     skipped,
	}

	if p.opts.Resolution == nil {
		result.Citations = wrapUnresolved(citations)
		return result, nil
	}

	resolver, err := resolve.NewResolver(text, *p.opts.Resolution)
	if err != nil {
		return nil, fmt.Errorf("building resolver: %w", err)
	}
	result.Citations = resolver.Resolve(citations)
	result.Report = resolve.GenerateReport(result.Citations, p.opts.Resolution.ReportUnresolved)
	return result, nil
}

func wrapUnresolved(citations []*citation.Citation) []*resolve.ResolvedCitation {
	wrapped := make([]*resolve.ResolvedCitation, len(citations))
	for i, cit := range citations {
		wrapped[i] = &resolve.ResolvedCitation{Citation: cit}
	}
	return wrapped
}
