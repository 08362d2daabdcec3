// Package citation turns tokens from pkg/pattern into structured
// citations: per-type metadata extraction, case-name recovery,
// parenthetical and date parsing, and parallel-citation linking.
package citation

import (
	"github.com/coolbeans/lexcite/pkg/pattern"
	"github.com/coolbeans/lexcite/pkg/position"
	"github.com/coolbeans/lexcite/pkg/types"
)

// Citation is a parsed legal citation. Extract builds it; the linking
// and scoring passes fill in group and confidence fields; resolution
// wraps citations in new records instead of writing to them. Exactly
// one of the per-type metadata pointers is non-nil, matching Type.
type Citation struct {
	// Classification; values mirror pattern token types.
	Type pattern.TokenType `json:"type"`

	// Text is the full citation text including a recovered case name
	// and trailing parentheticals when present. MatchedText is exactly
	// the token the pattern matched.
	Text        string `json:"text"`
	MatchedText string `json:"matched_text"`

	// Span locates MatchedText in both coordinate systems. FullSpan is
	// set for case citations whose surrounding name or parentheticals
	// extend past the match.
	Span     position.Span  `json:"span"`
	FullSpan *position.Span `json:"full_span,omitempty"`

	// Confidence in [0, 1].
	Confidence float64  `json:"confidence"`
	Warnings   []string `json:"warnings,omitempty"`

	// PatternID names the pattern that produced the token.
	PatternID string `json:"pattern_id"`

	// Per-type metadata.
	Case            *CaseMeta            `json:"case,omitempty"`
	Statute         *StatuteMeta         `json:"statute,omitempty"`
	Journal         *JournalMeta         `json:"journal,omitempty"`
	Neutral         *NeutralMeta         `json:"neutral,omitempty"`
	PublicLaw       *PublicLawMeta       `json:"public_law,omitempty"`
	FederalRegister *FederalRegisterMeta `json:"federal_register,omitempty"`
	StatutesAtLarge *StatutesAtLargeMeta `json:"statutes_at_large,omitempty"`
	ID              *IDMeta              `json:"id,omitempty"`
	Supra           *SupraMeta           `json:"supra,omitempty"`
	ShortCase       *ShortCaseMeta       `json:"short_case,omitempty"`
}

// CaseMeta holds the components of a full case citation.
type CaseMeta struct {
	// Name components. Normalized forms drive supra resolution.
	CaseName            string `json:"case_name,omitempty"`
	Plaintiff           string `json:"plaintiff,omitempty"`
	Defendant           string `json:"defendant,omitempty"`
	NormalizedPlaintiff string `json:"normalized_plaintiff,omitempty"`
	NormalizedDefendant string `json:"normalized_defendant,omitempty"`

	// Volume stays a string so hyphenated volumes like "96-2" survive.
	// Page is empty when the source shows a blank-page placeholder.
	Volume       string `json:"volume"`
	Reporter     string `json:"reporter"`
	Page         string `json:"page,omitempty"`
	Pincite      string `json:"pincite,omitempty"`
	HasBlankPage bool   `json:"has_blank_page,omitempty"`

	// Parenthetical components.
	Court       string      `json:"court,omitempty"`
	Year        int         `json:"year,omitempty"`
	Date        *types.Date `json:"date,omitempty"`
	DateISO     string      `json:"date_iso,omitempty"`
	Disposition string      `json:"disposition,omitempty"`

	// Parallel-citation linking. GroupID is shared by every member of
	// a chain; ParallelCitations is carried by the head only.
	GroupID           string             `json:"group_id,omitempty"`
	ParallelCitations []ParallelCitation `json:"parallel_citations,omitempty"`
}

// ParallelCitation identifies one non-head member of a parallel chain.
type ParallelCitation struct {
	Volume   string `json:"volume"`
	Reporter string `json:"reporter"`
	Page     string `json:"page"`
}

// StatuteMeta covers U.S.C. and C.F.R. citations.
type StatuteMeta struct {
	Title   int    `json:"title"`
	Code    string `json:"code"`
	Section string `json:"section"`
	EtSeq   bool   `json:"et_seq,omitempty"`
}

// JournalMeta covers law-review citations such as
// "115 Harv. L. Rev. 1342, 1350 (2002)".
type JournalMeta struct {
	Volume  int    `json:"volume"`
	Journal string `json:"journal"`
	Page    int    `json:"page"`
	Pincite string `json:"pincite,omitempty"`
	Year    int    `json:"year,omitempty"`
}

// NeutralMeta covers vendor- and court-assigned neutral citations such
// as "2020 WL 1234567" or "2019 UT 18".
type NeutralMeta struct {
	Year   int    `json:"year"`
	Court  string `json:"court"`
	Number int    `json:"number"`
}

// PublicLawMeta covers session laws such as "Pub. L. No. 104-191".
type PublicLawMeta struct {
	Congress int `json:"congress"`
	Number   int `json:"number"`
}

// FederalRegisterMeta covers "85 Fed. Reg. 12,345". Page keeps its
// printed comma grouping.
type FederalRegisterMeta struct {
	Volume int    `json:"volume"`
	Page   string `json:"page"`
}

// StatutesAtLargeMeta covers "110 Stat. 1936".
type StatutesAtLargeMeta struct {
	Volume int    `json:"volume"`
	Page   string `json:"page"`
}

// IDMeta covers "Id." references.
type IDMeta struct {
	Pincite string `json:"pincite,omitempty"`
}

// SupraMeta covers "Smyth, supra, at 130" references.
type SupraMeta struct {
	Name    string `json:"name"`
	Note    int    `json:"note,omitempty"`
	Pincite string `json:"pincite,omitempty"`
}

// ShortCaseMeta covers bare volume/reporter references such as
// "500 F.2d at 125". Volume stays a string to compare against the
// antecedent's volume without reparsing.
type ShortCaseMeta struct {
	Volume   string `json:"volume"`
	Reporter string `json:"reporter"`
	Page     string `json:"page"`
}
