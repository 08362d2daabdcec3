package citation

import (
	"regexp"
	"strings"
)

// A party name is a run of capitalized words. Lowercase words are
// admitted only from a short connector list, which keeps the search
// from swallowing preceding prose into the plaintiff. A digit-only
// word ("84 Lumber") carries no trailing punctuation, so the run
// cannot cross a sentence break after a page number into a
// neighboring citation.
const partyWordExpr = `(?:[A-Z][A-Za-z0-9.,'&\-()]*|\d{1,4}[A-Za-z][A-Za-z0-9.,'&\-()]*|\d{1,4})`

const partyExpr = partyWordExpr +
	`(?:\s+(?:of|the|for|and|in|on|&|ex\s+rel\.|et\s+al\.|et\s+ux\.|d/b/a|a/k/a|` + partyWordExpr + `)){0,9}?`

var (
	// "Smith v. Jones, " directly before the volume.
	adversarialNamePattern = regexp.MustCompile(`(` + partyExpr + `)\s+[Vv]s?\.\s+(` + partyExpr + `),?\s*$`)

	// "In re Gault, " and friends.
	proceduralNamePattern = regexp.MustCompile(`\b((In re|In the Matter of|Matter of|Ex parte)\s+[A-Z0-9][A-Za-z0-9.,'&\-() ]{0,80}?),?\s*$`)

	// A recognized government entity cited without an opponent.
	governmentNamePattern = regexp.MustCompile(`\b(United States|State of [A-Z][A-Za-z]+|People of the State of [A-Z][A-Za-z]+|People|Commonwealth of [A-Z][A-Za-z]+|Commonwealth),?\s*$`)
)

// signalPrefixes are citation signals that survive into a matched
// plaintiff because they are capitalized words. Longer entries first.
var signalPrefixes = []string{
	"see also ", "but see ", "see ", "cf. ", "compare ", "contra ",
	"accord ", "citing ", "quoting ", "cited in ", "quoted in ",
}

// caseName is the result of the backward search before a case token.
type caseName struct {
	Name      string
	Plaintiff string
	Defendant string
	Start     int
}

// findCaseName searches at most window bytes of cleaned text before
// the token for an adversarial name, a procedural-prefix name, or a
// standalone government-entity name. Matches never cross a semicolon;
// text past one belongs to a different citation.
func findCaseName(clean string, tokenStart, window int) *caseName {
	from := tokenStart - window
	if from < 0 {
		from = 0
	}
	text := clean[from:tokenStart]
	offset := from
	if idx := strings.LastIndexByte(text, ';'); idx >= 0 {
		text = text[idx+1:]
		offset += idx + 1
	}

	if m := adversarialNamePattern.FindStringSubmatchIndex(text); m != nil {
		plaintiff := text[m[2]:m[3]]
		stripped := stripSignalPrefix(plaintiff)
		lead := len(plaintiff) - len(stripped)
		if stripped == "" {
			return nil
		}
		// The greedy word class admits commas, so the capture can
		// carry the separator before the volume. Trim it back off.
		defendant := strings.TrimRight(text[m[4]:m[5]], ", ")
		if defendant == "" {
			return nil
		}
		start := m[2] + lead
		end := m[4] + len(defendant)
		return &caseName{
			Name:      strings.TrimSpace(text[start:end]),
			Plaintiff: stripped,
			Defendant: defendant,
			Start:     offset + start,
		}
	}

	if m := proceduralNamePattern.FindStringSubmatchIndex(text); m != nil {
		name := text[m[2]:m[3]]
		prefix := text[m[4]:m[5]]
		return &caseName{
			Name:      name,
			Plaintiff: strings.TrimSpace(strings.TrimPrefix(name, prefix)),
			Start:     offset + m[2],
		}
	}

	if m := governmentNamePattern.FindStringSubmatchIndex(text); m != nil {
		name := text[m[2]:m[3]]
		return &caseName{
			Name:      name,
			Plaintiff: name,
			Start:     offset + m[2],
		}
	}

	return nil
}

func stripSignalPrefix(party string) string {
	lower := strings.ToLower(party)
	for _, signal := range signalPrefixes {
		if strings.HasPrefix(lower, signal) {
			return strings.TrimSpace(party[len(signal):])
		}
	}
	return party
}

// Party normalization, applied before names enter the resolution
// history or are compared by supra matching.
var (
	dbaPattern             = regexp.MustCompile(`\s+(?:d/b/a|a/k/a|f/k/a|aka)\s+.*$`)
	etAlPattern            = regexp.MustCompile(`[,\s]*\bet\s+(?:al|ux|vir)\.?\s*$`)
	corporateSuffixPattern = regexp.MustCompile(`[,\s]+(?:l\.l\.c|l\.l\.p|l\.p|p\.c|n\.a|s\.a|inc|corp|co|llc|llp|lp|ltd|plc|pc|bros|assn|ass'n)\.?\s*$`)
	leadingArticlePattern  = regexp.MustCompile(`^(?:the|a|an)\s+`)
)

// NormalizeParty lowercases a party name and strips the noise that
// varies between mentions of the same party: "et al.", trade-name
// tails, stacked corporate suffixes, and a leading article.
func NormalizeParty(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = dbaPattern.ReplaceAllString(s, "")
	s = etAlPattern.ReplaceAllString(s, "")
	for {
		next := corporateSuffixPattern.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	s = leadingArticlePattern.ReplaceAllString(s, "")
	s = strings.Trim(s, " ,.")
	return strings.Join(strings.Fields(s), " ")
}
