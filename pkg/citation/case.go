package citation

import (
	"regexp"
	"strings"
	"time"

	"github.com/coolbeans/lexcite/pkg/pattern"
	"github.com/coolbeans/lexcite/pkg/position"
)

// SupremeCourt is the court recorded when a citation names no court
// but its reporter publishes only U.S. Supreme Court decisions.
const SupremeCourt = "U.S. Supreme Court"

// BlankPageConfidence is assigned whenever the page is a blank
// placeholder. The override is absolute; no other scoring applies.
const BlankPageConfidence = 0.8

var (
	caseTokenPattern = regexp.MustCompile(`^` + pattern.CaseCoreExpr + `$`)
	blankPagePattern = regexp.MustCompile(`^[_-]{3,}$`)

	// ", 125" or ", 125-30" directly after the token. A capitalized
	// word right after the digits means the digits are a parallel
	// citation's volume, not a pincite.
	pincitePattern     = regexp.MustCompile(`^,\s+(\d{1,5}(?:-\d{1,5})?)\b`)
	volumeAheadPattern = regexp.MustCompile(`^\s+[A-Z]`)

	historyMarkerPattern = regexp.MustCompile(`^,?\s*(?i:aff'd sub nom\.|aff'd|rev'd sub nom\.|rev'd|cert\. denied|cert\. granted|vacated|reh'g denied|reh'g granted|modified|overruled)`)
)

// supremeCourtReporters and commonReporters hold normalized keys,
// lowercase with periods and spaces removed.
var supremeCourtReporters = map[string]bool{
	"us":    true,
	"sct":   true,
	"led":   true,
	"led2d": true,
}

var commonReporters = map[string]bool{
	"us": true, "sct": true, "led": true, "led2d": true,
	"f": true, "f2d": true, "f3d": true, "f4th": true,
	"fsupp": true, "fsupp2d": true, "fsupp3d": true,
	"fappx": true, "fedappx": true, "fedcl": true, "frd": true, "br": true,
	"a": true, "a2d": true, "a3d": true,
	"p": true, "p2d": true, "p3d": true,
	"ne": true, "ne2d": true, "ne3d": true,
	"nw": true, "nw2d": true,
	"se": true, "se2d": true,
	"sw": true, "sw2d": true, "sw3d": true,
	"so": true, "so2d": true, "so3d": true,
	"calrptr": true, "calrptr2d": true, "calrptr3d": true,
	"nys": true, "nys2d": true, "nys3d": true,
}

func reporterKey(reporter string) string {
	s := strings.ToLower(reporter)
	s = strings.ReplaceAll(s, ".", "")
	return strings.ReplaceAll(s, " ", "")
}

func extractCase(tok pattern.Token, pm *position.Map, clean string, opts Options) (*Citation, error) {
	m := caseTokenPattern.FindStringSubmatch(tok.Text)
	if m == nil {
		return nil, malformed(tok, "text does not have volume reporter page shape")
	}

	cit := newCitation(tok, pm)
	meta := &CaseMeta{Volume: m[1], Reporter: strings.TrimSpace(m[2])}
	cit.Case = meta

	if blankPagePattern.MatchString(m[3]) {
		meta.HasBlankPage = true
	} else {
		meta.Page = m[3]
	}

	rest := clean[tok.End:]
	pin, pinLen := matchPincite(rest)
	meta.Pincite = pin

	window := rest
	if len(window) > opts.ParentheticalWindow {
		window = window[:opts.ParentheticalWindow]
	}
	first, second := findParentheticals(window)
	if first != "" {
		content := first
		if d := detectDisposition(content); d != "" {
			meta.Disposition = d
			content = stripDisposition(content)
		}
		date, remainder := parseParentheticalDate(content)
		if date != nil {
			meta.Date = date
			meta.Year = date.Year
			meta.DateISO = date.ISO()
		}
		meta.Court = cleanCourt(remainder)
	}
	if meta.Disposition == "" && second != "" {
		meta.Disposition = detectDisposition(second)
	}
	if meta.Court == "" && supremeCourtReporters[reporterKey(meta.Reporter)] {
		meta.Court = SupremeCourt
	}

	fullStart := tok.Start
	if name := findCaseName(clean, tok.Start, opts.CaseNameWindow); name != nil {
		meta.CaseName = name.Name
		meta.Plaintiff = name.Plaintiff
		meta.Defendant = name.Defendant
		meta.NormalizedPlaintiff = NormalizeParty(name.Plaintiff)
		meta.NormalizedDefendant = NormalizeParty(name.Defendant)
		fullStart = name.Start
	}
	fullEnd := scanFullSpanEnd(clean, tok.End+pinLen, opts.ParentheticalWindow)
	if fullStart != tok.Start || fullEnd != tok.End {
		span := pm.SpanFromClean(fullStart, fullEnd)
		cit.FullSpan = &span
		cit.Text = clean[fullStart:fullEnd]
	}

	if meta.HasBlankPage {
		cit.Confidence = BlankPageConfidence
	} else {
		confidence := 0.5
		if commonReporters[reporterKey(meta.Reporter)] {
			confidence += 0.3
		}
		if meta.Year > 0 && meta.Year <= time.Now().Year() {
			confidence += 0.2
		}
		if confidence > 1.0 {
			confidence = 1.0
		}
		cit.Confidence = confidence
	}
	return &cit, nil
}

func matchPincite(rest string) (string, int) {
	m := pincitePattern.FindStringSubmatch(rest)
	if m == nil {
		return "", 0
	}
	if volumeAheadPattern.MatchString(rest[len(m[0]):]) {
		return "", 0
	}
	return m[1], len(m[0])
}

// scanFullSpanEnd extends the citation span through chained
// parentheticals and subsequent-history markers with their own
// citations and parentheticals, as in
// "(9th Cir. 2020), aff'd, 510 U.S. 200 (1994)". Each hop is bounded
// by window bytes; the hop count is capped so hostile input cannot
// walk the whole document.
func scanFullSpanEnd(clean string, from, window int) int {
	pos := from
	for hop := 0; hop < 8; hop++ {
		rest := clean[pos:]
		if len(rest) > window {
			rest = rest[:window]
		}

		j := 0
		for j < len(rest) && rest[j] == ' ' {
			j++
		}
		if j < len(rest) && rest[j] == '(' {
			closing := matchingParen(rest, j)
			if closing < 0 {
				break
			}
			pos += closing + 1
			continue
		}

		m := historyMarkerPattern.FindStringIndex(rest)
		if m == nil {
			break
		}
		after := rest[m[1]:]
		if open, end := parenExtent(after); open >= 0 {
			pos += m[1] + end
		} else {
			pos += m[1]
		}
	}
	return pos
}
