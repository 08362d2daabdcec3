package citation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/lexcite/pkg/pattern"
	"github.com/coolbeans/lexcite/pkg/position"
)

// Structural re-match expressions, anchored over the exact token text.
// They share sources with the tokenizer patterns so the two stages can
// never disagree about shape.
var (
	uscTokenPattern       = regexp.MustCompile(`^` + pattern.USCCoreExpr + `$`)
	cfrTokenPattern       = regexp.MustCompile(`^` + pattern.CFRCoreExpr + `$`)
	journalTokenPattern   = regexp.MustCompile(`^` + pattern.JournalCoreExpr + `$`)
	neutralTokenPattern   = regexp.MustCompile(`^` + pattern.NeutralCoreExpr + `$`)
	publicLawTokenPattern = regexp.MustCompile(`^` + pattern.PublicLawCoreExpr + `$`)
	fedRegTokenPattern    = regexp.MustCompile(`^` + pattern.FederalRegisterCoreExpr + `$`)
	statTokenPattern      = regexp.MustCompile(`^` + pattern.StatutesAtLargeCoreExpr + `$`)
	idTokenPattern        = regexp.MustCompile(`^` + pattern.IDCoreExpr + `$`)
	supraTokenPattern     = regexp.MustCompile(`^` + pattern.SupraCoreExpr + `$`)
	shortFormTokenPattern = regexp.MustCompile(`^` + pattern.ShortFormCaseCoreExpr + `$`)

	// Journal pincite and year follow the token: "…, 1350 (2002)".
	journalPincitePattern = regexp.MustCompile(`^,\s+(\d{1,5})\b`)
	journalYearPattern    = regexp.MustCompile(`^(?:,\s+\d{1,5})?\s*\((\d{4})\)`)
)

// extractStatute handles both U.S.C. and C.F.R. tokens.
func extractStatute(tok pattern.Token, pm *position.Map) (*Citation, error) {
	m := uscTokenPattern.FindStringSubmatch(tok.Text)
	if m == nil {
		m = cfrTokenPattern.FindStringSubmatch(tok.Text)
	}
	if m == nil {
		return nil, malformed(tok, "text does not have title code section shape")
	}

	title, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, malformed(tok, "title is not numeric")
	}

	cit := newCitation(tok, pm)
	cit.Statute = &StatuteMeta{
		Title:   title,
		Code:    m[2],
		Section: m[3],
		EtSeq:   m[4] != "",
	}
	return &cit, nil
}

func extractJournal(tok pattern.Token, pm *position.Map, clean string) (*Citation, error) {
	m := journalTokenPattern.FindStringSubmatch(tok.Text)
	if m == nil {
		return nil, malformed(tok, "text does not have volume journal page shape")
	}

	volume, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, malformed(tok, "volume is not numeric")
	}
	page, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, malformed(tok, "page is not numeric")
	}

	meta := &JournalMeta{
		Volume:  volume,
		Journal: strings.TrimSpace(m[2]),
		Page:    page,
	}

	rest := clean[tok.End:]
	if pin := journalPincitePattern.FindStringSubmatch(rest); pin != nil {
		meta.Pincite = pin[1]
	}
	if ym := journalYearPattern.FindStringSubmatch(rest); ym != nil {
		meta.Year, _ = strconv.Atoi(ym[1])
	}

	cit := newCitation(tok, pm)
	cit.Journal = meta
	return &cit, nil
}

func extractNeutral(tok pattern.Token, pm *position.Map) (*Citation, error) {
	m := neutralTokenPattern.FindStringSubmatch(tok.Text)
	if m == nil {
		return nil, malformed(tok, "text does not have year court number shape")
	}

	year, _ := strconv.Atoi(m[1])
	number, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, malformed(tok, "document number is not numeric")
	}

	cit := newCitation(tok, pm)
	cit.Neutral = &NeutralMeta{
		Year:   year,
		Court:  m[2],
		Number: number,
	}
	return &cit, nil
}

func extractPublicLaw(tok pattern.Token, pm *position.Map) (*Citation, error) {
	m := publicLawTokenPattern.FindStringSubmatch(tok.Text)
	if m == nil {
		return nil, malformed(tok, "text does not have congress-number shape")
	}

	congress, _ := strconv.Atoi(m[1])
	number, _ := strconv.Atoi(m[2])

	cit := newCitation(tok, pm)
	cit.PublicLaw = &PublicLawMeta{
		Congress: congress,
		Number:   number,
	}
	return &cit, nil
}

func extractFederalRegister(tok pattern.Token, pm *position.Map) (*Citation, error) {
	m := fedRegTokenPattern.FindStringSubmatch(tok.Text)
	if m == nil {
		return nil, malformed(tok, "text does not have volume page shape")
	}

	volume, _ := strconv.Atoi(m[1])

	cit := newCitation(tok, pm)
	cit.FederalRegister = &FederalRegisterMeta{
		Volume: volume,
		Page:   m[2],
	}
	return &cit, nil
}

func extractStatutesAtLarge(tok pattern.Token, pm *position.Map) (*Citation, error) {
	m := statTokenPattern.FindStringSubmatch(tok.Text)
	if m == nil {
		return nil, malformed(tok, "text does not have volume page shape")
	}

	volume, _ := strconv.Atoi(m[1])

	cit := newCitation(tok, pm)
	cit.StatutesAtLarge = &StatutesAtLargeMeta{
		Volume: volume,
		Page:   m[2],
	}
	return &cit, nil
}

func extractID(tok pattern.Token, pm *position.Map) (*Citation, error) {
	m := idTokenPattern.FindStringSubmatch(tok.Text)
	if m == nil {
		return nil, malformed(tok, "text does not have id shape")
	}

	cit := newCitation(tok, pm)
	cit.ID = &IDMeta{Pincite: m[1]}
	return &cit, nil
}

func extractSupra(tok pattern.Token, pm *position.Map) (*Citation, error) {
	m := supraTokenPattern.FindStringSubmatch(tok.Text)
	if m == nil {
		return nil, malformed(tok, "text does not have name supra shape")
	}

	meta := &SupraMeta{
		Name:    strings.TrimSpace(m[1]),
		Pincite: m[3],
	}
	if m[2] != "" {
		meta.Note, _ = strconv.Atoi(m[2])
	}

	cit := newCitation(tok, pm)
	cit.Supra = meta
	return &cit, nil
}

func extractShortFormCase(tok pattern.Token, pm *position.Map) (*Citation, error) {
	m := shortFormTokenPattern.FindStringSubmatch(tok.Text)
	if m == nil {
		return nil, malformed(tok, "text does not have volume reporter at page shape")
	}

	cit := newCitation(tok, pm)
	cit.ShortCase = &ShortCaseMeta{
		Volume:   m[1],
		Reporter: m[2],
		Page:     m[3],
	}
	return &cit, nil
}
