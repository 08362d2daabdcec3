package citation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/lexcite/pkg/types"
)

// Date shapes inside a case parenthetical, tried in priority order.
// "May", "June" and "July" are never abbreviated but the abbreviated
// pattern still accepts them without a period.
var (
	abbrevMonthDatePattern = regexp.MustCompile(`\b(Jan|Feb|Mar|Apr|May|June?|July?|Aug|Sept?|Oct|Nov|Dec)\.?\s+(\d{1,2}),?\s+(\d{4})\b`)
	fullMonthDatePattern   = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})\b`)
	numericDatePattern     = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	yearOnlyPattern        = regexp.MustCompile(`\b(1[6-9]\d{2}|20\d{2})\b`)

	dispositionPattern = regexp.MustCompile(`(?i)\b(en banc|per curiam)\b`)
)

// monthNumbers maps the first three letters of a month name.
var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

func monthNumber(name string) int {
	key := strings.ToLower(name)
	if len(key) > 3 {
		key = key[:3]
	}
	return monthNumbers[key]
}

// parenExtent finds the first parenthetical belonging to the citation
// a window follows, returning the open index and the index one past
// the close, or (-1, -1).
//
// The scan gives up at a semicolon (a different citation's territory),
// at a stray closing paren, and when the text before the open paren
// contains a longer lowercase word, which marks running prose rather
// than pincites or parallel reporters. The close must balance inside
// the window.
func parenExtent(window string) (int, int) {
	open := -1
	lowerRun := 0
	for i := 0; i < len(window); i++ {
		c := window[i]
		if c == ';' || c == ')' {
			return -1, -1
		}
		if c == '(' {
			open = i
			break
		}
		if c >= 'a' && c <= 'z' {
			lowerRun++
			if lowerRun >= 4 {
				return -1, -1
			}
		} else {
			lowerRun = 0
		}
	}
	if open < 0 {
		return -1, -1
	}
	closing := matchingParen(window, open)
	if closing < 0 {
		return -1, -1
	}
	return open, closing + 1
}

// findParentheticals returns the contents of the citation's first
// parenthetical and of a second chained one separated by at most
// spaces, as in "(9th Cir. 2020) (en banc)".
func findParentheticals(window string) (first, second string) {
	open, end := parenExtent(window)
	if open < 0 {
		return "", ""
	}
	first = window[open+1 : end-1]

	j := end
	for j < len(window) && window[j] == ' ' {
		j++
	}
	if j < len(window) && window[j] == '(' {
		if closing := matchingParen(window, j); closing > 0 {
			second = window[j+1 : closing]
		}
	}
	return first, second
}

// matchingParen returns the index of the paren closing the one at
// open, or -1 when it never closes inside the window.
func matchingParen(window string, open int) int {
	depth := 0
	for i := open; i < len(window); i++ {
		switch window[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseParentheticalDate extracts the decision date from parenthetical
// content and returns it with the content's remainder, which isolates
// the court. Precision follows what the text provides.
func parseParentheticalDate(content string) (*types.Date, string) {
	if m := abbrevMonthDatePattern.FindStringSubmatch(content); m != nil {
		if date := buildDate(m[3], monthNumber(m[1]), m[2]); date != nil {
			return date, strings.Replace(content, m[0], "", 1)
		}
	}
	if m := fullMonthDatePattern.FindStringSubmatch(content); m != nil {
		if date := buildDate(m[3], monthNumber(m[1]), m[2]); date != nil {
			return date, strings.Replace(content, m[0], "", 1)
		}
	}
	if m := numericDatePattern.FindStringSubmatch(content); m != nil {
		month, _ := strconv.Atoi(m[1])
		if date := buildDate(m[3], month, m[2]); date != nil {
			return date, strings.Replace(content, m[0], "", 1)
		}
	}
	if m := yearOnlyPattern.FindStringSubmatch(content); m != nil {
		year, _ := strconv.Atoi(m[1])
		return &types.Date{Year: year}, strings.Replace(content, m[0], "", 1)
	}
	return nil, content
}

func buildDate(yearText string, month int, dayText string) *types.Date {
	year, _ := strconv.Atoi(yearText)
	day, _ := strconv.Atoi(dayText)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	return &types.Date{Year: year, Month: month, Day: day}
}

// detectDisposition reports "en banc" or "per curiam" when present.
func detectDisposition(content string) string {
	if m := dispositionPattern.FindString(content); m != "" {
		return strings.ToLower(m)
	}
	return ""
}

func stripDisposition(content string) string {
	return dispositionPattern.ReplaceAllString(content, "")
}

// cleanCourt trims the separators left behind once dates and
// dispositions are removed from a parenthetical.
func cleanCourt(remainder string) string {
	return strings.Trim(strings.Join(strings.Fields(remainder), " "), " ,")
}
