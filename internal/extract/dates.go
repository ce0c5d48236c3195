package extract

import (
	"regexp"
	"strings"
	"time"
)

// dateToken matches the supported date forms: ISO, "January 25, 2026",
// "25 January 2026", and "01/25/2026".
const dateToken = `(\d{4}-\d{2}-\d{2}|[A-Z][a-z]+\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}|\d{1,2}\s+[A-Z][a-z]+\.?,?\s+\d{4}|\d{1,2}/\d{1,2}/\d{4})`

var (
	effectiveDateRe = regexp.MustCompile(`(?i)effective\s+date\s*(?:of|:)?\s*(?:this\s+agreement\s+is\s+)?` + dateToken)
	enteredAsOfRe   = regexp.MustCompile(`(?i)entered\s+into[^.\n]{0,60}?as\s+of\s+` + dateToken)
	expirationRe    = regexp.MustCompile(`(?i)expiration\s+date\s*(?:of|:)?\s*` + dateToken)
	expiresRe       = regexp.MustCompile(`(?i)expires?\s+(?:on\s+)?` + dateToken)
)

var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan. 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"01/02/2006",
	"1/2/2006",
}

// ExtractDates finds the effective and expiration dates. Synonyms are
// recognized ("entered into ... as of", "expires"). Absent dates yield nil,
// never a guessed value.
func ExtractDates(text string) (effective, expiration *time.Time) {
	effective = firstDate(text, effectiveDateRe, enteredAsOfRe)
	expiration = firstDate(text, expirationRe, expiresRe)
	return effective, expiration
}

// firstDate tries each pattern in order and parses the first captured token.
func firstDate(text string, patterns ...*regexp.Regexp) *time.Time {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if d, ok := parseDateToken(m[1]); ok {
			return &d
		}
	}
	return nil
}

func parseDateToken(token string) (time.Time, bool) {
	token = strings.TrimSpace(token)
	// Strip ordinal suffixes: "25th," -> "25,".
	token = ordinalRe.ReplaceAllString(token, "$1")
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, token); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

var ordinalRe = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)`)
