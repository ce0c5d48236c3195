// Package redact detects and redacts PII spans in contract text.
package redact

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Category is a PII category. Overlapping matches are resolved by category
// priority (email > phone > national_id > address), then longest match first.
type Category string

const (
	CategoryEmail      Category = "email"
	CategoryPhone      Category = "phone"
	CategoryNationalID Category = "national_id"
	CategoryAddress    Category = "address"
)

// categoryOrder lists categories by descending priority.
var categoryOrder = []Category{CategoryEmail, CategoryPhone, CategoryNationalID, CategoryAddress}

var patterns = map[Category]*regexp.Regexp{
	CategoryEmail: regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
	CategoryPhone: regexp.MustCompile(`(\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`),
	// SSN-shaped digit groups (3-2-4).
	CategoryNationalID: regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	// Street number followed by up to four name tokens and a street suffix.
	CategoryAddress: regexp.MustCompile(`\b\d{1,5}\s+(?:[A-Z][A-Za-z'.]*\s+){1,4}(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Place|Pl|Way|Suite|Ste)\b\.?`),
}

// span is one matched PII region.
type span struct {
	category Category
	start    int
	end      int
}

// Engine scans and redacts text. Safe for concurrent use; patterns are
// compiled once at package init.
type Engine struct{}

// NewEngine returns a redaction engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Scan returns per-category match counts. Malformed input never fails: text
// with no matches yields an empty map.
func (e *Engine) Scan(text string) map[string]int {
	counts := make(map[string]int)
	for _, s := range e.spans(text) {
		counts[string(s.category)]++
	}
	return counts
}

// Redact replaces every matched span with "[REDACTED:<CATEGORY>]" and returns
// the redacted text plus per-category counts. Text outside matched spans is
// preserved byte for byte.
func (e *Engine) Redact(text string) (string, map[string]int) {
	spans := e.spans(text)
	counts := make(map[string]int)
	if len(spans) == 0 {
		return text, counts
	}

	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, s := range spans {
		counts[string(s.category)]++
		b.WriteString(text[prev:s.start])
		b.WriteString(placeholder(s.category))
		prev = s.end
	}
	b.WriteString(text[prev:])
	return b.String(), counts
}

func placeholder(c Category) string {
	return fmt.Sprintf("[REDACTED:%s]", strings.ToUpper(string(c)))
}

// spans finds all matches and resolves overlaps. Candidates are considered in
// category priority order and, within a category, longest first; a candidate
// overlapping an accepted span is dropped. The result is sorted by offset.
func (e *Engine) spans(text string) []span {
	var accepted []span
	for _, cat := range categoryOrder {
		locs := patterns[cat].FindAllStringIndex(text, -1)
		candidates := make([]span, 0, len(locs))
		for _, loc := range locs {
			candidates = append(candidates, span{category: cat, start: loc[0], end: loc[1]})
		}
		sort.Slice(candidates, func(i, j int) bool {
			li := candidates[i].end - candidates[i].start
			lj := candidates[j].end - candidates[j].start
			if li != lj {
				return li > lj
			}
			return candidates[i].start < candidates[j].start
		})
		for _, c := range candidates {
			if !overlapsAny(accepted, c) {
				accepted = append(accepted, c)
			}
		}
	}
	sort.Slice(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })
	return accepted
}

func overlapsAny(spans []span, c span) bool {
	for _, s := range spans {
		if c.start < s.end && s.start < c.end {
			return true
		}
	}
	return false
}
