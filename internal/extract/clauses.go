package extract

import (
	"regexp"
	"strings"
)

// clauseTaxonomy is the fixed category taxonomy with the strong keywords that
// must co-occur within a section for the category to be assigned. Order is
// fixed so classification output is deterministic.
var clauseTaxonomy = []struct {
	category string
	keywords []string
}{
	{"payment_terms", []string{"payment", "invoice", "compensation", "fees"}},
	{"confidentiality", []string{"confidential", "non-disclosure", "nondisclosure", "proprietary information"}},
	{"liability", []string{"liability", "indemnif", "hold harmless"}},
	{"termination", []string{"terminat", "notice to cure"}},
	{"intellectual_property", []string{"intellectual property", "copyright", "patent", "work product"}},
	{"dispute_resolution", []string{"arbitration", "dispute", "governing law", "mediation"}},
	{"force_majeure", []string{"force majeure", "act of god", "acts of god"}},
	{"insurance", []string{"insurance", "insured"}},
}

// sectionHeadingRe matches numbered or headed section openings in contract
// prose: "1. Payment", "Section 4.", "ARTICLE II", all-caps headings, and
// "# Heading" lines.
var sectionHeadingRe = regexp.MustCompile(`(?m)^\s*(?:#\s+.+|\d{1,2}(?:\.\d+)*[.)]\s+\S.*|(?:Section|Article|ARTICLE)\s+[\dIVXivx]+.*|[A-Z][A-Z &/,-]{3,}:?)\s*$`)

// DocumentSections splits contract prose into heading-delimited sections.
// Text before the first heading forms an untitled preamble section.
func DocumentSections(text string) []string {
	locs := sectionHeadingRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}
	var sections []string
	if locs[0][0] > 0 {
		sections = append(sections, text[:locs[0][0]])
	}
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sections = append(sections, text[loc[0]:end])
	}
	return sections
}

// sectionBodies returns the heading-delimited section bodies with heading
// lines stripped, so keyword matching sees section content only.
func sectionBodies(text string) []string {
	locs := sectionHeadingRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}
	var bodies []string
	if locs[0][0] > 0 {
		bodies = append(bodies, text[:locs[0][0]])
	}
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		bodies = append(bodies, text[loc[1]:end])
	}
	return bodies
}

// ClassifyClauses labels heading-delimited sections against the fixed
// taxonomy. A section is labeled with a category only if at least one strong
// keyword for that category appears within its body (the heading alone is not
// enough); the result is the ordered set of categories found anywhere in the
// document.
func ClassifyClauses(text string) []string {
	sections := sectionBodies(text)
	found := make(map[string]bool)
	for _, sec := range sections {
		lower := strings.ToLower(sec)
		for _, entry := range clauseTaxonomy {
			if found[entry.category] {
				continue
			}
			for _, kw := range entry.keywords {
				if strings.Contains(lower, kw) {
					found[entry.category] = true
					break
				}
			}
		}
	}
	out := make([]string, 0, len(found))
	for _, entry := range clauseTaxonomy {
		if found[entry.category] {
			out = append(out, entry.category)
		}
	}
	return out
}
