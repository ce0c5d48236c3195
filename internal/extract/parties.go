package extract

import (
	"regexp"
	"sort"
	"strings"
)

// roleMarkerRe matches the closed vocabulary of party role markers at the
// start of a line, e.g. "Service Provider: Acme Corp".
var roleMarkerRe = regexp.MustCompile(`(?m)^\s*(?:Service Provider|Client|Provider|Customer|Vendor|Contractor|Consultant|Employer|Employee|Landlord|Tenant|Buyer|Seller|Agency|Owner|Disclosing Party|Receiving Party)\s*:\s*(\S[^\n]*)`)

// entityClauseRe matches party clauses naming a legal entity followed by a
// comma and jurisdiction, e.g. "Acme Corp Inc., a Delaware corporation".
var entityClauseRe = regexp.MustCompile(`([A-Z][A-Za-z0-9&.' -]*?(?:Inc|LLC|Ltd|Corp|Corporation|Company|Co|LLP|GmbH)\.?),\s+an?\s+[A-Z][A-Za-z]+\s+(?:corporation|company|limited liability company|partnership)`)

// ExtractParties collects unique party names in order of first appearance,
// role labels removed.
func ExtractParties(text string) []string {
	type hit struct {
		name string
		pos  int
	}
	var hits []hit

	for _, m := range roleMarkerRe.FindAllStringSubmatchIndex(text, -1) {
		name := strings.TrimSpace(text[m[2]:m[3]])
		name = strings.TrimRight(name, ".,;")
		if name != "" {
			hits = append(hits, hit{name: name, pos: m[0]})
		}
	}
	for _, m := range entityClauseRe.FindAllStringSubmatchIndex(text, -1) {
		name := strings.TrimSpace(text[m[2]:m[3]])
		if name != "" {
			hits = append(hits, hit{name: name, pos: m[0]})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	parties := make([]string, 0, len(hits))
	seen := make(map[string]bool)
	for _, h := range hits {
		norm := strings.TrimRight(strings.ToLower(h.name), ".")
		if seen[norm] {
			continue
		}
		seen[norm] = true
		parties = append(parties, h.name)
	}
	return parties
}
