package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lexfold/lexfold/internal/config"
	"github.com/lexfold/lexfold/pkg/utils"
)

var (
	// Matched against lowercased text.
	curePeriodRe = regexp.MustCompile(`(\d{1,3})\s*(?:calendar\s+|business\s+)?days'?\s*(?:prior\s+)?(?:written\s+)?notice|(?:cure|remedy)\D{0,40}?(\d{1,3})\s*(?:calendar\s+|business\s+)?days`)

	liabilityCapPhrases = []string{
		"liability cap",
		"limitation of liability",
		"liability shall not exceed",
		"liability is limited to",
		"aggregate liability",
	}
)

// ScoreRisk computes the weighted heuristic risk score for contract text:
// start at the base, add points for unlimited liability language, short
// notice-to-cure periods, and the absence of a liability cap; subtract points
// for insurance requirements, mutual indemnification, and an explicit cap.
// The result is clamped to [0,100].
func ScoreRisk(text string, cfg config.RiskConfig) int {
	lower := strings.ToLower(text)
	score := cfg.Base

	if strings.Contains(lower, "unlimited liability") ||
		(strings.Contains(lower, "liability") && strings.Contains(lower, "without limit")) {
		score += cfg.UnlimitedLiability
	}
	if days, ok := shortestCurePeriod(lower); ok && days < cfg.CurePeriodThresholdDays {
		score += cfg.ShortCurePeriod
	}

	hasCap := false
	for _, phrase := range liabilityCapPhrases {
		if strings.Contains(lower, phrase) {
			hasCap = true
			break
		}
	}
	if hasCap {
		score -= cfg.LiabilityCap
	} else {
		score += cfg.NoLiabilityCap
	}

	if strings.Contains(lower, "insurance") {
		score -= cfg.Insurance
	}
	if strings.Contains(lower, "mutual indemnif") || strings.Contains(lower, "each party shall indemnify") {
		score -= cfg.MutualIndemnification
	}

	return utils.Clamp(score, 0, 100)
}

// shortestCurePeriod returns the smallest notice/cure period in days found in
// the text.
func shortestCurePeriod(lower string) (int, bool) {
	best := 0
	found := false
	for _, m := range curePeriodRe.FindAllStringSubmatch(lower, -1) {
		tok := m[1]
		if tok == "" {
			tok = m[2]
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if !found || n < best {
			best = n
			found = true
		}
	}
	return best, found
}
