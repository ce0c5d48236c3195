package extract

import (
	"strings"

	"github.com/lexfold/lexfold/pkg/utils"
)

// Summarize produces a deterministic extractive summary: the first sentence
// of each detected major section, concatenated and truncated to budget
// characters.
func Summarize(text string, budget int) string {
	var parts []string
	for _, sec := range DocumentSections(text) {
		sentence := utils.FirstSentence(utils.CollapseWhitespace(sec))
		if sentence == "" {
			continue
		}
		parts = append(parts, sentence)
	}
	return utils.Truncate(strings.Join(parts, " "), budget)
}
