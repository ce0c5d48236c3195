// Package segment splits raw contract text into ordered sections and
// line-level field candidates. Segmentation is deterministic and
// side-effect-free: the output is a pure function of the input text.
package segment

import (
	"regexp"
	"strings"
)

// GeneralSection is the name of the implicit section holding lines that
// appear before the first section header.
const GeneralSection = "General"

var (
	headerRe = regexp.MustCompile(`^#\s+(.+)`)
	fieldRe  = regexp.MustCompile(`^([^:]+):(.*)$`)
)

// FieldCandidate is a "Label: value" line found inside a section.
type FieldCandidate struct {
	Label    string
	RawValue string
	// Line is the index of the source line within the section.
	Line int
}

// Section is an ordered run of lines under one header. Lines holds every
// line of the section (blank and narrative lines included) so that callers
// can reproduce the original text; Fields holds only the field candidates.
type Section struct {
	Name   string
	Lines  []string
	Fields []FieldCandidate
}

// Split segments text into ordered sections. A line matching "# Name" opens a
// new section; lines before the first header belong to the implicit General
// section, which is emitted only when it has content.
func Split(text string) []Section {
	lines := strings.Split(text, "\n")
	var sections []Section
	current := Section{Name: GeneralSection}

	flush := func() {
		if current.Name == GeneralSection && len(current.Lines) == 0 {
			return
		}
		sections = append(sections, current)
	}

	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		if m := headerRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			current = Section{Name: strings.TrimSpace(m[1])}
			continue
		}
		current.Lines = append(current.Lines, trimmed)
		if fc, ok := fieldCandidate(trimmed, len(current.Lines)-1); ok {
			current.Fields = append(current.Fields, fc)
		}
	}
	flush()
	return sections
}

// fieldCandidate parses a "label: value" line. Blank lines and lines without
// a colon are not candidates; neither are lines whose label trims to empty.
func fieldCandidate(line string, idx int) (FieldCandidate, bool) {
	if strings.TrimSpace(line) == "" {
		return FieldCandidate{}, false
	}
	m := fieldRe.FindStringSubmatch(line)
	if m == nil {
		return FieldCandidate{}, false
	}
	label := strings.TrimSpace(m[1])
	if label == "" {
		return FieldCandidate{}, false
	}
	return FieldCandidate{
		Label:    label,
		RawValue: strings.TrimSpace(m[2]),
		Line:     idx,
	}, true
}

// IsHeader reports whether line opens a new section.
func IsHeader(line string) bool {
	return headerRe.MatchString(line)
}

// ParseFieldLine exposes field-candidate parsing for a single line; used by
// the rendering engine to locate substitution points without re-segmenting.
func ParseFieldLine(line string) (label, rawValue string, ok bool) {
	fc, ok := fieldCandidate(strings.TrimRight(line, "\r"), 0)
	if !ok {
		return "", "", false
	}
	return fc.Label, fc.RawValue, true
}
