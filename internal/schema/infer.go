// Package schema infers a typed field schema from plain-text contract templates.
package schema

import (
	"regexp"
	"strings"

	"github.com/lexfold/lexfold/internal/models"
	"github.com/lexfold/lexfold/internal/segment"
)

// templateTypeKeywords maps filename tokens to template types. Matching is
// ordered: the first keyword found in the lowercased filename wins.
var templateTypeKeywords = []struct {
	token string
	kind  models.TemplateType
}{
	{"nda", models.TemplateNDA},
	{"statement_of_work", models.TemplateSOW},
	{"sow", models.TemplateSOW},
	{"contractor", models.TemplateContractor},
	{"employ", models.TemplateEmployment},
	{"agency", models.TemplateAgencyAgreement},
	{"property", models.TemplatePropertyManagement},
	{"purchase", models.TemplatePurchaseAgreement},
	{"msa", models.TemplateMSA},
	{"master", models.TemplateMSA},
}

var (
	isoDateRe   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	monthDateRe = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(st|nd|rd|th)?,?\s+\d{4}\b`)
	dateLabelRe = regexp.MustCompile(`(?i)\bdate\b`)
	currencyRe  = regexp.MustCompile(`\$\s*\d|\b\d+(\.\d+)?\s*(USD|EUR|GBP|CAD|AUD|JPY)\b|\b(USD|EUR|GBP|CAD|AUD|JPY)\s*\d`)
	digitsRe    = regexp.MustCompile(`^\d+$`)
	emailRe     = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	keyRunRe    = regexp.MustCompile(`[^a-z0-9]+`)

	// placeholderRe matches raw values that are substitution targets rather
	// than literal content: [TOKEN], {{token}}, <token>, or underscore blanks.
	placeholderRe = regexp.MustCompile(`^(\[[^\]]+\]|\{\{[^}]+\}\}|<[^>]+>|_{2,})$`)
)

// Config holds the inference policy knobs.
type Config struct {
	// RequiredSections lists section-name substrings (case-insensitive) whose
	// fields default to required. A heuristic policy, not a hard law.
	RequiredSections []string
}

// DefaultConfig returns the baseline inference policy.
func DefaultConfig() Config {
	return Config{RequiredSections: []string{segment.GeneralSection, "Party", "Information"}}
}

// Engine infers template schemas. Inference is a pure function of the
// template text and filename: identical input yields an identical schema.
type Engine struct {
	cfg Config
}

// NewEngine creates a schema inference engine with the given policy.
func NewEngine(cfg Config) *Engine {
	if cfg.RequiredSections == nil {
		cfg.RequiredSections = DefaultConfig().RequiredSections
	}
	return &Engine{cfg: cfg}
}

// Infer derives the full schema for a template. The whole schema is recomputed
// on every call; there is no incremental mutation.
func (e *Engine) Infer(templateText, filename string) *models.TemplateSchema {
	ts := &models.TemplateSchema{
		TemplateID:   filename,
		TemplateType: TemplateTypeFromFilename(filename),
		SourceText:   templateText,
	}

	order := 0
	byName := make(map[string]int)
	for _, sec := range segment.Split(templateText) {
		fields := e.inferFields(sec)
		if sec.Name == segment.GeneralSection {
			ts.General = append(ts.General, fields...)
			continue
		}
		// Section names are unique within a template; a repeated header
		// appends its fields to the existing section.
		if i, seen := byName[sec.Name]; seen {
			ts.Sections[i].Fields = append(ts.Sections[i].Fields, fields...)
			continue
		}
		order++
		ts.Sections = append(ts.Sections, models.Section{
			Name:   sec.Name,
			Order:  order,
			Fields: fields,
		})
		byName[sec.Name] = len(ts.Sections) - 1
	}
	return ts
}

func (e *Engine) inferFields(sec segment.Section) []models.Field {
	required := e.sectionRequired(sec.Name)
	fields := make([]models.Field, 0, len(sec.Fields))
	for _, fc := range sec.Fields {
		fields = append(fields, models.Field{
			Key:          NormalizeKey(fc.Label),
			Label:        fc.Label,
			InferredType: InferType(fc.Label, fc.RawValue),
			Required:     required,
			Section:      sec.Name,
			RawValue:     fc.RawValue,
		})
	}
	return fields
}

func (e *Engine) sectionRequired(name string) bool {
	lower := strings.ToLower(name)
	for _, sub := range e.cfg.RequiredSections {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// TemplateTypeFromFilename infers the template kind from filename tokens.
// First keyword match wins; unmatched filenames fall back to SERVICE_AGREEMENT.
func TemplateTypeFromFilename(filename string) models.TemplateType {
	lower := strings.ToLower(filename)
	for _, kw := range templateTypeKeywords {
		if strings.Contains(lower, kw.token) {
			return kw.kind
		}
	}
	return models.TemplateServiceAgreement
}

// NormalizeKey lowercases a label and collapses whitespace/punctuation runs to "_".
func NormalizeKey(label string) string {
	key := keyRunRe.ReplaceAllString(strings.ToLower(label), "_")
	return strings.Trim(key, "_")
}

// InferType determines the field type in priority order:
// date, currency, integer, email, free_text.
func InferType(label, rawValue string) models.FieldType {
	if isoDateRe.MatchString(rawValue) || monthDateRe.MatchString(rawValue) ||
		dateLabelRe.MatchString(label) || monthDateRe.MatchString(label) {
		return models.FieldDate
	}
	if currencyRe.MatchString(rawValue) {
		return models.FieldCurrency
	}
	if digitsRe.MatchString(rawValue) {
		return models.FieldInteger
	}
	if strings.Contains(label, "@") || strings.Contains(rawValue, "@") ||
		emailRe.MatchString(rawValue) || emailLabel(label) {
		return models.FieldEmail
	}
	return models.FieldFreeText
}

// emailLabel reports whether the label names an email field without
// containing an address itself.
func emailLabel(label string) bool {
	return strings.Contains(strings.ToLower(label), "email")
}

// IsPlaceholder reports whether a field's raw value is a substitution target:
// an empty value, a bracketed token, a template expression, or a blank run.
func IsPlaceholder(rawValue string) bool {
	if strings.TrimSpace(rawValue) == "" {
		return true
	}
	return placeholderRe.MatchString(strings.TrimSpace(rawValue))
}
