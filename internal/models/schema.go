// Package models defines core data structures for schemas, rendering, extraction, and search.
package models

// TemplateType is the contract template kind inferred from the template filename.
type TemplateType string

const (
	TemplateNDA                TemplateType = "NDA"
	TemplateMSA                TemplateType = "MSA"
	TemplateSOW                TemplateType = "SOW"
	TemplateEmployment         TemplateType = "EMPLOYMENT"
	TemplateAgencyAgreement    TemplateType = "AGENCY_AGREEMENT"
	TemplatePropertyManagement TemplateType = "PROPERTY_MANAGEMENT"
	TemplatePurchaseAgreement  TemplateType = "PURCHASE_AGREEMENT"
	TemplateContractor         TemplateType = "CONTRACTOR_AGREEMENT"
	TemplateServiceAgreement   TemplateType = "SERVICE_AGREEMENT"
)

// FieldType is the inferred value type of a template field.
type FieldType string

const (
	FieldDate     FieldType = "date"
	FieldCurrency FieldType = "currency"
	FieldInteger  FieldType = "integer"
	FieldEmail    FieldType = "email"
	FieldFreeText FieldType = "free_text"
)

// Field is a typed template field derived from a "Label: value" line.
type Field struct {
	// Key is the normalized field name, e.g. "effective_date".
	Key string `json:"key"`
	// Label is the human-readable name as written in the template.
	Label        string    `json:"label"`
	InferredType FieldType `json:"inferred_type"`
	Required     bool      `json:"required"`
	// Section is the name of the owning section (lookup only, no ownership).
	Section string `json:"-"`
	// RawValue is the original value text from the template line; when it is a
	// placeholder the rendering engine substitutes structured input for it.
	RawValue string `json:"-"`
}

// Section is a named, ordered group of fields within a template.
type Section struct {
	Name   string  `json:"name"`
	Order  int     `json:"order"`
	Fields []Field `json:"fields"`
}

// TemplateSchema is the inferred section/field structure of a template. It is
// owned exclusively by the template and recomputed in full whenever the
// template content changes: the schema is a pure function of the template text.
type TemplateSchema struct {
	TemplateID   string       `json:"template_id"`
	TemplateType TemplateType `json:"template_type"`
	// Sections lists the visible sections in order; the implicit General
	// section is excluded here for client presentation.
	Sections []Section `json:"sections"`
	// General holds fields found before the first section header. They are
	// tracked for rendering but not presented as a section.
	General []Field `json:"-"`
	// SourceText is the template text the schema was derived from.
	SourceText string `json:"-"`
}

// FieldByKey returns the field with the given normalized key, searching the
// General fields first and then each visible section in order.
func (s *TemplateSchema) FieldByKey(key string) (*Field, bool) {
	for i := range s.General {
		if s.General[i].Key == key {
			return &s.General[i], true
		}
	}
	for i := range s.Sections {
		for j := range s.Sections[i].Fields {
			if s.Sections[i].Fields[j].Key == key {
				return &s.Sections[i].Fields[j], true
			}
		}
	}
	return nil, false
}

// AllFields returns the General fields followed by every section's fields in order.
func (s *TemplateSchema) AllFields() []Field {
	out := make([]Field, 0, len(s.General))
	out = append(out, s.General...)
	for _, sec := range s.Sections {
		out = append(out, sec.Fields...)
	}
	return out
}
