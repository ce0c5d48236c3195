package models

import "time"

// Contract is a stored contract instance: the source text plus whatever the
// extraction pipeline derived from it. Metadata is replaced whole on every
// re-extraction, never patched field by field.
type Contract struct {
	ID           string             `json:"id"`
	TenantID     string             `json:"tenant_id"`
	Title        string             `json:"title"`
	Text         string             `json:"text"`
	TemplateType TemplateType       `json:"template_type,omitempty"`
	Metadata     *ExtractedMetadata `json:"metadata,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// Clause is a reusable clause from the clause library. An empty TenantID
// marks a global clause, readable by every tenant.
type Clause struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Template is a stored contract template. Templates normally live on disk;
// the database copy backs tenant-uploaded templates and survives restarts.
// An empty TenantID marks a global template.
type Template struct {
	Filename  string    `json:"filename"`
	TenantID  string    `json:"tenant_id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}
