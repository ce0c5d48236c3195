package models

import "time"

// ExtractedMetadata is the structured metadata derived from contract text.
// It is produced once per extraction request and immutable once attached to a
// document; re-extraction replaces the whole value, never a partial merge.
type ExtractedMetadata struct {
	// Parties in order of first appearance, deduplicated.
	Parties []string `json:"parties"`
	// ContractValue is the largest currency-formatted amount found, if any.
	ContractValue  *float64   `json:"contract_value,omitempty"`
	Currency       string     `json:"currency"`
	EffectiveDate  *time.Time `json:"effective_date,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	// IdentifiedClauses holds clause category labels from the fixed taxonomy.
	IdentifiedClauses []string `json:"identified_clauses"`
	Summary           string   `json:"summary"`
	// RiskScore is in [0,100] when present.
	RiskScore *int `json:"risk_score,omitempty"`
	// RedactionCounts maps PII category to the number of spans detected.
	RedactionCounts map[string]int `json:"redaction_counts,omitempty"`
}
