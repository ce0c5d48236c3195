package models

// CustomClause is a caller-supplied clause appended to the rendered document.
type CustomClause struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Constraint is a named constraint appended to the rendered document.
type Constraint struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RenderRequest carries the caller inputs merged into a template during rendering.
type RenderRequest struct {
	// StructuredInputs maps normalized field keys to their values.
	StructuredInputs map[string]string `json:"structured_inputs,omitempty"`
	// SelectedClauses references clauses in the clause library by ID.
	SelectedClauses []string       `json:"selected_clauses,omitempty"`
	CustomClauses   []CustomClause `json:"custom_clauses,omitempty"`
	Constraints     []Constraint   `json:"constraints,omitempty"`
}

// HasExtras reports whether the request carries any selected clauses, custom
// clauses, or constraints (and therefore produces the additional block).
func (r *RenderRequest) HasExtras() bool {
	return len(r.SelectedClauses) > 0 || len(r.CustomClauses) > 0 || len(r.Constraints) > 0
}

// RenderResult is the outcome of rendering a template.
type RenderResult struct {
	RenderedText string `json:"rendered_text"`
	// Unresolved lists required field keys that had no supplied value.
	// Non-fatal: surfaced as a warning, never as an error.
	Unresolved []string `json:"unresolved_fields,omitempty"`
}
