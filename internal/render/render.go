// Package render produces final contract text from a template schema,
// structured inputs, clause selections, and constraints.
package render

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/lexfold/lexfold/internal/models"
	"github.com/lexfold/lexfold/internal/schema"
	"github.com/lexfold/lexfold/internal/segment"
)

// ExtrasHeader titles the terminal block holding selected clauses, custom
// clauses, and constraints.
const ExtrasHeader = "ADDITIONAL CLAUSES & CONSTRAINTS"

// ErrSchemaNotFound is returned when the schema reference does not resolve.
// It is the only fatal rendering error; missing optional fields never fail.
var ErrSchemaNotFound = errors.New("template schema not found")

// ClauseLibrary resolves selected clause IDs to their stored content.
type ClauseLibrary interface {
	GetClause(ctx context.Context, clauseID string) (string, error)
}

// Engine renders documents. Rendering never mutates the schema or template;
// it is a pure function producing a new string.
type Engine struct {
	clauses ClauseLibrary
}

// NewEngine creates a rendering engine backed by the given clause library.
func NewEngine(clauses ClauseLibrary) *Engine {
	return &Engine{clauses: clauses}
}

// Render merges the schema's template text with the request. Placeholder
// fields with a structured input are substituted; required placeholder fields
// without one are surfaced in RenderResult.Unresolved as a warning.
func (e *Engine) Render(ctx context.Context, ts *models.TemplateSchema, req *models.RenderRequest) (*models.RenderResult, error) {
	if ts == nil {
		return nil, ErrSchemaNotFound
	}
	if req == nil {
		req = &models.RenderRequest{}
	}

	body, unresolved := e.substitute(ts, req.StructuredInputs)

	var b strings.Builder
	b.WriteString(body)
	if req.HasExtras() {
		b.WriteString("\n\n")
		b.WriteString(ExtrasHeader)
		for _, entry := range e.extras(ctx, req) {
			b.WriteString("\n\n")
			b.WriteString(entry)
		}
	}

	return &models.RenderResult{
		RenderedText: b.String(),
		Unresolved:   unresolved,
	}, nil
}

// substitute walks the template line by line, replacing placeholder values of
// known fields with supplied inputs. Narrative lines pass through untouched.
func (e *Engine) substitute(ts *models.TemplateSchema, inputs map[string]string) (string, []string) {
	lines := strings.Split(ts.SourceText, "\n")
	unresolvedSet := make(map[string]bool)

	for i, line := range lines {
		if segment.IsHeader(line) {
			continue
		}
		label, raw, ok := segment.ParseFieldLine(line)
		if !ok {
			continue
		}
		key := schema.NormalizeKey(label)
		field, known := ts.FieldByKey(key)
		if !known || !schema.IsPlaceholder(field.RawValue) {
			continue
		}
		value, supplied := inputs[key]
		if !supplied {
			// Leave the original placeholder text in place.
			if field.Required {
				unresolvedSet[key] = true
			}
			continue
		}
		lines[i] = replaceValue(line, raw, value)
	}

	unresolved := make([]string, 0, len(unresolvedSet))
	for key := range unresolvedSet {
		unresolved = append(unresolved, key)
	}
	sort.Strings(unresolved)
	return strings.Join(lines, "\n"), unresolved
}

// replaceValue swaps the raw value portion of a field line for the supplied
// value, preserving the label and any spacing before the value.
func replaceValue(line, raw, value string) string {
	if raw == "" {
		return strings.TrimRight(line, " \t") + " " + value
	}
	idx := strings.LastIndex(line, raw)
	if idx < 0 {
		return line
	}
	return line[:idx] + value + line[idx+len(raw):]
}

// extras assembles the additional block entries in fixed order: selected
// clauses, then custom clauses, then constraints.
func (e *Engine) extras(ctx context.Context, req *models.RenderRequest) []string {
	entries := make([]string, 0, len(req.SelectedClauses)+len(req.CustomClauses)+len(req.Constraints))
	for _, id := range req.SelectedClauses {
		if e.clauses == nil {
			continue
		}
		content, err := e.clauses.GetClause(ctx, id)
		if err != nil || content == "" {
			// Unknown clause IDs are skipped; rendering fails only on an
			// unresolvable schema.
			continue
		}
		entries = append(entries, content)
	}
	for _, cc := range req.CustomClauses {
		entries = append(entries, cc.Title+"\n"+cc.Content)
	}
	for _, c := range req.Constraints {
		entries = append(entries, c.Name+": "+c.Value)
	}
	return entries
}
