package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lexfold/lexfold/internal/models"
	"github.com/lexfold/lexfold/internal/schema"
)

type fakeLibrary map[string]string

func (f fakeLibrary) GetClause(_ context.Context, id string) (string, error) {
	if c, ok := f[id]; ok {
		return c, nil
	}
	return "", fmt.Errorf("clause not found: %s", id)
}

const template = `# Party Information
Client Name: [CLIENT_NAME]
Provider Name: [PROVIDER_NAME]

# Terms
Effective Date: [EFFECTIVE_DATE]
Scope: [SCOPE]

Payment is due within 30 days of invoice.
`

func newSchema(t *testing.T) *models.TemplateSchema {
	t.Helper()
	return schema.NewEngine(schema.DefaultConfig()).Infer(template, "service_agreement.txt")
}

func TestRenderSubstitution(t *testing.T) {
	e := NewEngine(fakeLibrary{})
	res, err := e.Render(context.Background(), newSchema(t), &models.RenderRequest{
		StructuredInputs: map[string]string{
			"client_name":    "Acme Corp Inc.",
			"provider_name":  "Stark Industries",
			"effective_date": "2026-01-25",
		},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"Acme Corp Inc.", "Stark Industries", "2026-01-25"} {
		if !strings.Contains(res.RenderedText, want) {
			t.Errorf("rendered text missing %q", want)
		}
	}
	if strings.Contains(res.RenderedText, "[EFFECTIVE_DATE]") {
		t.Error("placeholder should have been replaced")
	}
	// Narrative text preserved.
	if !strings.Contains(res.RenderedText, "Payment is due within 30 days of invoice.") {
		t.Error("narrative line lost")
	}
}

func TestRenderUnresolvedFields(t *testing.T) {
	e := NewEngine(fakeLibrary{})
	res, err := e.Render(context.Background(), newSchema(t), &models.RenderRequest{
		StructuredInputs: map[string]string{"client_name": "Acme Corp Inc."},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// provider_name and effective_date are required (Party Information) or
	// not: effective_date is in Terms, which is not a required section.
	found := false
	for _, k := range res.Unresolved {
		if k == "provider_name" {
			found = true
		}
		if k == "scope" || k == "effective_date" {
			t.Errorf("optional field %q should not be unresolved", k)
		}
	}
	if !found {
		t.Errorf("provider_name should be unresolved: %v", res.Unresolved)
	}
	// Original placeholder text stays in place.
	if !strings.Contains(res.RenderedText, "[PROVIDER_NAME]") {
		t.Error("unsupplied placeholder should remain")
	}
}

func TestRenderExtrasBlock(t *testing.T) {
	lib := fakeLibrary{"cl-1": "Confidentiality. Each party shall protect the other's confidential information."}
	e := NewEngine(lib)

	req := &models.RenderRequest{
		SelectedClauses: []string{"cl-1"},
		CustomClauses:   []models.CustomClause{{Title: "Data Handling", Content: "All data stays encrypted at rest."}},
		Constraints:     []models.Constraint{{Name: "Data Residency", Value: "US only"}},
	}
	res, err := e.Render(context.Background(), newSchema(t), req)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(res.RenderedText, ExtrasHeader) {
		t.Fatal("extras header missing")
	}
	// Fixed order: selected, custom, constraints.
	iClause := strings.Index(res.RenderedText, "Confidentiality.")
	iCustom := strings.Index(res.RenderedText, "Data Handling\nAll data stays encrypted at rest.")
	iConstraint := strings.Index(res.RenderedText, "Data Residency: US only")
	if iClause < 0 || iCustom < 0 || iConstraint < 0 {
		t.Fatalf("missing extras entries: %d %d %d", iClause, iCustom, iConstraint)
	}
	if !(iClause < iCustom && iCustom < iConstraint) {
		t.Error("extras out of order")
	}
}

func TestRenderNoExtrasNoHeader(t *testing.T) {
	e := NewEngine(fakeLibrary{})
	res, err := e.Render(context.Background(), newSchema(t), &models.RenderRequest{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(res.RenderedText, ExtrasHeader) {
		t.Error("extras header must not appear without extras")
	}
}

func TestRenderUnknownClauseSkipped(t *testing.T) {
	e := NewEngine(fakeLibrary{})
	res, err := e.Render(context.Background(), newSchema(t), &models.RenderRequest{
		SelectedClauses: []string{"missing"},
		Constraints:     []models.Constraint{{Name: "Term", Value: "1 year"}},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(res.RenderedText, "Term: 1 year") {
		t.Error("constraint missing")
	}
}

func TestRenderSchemaNotFound(t *testing.T) {
	e := NewEngine(fakeLibrary{})
	_, err := e.Render(context.Background(), nil, &models.RenderRequest{})
	if !errors.Is(err, ErrSchemaNotFound) {
		t.Errorf("expected ErrSchemaNotFound, got %v", err)
	}
}

func TestRenderDeterministic(t *testing.T) {
	e := NewEngine(fakeLibrary{"cl-1": "Clause body."})
	req := &models.RenderRequest{
		StructuredInputs: map[string]string{"client_name": "Acme"},
		SelectedClauses:  []string{"cl-1"},
		Constraints:      []models.Constraint{{Name: "A", Value: "B"}},
	}
	ts := newSchema(t)
	a, err := e.Render(context.Background(), ts, req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Render(context.Background(), ts, req)
	if err != nil {
		t.Fatal(err)
	}
	if a.RenderedText != b.RenderedText {
		t.Error("rendering must be deterministic")
	}
}

func TestRenderDoesNotMutateSchema(t *testing.T) {
	ts := newSchema(t)
	before := ts.SourceText
	e := NewEngine(fakeLibrary{})
	if _, err := e.Render(context.Background(), ts, &models.RenderRequest{
		StructuredInputs: map[string]string{"client_name": "Acme"},
	}); err != nil {
		t.Fatal(err)
	}
	if ts.SourceText != before {
		t.Error("rendering must not mutate the template text")
	}
}
