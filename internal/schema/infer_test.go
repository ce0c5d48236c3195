package schema

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/lexfold/lexfold/internal/models"
)

func TestTemplateTypeFromFilename(t *testing.T) {
	cases := []struct {
		filename string
		want     models.TemplateType
	}{
		{"Mutual_NDA.txt", models.TemplateNDA},
		{"statement_of_work_v2.txt", models.TemplateSOW},
		{"Project_SOW.md", models.TemplateSOW},
		{"independent_contractor.txt", models.TemplateContractor},
		{"employment_offer.txt", models.TemplateEmployment},
		{"agency_agreement.txt", models.TemplateAgencyAgreement},
		{"property_management.txt", models.TemplatePropertyManagement},
		{"purchase_agreement.txt", models.TemplatePurchaseAgreement},
		{"MSA_2026.txt", models.TemplateMSA},
		{"master_services.txt", models.TemplateMSA},
		{"generic_contract.txt", models.TemplateServiceAgreement},
	}
	for _, c := range cases {
		if got := TemplateTypeFromFilename(c.filename); got != c.want {
			t.Errorf("TemplateTypeFromFilename(%q) = %q, want %q", c.filename, got, c.want)
		}
	}
}

func TestTemplateTypeOrderedMatching(t *testing.T) {
	// "nda" outranks "contractor" because matching is ordered, first wins.
	if got := TemplateTypeFromFilename("nda_for_contractor.txt"); got != models.TemplateNDA {
		t.Errorf("ordered matching: got %q", got)
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Effective Date", "effective_date"},
		{"Client's  E-mail", "client_s_e_mail"},
		{"  Payment Terms (Net) ", "payment_terms_net"},
		{"FIELD", "field"},
	}
	for _, c := range cases {
		if got := NormalizeKey(c.in); got != c.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestInferType(t *testing.T) {
	cases := []struct {
		label, raw string
		want       models.FieldType
	}{
		{"Effective Date", "[EFFECTIVE_DATE]", models.FieldDate},
		{"Start", "2026-01-25", models.FieldDate},
		{"Signed", "January 25, 2026", models.FieldDate},
		{"Contract Value", "$50,000", models.FieldCurrency},
		{"Fee", "1000 USD", models.FieldCurrency},
		{"Term Length", "36", models.FieldInteger},
		{"Contact Email", "[CONTACT_EMAIL]", models.FieldEmail},
		{"Contact", "legal@acme.com", models.FieldEmail},
		{"Scope", "Consulting services", models.FieldFreeText},
	}
	for _, c := range cases {
		if got := InferType(c.label, c.raw); got != c.want {
			t.Errorf("InferType(%q, %q) = %q, want %q", c.label, c.raw, got, c.want)
		}
	}
}

func TestInferTypePriority(t *testing.T) {
	// Date outranks currency outranks integer outranks email.
	if got := InferType("Due Date", "$100"); got != models.FieldDate {
		t.Errorf("date should win over currency, got %q", got)
	}
	if got := InferType("Amount", "$100"); got != models.FieldCurrency {
		t.Errorf("got %q", got)
	}
}

const template = `Contract Title: [TITLE]

# Party Information
Client Name: [CLIENT_NAME]
Client Email: [CLIENT_EMAIL]

# Payment Terms
Total Amount: $10,000
Payment Schedule: [SCHEDULE]
`

func TestInfer(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ts := e.Infer(template, "consulting_agreement.txt")

	if ts.TemplateType != models.TemplateServiceAgreement {
		t.Errorf("template type: %q", ts.TemplateType)
	}
	if ts.TemplateID != "consulting_agreement.txt" {
		t.Errorf("template id: %q", ts.TemplateID)
	}

	// General is tracked internally but not a visible section.
	if len(ts.General) != 1 || ts.General[0].Key != "contract_title" {
		t.Errorf("general fields: %+v", ts.General)
	}
	if len(ts.Sections) != 2 {
		t.Fatalf("sections: %+v", ts.Sections)
	}
	for _, sec := range ts.Sections {
		if sec.Name == "General" {
			t.Error("General must not appear in visible sections")
		}
	}

	// Order strictly increasing.
	if ts.Sections[0].Order != 1 || ts.Sections[1].Order != 2 {
		t.Errorf("section order: %d, %d", ts.Sections[0].Order, ts.Sections[1].Order)
	}

	parties := ts.Sections[0]
	if !parties.Fields[0].Required {
		t.Error("Party Information fields should default to required")
	}
	payment := ts.Sections[1]
	if payment.Fields[0].Required {
		t.Error("Payment Terms fields should default to optional")
	}
	if payment.Fields[0].InferredType != models.FieldCurrency {
		t.Errorf("total_amount type: %q", payment.Fields[0].InferredType)
	}

	// General fields are required under the default policy.
	if !ts.General[0].Required {
		t.Error("General fields should default to required")
	}
}

func TestInferIdempotent(t *testing.T) {
	e := NewEngine(DefaultConfig())
	a, err := json.Marshal(e.Infer(template, "msa.txt"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(e.Infer(template, "msa.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("inference must be byte-identical for unchanged input")
	}
}

func TestInferDuplicateSectionNames(t *testing.T) {
	text := "# Terms\nA: [A]\n# Terms\nB: [B]\n"
	ts := NewEngine(DefaultConfig()).Infer(text, "x.txt")
	if len(ts.Sections) != 1 {
		t.Fatalf("duplicate headers should merge: %+v", ts.Sections)
	}
	if len(ts.Sections[0].Fields) != 2 {
		t.Errorf("merged fields: %+v", ts.Sections[0].Fields)
	}
}

func TestIsPlaceholder(t *testing.T) {
	for _, raw := range []string{"[CLIENT_NAME]", "{{client}}", "<client>", "____", ""} {
		if !IsPlaceholder(raw) {
			t.Errorf("%q should be a placeholder", raw)
		}
	}
	for _, raw := range []string{"Acme Corp", "$10,000", "2026-01-25"} {
		if IsPlaceholder(raw) {
			t.Errorf("%q should not be a placeholder", raw)
		}
	}
}

func TestRequiredPolicyConfigurable(t *testing.T) {
	e := NewEngine(Config{RequiredSections: []string{"Payment"}})
	ts := e.Infer(template, "x.txt")
	for _, sec := range ts.Sections {
		switch sec.Name {
		case "Payment Terms":
			if !sec.Fields[0].Required {
				t.Error("configured section should be required")
			}
		case "Party Information":
			if sec.Fields[0].Required {
				t.Error("unconfigured section should be optional")
			}
		}
	}
}
