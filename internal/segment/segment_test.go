package segment

import (
	"reflect"
	"testing"
)

const sample = `Contract Title: Service Agreement

# Party Information
Client Name: [CLIENT_NAME]
Provider Name: [PROVIDER_NAME]

This section also has narrative text.

# Terms
Effective Date: [EFFECTIVE_DATE]
Payment due within 30 days of invoice.
`

func TestSplitSections(t *testing.T) {
	sections := Split(sample)
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d: %+v", len(sections), sections)
	}
	names := []string{sections[0].Name, sections[1].Name, sections[2].Name}
	want := []string{"General", "Party Information", "Terms"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("section names: got %v want %v", names, want)
	}
}

func TestSplitFieldCandidates(t *testing.T) {
	sections := Split(sample)

	general := sections[0]
	if len(general.Fields) != 1 || general.Fields[0].Label != "Contract Title" {
		t.Errorf("general fields: %+v", general.Fields)
	}
	if general.Fields[0].RawValue != "Service Agreement" {
		t.Errorf("raw value: %q", general.Fields[0].RawValue)
	}

	parties := sections[1]
	if len(parties.Fields) != 2 {
		t.Fatalf("parties fields: %+v", parties.Fields)
	}
	if parties.Fields[0].Label != "Client Name" || parties.Fields[0].RawValue != "[CLIENT_NAME]" {
		t.Errorf("first party field: %+v", parties.Fields[0])
	}

	// Narrative lines and blanks are preserved but not field candidates.
	if len(parties.Lines) != 5 {
		t.Errorf("parties lines: %d %q", len(parties.Lines), parties.Lines)
	}
}

func TestSplitNoGeneralWhenEmpty(t *testing.T) {
	sections := Split("# Only Section\nKey: value\n")
	if len(sections) != 1 || sections[0].Name != "Only Section" {
		t.Fatalf("sections: %+v", sections)
	}
}

func TestSplitColonInValue(t *testing.T) {
	// First colon splits label from value; the rest belongs to the value.
	sections := Split("Meeting Time: 2026-01-25 09:30")
	if len(sections) != 1 {
		t.Fatal("expected implicit General section")
	}
	f := sections[0].Fields[0]
	if f.Label != "Meeting Time" {
		t.Errorf("label: %q", f.Label)
	}
}

func TestSplitDeterministic(t *testing.T) {
	a := Split(sample)
	b := Split(sample)
	if !reflect.DeepEqual(a, b) {
		t.Error("segmentation must be deterministic")
	}
}

func TestSplitEmpty(t *testing.T) {
	if sections := Split(""); len(sections) != 1 || len(sections[0].Fields) != 0 {
		// A single empty line still lands in General; no fields.
		if len(sections) > 1 {
			t.Errorf("unexpected sections: %+v", sections)
		}
	}
}

func TestParseFieldLine(t *testing.T) {
	label, raw, ok := ParseFieldLine("Effective Date: [EFFECTIVE_DATE]\r")
	if !ok || label != "Effective Date" || raw != "[EFFECTIVE_DATE]" {
		t.Errorf("got %q %q %v", label, raw, ok)
	}
	if _, _, ok := ParseFieldLine("no colon here"); ok {
		t.Error("line without colon should not parse")
	}
	if _, _, ok := ParseFieldLine("   "); ok {
		t.Error("blank line should not parse")
	}
}
