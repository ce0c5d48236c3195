package filetext

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFromPlain(t *testing.T) {
	c := NewConverter()
	text, err := c.FromBytes([]byte("Service Agreement\nTerm: 2 years"), ".txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Term: 2 years") {
		t.Errorf("got %q", text)
	}
}

func TestFromPlainInvalidUTF8(t *testing.T) {
	c := NewConverter()
	text, err := c.FromBytes([]byte{0x41, 0xff, 0x42}, ".txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "A") || !strings.Contains(text, "B") {
		t.Errorf("got %q", text)
	}
	if !strings.Contains(text, "�") {
		t.Errorf("invalid bytes should be replaced: %q", text)
	}
}

func TestUnknownExtensionTreatedAsPlain(t *testing.T) {
	c := NewConverter()
	text, err := c.FromBytes([]byte("contract body"), ".contract")
	if err != nil || text != "contract body" {
		t.Errorf("got %q, %v", text, err)
	}
}

func buildDocx(t *testing.T, bodyXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(bodyXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFromDocx(t *testing.T) {
	doc := buildDocx(t, `<w:document><w:body><w:p><w:r><w:t>Mutual NDA</w:t></w:r></w:p>`+
		`<w:p w:rsidR="X"><w:r><w:t xml:space="preserve">between the parties</w:t></w:r></w:p></w:body></w:document>`)
	c := NewConverter()
	text, err := c.FromBytes(doc, ".docx")
	if err != nil {
		t.Fatal(err)
	}
	if text != "Mutual NDA between the parties" {
		t.Errorf("got %q", text)
	}
}

func TestFromDocxNotZip(t *testing.T) {
	c := NewConverter()
	if _, err := c.FromBytes([]byte("not a zip"), ".docx"); err == nil {
		t.Error("expected error for non-zip docx")
	}
}

func TestFromOdt(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("content.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(`<office:text><text:h text:outline-level="1">Purchase Agreement</text:h>` +
		`<text:p>Buyer: Acme</text:p></office:text>`)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	c := NewConverter()
	text, err := c.FromBytes(buf.Bytes(), ".odt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Purchase Agreement") || !strings.Contains(text, "Buyer: Acme") {
		t.Errorf("got %q", text)
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agreement.txt")
	if err := os.WriteFile(path, []byte("body text"), 0600); err != nil {
		t.Fatal(err)
	}
	c := NewConverter()
	text, err := c.FromFile(path)
	if err != nil || text != "body text" {
		t.Errorf("got %q, %v", text, err)
	}
	if _, err := c.FromFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSupported(t *testing.T) {
	for _, ext := range []string{".pdf", ".docx", ".odt", ".xlsx", ".txt", ".md"} {
		if !Supported(ext) {
			t.Errorf("%s should be supported", ext)
		}
	}
	if Supported(".exe") {
		t.Error(".exe should not be supported")
	}
}
