// Package filetext converts uploaded contract files to plain text so the
// extraction and indexing pipeline can treat every upload uniformly.
package filetext

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Converter extracts plain text from contract files.
type Converter struct{}

// NewConverter returns a Converter.
func NewConverter() *Converter {
	return &Converter{}
}

// FromFile reads the file at path and returns its text content.
func (c *Converter) FromFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return c.FromBytes(content, strings.ToLower(filepath.Ext(path)))
}

// FromBytes extracts text from content based on the given extension, which
// should include the leading dot (e.g. ".pdf"). Unknown extensions are
// treated as plain text: contracts arrive in many shapes and a best-effort
// read beats a rejection.
func (c *Converter) FromBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return fromPDF(content)
	case ".docx", ".odt":
		return fromWordArchive(content, ext)
	case ".xlsx":
		return fromWorkbook(content)
	default:
		return fromPlain(content)
	}
}

// Supported reports whether ext gets a format-specific conversion.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".docx", ".odt", ".xlsx", ".txt", ".md":
		return true
	}
	return false
}
