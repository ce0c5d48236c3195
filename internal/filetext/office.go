package filetext

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Both DOCX (OOXML) and ODT (OpenDocument) are zip archives carrying the
// document body as XML. Text nodes are pulled with targeted patterns rather
// than a full XML parse: run and paragraph attributes vary wildly between
// producers, and only the node text matters for downstream extraction.
var (
	ooxmlTextRe = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	odfTextRe   = regexp.MustCompile(`<text:(?:p|h|span)[^>]*>([^<]*)</text:(?:p|h|span)>`)
)

// archiveBodyPath returns the main body entry for the format.
func archiveBodyPath(ext string) string {
	if ext == ".odt" {
		return "content.xml"
	}
	return "word/document.xml"
}

func fromWordArchive(content []byte, ext string) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open %s: not a zip: %w", ext, err)
	}
	bodyPath := archiveBodyPath(ext)
	body, err := readZipEntry(zr, bodyPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", ext, err)
	}

	re := ooxmlTextRe
	if ext == ".odt" {
		re = odfTextRe
	}
	parts := re.FindAllStringSubmatch(string(body), -1)
	var b strings.Builder
	for _, p := range parts {
		t := strings.TrimSpace(p[1])
		if t == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t)
	}
	return b.String(), nil
}

func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

// fromWorkbook flattens every sheet row-wise, tab-separated. Rate cards and
// pricing tabs in SOW uploads come through as scannable lines this way.
func fromWorkbook(content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// fromPlain validates UTF-8, replacing invalid sequences.
func fromPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "�"), nil
	}
	return string(content), nil
}
