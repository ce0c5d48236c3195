package filetext

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

func fromPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var buf bytes.Buffer
	total := r.NumPage()
	for n := 1; n <= total; n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", n, err)
		}
		buf.WriteString(text)
		if n < total {
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}
