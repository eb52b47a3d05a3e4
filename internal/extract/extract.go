// internal/extract/extract.go
package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"

	apperrors "github.com/scriptecho/scriptreader/internal/errors"
)

// utf8BOM is stripped from plain-text uploads before validation.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extract normalizes an uploaded document into a flat text stream.
// The extension decides the decoder: "txt" (strict UTF-8), "docx"
// (paragraph text in document order), "pdf" (page text in page order).
// Anything else fails with an unsupported-format error naming the extension.
func Extract(data []byte, ext string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "txt":
		return extractPlainText(data)
	case "docx":
		return extractDocx(data)
	case "pdf":
		return extractPDF(data)
	default:
		return "", apperrors.NewUnsupportedFormatError(ext)
	}
}

// extractPlainText decodes raw bytes as UTF-8, rejecting invalid sequences.
func extractPlainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		return "", apperrors.NewDecodeError("plain text upload is not valid UTF-8", nil)
	}

	return string(data), nil
}

// extractDocx concatenates paragraph text in document order.
// Empty paragraphs are preserved as empty lines so the parser still sees
// dialogue block boundaries.
func extractDocx(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperrors.NewDecodeError("failed to parse docx document", err)
	}

	var sb strings.Builder
	first := true
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if !first {
			sb.WriteByte('\n')
		}
		sb.WriteString(para.String())
		first = false
	}

	return sb.String(), nil
}

// extractPDF concatenates per-page extracted text in page order.
// A page with no extractable text contributes an empty string, not an error.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperrors.NewDecodeError("failed to open pdf document", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Unextractable page contributes nothing.
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}

	return sb.String(), nil
}
