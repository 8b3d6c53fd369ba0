package ingestion

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Format tags accepted by ExtractText.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// ErrUnsupportedFormat marks a file whose extension is neither .pdf nor .docx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// FormatFromFilename derives the format tag from the filename's final
// extension, case-insensitively.
func FormatFromFilename(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// ExtractText extracts plain text from raw document bytes. Parse failures
// wrap the underlying cause so callers can surface it to the user.
func ExtractText(data []byte, format string) (string, error) {
	switch format {
	case FormatPDF:
		return extractPDF(data)
	case FormatDOCX:
		return extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// extractPDF concatenates the text of every page in document order. A page
// with no text contributes an empty segment rather than an error.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("error extracting text: %w", err)
	}

	var sb strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("error extracting text from page %d: %w", pageIndex, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("error extracting text: %w", err)
	}
	defer doc.Close()

	return wordMLToText(doc.Editable().GetContent()), nil
}

// wordMLToText flattens WordprocessingML into plain text: character data is
// concatenated and each closed paragraph emits a newline.
func wordMLToText(content string) string {
	decoder := xml.NewDecoder(strings.NewReader(content))
	var sb strings.Builder
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			if t.Name.Local == "p" {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}
