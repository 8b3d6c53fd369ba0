package ingestion

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/christopher-nones/resume-scorer/internal/models"
)

// UploadedFile is one uploaded document before extraction.
type UploadedFile struct {
	Filename string
	Data     []byte
}

// ValidateFormats rejects the whole batch when any file carries an
// unsupported extension. This runs before any extraction so a single bad
// format fails the request up front, unlike extraction failures which are
// isolated per file.
func ValidateFormats(files []UploadedFile) error {
	for _, f := range files {
		if _, err := FormatFromFilename(f.Filename); err != nil {
			return fmt.Errorf("file %s is not a supported format, only PDF and DOCX files are supported: %w",
				f.Filename, ErrUnsupportedFormat)
		}
	}
	return nil
}

// ProcessFiles extracts text from every file in input order. A file whose
// content fails to parse yields a record with Error set and empty text; the
// remaining files continue processing. Exactly one record is produced per
// input file.
func ProcessFiles(files []UploadedFile) ([]models.ExtractedDocument, error) {
	if err := ValidateFormats(files); err != nil {
		return nil, err
	}

	docs := make([]models.ExtractedDocument, 0, len(files))
	for _, f := range files {
		format, _ := FormatFromFilename(f.Filename)

		doc := models.ExtractedDocument{
			Filename:     f.Filename,
			FallbackName: strings.TrimSuffix(f.Filename, filepath.Ext(f.Filename)),
		}

		text, err := ExtractText(f.Data, format)
		if err != nil {
			log.Warn().Str("file", f.Filename).Err(err).Msg("text extraction failed")
			doc.Error = fmt.Sprintf("Failed to process: %v", err)
		} else {
			doc.Text = text
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
