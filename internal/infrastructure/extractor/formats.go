package extractor

import (
	"github.com/kirillkom/legal-assistant/internal/infrastructure/extractor/docx"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/extractor/xlsx"
)

// DefaultFormats lists the upload types the service accepts.
func DefaultFormats(maxPDFPages int) []Format {
	return []Format{
		{
			Extensions: []string{".txt", ".md"},
			MimeTypes:  []string{"text/plain", "text/markdown"},
			Decoder:    plaintext.NewDecoder(),
		},
		{
			Extensions: []string{".pdf"},
			MimeTypes:  []string{"application/pdf"},
			Decoder:    pdf.NewDecoder(maxPDFPages),
		},
		{
			Extensions: []string{".docx"},
			MimeTypes:  []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
			Decoder:    docx.NewDecoder(),
		},
		{
			Extensions: []string{".xlsx"},
			MimeTypes:  []string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
			Decoder:    xlsx.NewDecoder(),
		},
	}
}
