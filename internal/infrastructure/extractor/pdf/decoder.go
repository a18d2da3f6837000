package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

const DefaultMaxPages = 50

// Decoder pulls the text layer out of a PDF. Scanned pages without text yield
// nothing.
type Decoder struct {
	maxPages int
}

func NewDecoder(maxPages int) Decoder {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return Decoder{maxPages: maxPages}
}

func (d Decoder) Decode(ctx context.Context, raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := min(reader.NumPage(), d.maxPages)
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String()), nil
}
