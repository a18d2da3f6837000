package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"
)

func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>SERVICE AGREEMENT</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">The Supplier </w:t></w:r><w:r><w:t>shall indemnify the Client.</w:t></w:r></w:p>
<w:p><w:r><w:t>Fee:</w:t><w:tab/><w:t>$5,000</w:t></w:r></w:p>
</w:body>
</w:document>`

func TestDecodeParagraphs(t *testing.T) {
	raw := buildDocx(t, map[string]string{
		"[Content_Types].xml": `<Types/>`,
		documentPart:          documentXML,
	})

	got, err := NewDecoder().Decode(context.Background(), raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := "SERVICE AGREEMENT\nThe Supplier shall indemnify the Client.\nFee:\t$5,000"
	if got != want {
		t.Fatalf("Decode() = %q, want %q", got, want)
	}
}

func TestDecodeMissingDocumentPart(t *testing.T) {
	raw := buildDocx(t, map[string]string{"word/styles.xml": "<styles/>"})
	if _, err := NewDecoder().Decode(context.Background(), raw); !errors.Is(err, ErrNoDocumentPart) {
		t.Fatalf("expected ErrNoDocumentPart, got %v", err)
	}
}

func TestDecodeRejectsNonZip(t *testing.T) {
	if _, err := NewDecoder().Decode(context.Background(), []byte("plain")); err == nil {
		t.Fatalf("expected error for non-zip input")
	}
}
