// Package extractor turns stored uploads into plain text for analysis.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

// Decoder converts one file format to text.
type Decoder interface {
	Decode(ctx context.Context, raw []byte) (string, error)
}

// Dispatcher reads a document from storage and picks a decoder by extension,
// falling back to the MIME type.
type Dispatcher struct {
	storage  ports.ObjectStorage
	byExt    map[string]Decoder
	byMime   map[string]Decoder
	maxBytes int64
}

type Format struct {
	Extensions []string
	MimeTypes  []string
	Decoder    Decoder
}

func NewDispatcher(storage ports.ObjectStorage, maxBytes int64, formats ...Format) *Dispatcher {
	d := &Dispatcher{
		storage:  storage,
		byExt:    make(map[string]Decoder),
		byMime:   make(map[string]Decoder),
		maxBytes: maxBytes,
	}
	for _, f := range formats {
		for _, ext := range f.Extensions {
			d.byExt[strings.ToLower(ext)] = f.Decoder
		}
		for _, mt := range f.MimeTypes {
			d.byMime[strings.ToLower(mt)] = f.Decoder
		}
	}
	return d
}

// Supports reports whether a decoder is registered for the file.
func (d *Dispatcher) Supports(filename, mimeType string) bool {
	return d.decoderFor(filename, mimeType) != nil
}

func (d *Dispatcher) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	decoder := d.decoderFor(doc.Filename, doc.MimeType)
	if decoder == nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("unsupported file type: %s", doc.Filename))
	}

	reader, err := d.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	var src io.Reader = reader
	if d.maxBytes > 0 {
		src = io.LimitReader(reader, d.maxBytes+1)
	}
	raw, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}
	if d.maxBytes > 0 && int64(len(raw)) > d.maxBytes {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("document exceeds %d bytes", d.maxBytes))
	}

	return d.decode(ctx, decoder, doc.Filename, raw)
}

// Decode converts raw bytes already in memory, as read by the CLI from a local
// file.
func (d *Dispatcher) Decode(ctx context.Context, filename, mimeType string, raw []byte) (string, error) {
	decoder := d.decoderFor(filename, mimeType)
	if decoder == nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("unsupported file type: %s", filename))
	}
	if d.maxBytes > 0 && int64(len(raw)) > d.maxBytes {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("document exceeds %d bytes", d.maxBytes))
	}
	return d.decode(ctx, decoder, filename, raw)
}

func (d *Dispatcher) decode(ctx context.Context, decoder Decoder, filename string, raw []byte) (string, error) {
	text, err := decoder.Decode(ctx, raw)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("%s: %w", filename, err))
	}
	return normalizeWhitespace(text), nil
}

// Extensions lists the registered file extensions in sorted order.
func (d *Dispatcher) Extensions() []string {
	out := make([]string, 0, len(d.byExt))
	for ext := range d.byExt {
		out = append(out, ext)
	}
	slices.Sort(out)
	return out
}

func (d *Dispatcher) decoderFor(filename, mimeType string) Decoder {
	if dec, ok := d.byExt[strings.ToLower(filepath.Ext(filename))]; ok {
		return dec
	}
	mt := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	return d.byMime[mt]
}

// normalizeWhitespace trims trailing blanks on every line and collapses runs of
// empty lines to one.
func normalizeWhitespace(text string) string {
	var b bytes.Buffer
	blank := 0
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}
