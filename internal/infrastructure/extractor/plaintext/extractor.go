package plaintext

import (
	"bytes"
	"context"
	"errors"
	"unicode/utf8"
)

var ErrBinaryContent = errors.New("content is not valid UTF-8 text")

// Decoder accepts UTF-8 text, with or without a byte order mark.
type Decoder struct{}

func NewDecoder() Decoder {
	return Decoder{}
}

func (Decoder) Decode(_ context.Context, raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(raw) {
		return "", ErrBinaryContent
	}
	return string(bytes.TrimSpace(raw)), nil
}
