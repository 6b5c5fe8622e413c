package parser

import (
	"fmt"
	"io"
	"unicode/utf8"
)

// TextParser passes plain text through unchanged.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: not valid UTF-8 text", filename)
	}
	return string(data), nil
}
