// Package render converts model answers written in Markdown into HTML for
// clients that display formatted text.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// md renders GitHub-flavoured Markdown. Raw HTML in the source is omitted
// because model output is untrusted.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Markdown converts text to HTML.
func Markdown(text string) (string, error) {
	if text == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
