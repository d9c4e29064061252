// Package render turns stored feedback text into HTML for history views.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Feedback arrives as plain markdown from the text-generation service. Raw
// HTML in it is escaped rather than passed through.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Markdown converts src to HTML. An empty src yields an empty string.
func Markdown(src string) (string, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("could not render markdown: %w", err)
	}
	return buf.String(), nil
}
