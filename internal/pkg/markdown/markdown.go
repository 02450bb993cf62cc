package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var engine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
		extension.Strikethrough,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
	),
)

// Render converts markdown text to HTML. Raw HTML in the source is escaped by
// goldmark's default renderer, which is what we want for user-authored text.
func Render(markdownText string) (string, error) {
	text := strings.TrimSpace(markdownText)
	if text == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := engine.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
