// Package markdown renders post bodies. The pipeline is built once at process
// start and shared read-only between requests.
package markdown

import (
	"bytes"
	"fmt"

	htmltomd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown to sanitized HTML and back. Safe for concurrent
// use; construct one with NewRenderer and pass it by reference.
type Renderer struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
	converter *htmltomd.Converter
}

func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		sanitizer: bluemonday.UGCPolicy(),
		converter: htmltomd.NewConverter("", true, nil),
	}
}

// ToHTML renders Markdown and strips anything the UGC policy disallows.
func (r *Renderer) ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return r.sanitizer.Sanitize(buf.String()), nil
}

// ToMarkdown reverses stored HTML back to Markdown for the edit form.
func (r *Renderer) ToMarkdown(htmlSource string) (string, error) {
	out, err := r.converter.ConvertString(htmlSource)
	if err != nil {
		return "", fmt.Errorf("failed to convert html: %w", err)
	}

	return out, nil
}
