package markdown

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer turns user-written text such as profile bios into HTML.
// Raw HTML in the source is omitted and unsafe link targets are dropped.
type Renderer struct {
	md goldmark.Markdown
}

func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify,
			extension.Strikethrough,
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
		),
	)

	return &Renderer{md: md}
}

func (r *Renderer) Render(source string) (template.HTML, error) {
	var buf bytes.Buffer
	err := r.md.Convert([]byte(source), &buf)
	if err != nil {
		return "", err
	}
	// goldmark runs without WithUnsafe, so the output carries no raw HTML
	return template.HTML(buf.String()), nil
}
