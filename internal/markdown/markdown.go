// Package markdown renders Markdown document bodies to HTML.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

// Options controls rendering.
//
// Heading ids are never generated: the footnote linker looks for a bare
// <h2>Footnotes</h2> style heading.
type Options struct {
	// Unsafe passes raw HTML in the source through to the output.
	Unsafe bool
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool
}

// Renderer converts Markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer with GitHub flavoured extensions enabled.
func New(opts Options) *Renderer {
	var rendererOpts []goldmark.Option
	htmlOpts := []renderer.Option{}
	if opts.Unsafe {
		htmlOpts = append(htmlOpts, html.WithUnsafe())
	}
	if opts.HardWraps {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}
	rendererOpts = append(rendererOpts,
		goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify, extension.TaskList),
		goldmark.WithRendererOptions(htmlOpts...),
	)
	return &Renderer{md: goldmark.New(rendererOpts...)}
}

// Render converts a Markdown body (front matter already removed) to HTML.
func (r *Renderer) Render(body []byte) (string, error) {
	var buf bytes.Buffer
	buf.Grow(len(body) + len(body)/4)
	if err := r.md.Convert(body, &buf); err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to render markdown").Build()
	}
	return buf.String(), nil
}

// Render is a convenience wrapper around New(opts).Render(body).
func Render(body []byte, opts Options) (string, error) {
	return New(opts).Render(body)
}
