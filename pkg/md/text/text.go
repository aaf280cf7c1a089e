// Package text renders Markdown documents to plain text, keeping a little of
// the structure.
package text

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"src.mdkit.sh/pkg/md"
	"src.mdkit.sh/pkg/md/render"
)

// NodeRendererFactory creates a node renderer for one rendering.
type NodeRendererFactory func(ctx *Context) render.NodeRenderer

// Extension is an md.Extension that configures the text renderer.
type Extension interface {
	md.Extension
	TextOptions() []Option
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStripNewlines sets whether the output is a single line.
func WithStripNewlines(b bool) Option { return func(r *Renderer) { r.stripNewlines = b } }

// WithNodeRendererFactory adds a node renderer. If several renderers handle
// the same kind, the one added first is used. The core renderer always comes
// last.
func WithNodeRendererFactory(f NodeRendererFactory) Option {
	return func(r *Renderer) { r.nodeRendererFactories = append(r.nodeRendererFactories, f) }
}

// WithExtensions applies the options of the given extensions that implement
// Extension. Other extensions are ignored.
func WithExtensions(exts ...md.Extension) Option {
	return func(r *Renderer) {
		for _, ext := range exts {
			if ext, ok := ext.(Extension); ok {
				for _, opt := range ext.TextOptions() {
					opt(r)
				}
			}
		}
	}
}

// Renderer renders documents to plain text.
type Renderer struct {
	stripNewlines         bool
	nodeRendererFactories []NodeRendererFactory
}

var _ render.Renderer = (*Renderer)(nil)

// New creates a new Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render renders the tree rooted at n into a string.
func (r *Renderer) Render(n *md.Node) string {
	var sb strings.Builder
	_ = r.RenderTo(&sb, n)
	return sb.String()
}

// RenderTo renders the tree rooted at n to w.
func (r *Renderer) RenderTo(w io.Writer, n *md.Node) error {
	ctx := &Context{
		stripNewlines: r.stripNewlines,
		writer:        Writer{render.NewWriter(w)},
		renderers:     render.NewNodeRendererMap(),
	}
	ctx.renderers.Add(newCoreRenderer(ctx))
	for i := len(r.nodeRendererFactories) - 1; i >= 0; i-- {
		ctx.renderers.Add(r.nodeRendererFactories[i](ctx))
	}
	ctx.Render(n)
	if err := ctx.writer.Err(); err != nil {
		return fmt.Errorf("render text: %w", err)
	}
	return nil
}

// Context is the state of one rendering.
type Context struct {
	stripNewlines bool
	writer        Writer
	renderers     *render.NodeRendererMap
}

// StripNewlines returns whether the output should be a single line.
func (ctx *Context) StripNewlines() bool { return ctx.stripNewlines }

// Writer returns the writer to write text with.
func (ctx *Context) Writer() Writer { return ctx.writer }

// Render renders n with the renderer for its kind.
func (ctx *Context) Render(n *md.Node) { ctx.renderers.Render(n) }

// RenderChildren renders the children of n.
func (ctx *Context) RenderChildren(n *md.Node) { ctx.renderers.RenderChildren(n) }

// Writer writes plain text.
type Writer struct {
	*render.Writer
}

// Text writes s.
func (w Writer) Text(s string) { w.WriteString(s) }

// Stripped writes s with each run of whitespace replaced by a single space.
func (w Writer) Stripped(s string) { w.WriteString(whitespaceRun.ReplaceAllLiteralString(s, " ")) }

var whitespaceRun = regexp.MustCompile(`\s+`)

// Whitespace writes a space, unless the output is empty or ends with one.
func (w Writer) Whitespace() { w.writeSeparator(' ') }

// Colon writes a colon, unless the output is empty or ends with one.
func (w Writer) Colon() { w.writeSeparator(':') }

// Line writes a newline, unless the output is empty or ends with one.
func (w Writer) Line() { w.writeSeparator('\n') }

func (w Writer) writeSeparator(b byte) {
	if last := w.LastByte(); last != 0 && last != b {
		w.WriteString(string(b))
	}
}
