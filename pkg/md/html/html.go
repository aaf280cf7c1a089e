// Package html renders Markdown documents to HTML.
package html

import (
	"fmt"
	"io"
	"strings"

	"src.mdkit.sh/pkg/md"
	"src.mdkit.sh/pkg/md/mdutil"
	"src.mdkit.sh/pkg/md/render"
)

// NodeRendererFactory creates a node renderer for one rendering.
type NodeRendererFactory func(ctx *Context) render.NodeRenderer

// AttributeProvider can add or change the attributes of the HTML tags
// rendered for nodes.
type AttributeProvider interface {
	// SetAttributes is called for each tag written for n. The attrs may be
	// modified.
	SetAttributes(n *md.Node, tag string, attrs *Attributes)
}

// AttributeProviderFactory creates an attribute provider for one rendering.
type AttributeProviderFactory func(ctx *Context) AttributeProvider

// Extension is an md.Extension that configures the HTML renderer.
type Extension interface {
	md.Extension
	HTMLOptions() []Option
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSoftbreak sets the HTML written for a soft line break, "\n" by
// default. Use "<br />" to render soft line breaks as hard ones, or " " to
// ignore line wrapping in the source.
func WithSoftbreak(s string) Option { return func(r *Renderer) { r.softbreak = s } }

// WithEscapeHTML sets whether raw HTML in the document is escaped instead of
// passed through.
func WithEscapeHTML(b bool) Option { return func(r *Renderer) { r.escapeHTML = b } }

// WithPercentEncodeURLs sets whether destinations of links and images are
// percent-encoded. Existing percent-encoded sequences are kept.
func WithPercentEncodeURLs(b bool) Option { return func(r *Renderer) { r.percentEncodeURLs = b } }

// WithAttributeProviderFactory adds an attribute provider. Providers are
// consulted in the order they are added.
func WithAttributeProviderFactory(f AttributeProviderFactory) Option {
	return func(r *Renderer) { r.attributeProviderFactories = append(r.attributeProviderFactories, f) }
}

// WithNodeRendererFactory adds a node renderer. If several renderers handle
// the same kind, the one added first is used. The core renderer always comes
// last, so core kinds can be overridden.
func WithNodeRendererFactory(f NodeRendererFactory) Option {
	return func(r *Renderer) { r.nodeRendererFactories = append(r.nodeRendererFactories, f) }
}

// WithExtensions applies the options of the given extensions that implement
// Extension. Other extensions are ignored.
func WithExtensions(exts ...md.Extension) Option {
	return func(r *Renderer) {
		for _, ext := range exts {
			if ext, ok := ext.(Extension); ok {
				for _, opt := range ext.HTMLOptions() {
					opt(r)
				}
			}
		}
	}
}

// Renderer renders documents to HTML. It is immutable once created.
type Renderer struct {
	softbreak                  string
	escapeHTML                 bool
	percentEncodeURLs          bool
	attributeProviderFactories []AttributeProviderFactory
	nodeRendererFactories      []NodeRendererFactory
}

var _ render.Renderer = (*Renderer)(nil)

// New creates a new Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{softbreak: "\n"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render renders the tree rooted at n into a string.
func (r *Renderer) Render(n *md.Node) string {
	var sb strings.Builder
	// Writing to a strings.Builder never fails.
	_ = r.RenderTo(&sb, n)
	return sb.String()
}

// RenderTo renders the tree rooted at n to w.
func (r *Renderer) RenderTo(w io.Writer, n *md.Node) error {
	ctx := r.newContext(w)
	ctx.Render(n)
	if err := ctx.writer.Err(); err != nil {
		return fmt.Errorf("render HTML: %w", err)
	}
	return nil
}

// Context is the state of one rendering. It is passed to node renderers and
// attribute providers.
type Context struct {
	r                  *Renderer
	writer             Writer
	attributeProviders []AttributeProvider
	renderers          *render.NodeRendererMap
}

func (r *Renderer) newContext(w io.Writer) *Context {
	ctx := &Context{
		r:         r,
		writer:    Writer{render.NewWriter(w)},
		renderers: render.NewNodeRendererMap(),
	}
	for _, f := range r.attributeProviderFactories {
		ctx.attributeProviders = append(ctx.attributeProviders, f(ctx))
	}
	// Add in reverse order so that the first renderer for a kind wins.
	ctx.renderers.Add(newCoreRenderer(ctx))
	for i := len(r.nodeRendererFactories) - 1; i >= 0; i-- {
		ctx.renderers.Add(r.nodeRendererFactories[i](ctx))
	}
	return ctx
}

// Writer returns the writer to write HTML with.
func (ctx *Context) Writer() Writer { return ctx.writer }

// ShouldEscapeHTML returns whether raw HTML should be escaped.
func (ctx *Context) ShouldEscapeHTML() bool { return ctx.r.escapeHTML }

// Softbreak returns the HTML for a soft line break.
func (ctx *Context) Softbreak() string { return ctx.r.softbreak }

// EncodeURL percent-encodes url if the renderer is configured to.
func (ctx *Context) EncodeURL(url string) string {
	if ctx.r.percentEncodeURLs {
		return mdutil.PercentEncodeURL(url)
	}
	return url
}

// ExtendAttributes returns a copy of attrs with the changes from the attribute
// providers applied. The attrs may be nil.
func (ctx *Context) ExtendAttributes(n *md.Node, tag string, attrs *Attributes) *Attributes {
	if attrs == nil {
		attrs = NewAttributes()
	} else {
		attrs = attrs.Clone()
	}
	for _, p := range ctx.attributeProviders {
		p.SetAttributes(n, tag, attrs)
	}
	return attrs
}

// Render renders n with the renderer for its kind. Node renderers call it to
// render children.
func (ctx *Context) Render(n *md.Node) { ctx.renderers.Render(n) }

// RenderChildren renders the children of n.
func (ctx *Context) RenderChildren(n *md.Node) { ctx.renderers.RenderChildren(n) }
