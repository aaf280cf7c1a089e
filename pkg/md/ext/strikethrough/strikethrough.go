// Package strikethrough implements GitHub-flavored strikethrough, text
// enclosed in two tildes like ~~this~~.
package strikethrough

import (
	"src.mdkit.sh/pkg/md"
	"src.mdkit.sh/pkg/md/html"
	"src.mdkit.sh/pkg/md/render"
	"src.mdkit.sh/pkg/md/text"
)

// Kind is the kind of strikethrough nodes.
var Kind = md.NewKind("Strikethrough", false)

// Name is the name of the extension.
const Name = "strikethrough"

type extension struct{}

// Extension returns the strikethrough extension. It can be passed to
// md.WithExtensions, html.WithExtensions and text.WithExtensions.
func Extension() md.Extension { return extension{} }

var (
	_ md.ParserExtension = extension{}
	_ html.Extension     = extension{}
	_ text.Extension     = extension{}
)

func (extension) ExtensionName() string { return Name }

func (extension) ParserOptions() []md.ParserOption {
	return []md.ParserOption{md.WithDelimiterProcessors(DelimiterProcessor{})}
}

func (extension) HTMLOptions() []html.Option {
	return []html.Option{html.WithNodeRendererFactory(
		func(ctx *html.Context) render.NodeRenderer { return htmlRenderer{ctx} })}
}

func (extension) TextOptions() []text.Option {
	return []text.Option{text.WithNodeRendererFactory(
		func(ctx *text.Context) render.NodeRenderer { return textRenderer{ctx} })}
}

// DelimiterProcessor processes runs of "~". Exactly two tildes of each run are
// used, regardless of the length of the runs.
type DelimiterProcessor struct{}

func (DelimiterProcessor) OpeningChar() byte { return '~' }
func (DelimiterProcessor) ClosingChar() byte { return '~' }
func (DelimiterProcessor) MinLength() int    { return 2 }

func (DelimiterProcessor) DelimiterUse(opener, closer md.DelimiterRun) int {
	if opener.Len >= 2 && closer.Len >= 2 {
		return 2
	}
	return 0
}

func (DelimiterProcessor) Process(opener, closer *md.Node, n int) {
	md.WrapBetween(opener, closer, md.NewNode(Kind))
}

type htmlRenderer struct{ ctx *html.Context }

func (htmlRenderer) NodeKinds() []md.Kind { return []md.Kind{Kind} }

func (r htmlRenderer) Render(n *md.Node) {
	w := r.ctx.Writer()
	w.Tag("del", r.ctx.ExtendAttributes(n, "del", nil))
	r.ctx.RenderChildren(n)
	w.Tag("/del", nil)
}

type textRenderer struct{ ctx *text.Context }

func (textRenderer) NodeKinds() []md.Kind { return []md.Kind{Kind} }

func (r textRenderer) Render(n *md.Node) {
	r.ctx.Writer().Text("/")
	r.ctx.RenderChildren(n)
	r.ctx.Writer().Text("/")
}
